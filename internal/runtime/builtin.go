package runtime

import (
	"fmt"
	"time"
)

// registerBuiltins installs the native functions every program starts
// with. Natives check argument types themselves; arity is enforced by the
// call machinery before Fn runs.
func registerBuiltins(globals *Environment) {
	globals.Define("clock", &NativeVal{
		Name:  "clock",
		Arity: 0,
		Fn: func(args []Value) (Value, error) {
			return NumberVal(float64(time.Now().UnixNano()) / 1e9), nil
		},
	})

	globals.Define("str", &NativeVal{
		Name:  "str",
		Arity: 1,
		Fn: func(args []Value) (Value, error) {
			return StringVal(args[0].String()), nil
		},
	})

	globals.Define("type", &NativeVal{
		Name:  "type",
		Arity: 1,
		Fn: func(args []Value) (Value, error) {
			return StringVal(args[0].TypeName()), nil
		},
	})

	globals.Define("len", &NativeVal{
		Name:  "len",
		Arity: 1,
		Fn: func(args []Value) (Value, error) {
			s, ok := args[0].(StringVal)
			if !ok {
				return nil, fmt.Errorf("expected a string, got %s", args[0].TypeName())
			}
			return NumberVal(len(s)), nil
		},
	})
}
