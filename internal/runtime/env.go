package runtime

// Environment is a scope frame mapping names to values, linked to its
// lexically enclosing frame. Closures hold a reference to the frame they
// were created in, so bindings are shared, not copied: two closures over
// the same frame observe each other's assignments.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a top-level environment with no parent.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// NewEnclosed creates an environment nested inside parent.
func NewEnclosed(parent *Environment) *Environment {
	return &Environment{values: make(map[string]Value), parent: parent}
}

// Define binds name to value in this frame. Redefining an existing name
// overwrites it, which is what the REPL and top-level redeclaration need.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks name up in this frame and then outward through the parents.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign updates an existing binding, searching outward through the
// parents. It reports false when no frame holds the name; assignment
// never creates a binding.
func (e *Environment) Assign(name string, value Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return true
		}
	}
	return false
}

// GetAt reads name from the frame exactly depth hops out. The resolver
// guarantees the frame exists and holds the name for resolved references.
func (e *Environment) GetAt(depth int, name string) (Value, bool) {
	env := e.ancestor(depth)
	if env == nil {
		return nil, false
	}
	v, ok := env.values[name]
	return v, ok
}

// AssignAt writes name in the frame exactly depth hops out.
func (e *Environment) AssignAt(depth int, name string, value Value) bool {
	env := e.ancestor(depth)
	if env == nil {
		return false
	}
	if _, ok := env.values[name]; !ok {
		return false
	}
	env.values[name] = value
	return true
}

func (e *Environment) ancestor(depth int) *Environment {
	env := e
	for i := 0; i < depth && env != nil; i++ {
		env = env.parent
	}
	return env
}
