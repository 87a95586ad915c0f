package runtime

// Environment is one scope in a chain; lookups fall back to the parent.
type Environment struct {
	values map[string]Expr
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Expr),
		parent: parent,
	}
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Expr) {
	e.values[name] = value
}

// Lookup searches outward through the scope chain.
func (e *Environment) Lookup(name string) (Expr, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Extend creates a child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
