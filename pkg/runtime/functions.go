package runtime

import (
	"errors"
	"fmt"
)

// ErrDuplicateFunction is returned when a name is registered twice.
var ErrDuplicateFunction = errors.New("function already defined")

// FunctionTable maps names to functions and remembers definition order.
// The first registration of a name wins.
type FunctionTable struct {
	byName map[string]Function
	order  []string
}

func NewFunctionTable() *FunctionTable {
	return &FunctionTable{byName: make(map[string]Function)}
}

// Register adds fn under its name.
func (t *FunctionTable) Register(fn Function) error {
	if fn == nil {
		return fmt.Errorf("register: nil function")
	}
	name := fn.FunctionName()
	if _, exists := t.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFunction, name)
	}
	t.byName[name] = fn
	t.order = append(t.order, name)
	return nil
}

func (t *FunctionTable) Lookup(name string) (Function, bool) {
	fn, ok := t.byName[name]
	return fn, ok
}

// Names returns registered names in definition order.
func (t *FunctionTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *FunctionTable) Len() int {
	return len(t.order)
}
