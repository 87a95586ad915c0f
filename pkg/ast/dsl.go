package ast

// Builders used by tests and by hosts that assemble forms directly.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func L(elements ...Node) *List {
	if elements == nil {
		elements = []Node{}
	}
	return NewList(elements)
}

func Q(form Node) *Quote {
	return NewQuote(form)
}

// Call builds `(name args...)`.
func Call(name string, args ...Node) *List {
	elements := make([]Node, 0, len(args)+1)
	elements = append(elements, ID(name))
	elements = append(elements, args...)
	return NewList(elements)
}

// At sets the position of node and returns it, for inline use in builders.
func At[T Node](node T, row, col int) T {
	SetPos(node, Position{Row: row, Col: col})
	return node
}
