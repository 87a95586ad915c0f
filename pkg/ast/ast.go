package ast

import "fmt"

type NodeType string

const (
	NodeList          NodeType = "List"
	NodeIdentifier    NodeType = "Ident"
	NodeNumberLiteral NodeType = "Number"
	NodeStringLiteral NodeType = "String"
	NodeQuote         NodeType = "Quote"
)

// MaxNesting bounds how many lists and quotes may enclose one another in a
// single form.
const MaxNesting = 10000

// Position is a zero-based row/column pair. Columns count characters, not bytes.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

// Advance returns the position after consuming r.
func (p Position) Advance(r rune) Position {
	if r == '\n' {
		return Position{Row: p.Row + 1, Col: 0}
	}
	return Position{Row: p.Row, Col: p.Col + 1}
}

type Node interface {
	NodeType() NodeType
	Pos() Position
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	pos  Position
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType   { return n.Type }
func (n nodeImpl) Pos() Position        { return n.pos }
func (nodeImpl) isNode()                {}
func (n *nodeImpl) setPos(pos Position) { n.pos = pos }

// List is a parenthesised form. It owns its elements exclusively.

type List struct {
	nodeImpl

	Elements []Node `json:"elements"`
}

func NewList(elements []Node) *List {
	return &List{nodeImpl: newNodeImpl(NodeList), Elements: elements}
}

// Identifier

type Identifier struct {
	nodeImpl

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type NumberLiteral struct {
	nodeImpl

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

// Quote wraps exactly one form that must not be evaluated.

type Quote struct {
	nodeImpl

	Form Node `json:"form"`
}

func NewQuote(form Node) *Quote {
	return &Quote{nodeImpl: newNodeImpl(NodeQuote), Form: form}
}
