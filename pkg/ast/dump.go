package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders a node tree in the debug form `Node[row,col](Value)`.
func Dump(node Node) string {
	var b strings.Builder
	dumpNode(&b, node)
	return b.String()
}

// DumpAll renders each root on its own line.
func DumpAll(nodes []Node) string {
	var b strings.Builder
	for _, node := range nodes {
		b.WriteString(Dump(node))
		b.WriteByte('\n')
	}
	return b.String()
}

func dumpNode(b *strings.Builder, node Node) {
	if node == nil {
		b.WriteString("<nil>")
		return
	}
	pos := node.Pos()
	fmt.Fprintf(b, "Node[%d,%d](", pos.Row, pos.Col)
	switch n := node.(type) {
	case *List:
		b.WriteString("List([")
		for idx, el := range n.Elements {
			if idx > 0 {
				b.WriteString(", ")
			}
			dumpNode(b, el)
		}
		b.WriteString("])")
	case *Identifier:
		fmt.Fprintf(b, "Ident(%s)", strconv.Quote(n.Name))
	case *NumberLiteral:
		fmt.Fprintf(b, "Number(%s)", strconv.FormatFloat(n.Value, 'f', -1, 64))
	case *StringLiteral:
		fmt.Fprintf(b, "String(%s)", strconv.Quote(n.Value))
	case *Quote:
		b.WriteString("Quote(")
		dumpNode(b, n.Form)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "%s", node.NodeType())
	}
	b.WriteByte(')')
}
