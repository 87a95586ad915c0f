package ast

// SetPos annotates the node with the provided source position.
func SetPos(node Node, pos Position) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setPos(Position) }); ok {
		setter.setPos(pos)
	}
}
