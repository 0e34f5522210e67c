package pathtree

// OutlineNode is a serializable snapshot of a Node and its descendants.
type OutlineNode struct {
	Name     string        `json:"name" yaml:"name"`
	Type     NodeKind      `json:"type" yaml:"type"`
	Children []OutlineNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Outline converts the tree into nested OutlineNode values.
func (tree Tree) Outline() OutlineNode {
	if tree.root == nil {
		return OutlineNode{}
	}
	return outlineOf(tree.root)
}

func outlineOf(node *Node) OutlineNode {
	outlineNode := OutlineNode{Name: node.name, Type: node.kind}
	for _, child := range node.children {
		outlineNode.Children = append(outlineNode.Children, outlineOf(child))
	}
	return outlineNode
}
