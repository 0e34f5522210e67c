package pathtree

const (
	nodeKindDirectoryStringConstant = "directory"
	nodeKindFileStringConstant      = "file"
)

// NodeKind tags a Node as a directory or a file.
type NodeKind string

// Supported node kinds.
const (
	NodeKindDirectory NodeKind = NodeKind(nodeKindDirectoryStringConstant)
	NodeKindFile      NodeKind = NodeKind(nodeKindFileStringConstant)
)

// Node is one entry of a Tree. Directories own their children in insertion order.
type Node struct {
	name       string
	kind       NodeKind
	children   []*Node
	childIndex map[string]*Node
}

func newDirectoryNode(name string) *Node {
	return &Node{name: name, kind: NodeKindDirectory, childIndex: map[string]*Node{}}
}

func newFileNode(name string) *Node {
	return &Node{name: name, kind: NodeKindFile}
}

// Name returns the segment name of the node.
func (node *Node) Name() string {
	return node.name
}

// Kind reports whether the node is a directory or a file.
func (node *Node) Kind() NodeKind {
	return node.kind
}

// IsDirectory reports whether the node is a directory.
func (node *Node) IsDirectory() bool {
	return node.kind == NodeKindDirectory
}

// Children returns a copy of the node's children in insertion order.
func (node *Node) Children() []*Node {
	if len(node.children) == 0 {
		return nil
	}
	duplicatedChildren := make([]*Node, len(node.children))
	copy(duplicatedChildren, node.children)
	return duplicatedChildren
}

// directoryChild returns the directory named name, creating it when absent.
// An existing file with the same name becomes a directory in place.
func (node *Node) directoryChild(name string) *Node {
	existingChild, childExists := node.childIndex[name]
	if !childExists {
		directoryNode := newDirectoryNode(name)
		node.appendChild(directoryNode)
		return directoryNode
	}
	if existingChild.kind == NodeKindFile {
		existingChild.kind = NodeKindDirectory
		existingChild.childIndex = map[string]*Node{}
	}
	return existingChild
}

// fileChild records name as a file leaf. An existing directory with the same
// name becomes a file in place and loses its children.
func (node *Node) fileChild(name string) {
	existingChild, childExists := node.childIndex[name]
	if !childExists {
		node.appendChild(newFileNode(name))
		return
	}
	if existingChild.kind == NodeKindDirectory {
		existingChild.kind = NodeKindFile
		existingChild.children = nil
		existingChild.childIndex = nil
	}
}

func (node *Node) appendChild(child *Node) {
	node.children = append(node.children, child)
	node.childIndex[child.name] = child
}
