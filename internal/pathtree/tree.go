package pathtree

import (
	"iter"
	"slices"
	"strings"
)

const (
	// IndentUnit prefixes each rendered line once per nesting level.
	IndentUnit = "  "
	// DirectorySuffix marks directory lines in the rendered outline.
	DirectorySuffix = "/"

	lineSeparatorConstant = "\n"
)

// Tree is a rooted directory hierarchy produced by Builder.Build.
// The zero value has no root and renders no lines.
type Tree struct {
	root *Node
}

// Root returns the root directory node, or nil for the zero Tree.
func (tree Tree) Root() *Node {
	return tree.root
}

// Lines yields the outline depth-first, children in insertion order.
// The sequence can be ranged over any number of times.
func (tree Tree) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		tree.walk(func(node *Node, depth int) bool {
			return yield(formatLine(node, depth))
		})
	}
}

// Render collects Lines into a slice.
func Render(tree Tree) []string {
	return slices.Collect(tree.Lines())
}

// String joins the rendered lines with newlines.
func (tree Tree) String() string {
	return strings.Join(Render(tree), lineSeparatorConstant)
}

// FileCount returns the number of file leaves.
func (tree Tree) FileCount() int {
	fileCount := 0
	tree.walk(func(node *Node, _ int) bool {
		if node.kind == NodeKindFile {
			fileCount++
		}
		return true
	})
	return fileCount
}

// DirectoryCount returns the number of directories below the root.
func (tree Tree) DirectoryCount() int {
	directoryCount := 0
	tree.walk(func(node *Node, depth int) bool {
		if depth > 0 && node.kind == NodeKindDirectory {
			directoryCount++
		}
		return true
	})
	return directoryCount
}

type walkFrame struct {
	node  *Node
	depth int
}

// walk visits nodes in pre-order using an explicit stack and stops when visit returns false.
func (tree Tree) walk(visit func(node *Node, depth int) bool) {
	if tree.root == nil {
		return
	}
	pendingFrames := []walkFrame{{node: tree.root}}
	for len(pendingFrames) > 0 {
		currentFrame := pendingFrames[len(pendingFrames)-1]
		pendingFrames = pendingFrames[:len(pendingFrames)-1]
		if !visit(currentFrame.node, currentFrame.depth) {
			return
		}
		children := currentFrame.node.children
		for childIndex := len(children) - 1; childIndex >= 0; childIndex-- {
			pendingFrames = append(pendingFrames, walkFrame{node: children[childIndex], depth: currentFrame.depth + 1})
		}
	}
}

func formatLine(node *Node, depth int) string {
	var lineBuilder strings.Builder
	lineBuilder.WriteString(strings.Repeat(IndentUnit, depth))
	lineBuilder.WriteString(node.name)
	if node.kind == NodeKindDirectory {
		lineBuilder.WriteString(DirectorySuffix)
	}
	return lineBuilder.String()
}
