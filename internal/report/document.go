package report

import "github.com/temirov/changetree/internal/pathtree"

// FileContent is the text of one file included in a bundle.
type FileContent struct {
	Path    string `json:"path" yaml:"path"`
	Content string `json:"content" yaml:"content"`
}

// Document is everything a renderer may emit for one run.
type Document struct {
	RunID          string               `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	RootLabel      string               `json:"root_label" yaml:"root_label"`
	FileCount      int                  `json:"file_count" yaml:"file_count"`
	DirectoryCount int                  `json:"directory_count" yaml:"directory_count"`
	TokenCount     int                  `json:"token_count,omitempty" yaml:"token_count,omitempty"`
	Tree           pathtree.OutlineNode `json:"tree" yaml:"tree"`
	Lines          []string             `json:"lines" yaml:"lines"`
	Files          []FileContent        `json:"files,omitempty" yaml:"files,omitempty"`
}

// NewDocument captures the outline, rendered lines and counts of tree.
func NewDocument(tree pathtree.Tree) Document {
	document := Document{
		FileCount:      tree.FileCount(),
		DirectoryCount: tree.DirectoryCount(),
		Tree:           tree.Outline(),
		Lines:          pathtree.Render(tree),
	}
	if rootNode := tree.Root(); rootNode != nil {
		document.RootLabel = rootNode.Name()
	}
	return document
}
