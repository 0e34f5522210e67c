package pathtree

import (
	"strings"
)

// SegmentSeparator delimits segments in input paths and in nested root labels.
const SegmentSeparator = "/"

// Builder converts flat path lists into trees using fixed Options.
type Builder struct {
	options Options
}

// NewBuilder validates the options and constructs a Builder.
func NewBuilder(options Options) (*Builder, error) {
	normalizedOptions, normalizationError := options.normalize()
	if normalizationError != nil {
		return nil, normalizationError
	}
	return &Builder{options: normalizedOptions}, nil
}

// Build constructs a tree with the default options.
func Build(paths []string, rootLabel string) (Tree, error) {
	return (&Builder{options: DefaultOptions()}).Build(paths, rootLabel)
}

// Options returns the normalized options used by the builder.
func (builder *Builder) Options() Options {
	return builder.options
}

// Build inserts every path, in order, beneath a root labeled rootLabel.
// Paths sharing a directory prefix share the prefix's nodes.
func (builder *Builder) Build(paths []string, rootLabel string) (Tree, error) {
	rootNode, insertionNode, rootError := builder.buildRoot(rootLabel)
	if rootError != nil {
		return Tree{}, rootError
	}

	for pathIndex, path := range paths {
		segments, segmentError := builder.splitPath(pathIndex, path)
		if segmentError != nil {
			return Tree{}, segmentError
		}
		if len(segments) == 0 {
			continue
		}

		currentNode := insertionNode
		for _, directoryName := range segments[:len(segments)-1] {
			currentNode = currentNode.directoryChild(directoryName)
		}
		currentNode.fileChild(segments[len(segments)-1])
	}

	return Tree{root: rootNode}, nil
}

// buildRoot returns the tree root and the directory that receives the paths.
func (builder *Builder) buildRoot(rootLabel string) (*Node, *Node, error) {
	trimmedLabel := strings.TrimRight(strings.TrimSpace(rootLabel), SegmentSeparator)
	if len(trimmedLabel) == 0 {
		return nil, nil, ErrEmptyRootLabel
	}

	if builder.options.RootLabel != RootLabelModeNested {
		rootNode := newDirectoryNode(trimmedLabel)
		return rootNode, rootNode, nil
	}

	labelSegments := make([]string, 0)
	for _, labelSegment := range strings.Split(trimmedLabel, SegmentSeparator) {
		trimmedSegment := strings.TrimSpace(labelSegment)
		if len(trimmedSegment) > 0 {
			labelSegments = append(labelSegments, trimmedSegment)
		}
	}
	if len(labelSegments) == 0 {
		return nil, nil, ErrEmptyRootLabel
	}

	rootNode := newDirectoryNode(labelSegments[0])
	insertionNode := rootNode
	for _, labelSegment := range labelSegments[1:] {
		insertionNode = insertionNode.directoryChild(labelSegment)
	}
	return rootNode, insertionNode, nil
}

// splitPath tokenizes one input path according to the empty segment policy.
func (builder *Builder) splitPath(pathIndex int, path string) ([]string, error) {
	rejectEmpty := builder.options.EmptySegments == EmptySegmentPolicyReject
	if len(path) == 0 {
		if rejectEmpty {
			return nil, InvalidPathError{Index: pathIndex, Path: path, Cause: ErrEmptyPath}
		}
		return nil, nil
	}

	rawSegments := strings.Split(path, SegmentSeparator)
	segments := make([]string, 0, len(rawSegments))
	for _, rawSegment := range rawSegments {
		if len(rawSegment) == 0 {
			if rejectEmpty {
				return nil, InvalidPathError{Index: pathIndex, Path: path, Cause: ErrEmptySegment}
			}
			continue
		}
		segments = append(segments, rawSegment)
	}
	return segments, nil
}
