package pathtree_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/changetree/internal/pathtree"
)

func TestLinesIsRestartableAndIdempotent(t *testing.T) {
	tree, buildError := pathtree.Build([]string{"a/b/c.txt", "a/b/d.txt", "e.txt"}, "root")
	require.NoError(t, buildError)

	firstPass := pathtree.Render(tree)
	secondPass := make([]string, 0)
	for line := range tree.Lines() {
		secondPass = append(secondPass, line)
	}

	require.Equal(t, []string{"root/", "  a/", "    b/", "      c.txt", "      d.txt", "  e.txt"}, firstPass)
	require.Equal(t, firstPass, secondPass)
	require.Equal(t, firstPass, pathtree.Render(tree))
}

func TestLinesStopsWhenConsumerBreaks(t *testing.T) {
	tree, buildError := pathtree.Build([]string{"a/b.txt", "c.txt", "d.txt"}, "root")
	require.NoError(t, buildError)

	consumed := make([]string, 0)
	for line := range tree.Lines() {
		consumed = append(consumed, line)
		if len(consumed) == 2 {
			break
		}
	}
	require.Equal(t, []string{"root/", "  a/"}, consumed)
}

func TestZeroTreeRendersNothing(t *testing.T) {
	var tree pathtree.Tree
	require.Empty(t, pathtree.Render(tree))
	require.Equal(t, "", tree.String())
	require.Zero(t, tree.FileCount())
	require.Equal(t, pathtree.OutlineNode{}, tree.Outline())
}

func TestStringJoinsLines(t *testing.T) {
	tree, buildError := pathtree.Build([]string{"a/b.txt"}, "root")
	require.NoError(t, buildError)
	require.Equal(t, "root/\n  a/\n    b.txt", tree.String())
}

func TestLeafCountMatchesDistinctPaths(t *testing.T) {
	paths := []string{
		"cmd/changetree/main.go",
		"internal/pathtree/builder.go",
		"internal/pathtree/tree.go",
		"internal/report/markdown.go",
		"README.md",
		"go.mod",
	}
	tree, buildError := pathtree.Build(paths, "changetree")
	require.NoError(t, buildError)
	require.Equal(t, len(paths), tree.FileCount())

	renderedLines := pathtree.Render(tree)
	fileLines := 0
	for _, line := range renderedLines {
		if !strings.HasSuffix(line, pathtree.DirectorySuffix) {
			fileLines++
		}
	}
	require.Equal(t, len(paths), fileLines)
	require.Equal(t, 1+tree.DirectoryCount()+tree.FileCount(), len(renderedLines))
}

func TestDeepTreeRendersWithoutRecursionLimits(t *testing.T) {
	const depth = 5000
	segments := make([]string, depth)
	for segmentIndex := range segments {
		segments[segmentIndex] = fmt.Sprintf("d%d", segmentIndex)
	}
	deepPath := strings.Join(segments, "/") + "/leaf.txt"

	tree, buildError := pathtree.Build([]string{deepPath}, "root")
	require.NoError(t, buildError)

	renderedLines := pathtree.Render(tree)
	require.Len(t, renderedLines, depth+2)
	require.Equal(t, strings.Repeat(pathtree.IndentUnit, depth+1)+"leaf.txt", renderedLines[len(renderedLines)-1])
}

func TestNodeAccessors(t *testing.T) {
	tree, buildError := pathtree.Build([]string{"a/b.txt"}, "root")
	require.NoError(t, buildError)

	rootNode := tree.Root()
	require.Equal(t, "root", rootNode.Name())
	require.True(t, rootNode.IsDirectory())

	children := rootNode.Children()
	require.Len(t, children, 1)
	require.Equal(t, pathtree.NodeKindDirectory, children[0].Kind())

	children[0] = nil
	require.NotNil(t, rootNode.Children()[0])

	leaves := rootNode.Children()[0].Children()
	require.Len(t, leaves, 1)
	require.Equal(t, "b.txt", leaves[0].Name())
	require.False(t, leaves[0].IsDirectory())
	require.Nil(t, leaves[0].Children())
}

func TestDominantTopDirectory(t *testing.T) {
	testCases := []struct {
		name              string
		paths             []string
		expectedDirectory string
		expectedFound     bool
	}{
		{
			name:              "majority_wins",
			paths:             []string{"javascript/index.js", "javascript/db.js", "docs/readme.md"},
			expectedDirectory: "javascript",
			expectedFound:     true,
		},
		{
			name:              "tie_goes_to_first_seen",
			paths:             []string{"python/app.py", "javascript/index.js"},
			expectedDirectory: "python",
			expectedFound:     true,
		},
		{
			name:          "root_files_only",
			paths:         []string{"README.md", ".gitignore"},
			expectedFound: false,
		},
		{
			name:          "empty_input",
			paths:         nil,
			expectedFound: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			directory, found := pathtree.DominantTopDirectory(testCase.paths)
			require.Equal(t, testCase.expectedFound, found)
			require.Equal(t, testCase.expectedDirectory, directory)
		})
	}
}
