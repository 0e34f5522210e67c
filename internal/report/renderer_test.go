package report_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/changetree/internal/pathtree"
	"github.com/temirov/changetree/internal/report"
)

func buildTestDocument(t *testing.T, paths []string, rootLabel string) report.Document {
	t.Helper()
	tree, buildError := pathtree.Build(paths, rootLabel)
	require.NoError(t, buildError)
	return report.NewDocument(tree)
}

func TestNewDocumentCapturesTree(t *testing.T) {
	document := buildTestDocument(t, []string{"javascript/index.js", "javascript/db/schema.sql", "README.md"}, "grader")

	require.Equal(t, "grader", document.RootLabel)
	require.Equal(t, 3, document.FileCount)
	require.Equal(t, 2, document.DirectoryCount)
	require.Equal(t, []string{
		"grader/",
		"  javascript/",
		"    index.js",
		"    db/",
		"      schema.sql",
		"  README.md",
	}, document.Lines)
	require.Equal(t, pathtree.NodeKindDirectory, document.Tree.Type)
}

func TestTextRenderer(t *testing.T) {
	document := buildTestDocument(t, []string{"a/b.txt", "c.txt"}, "root")

	var output bytes.Buffer
	require.NoError(t, report.TextRenderer{}.Render(&output, document))
	require.Equal(t, "root/\n  a/\n    b.txt\n  c.txt\n", output.String())
}

func TestMarkdownRenderer(t *testing.T) {
	testCases := []struct {
		name     string
		files    []report.FileContent
		expected string
	}{
		{
			name:     "structure_only",
			expected: "### Directory Structure:\n\nrepo/\n  src/\n    main.go\n",
		},
		{
			name: "with_contents",
			files: []report.FileContent{
				{Path: "src/main.go", Content: "package main\n"},
			},
			expected: "### Directory Structure:\n\nrepo/\n  src/\n    main.go\n" +
				"\n### File Contents:\n" +
				"\n#### src/main.go:\n\n```\npackage main\n```\n",
		},
		{
			name: "content_without_trailing_newline",
			files: []report.FileContent{
				{Path: "src/main.go", Content: "package main"},
			},
			expected: "### Directory Structure:\n\nrepo/\n  src/\n    main.go\n" +
				"\n### File Contents:\n" +
				"\n#### src/main.go:\n\n```\npackage main\n```\n",
		},
		{
			name: "fence_longer_than_embedded_backticks",
			files: []report.FileContent{
				{Path: "src/main.go", Content: "```go\nx\n```\n"},
			},
			expected: "### Directory Structure:\n\nrepo/\n  src/\n    main.go\n" +
				"\n### File Contents:\n" +
				"\n#### src/main.go:\n\n````\n```go\nx\n```\n````\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			document := buildTestDocument(t, []string{"src/main.go"}, "repo")
			document.Files = testCase.files

			var output bytes.Buffer
			require.NoError(t, report.MarkdownRenderer{}.Render(&output, document))
			require.Equal(t, testCase.expected, output.String())
		})
	}
}

func TestJSONRendererRoundTripsDocument(t *testing.T) {
	document := buildTestDocument(t, []string{"a/b.txt"}, "root")
	document.RunID = "run-1"
	document.Files = []report.FileContent{{Path: "a/b.txt", Content: "<b>"}}

	var output bytes.Buffer
	require.NoError(t, report.JSONRenderer{}.Render(&output, document))
	require.Contains(t, output.String(), `"content": "<b>"`)

	var decoded report.Document
	require.NoError(t, json.Unmarshal(output.Bytes(), &decoded))
	require.Equal(t, document, decoded)
}

func TestYAMLRendererUsesSnakeCaseKeys(t *testing.T) {
	document := buildTestDocument(t, []string{"a/b.txt"}, "root")

	var output bytes.Buffer
	require.NoError(t, report.YAMLRenderer{}.Render(&output, document))
	require.Contains(t, output.String(), "root_label: root\n")
	require.Contains(t, output.String(), "directory_count: 1\n")
	require.NotContains(t, output.String(), "files:")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(output.Bytes(), &decoded))
	require.Equal(t, []any{"root/", "  a/", "    b.txt"}, decoded["lines"])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRenderersReportWriteFailures(t *testing.T) {
	document := buildTestDocument(t, []string{"a.txt"}, "root")
	for _, format := range report.BundleFormats() {
		t.Run(string(format), func(t *testing.T) {
			renderer, rendererError := report.NewRenderer(format)
			require.NoError(t, rendererError)
			require.Error(t, renderer.Render(failingWriter{}, document))
		})
	}
}

func TestParseFormat(t *testing.T) {
	format, parseError := report.ParseFormat(" JSON ", report.TreeFormats())
	require.NoError(t, parseError)
	require.Equal(t, report.FormatJSON, format)

	_, parseError = report.ParseFormat("markdown", report.TreeFormats())
	require.ErrorIs(t, parseError, report.ErrUnsupportedFormat)
	require.EqualError(t, parseError, `unsupported output format: "markdown" (expected one of text, json, yaml)`)

	_, rendererError := report.NewRenderer(report.Format("xml"))
	require.ErrorIs(t, rendererError, report.ErrUnsupportedFormat)
}

func TestFormatIncludesFileContents(t *testing.T) {
	testCases := []struct {
		format   report.Format
		expected bool
	}{
		{format: report.FormatText, expected: false},
		{format: report.FormatMarkdown, expected: true},
		{format: report.FormatJSON, expected: true},
		{format: report.FormatYAML, expected: true},
	}

	for _, testCase := range testCases {
		t.Run(string(testCase.format), func(t *testing.T) {
			require.Equal(t, testCase.expected, testCase.format.IncludesFileContents())
		})
	}
}

func TestTiktokenCounterRequiresEncoding(t *testing.T) {
	var counter *report.TiktokenCounter
	_, countError := counter.CountTokens("hello")
	require.ErrorIs(t, countError, report.ErrTokenEncodingNotLoaded)
}
