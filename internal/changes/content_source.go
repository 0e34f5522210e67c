package changes

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/temirov/changetree/internal/report"
)

const (
	contentSourceHeadStringConstant          = "head"
	contentSourceWorktreeStringConstant      = "worktree"
	unsupportedContentSourceMessageConstant  = "unsupported contents source"
	unsupportedContentSourceTemplateConstant = "%w: %q (expected one of %s)"
	contentSourceChoicesSeparatorConstant    = ", "
)

// ContentSource names where the contents of changed files are read from.
type ContentSource string

// Supported content sources.
const (
	// ContentSourceHead reads each file as committed on <remote>/<head>.
	ContentSourceHead ContentSource = ContentSource(contentSourceHeadStringConstant)
	// ContentSourceWorktree reads each file from the checked-out working tree.
	ContentSourceWorktree ContentSource = ContentSource(contentSourceWorktreeStringConstant)
)

// ErrUnsupportedContentSource indicates a content source outside the accepted set.
var ErrUnsupportedContentSource = errors.New(unsupportedContentSourceMessageConstant)

// ContentSourceChoices lists the accepted content source names.
func ContentSourceChoices() []string {
	return []string{string(ContentSourceHead), string(ContentSourceWorktree)}
}

// ParseContentSource resolves a case-insensitive content source name. A blank
// value selects the head branch.
func ParseContentSource(value string) (ContentSource, error) {
	candidate := strings.ToLower(strings.TrimSpace(value))
	if len(candidate) == 0 {
		return ContentSourceHead, nil
	}
	choices := ContentSourceChoices()
	if slices.Contains(choices, candidate) {
		return ContentSource(candidate), nil
	}
	return "", fmt.Errorf(unsupportedContentSourceTemplateConstant, ErrUnsupportedContentSource, value, strings.Join(choices, contentSourceChoicesSeparatorConstant))
}

// FileReaderRequest describes the reader needed for one run.
type FileReaderRequest struct {
	Source         ContentSource
	RepositoryRoot string
	Revision       string
}

// revisionFileReader reads blobs from a committed revision through git.
type revisionFileReader struct {
	inspector      RepositoryInspector
	repositoryRoot string
	revision       string
}

func (reader revisionFileReader) ReadFile(executionContext context.Context, relativePath string) ([]byte, error) {
	return reader.inspector.ReadRevisionFile(executionContext, reader.repositoryRoot, reader.revision, relativePath)
}

func newDefaultFileReaderFactory(inspector RepositoryInspector) FileReaderFactory {
	return func(request FileReaderRequest) report.FileReader {
		if request.Source == ContentSourceWorktree {
			return report.DirectoryFileReader{BaseDirectory: request.RepositoryRoot}
		}
		return revisionFileReader{inspector: inspector, repositoryRoot: request.RepositoryRoot, revision: request.Revision}
	}
}
