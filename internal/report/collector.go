package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultMaxParallelReadsConstant         = 8
	readerNotConfiguredMessageConstant      = "file reader not configured"
	binaryContentMessageConstant            = "file content is not valid UTF-8 text"
	fileReadFailedLogMessageConstant        = "skipping unreadable file"
	fileContentsCollectedLogMessageConstant = "collected file contents"
	filePathLogFieldConstant                = "path"
	requestedFilesLogFieldConstant          = "requested_files"
	collectedFilesLogFieldConstant          = "collected_files"
)

var (
	// ErrFileReaderNotConfigured indicates the collector was constructed without a reader.
	ErrFileReaderNotConfigured = errors.New(readerNotConfiguredMessageConstant)
	// ErrBinaryContent indicates a file was skipped because it is not text.
	ErrBinaryContent = errors.New(binaryContentMessageConstant)
)

// FileReader loads the bytes of a slash-separated relative path.
type FileReader interface {
	ReadFile(executionContext context.Context, relativePath string) ([]byte, error)
}

// DirectoryFileReader reads files relative to a base directory.
type DirectoryFileReader struct {
	BaseDirectory string
}

// ReadFile reads relativePath beneath the base directory.
func (reader DirectoryFileReader) ReadFile(_ context.Context, relativePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(reader.BaseDirectory, filepath.FromSlash(relativePath)))
}

// ContentCollector reads many files concurrently with a bound on reads in flight.
type ContentCollector struct {
	reader           FileReader
	logger           *zap.Logger
	maxParallelReads int
}

// NewContentCollector constructs a collector. A non-positive maxParallelReads
// selects the default bound.
func NewContentCollector(reader FileReader, logger *zap.Logger, maxParallelReads int) (*ContentCollector, error) {
	if reader == nil {
		return nil, ErrFileReaderNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxParallelReads <= 0 {
		maxParallelReads = defaultMaxParallelReadsConstant
	}
	return &ContentCollector{reader: reader, logger: logger, maxParallelReads: maxParallelReads}, nil
}

// Collect reads each distinct path once and returns the readable text files in
// input order. Unreadable and binary files are logged and skipped. Only
// cancellation of executionContext aborts the collection.
func (collector *ContentCollector) Collect(executionContext context.Context, paths []string) ([]FileContent, error) {
	distinctPaths := make([]string, 0, len(paths))
	seenPaths := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if _, seen := seenPaths[path]; seen {
			continue
		}
		seenPaths[path] = struct{}{}
		distinctPaths = append(distinctPaths, path)
	}

	results := make([]*FileContent, len(distinctPaths))
	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(collector.maxParallelReads)

	for pathIndex, path := range distinctPaths {
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			content, readError := collector.readText(groupContext, path)
			if readError != nil {
				collector.logger.Warn(fileReadFailedLogMessageConstant, zap.String(filePathLogFieldConstant, path), zap.Error(readError))
				return nil
			}
			results[pathIndex] = &FileContent{Path: path, Content: content}
			return nil
		})
	}

	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}

	collected := make([]FileContent, 0, len(results))
	for _, result := range results {
		if result != nil {
			collected = append(collected, *result)
		}
	}

	collector.logger.Debug(
		fileContentsCollectedLogMessageConstant,
		zap.Int(requestedFilesLogFieldConstant, len(distinctPaths)),
		zap.Int(collectedFilesLogFieldConstant, len(collected)),
	)
	return collected, nil
}

func (collector *ContentCollector) readText(executionContext context.Context, path string) (string, error) {
	content, readError := collector.reader.ReadFile(executionContext, path)
	if readError != nil {
		return "", readError
	}
	if !utf8.Valid(content) {
		return "", ErrBinaryContent
	}
	return string(content), nil
}
