package pathtree

import (
	"errors"
	"fmt"
)

const (
	emptyRootLabelMessageConstant    = "root label must not be empty"
	emptyPathMessageConstant         = "path is empty"
	emptySegmentMessageConstant      = "path contains an empty segment"
	invalidPathErrorTemplateConstant = "invalid path %q at index %d: %v"
)

// ErrEmptyRootLabel indicates the root label was empty after trimming.
var ErrEmptyRootLabel = errors.New(emptyRootLabelMessageConstant)

// ErrEmptyPath indicates an input path with no characters.
var ErrEmptyPath = errors.New(emptyPathMessageConstant)

// ErrEmptySegment indicates a leading, trailing, or doubled separator.
var ErrEmptySegment = errors.New(emptySegmentMessageConstant)

// InvalidPathError reports the input path rejected under EmptySegmentPolicyReject.
type InvalidPathError struct {
	Index int
	Path  string
	Cause error
}

// Error describes the rejected path.
func (invalidPathError InvalidPathError) Error() string {
	return fmt.Sprintf(invalidPathErrorTemplateConstant, invalidPathError.Path, invalidPathError.Index, invalidPathError.Cause)
}

// Unwrap exposes ErrEmptyPath or ErrEmptySegment.
func (invalidPathError InvalidPathError) Unwrap() error {
	return invalidPathError.Cause
}
