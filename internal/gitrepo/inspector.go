package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/temirov/changetree/internal/execshell"
)

const (
	gitRevParseSubcommandConstant            = "rev-parse"
	gitShowTopLevelFlagConstant              = "--show-toplevel"
	gitFetchSubcommandConstant               = "fetch"
	gitAllRemotesFlagConstant                = "--all"
	gitTagsFlagConstant                      = "--tags"
	gitPruneFlagConstant                     = "--prune"
	gitDiffSubcommandConstant                = "diff"
	gitNameOnlyFlagConstant                  = "--name-only"
	gitNullTerminatedFlagConstant            = "-z"
	gitShowSubcommandConstant                = "show"
	revisionRangeTemplateConstant            = "%s/%s..%s/%s"
	remoteBranchTemplateConstant             = "%s/%s"
	revisionPathTemplateConstant             = "%s:%s"
	missingPathErrorTemplateConstant         = "%w: %s"
	nullSeparatorConstant                    = "\x00"
	remoteFieldNameConstant                  = "remote"
	baseBranchFieldNameConstant              = "base_branch"
	headBranchFieldNameConstant              = "head_branch"
	revisionFieldNameConstant                = "revision"
	pathFieldNameConstant                    = "path"
	requiredValueMessageConstant             = "value required"
	whitespaceNotAllowedMessageConstant      = "must not contain whitespace"
	executorNotConfiguredMessageConstant     = "git executor not configured"
	emptyRepositoryRootMessageConstant       = "git reported an empty repository root"
	pathNotInRevisionMessageConstant         = "path not present in revision"
	invalidInputErrorTemplateConstant        = "%s: %s"
	operationErrorTemplateConstant           = "%s failed: %v"
	repositoryRootOperationNameConstant      = OperationName("ResolveRepositoryRoot")
	fetchRemotesOperationNameConstant        = OperationName("FetchRemotes")
	changedFilesOperationNameConstant        = OperationName("ListChangedFiles")
	readRevisionFileOperationNameConstant    = OperationName("ReadRevisionFile")
	repositoryRootTrailingCharactersConstant = "\r\n"
)

// OperationName identifies an inspector operation in errors.
type OperationName string

var (
	// ErrExecutorNotConfigured indicates the inspector was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrEmptyRepositoryRoot indicates git succeeded but printed no repository root.
	ErrEmptyRepositoryRoot = errors.New(emptyRepositoryRootMessageConstant)
	// ErrPathNotInRevision indicates a path is absent from the requested
	// revision, as with a file deleted on the head branch.
	ErrPathNotInRevision = errors.New(pathNotInRevisionMessageConstant)
)

// missingPathMarkers are the git show diagnostics for a path the revision lacks.
var missingPathMarkers = []string{"does not exist in", "exists on disk, but not in"}

// GitExecutor is the subset of execshell.ShellExecutor the inspector needs.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// InvalidInputError reports an unusable operation input.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps a failed git invocation.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// BranchComparison names the two remote branches whose difference is listed.
type BranchComparison struct {
	Remote     string
	BaseBranch string
	HeadBranch string
}

// RevisionRange renders the comparison as <remote>/<base>..<remote>/<head>.
func (comparison BranchComparison) RevisionRange() string {
	return fmt.Sprintf(revisionRangeTemplateConstant, comparison.Remote, comparison.BaseBranch, comparison.Remote, comparison.HeadBranch)
}

// HeadRevision names the remote-tracking head branch, such as origin/feature.
func (comparison BranchComparison) HeadRevision() string {
	return fmt.Sprintf(remoteBranchTemplateConstant, comparison.Remote, comparison.HeadBranch)
}

func (comparison BranchComparison) validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{name: remoteFieldNameConstant, value: comparison.Remote},
		{name: baseBranchFieldNameConstant, value: comparison.BaseBranch},
		{name: headBranchFieldNameConstant, value: comparison.HeadBranch},
	}
	for _, field := range fields {
		if len(field.value) == 0 {
			return InvalidInputError{FieldName: field.name, Message: requiredValueMessageConstant}
		}
		if strings.ContainsFunc(field.value, unicode.IsSpace) {
			return InvalidInputError{FieldName: field.name, Message: whitespaceNotAllowedMessageConstant}
		}
	}
	return nil
}

// RepositoryInspector runs read-only git queries against a working directory.
type RepositoryInspector struct {
	executor GitExecutor
}

// NewRepositoryInspector constructs an inspector backed by the executor.
func NewRepositoryInspector(executor GitExecutor) (*RepositoryInspector, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryInspector{executor: executor}, nil
}

// RepositoryRoot returns the absolute top-level directory containing workingDirectory.
func (inspector *RepositoryInspector) RepositoryRoot(executionContext context.Context, workingDirectory string) (string, error) {
	executionResult, executionError := inspector.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitShowTopLevelFlagConstant},
		WorkingDirectory: workingDirectory,
	})
	if executionError != nil {
		return "", OperationError{Operation: repositoryRootOperationNameConstant, Cause: executionError}
	}

	repositoryRoot := strings.TrimRight(executionResult.StandardOutput, repositoryRootTrailingCharactersConstant)
	if len(strings.TrimSpace(repositoryRoot)) == 0 {
		return "", OperationError{Operation: repositoryRootOperationNameConstant, Cause: ErrEmptyRepositoryRoot}
	}
	return repositoryRoot, nil
}

// RepositoryNameFromRoot returns the base name of a repository root reported by git.
func RepositoryNameFromRoot(repositoryRoot string) string {
	return filepath.Base(filepath.FromSlash(strings.TrimSpace(repositoryRoot)))
}

// FetchAllRemotes runs git fetch --all --tags --prune.
func (inspector *RepositoryInspector) FetchAllRemotes(executionContext context.Context, workingDirectory string) error {
	_, executionError := inspector.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, gitAllRemotesFlagConstant, gitTagsFlagConstant, gitPruneFlagConstant},
		WorkingDirectory: workingDirectory,
	})
	if executionError != nil {
		return OperationError{Operation: fetchRemotesOperationNameConstant, Cause: executionError}
	}
	return nil
}

// ChangedFiles lists the paths that differ between the compared branches in
// the order git reports them.
func (inspector *RepositoryInspector) ChangedFiles(executionContext context.Context, workingDirectory string, comparison BranchComparison) ([]string, error) {
	if validationError := comparison.validate(); validationError != nil {
		return nil, validationError
	}

	executionResult, executionError := inspector.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitDiffSubcommandConstant,
			gitNameOnlyFlagConstant,
			gitNullTerminatedFlagConstant,
			comparison.RevisionRange(),
		},
		WorkingDirectory: workingDirectory,
	})
	if executionError != nil {
		return nil, OperationError{Operation: changedFilesOperationNameConstant, Cause: executionError}
	}

	changedFiles := make([]string, 0)
	for _, changedFile := range strings.Split(executionResult.StandardOutput, nullSeparatorConstant) {
		if len(changedFile) == 0 {
			continue
		}
		changedFiles = append(changedFiles, changedFile)
	}
	return changedFiles, nil
}

// ReadRevisionFile returns the blob stored at the repository-relative path in
// revision. A path the revision does not contain yields ErrPathNotInRevision.
func (inspector *RepositoryInspector) ReadRevisionFile(executionContext context.Context, workingDirectory string, revision string, relativePath string) ([]byte, error) {
	trimmedRevision := strings.TrimSpace(revision)
	if len(trimmedRevision) == 0 {
		return nil, InvalidInputError{FieldName: revisionFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(relativePath) == 0 {
		return nil, InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := inspector.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitShowSubcommandConstant, fmt.Sprintf(revisionPathTemplateConstant, trimmedRevision, relativePath)},
		WorkingDirectory: workingDirectory,
	})
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) && reportsMissingPath(failedError.Result.StandardError) {
			return nil, OperationError{
				Operation: readRevisionFileOperationNameConstant,
				Cause:     fmt.Errorf(missingPathErrorTemplateConstant, ErrPathNotInRevision, relativePath),
			}
		}
		return nil, OperationError{Operation: readRevisionFileOperationNameConstant, Cause: executionError}
	}
	return []byte(executionResult.StandardOutput), nil
}

func reportsMissingPath(standardError string) bool {
	for _, marker := range missingPathMarkers {
		if strings.Contains(standardError, marker) {
			return true
		}
	}
	return false
}
