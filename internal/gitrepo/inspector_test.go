package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/changetree/internal/execshell"
	"github.com/temirov/changetree/internal/gitrepo"
)

const (
	testWorkingDirectoryConstant = "/workspace/changetree"
	testRemoteConstant           = "origin"
	testBaseBranchConstant       = "master"
	testHeadBranchConstant       = "feature/tree"
)

type stubGitExecutor struct {
	result          execshell.ExecutionResult
	err             error
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return executor.result, executor.err
}

func TestNewRepositoryInspectorRequiresExecutor(testInstance *testing.T) {
	inspector, creationError := gitrepo.NewRepositoryInspector(nil)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrExecutorNotConfigured)
	require.Nil(testInstance, inspector)
}

func TestRepositoryRootUsesTopLevelOutput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		output        string
		expectedRoot  string
		expectedName  string
		expectedError error
	}{
		{
			name:         "trailing_newline",
			output:       "/home/user/projects/changetree\n",
			expectedRoot: "/home/user/projects/changetree",
			expectedName: "changetree",
		},
		{
			name:         "carriage_return",
			output:       "/home/user/projects/ctx\r\n",
			expectedRoot: "/home/user/projects/ctx",
			expectedName: "ctx",
		},
		{
			name:          "empty_output",
			output:        "\n",
			expectedError: gitrepo.ErrEmptyRepositoryRoot,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{result: execshell.ExecutionResult{StandardOutput: testCase.output}}
			inspector, creationError := gitrepo.NewRepositoryInspector(executor)
			require.NoError(testInstance, creationError)

			repositoryRoot, rootError := inspector.RepositoryRoot(context.Background(), testWorkingDirectoryConstant)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, rootError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, rootError)
			require.Equal(testInstance, testCase.expectedRoot, repositoryRoot)
			require.Equal(testInstance, testCase.expectedName, gitrepo.RepositoryNameFromRoot(repositoryRoot))

			require.Len(testInstance, executor.recordedDetails, 1)
			require.Equal(testInstance, []string{"rev-parse", "--show-toplevel"}, executor.recordedDetails[0].Arguments)
			require.Equal(testInstance, testWorkingDirectoryConstant, executor.recordedDetails[0].WorkingDirectory)
		})
	}
}

func TestReadRevisionFile(testInstance *testing.T) {
	testCases := []struct {
		name            string
		executorResult  execshell.ExecutionResult
		executorError   error
		expectedContent string
		expectedError   error
		expectedCommand []string
	}{
		{
			name:            "blob_content",
			executorResult:  execshell.ExecutionResult{StandardOutput: "feature version\n"},
			expectedContent: "feature version\n",
			expectedCommand: []string{"show", "origin/feature/tree:src/a.txt"},
		},
		{
			name: "path_deleted_on_revision",
			executorError: execshell.CommandFailedError{Result: execshell.ExecutionResult{
				ExitCode:      128,
				StandardError: "fatal: path 'src/a.txt' does not exist in 'origin/feature/tree'\n",
			}},
			expectedError:   gitrepo.ErrPathNotInRevision,
			expectedCommand: []string{"show", "origin/feature/tree:src/a.txt"},
		},
		{
			name: "other_failure",
			executorError: execshell.CommandFailedError{Result: execshell.ExecutionResult{
				ExitCode:      128,
				StandardError: "fatal: invalid object name 'origin/feature/tree'\n",
			}},
			expectedError:   execshell.CommandFailedError{},
			expectedCommand: []string{"show", "origin/feature/tree:src/a.txt"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{result: testCase.executorResult, err: testCase.executorError}
			inspector, creationError := gitrepo.NewRepositoryInspector(executor)
			require.NoError(testInstance, creationError)

			comparison := gitrepo.BranchComparison{Remote: testRemoteConstant, BaseBranch: testBaseBranchConstant, HeadBranch: testHeadBranchConstant}
			content, readError := inspector.ReadRevisionFile(context.Background(), testWorkingDirectoryConstant, comparison.HeadRevision(), "src/a.txt")

			require.Len(testInstance, executor.recordedDetails, 1)
			require.Equal(testInstance, testCase.expectedCommand, executor.recordedDetails[0].Arguments)
			require.Equal(testInstance, testWorkingDirectoryConstant, executor.recordedDetails[0].WorkingDirectory)

			switch expectedError := testCase.expectedError.(type) {
			case nil:
				require.NoError(testInstance, readError)
				require.Equal(testInstance, testCase.expectedContent, string(content))
			case execshell.CommandFailedError:
				require.ErrorAs(testInstance, readError, &expectedError)
				require.NotErrorIs(testInstance, readError, gitrepo.ErrPathNotInRevision)
			default:
				require.ErrorIs(testInstance, readError, expectedError)
				require.ErrorContains(testInstance, readError, "src/a.txt")
			}
		})
	}
}

func TestReadRevisionFileValidatesInput(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	inspector, creationError := gitrepo.NewRepositoryInspector(executor)
	require.NoError(testInstance, creationError)

	_, revisionError := inspector.ReadRevisionFile(context.Background(), testWorkingDirectoryConstant, " ", "a.txt")
	var inputError gitrepo.InvalidInputError
	require.ErrorAs(testInstance, revisionError, &inputError)
	require.Equal(testInstance, "revision", inputError.FieldName)

	_, pathError := inspector.ReadRevisionFile(context.Background(), testWorkingDirectoryConstant, "origin/main", "")
	require.ErrorAs(testInstance, pathError, &inputError)
	require.Equal(testInstance, "path", inputError.FieldName)
	require.Empty(testInstance, executor.recordedDetails)
}

func TestChangedFilesParsesNullSeparatedOutput(testInstance *testing.T) {
	executor := &stubGitExecutor{result: execshell.ExecutionResult{
		StandardOutput: "javascript/index.js\x00docs/read me.md\x00README.md\x00",
	}}
	inspector, creationError := gitrepo.NewRepositoryInspector(executor)
	require.NoError(testInstance, creationError)

	comparison := gitrepo.BranchComparison{Remote: testRemoteConstant, BaseBranch: testBaseBranchConstant, HeadBranch: testHeadBranchConstant}
	changedFiles, listError := inspector.ChangedFiles(context.Background(), testWorkingDirectoryConstant, comparison)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"javascript/index.js", "docs/read me.md", "README.md"}, changedFiles)

	require.Len(testInstance, executor.recordedDetails, 1)
	require.Equal(testInstance,
		[]string{"diff", "--name-only", "-z", "origin/master..origin/feature/tree"},
		executor.recordedDetails[0].Arguments,
	)
}

func TestChangedFilesEmptyDiff(testInstance *testing.T) {
	inspector, creationError := gitrepo.NewRepositoryInspector(&stubGitExecutor{})
	require.NoError(testInstance, creationError)

	comparison := gitrepo.BranchComparison{Remote: testRemoteConstant, BaseBranch: testBaseBranchConstant, HeadBranch: testHeadBranchConstant}
	changedFiles, listError := inspector.ChangedFiles(context.Background(), testWorkingDirectoryConstant, comparison)
	require.NoError(testInstance, listError)
	require.Empty(testInstance, changedFiles)
}

func TestChangedFilesValidatesComparison(testInstance *testing.T) {
	testCases := []struct {
		name          string
		comparison    gitrepo.BranchComparison
		expectedField string
	}{
		{
			name:          "missing_remote",
			comparison:    gitrepo.BranchComparison{BaseBranch: testBaseBranchConstant, HeadBranch: testHeadBranchConstant},
			expectedField: "remote",
		},
		{
			name:          "missing_base",
			comparison:    gitrepo.BranchComparison{Remote: testRemoteConstant, HeadBranch: testHeadBranchConstant},
			expectedField: "base_branch",
		},
		{
			name:          "whitespace_in_head",
			comparison:    gitrepo.BranchComparison{Remote: testRemoteConstant, BaseBranch: testBaseBranchConstant, HeadBranch: "feature branch"},
			expectedField: "head_branch",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{}
			inspector, creationError := gitrepo.NewRepositoryInspector(executor)
			require.NoError(testInstance, creationError)

			_, listError := inspector.ChangedFiles(context.Background(), testWorkingDirectoryConstant, testCase.comparison)
			var inputError gitrepo.InvalidInputError
			require.ErrorAs(testInstance, listError, &inputError)
			require.Equal(testInstance, testCase.expectedField, inputError.FieldName)
			require.Empty(testInstance, executor.recordedDetails)
		})
	}
}

func TestInspectorWrapsExecutorFailures(testInstance *testing.T) {
	commandFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: not a git repository"},
	}
	executor := &stubGitExecutor{err: commandFailure}
	inspector, creationError := gitrepo.NewRepositoryInspector(executor)
	require.NoError(testInstance, creationError)

	fetchError := inspector.FetchAllRemotes(context.Background(), testWorkingDirectoryConstant)
	var operationError gitrepo.OperationError
	require.ErrorAs(testInstance, fetchError, &operationError)
	require.Equal(testInstance, gitrepo.OperationName("FetchRemotes"), operationError.Operation)

	var failedError execshell.CommandFailedError
	require.True(testInstance, errors.As(fetchError, &failedError))
	require.Equal(testInstance, 128, failedError.Result.ExitCode)
	require.Equal(testInstance, []string{"fetch", "--all", "--tags", "--prune"}, executor.recordedDetails[0].Arguments)

	_, rootError := inspector.RepositoryRoot(context.Background(), testWorkingDirectoryConstant)
	require.ErrorAs(testInstance, rootError, &failedError)
}
