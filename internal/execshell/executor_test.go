package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/changetree/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
	testCommandArgumentConstant                  = "--version"
	testWorkingDirectoryConstant                 = "."
	testStandardErrorOutputConstant              = "fatal: bad revision"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner, false)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name              string
		runnerResult      execshell.ExecutionResult
		runnerError       error
		expectErrorType   any
		expectedLevels    []zapcore.Level
		expectedErrorText string
	}{
		{
			name: testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: "ok",
				ExitCode:       0,
			},
			expectedLevels: []zapcore.Level{zapcore.DebugLevel, zapcore.DebugLevel},
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardError: testStandardErrorOutputConstant + "\n",
				ExitCode:      128,
			},
			expectErrorType:   execshell.CommandFailedError{},
			expectedLevels:    []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel},
			expectedErrorText: "git --version exited with code 128: fatal: bad revision",
		},
		{
			name:              testExecutionRunnerErrorCaseNameConstant,
			runnerError:       errors.New("runner failure"),
			expectErrorType:   execshell.CommandExecutionError{},
			expectedLevels:    []zapcore.Level{zapcore.DebugLevel, zapcore.ErrorLevel},
			expectedErrorText: "git --version could not be executed: runner failure",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}

			shellExecutor, creationError := execshell.NewShellExecutor(logger, recordingRunner, false)
			require.NoError(testInstance, creationError)

			commandDetails := execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}, WorkingDirectory: testWorkingDirectoryConstant}
			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), commandDetails)

			if testCase.expectErrorType != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.EqualError(testInstance, executionError, testCase.expectedErrorText)
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
			}

			recordedLevels := make([]zapcore.Level, 0, observerLogs.Len())
			for _, entry := range observerLogs.All() {
				recordedLevels = append(recordedLevels, entry.Level)
			}
			require.Equal(testInstance, testCase.expectedLevels, recordedLevels)

			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, execshell.CommandGit, recordingRunner.recordedCommands[0].Name)
		})
	}
}

func TestShellExecutorExecutionErrorUnwrapsCause(testInstance *testing.T) {
	runnerFailure := errors.New("executable not found")
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{executionError: runnerFailure}, false)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{})
	require.ErrorIs(testInstance, executionError, runnerFailure)

	var commandExecutionError execshell.CommandExecutionError
	require.ErrorAs(testInstance, executionError, &commandExecutionError)
	require.Equal(testInstance, execshell.CommandGit, commandExecutionError.Command.Name)
}

func TestShellExecutorHumanReadableLogging(testInstance *testing.T) {
	observerCore, observerLogs := observer.New(zap.DebugLevel)
	recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 0}}

	shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner, true)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{
		Arguments:        []string{"diff", "--name-only", "origin/master..origin/feature"},
		WorkingDirectory: "/workspace/repo",
	})
	require.NoError(testInstance, executionError)

	messages := make([]string, 0, observerLogs.Len())
	for _, entry := range observerLogs.All() {
		require.Equal(testInstance, zapcore.InfoLevel, entry.Level)
		messages = append(messages, entry.Message)
	}
	require.Equal(testInstance, []string{
		"Listing files changed in origin/master..origin/feature within /workspace/repo",
		"Listed files changed in origin/master..origin/feature within /workspace/repo",
	}, messages)
}
