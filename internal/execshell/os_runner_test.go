package execshell_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/temirov/changetree/internal/execshell"
)

const (
	helperProcessEnvironmentKeyConstant  = "CHANGETREE_EXECSHELL_HELPER_PROCESS"
	helperProcessTestNameConstant        = "TestHelperProcess"
	helperGreetingEnvironmentKeyConstant = "CHANGETREE_HELPER_GREETING"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestHelperProcess is re-executed by the runner tests as a child process.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperProcessEnvironmentKeyConstant) != "1" {
		return
	}

	arguments := os.Args
	for index, argument := range arguments {
		if argument == "--" {
			arguments = arguments[index+1:]
			break
		}
	}

	switch arguments[0] {
	case "echo-stdin":
		_, _ = io.Copy(os.Stdout, os.Stdin)
	case "pwd":
		workingDirectory, _ := os.Getwd()
		fmt.Fprint(os.Stdout, workingDirectory)
	case "env":
		fmt.Fprint(os.Stdout, os.Getenv(helperGreetingEnvironmentKeyConstant))
	case "fail":
		fmt.Fprint(os.Stderr, "helper failure")
		os.Exit(3)
	}
	os.Exit(0)
}

func helperCommand(details execshell.CommandDetails, helperArguments ...string) execshell.ShellCommand {
	arguments := append([]string{"-test.run=" + helperProcessTestNameConstant, "--"}, helperArguments...)
	environment := map[string]string{helperProcessEnvironmentKeyConstant: "1"}
	for key, value := range details.EnvironmentVariables {
		environment[key] = value
	}
	details.Arguments = arguments
	details.EnvironmentVariables = environment
	return execshell.ShellCommand{Name: execshell.CommandName(os.Args[0]), Details: details}
}

func TestOSCommandRunnerRun(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	resolvedDirectory, resolveError := filepath.EvalSymlinks(temporaryDirectory)
	require.NoError(testInstance, resolveError)

	testCases := []struct {
		name             string
		command          execshell.ShellCommand
		expectedOutput   string
		expectedError    string
		expectedExitCode int
	}{
		{
			name:           "standard_input_is_forwarded",
			command:        helperCommand(execshell.CommandDetails{StandardInput: []byte("a/b.txt\nc.txt\n")}, "echo-stdin"),
			expectedOutput: "a/b.txt\nc.txt\n",
		},
		{
			name:           "working_directory_is_applied",
			command:        helperCommand(execshell.CommandDetails{WorkingDirectory: resolvedDirectory}, "pwd"),
			expectedOutput: resolvedDirectory,
		},
		{
			name:           "environment_is_merged",
			command:        helperCommand(execshell.CommandDetails{EnvironmentVariables: map[string]string{helperGreetingEnvironmentKeyConstant: "hello"}}, "env"),
			expectedOutput: "hello",
		},
		{
			name:             "non_zero_exit_is_reported_in_result",
			command:          helperCommand(execshell.CommandDetails{}, "fail"),
			expectedError:    "helper failure",
			expectedExitCode: 3,
		},
	}

	runner := execshell.NewOSCommandRunner()
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executionResult, runError := runner.Run(context.Background(), testCase.command)
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedExitCode, executionResult.ExitCode)
			require.Equal(testInstance, testCase.expectedOutput, executionResult.StandardOutput)
			require.Equal(testInstance, testCase.expectedError, executionResult.StandardError)
		})
	}
}

func TestOSCommandRunnerReportsStartFailure(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(context.Background(), execshell.ShellCommand{Name: execshell.CommandName("changetree-missing-executable")})
	require.Error(testInstance, runError)
}

func TestOSCommandRunnerHonorsCancellation(testInstance *testing.T) {
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(cancelledContext, helperCommand(execshell.CommandDetails{}, "pwd"))
	require.ErrorIs(testInstance, runError, context.Canceled)
}
