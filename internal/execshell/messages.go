package execshell

import (
	"fmt"
	"slices"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
	messageStageCount
)

const (
	workingDirectorySuffixTemplateConstant = " (in %s)"
	standardErrorSuffixTemplateConstant    = ": %s"
	diffSubjectTemplateConstant            = "%s within %s"
	fetchSubjectTemplateConstant           = "%s in %s"
	showSubjectTemplateConstant            = "%s in %s"
	flagPrefixConstant                     = "-"
	unknownFailureMessageConstant          = "unknown error"
	defaultWorkingDirectoryLabelConstant   = "current directory"
	fallbackUnknownValueLabelConstant      = "unknown"
	allRemotesLabelConstant                = "all remotes"
	gitRevParseSubcommandConstant          = "rev-parse"
	gitShowTopLevelFlagConstant            = "--show-toplevel"
	gitDiffSubcommandConstant              = "diff"
	gitFetchSubcommandConstant             = "fetch"
	gitAllRemotesFlagConstant              = "--all"
	gitShowSubcommandConstant              = "show"
)

// messageTemplates holds one format per stage. Start and success formats take
// the subject, failure adds the exit code and a stderr suffix, and execution
// failure adds the cause.
type messageTemplates [messageStageCount]string

var (
	genericMessageTemplates = messageTemplates{
		"Running %s",
		"Completed %s",
		"%s failed with exit code %d%s",
		"%s failed: %s",
	}
	gitTopLevelMessageTemplates = messageTemplates{
		"Locating repository root from %s",
		"Located repository root from %s",
		"Failed to locate repository root from %s (exit code %d%s)",
		"Unable to locate repository root from %s: %s",
	}
	gitDiffMessageTemplates = messageTemplates{
		"Listing files changed in %s",
		"Listed files changed in %s",
		"Failed to list files changed in %s (exit code %d%s)",
		"Unable to list files changed in %s: %s",
	}
	gitFetchMessageTemplates = messageTemplates{
		"Fetching from %s",
		"Fetched from %s",
		"Failed to fetch from %s (exit code %d%s)",
		"Unable to fetch from %s: %s",
	}
	gitShowMessageTemplates = messageTemplates{
		"Reading %s",
		"Read %s",
		"Failed to read %s (exit code %d%s)",
		"Unable to read %s: %s",
	}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	templates, subject := formatter.describe(command)
	switch stage {
	case messageStageStart, messageStageSuccess:
		return fmt.Sprintf(templates[stage], subject)
	case messageStageFailure:
		return fmt.Sprintf(templates[stage], subject, result.ExitCode, standardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates[stage], subject, describeFailure(failure))
	default:
		return ""
	}
}

// describe picks the templates for command and the subject they are filled with.
func (formatter CommandMessageFormatter) describe(command ShellCommand) (messageTemplates, string) {
	arguments := command.Details.Arguments
	if command.Name != CommandGit || len(arguments) == 0 {
		return genericMessageTemplates, commandLabel(command)
	}

	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		workingDirectory = defaultWorkingDirectoryLabelConstant
	}

	switch strings.TrimSpace(arguments[0]) {
	case gitRevParseSubcommandConstant:
		if slices.Contains(arguments, gitShowTopLevelFlagConstant) {
			return gitTopLevelMessageTemplates, workingDirectory
		}
	case gitDiffSubcommandConstant:
		operands := nonFlagArguments(arguments[1:])
		revisionRange := fallbackUnknownValueLabelConstant
		if len(operands) > 0 {
			revisionRange = operands[len(operands)-1]
		}
		return gitDiffMessageTemplates, fmt.Sprintf(diffSubjectTemplateConstant, revisionRange, workingDirectory)
	case gitFetchSubcommandConstant:
		source := allRemotesLabelConstant
		if operands := nonFlagArguments(arguments[1:]); len(operands) > 0 && !slices.Contains(arguments, gitAllRemotesFlagConstant) {
			source = operands[0]
		}
		return gitFetchMessageTemplates, fmt.Sprintf(fetchSubjectTemplateConstant, source, workingDirectory)
	case gitShowSubcommandConstant:
		if operands := nonFlagArguments(arguments[1:]); len(operands) > 0 {
			return gitShowMessageTemplates, fmt.Sprintf(showSubjectTemplateConstant, operands[len(operands)-1], workingDirectory)
		}
	}
	return genericMessageTemplates, commandLabel(command)
}

func commandLabel(command ShellCommand) string {
	label := describeCommand(command)
	if workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(workingDirectory) > 0 {
		label += fmt.Sprintf(workingDirectorySuffixTemplateConstant, workingDirectory)
	}
	return label
}

func standardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func nonFlagArguments(arguments []string) []string {
	operands := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		operands = append(operands, trimmedArgument)
	}
	return operands
}
