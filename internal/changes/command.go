package changes

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/changetree/internal/clipboard"
	"github.com/temirov/changetree/internal/execshell"
	"github.com/temirov/changetree/internal/gitrepo"
	"github.com/temirov/changetree/internal/pathtree"
	"github.com/temirov/changetree/internal/report"
	"github.com/temirov/changetree/internal/utils"
	flagutils "github.com/temirov/changetree/internal/utils/flags"
	pathutils "github.com/temirov/changetree/internal/utils/path"
)

const (
	commandUseConstant                      = "diff <head-branch>"
	commandShortDescriptionConstant         = "Bundle the files changed on a branch as a path tree"
	commandLongDescriptionConstant          = "diff lists the files changed between <remote>/<base> and <remote>/<head-branch>, renders them as an outline rooted at the repository name and, by default, appends each file's contents in a Markdown bundle."
	commandExampleConstant                  = "changetree diff feature/login --base main --remote origin --output branch_changes_output.txt"
	commandExecutionErrorTemplateConstant   = "diff failed: %w"
	headBranchArgumentIndexConstant         = 0
	flagBaseNameConstant                    = "base"
	flagBaseDescriptionConstant             = "Base branch on the remote to compare against"
	flagRemoteNameConstant                  = "remote"
	flagRemoteDescriptionConstant           = "Remote holding both branches"
	flagFetchNameConstant                   = "fetch"
	flagFetchDescriptionConstant            = "Run git fetch --all --tags --prune before comparing"
	flagIncludeContentsNameConstant         = "include-contents"
	flagIncludeContentsDescriptionConstant  = "Append the contents of each changed file"
	flagContentsFromNameConstant            = "contents-from"
	flagContentsFromDescriptionConstant     = "Read file contents from the head branch or the working tree"
	flagTopDirectoryNameConstant            = "label-with-top-directory"
	flagTopDirectoryDescriptionConstant     = "Suffix the root label with the most common top-level directory of the changes"
	flagRootLabelNameConstant               = "root-label"
	flagRootLabelDescriptionConstant        = "Root label to use instead of the repository name"
	flagRootLabelModeNameConstant           = "root-label-mode"
	flagRootLabelModeDescriptionConstant    = "How separators inside the root label are treated"
	flagEmptySegmentsNameConstant           = "empty-segments"
	flagEmptySegmentsDescriptionConstant    = "How empty path segments are handled"
	flagFormatNameConstant                  = "format"
	flagFormatDescriptionConstant           = "Output format"
	flagOutputNameConstant                  = "output"
	flagOutputDescriptionConstant           = "Write the report to this file instead of standard output"
	flagCopyNameConstant                    = "copy"
	flagCopyDescriptionConstant             = "Copy the report to the system clipboard"
	flagWorkingDirectoryNameConstant        = "working-directory"
	flagWorkingDirectoryDescriptionConstant = "Directory inside the repository to run git in"
	flagParallelReadsNameConstant           = "max-parallel-reads"
	flagParallelReadsDescriptionConstant    = "Maximum number of files read concurrently"
	flagGitTimeoutNameConstant              = "git-timeout"
	flagGitTimeoutDescriptionConstant       = "Time limit for the git commands, 0 disables it"
	flagCountTokensNameConstant             = "count-tokens"
	flagCountTokensDescriptionConstant      = "Estimate the bundle size in model tokens"
	flagTokenEncodingNameConstant           = "token-encoding"
	flagTokenEncodingDescriptionConstant    = "tiktoken encoding used by --count-tokens"
	tokenCounterUnavailableLogMessage       = "token counter unavailable"
	tokenEncodingLogFieldConstant           = "encoding"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// TokenCounterFactory loads a token counter for the named encoding.
type TokenCounterFactory func(encodingName string) (report.TokenCounter, error)

// CommandBuilder assembles the diff command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() CommandConfiguration
	HumanReadableLoggingProvider func() bool
	GitExecutor                  gitrepo.GitExecutor
	Clipboard                    clipboard.Copier
	TokenCounterFactory          TokenCounterFactory
	FileReaderFactory            FileReaderFactory
	ToggleRegistry               *flagutils.ToggleRegistry
	HomeExpander                 *pathutils.HomeExpander
	WorkingDirectory             string
}

// Build constructs the diff command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.ExactArgs(1),
		RunE:    builder.run,
	}

	defaults := DefaultCommandConfiguration()
	toggleRegistry := builder.resolveToggleRegistry()
	flagSet := command.Flags()

	flagSet.String(flagBaseNameConstant, defaults.BaseBranch, flagBaseDescriptionConstant)
	flagSet.String(flagRemoteNameConstant, defaults.RemoteName, flagRemoteDescriptionConstant)
	toggleRegistry.AddToggleFlag(flagSet, nil, flagFetchNameConstant, "", defaults.Fetch, flagFetchDescriptionConstant)
	toggleRegistry.AddToggleFlag(flagSet, nil, flagIncludeContentsNameConstant, "", defaults.IncludeContents, flagIncludeContentsDescriptionConstant)
	flagutils.AddChoiceFlag(flagSet, nil, flagContentsFromNameConstant, defaults.ContentsFrom, ContentSourceChoices(), flagContentsFromDescriptionConstant)
	toggleRegistry.AddToggleFlag(flagSet, nil, flagTopDirectoryNameConstant, "", defaults.LabelWithTopDirectory, flagTopDirectoryDescriptionConstant)
	flagSet.String(flagRootLabelNameConstant, "", flagRootLabelDescriptionConstant)
	flagutils.AddChoiceFlag(flagSet, nil, flagRootLabelModeNameConstant, string(defaults.RootLabelMode), pathtree.RootLabelModeChoices(), flagRootLabelModeDescriptionConstant)
	flagutils.AddChoiceFlag(flagSet, nil, flagEmptySegmentsNameConstant, string(defaults.EmptySegments), pathtree.EmptySegmentPolicyChoices(), flagEmptySegmentsDescriptionConstant)
	flagutils.AddChoiceFlag(flagSet, nil, flagFormatNameConstant, defaults.Format, report.FormatNames(report.BundleFormats()), flagFormatDescriptionConstant)
	flagSet.StringP(flagOutputNameConstant, "o", "", flagOutputDescriptionConstant)
	toggleRegistry.AddToggleFlag(flagSet, nil, flagCopyNameConstant, "c", defaults.CopyToClipboard, flagCopyDescriptionConstant)
	flagSet.String(flagWorkingDirectoryNameConstant, "", flagWorkingDirectoryDescriptionConstant)
	flagSet.Int(flagParallelReadsNameConstant, defaults.MaxParallelReads, flagParallelReadsDescriptionConstant)
	flagSet.Duration(flagGitTimeoutNameConstant, defaults.GitTimeout, flagGitTimeoutDescriptionConstant)
	toggleRegistry.AddToggleFlag(flagSet, nil, flagCountTokensNameConstant, "", defaults.CountTokens, flagCountTokensDescriptionConstant)
	flagSet.String(flagTokenEncodingNameConstant, defaults.TokenEncoding, flagTokenEncodingDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration, configurationError := builder.parseConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	logger := builder.resolveLogger()
	options, optionsError := builder.buildOptions(command, arguments[headBranchArgumentIndexConstant], configuration)
	if optionsError != nil {
		return optionsError
	}

	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}
	inspector, inspectorError := gitrepo.NewRepositoryInspector(gitExecutor)
	if inspectorError != nil {
		return inspectorError
	}

	copier := builder.Clipboard
	if copier == nil {
		copier = clipboard.NewService()
	}
	publisher, publisherError := report.NewPublisher(command.OutOrStdout(), copier, logger)
	if publisherError != nil {
		return publisherError
	}

	service, serviceError := NewService(ServiceDependencies{
		Inspector:         inspector,
		Publisher:         publisher,
		FileReaderFactory: builder.FileReaderFactory,
		TokenCounter:      builder.resolveTokenCounter(logger, configuration),
		StandardOutput:    command.OutOrStdout(),
		Logger:            logger,
	})
	if serviceError != nil {
		return serviceError
	}

	if _, runError := service.Run(command.Context(), options); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

// parseConfiguration layers changed flags over the loaded configuration.
func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := builder.resolveConfiguration()
	flagSet := command.Flags()

	stringOverrides := map[string]*string{
		flagBaseNameConstant:             &configuration.BaseBranch,
		flagRemoteNameConstant:           &configuration.RemoteName,
		flagRootLabelNameConstant:        &configuration.RootLabel,
		flagFormatNameConstant:           &configuration.Format,
		flagContentsFromNameConstant:     &configuration.ContentsFrom,
		flagOutputNameConstant:           &configuration.OutputPath,
		flagWorkingDirectoryNameConstant: &configuration.WorkingDirectory,
		flagTokenEncodingNameConstant:    &configuration.TokenEncoding,
	}
	for flagName, target := range stringOverrides {
		if flagSet.Changed(flagName) {
			*target = flagSet.Lookup(flagName).Value.String()
		}
	}

	toggleOverrides := map[string]*bool{
		flagFetchNameConstant:           &configuration.Fetch,
		flagIncludeContentsNameConstant: &configuration.IncludeContents,
		flagTopDirectoryNameConstant:    &configuration.LabelWithTopDirectory,
		flagCopyNameConstant:            &configuration.CopyToClipboard,
		flagCountTokensNameConstant:     &configuration.CountTokens,
	}
	for flagName, target := range toggleOverrides {
		if flagSet.Changed(flagName) {
			*target, _ = flagSet.GetBool(flagName)
		}
	}

	if flagSet.Changed(flagRootLabelModeNameConstant) {
		configuration.RootLabelMode = pathtree.RootLabelMode(flagSet.Lookup(flagRootLabelModeNameConstant).Value.String())
	}
	if flagSet.Changed(flagEmptySegmentsNameConstant) {
		configuration.EmptySegments = pathtree.EmptySegmentPolicy(flagSet.Lookup(flagEmptySegmentsNameConstant).Value.String())
	}
	if flagSet.Changed(flagParallelReadsNameConstant) {
		configuration.MaxParallelReads, _ = flagSet.GetInt(flagParallelReadsNameConstant)
	}
	if flagSet.Changed(flagGitTimeoutNameConstant) {
		configuration.GitTimeout, _ = flagSet.GetDuration(flagGitTimeoutNameConstant)
	}

	return configuration.Sanitize(), nil
}

func (builder *CommandBuilder) buildOptions(command *cobra.Command, headBranch string, configuration CommandConfiguration) (Options, error) {
	format, formatError := report.ParseFormat(configuration.Format, report.BundleFormats())
	if formatError != nil {
		return Options{}, formatError
	}
	contentSource, contentSourceError := ParseContentSource(configuration.ContentsFrom)
	if contentSourceError != nil {
		return Options{}, contentSourceError
	}

	treeOptions := pathtree.Options{EmptySegments: configuration.EmptySegments, RootLabel: configuration.RootLabelMode}
	if _, builderError := pathtree.NewBuilder(treeOptions); builderError != nil {
		return Options{}, builderError
	}

	homeExpander := builder.resolveHomeExpander()
	workingDirectory := homeExpander.Resolve(configuration.WorkingDirectory, builder.WorkingDirectory)
	if len(workingDirectory) == 0 {
		workingDirectory = builder.WorkingDirectory
	}

	runIdentifier, _ := utils.NewCommandContextAccessor().RunIdentifier(command.Context())

	return Options{
		WorkingDirectory: workingDirectory,
		Comparison: gitrepo.BranchComparison{
			Remote:     configuration.RemoteName,
			BaseBranch: configuration.BaseBranch,
			HeadBranch: strings.TrimSpace(headBranch),
		},
		Fetch:                 configuration.Fetch,
		IncludeContents:       configuration.IncludeContents,
		ContentSource:         contentSource,
		LabelWithTopDirectory: configuration.LabelWithTopDirectory,
		RootLabel:             configuration.RootLabel,
		TreeOptions:           treeOptions,
		MaxParallelReads:      configuration.MaxParallelReads,
		GitTimeout:            configuration.GitTimeout,
		RunIdentifier:         runIdentifier,
		Publish: report.PublishOptions{
			Format:          format,
			OutputPath:      homeExpander.Resolve(configuration.OutputPath, ""),
			CopyToClipboard: configuration.CopyToClipboard,
		},
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveToggleRegistry() *flagutils.ToggleRegistry {
	if builder.ToggleRegistry == nil {
		builder.ToggleRegistry = flagutils.NewToggleRegistry()
	}
	return builder.ToggleRegistry
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander == nil {
		builder.HomeExpander = pathutils.NewHomeExpander()
	}
	return builder.HomeExpander
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
}

// resolveTokenCounter loads a counter only when counting is enabled. A load
// failure is logged and disables counting for the run.
func (builder *CommandBuilder) resolveTokenCounter(logger *zap.Logger, configuration CommandConfiguration) report.TokenCounter {
	if !configuration.CountTokens {
		return nil
	}

	factory := builder.TokenCounterFactory
	if factory == nil {
		factory = func(encodingName string) (report.TokenCounter, error) {
			return report.NewTiktokenCounter(encodingName)
		}
	}

	tokenCounter, counterError := factory(configuration.TokenEncoding)
	if counterError != nil {
		logger.Warn(tokenCounterUnavailableLogMessage, zap.String(tokenEncodingLogFieldConstant, configuration.TokenEncoding), zap.Error(counterError))
		return nil
	}
	return tokenCounter
}
