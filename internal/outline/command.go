package outline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/changetree/internal/clipboard"
	"github.com/temirov/changetree/internal/pathtree"
	"github.com/temirov/changetree/internal/report"
	"github.com/temirov/changetree/internal/utils"
	flagutils "github.com/temirov/changetree/internal/utils/flags"
	pathutils "github.com/temirov/changetree/internal/utils/path"
)

const (
	commandUseConstant                    = "tree [paths...]"
	commandShortDescriptionConstant       = "Render slash-delimited paths as an indented outline"
	commandLongDescriptionConstant        = "tree arranges the given paths into a hierarchy under a root label and prints one line per node, two spaces per level, with directories suffixed by '/'. Paths come from arguments, --paths-file or standard input ('-' or a pipe)."
	commandExampleConstant                = "git diff --name-only main..feature | changetree tree --root-label grader"
	commandExecutionErrorTemplateConstant = "tree failed: %w"
	fallbackRootLabelConstant             = "."
	pathSeparatorCharactersConstant       = `/\`
	flagRootLabelNameConstant             = "root-label"
	flagRootLabelDescriptionConstant      = "Label of the root node (defaults to the working directory name)"
	flagRootLabelModeNameConstant         = "root-label-mode"
	flagRootLabelModeDescriptionConstant  = "How separators inside the root label are treated"
	flagEmptySegmentsNameConstant         = "empty-segments"
	flagEmptySegmentsDescriptionConstant  = "How empty paths and empty path segments are handled"
	flagFormatNameConstant                = "format"
	flagFormatDescriptionConstant         = "Output format"
	flagOutputNameConstant                = "output"
	flagOutputDescriptionConstant         = "Write the outline to this file instead of standard output"
	flagCopyNameConstant                  = "copy"
	flagCopyDescriptionConstant           = "Copy the outline to the system clipboard"
	flagPathsFileNameConstant             = "paths-file"
	flagPathsFileDescriptionConstant      = "File listing one path per line"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the tree command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	Clipboard             clipboard.Copier
	ToggleRegistry        *flagutils.ToggleRegistry
	HomeExpander          *pathutils.HomeExpander
	WorkingDirectory      string
}

// Build constructs the tree command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.ArbitraryArgs,
		RunE:    builder.run,
	}

	defaults := DefaultCommandConfiguration()
	flagSet := command.Flags()

	flagSet.String(flagRootLabelNameConstant, "", flagRootLabelDescriptionConstant)
	flagutils.AddChoiceFlag(flagSet, nil, flagRootLabelModeNameConstant, string(defaults.RootLabelMode), pathtree.RootLabelModeChoices(), flagRootLabelModeDescriptionConstant)
	flagutils.AddChoiceFlag(flagSet, nil, flagEmptySegmentsNameConstant, string(defaults.EmptySegments), pathtree.EmptySegmentPolicyChoices(), flagEmptySegmentsDescriptionConstant)
	flagutils.AddChoiceFlag(flagSet, nil, flagFormatNameConstant, defaults.Format, report.FormatNames(report.TreeFormats()), flagFormatDescriptionConstant)
	flagSet.StringP(flagOutputNameConstant, "o", "", flagOutputDescriptionConstant)
	builder.resolveToggleRegistry().AddToggleFlag(flagSet, nil, flagCopyNameConstant, "c", defaults.CopyToClipboard, flagCopyDescriptionConstant)
	flagSet.String(flagPathsFileNameConstant, "", flagPathsFileDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.parseConfiguration(command)
	logger := builder.resolveLogger()
	homeExpander := builder.resolveHomeExpander()

	format, formatError := report.ParseFormat(configuration.Format, report.TreeFormats())
	if formatError != nil {
		return formatError
	}

	pathsFile, _ := command.Flags().GetString(flagPathsFileNameConstant)
	source := PathSource{
		PathsFile:         homeExpander.Resolve(pathsFile, ""),
		Arguments:         arguments,
		ReadStandardInput: standardInputIsPiped(command.InOrStdin()),
	}
	paths, sourceError := source.Collect(command.InOrStdin())
	if sourceError != nil {
		return sourceError
	}

	copier := builder.Clipboard
	if copier == nil {
		copier = clipboard.NewService()
	}
	publisher, publisherError := report.NewPublisher(command.OutOrStdout(), copier, logger)
	if publisherError != nil {
		return publisherError
	}

	service, serviceError := NewService(ServiceDependencies{Publisher: publisher, Logger: logger})
	if serviceError != nil {
		return serviceError
	}

	runIdentifier, _ := utils.NewCommandContextAccessor().RunIdentifier(command.Context())
	_, renderError := service.Render(Options{
		Paths:         paths,
		RootLabel:     builder.resolveRootLabel(configuration.RootLabel),
		TreeOptions:   pathtree.Options{EmptySegments: configuration.EmptySegments, RootLabel: configuration.RootLabelMode},
		RunIdentifier: runIdentifier,
		Publish: report.PublishOptions{
			Format:          format,
			OutputPath:      homeExpander.Resolve(configuration.OutputPath, ""),
			CopyToClipboard: configuration.CopyToClipboard,
		},
	})
	if renderError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, renderError)
	}
	return nil
}

// parseConfiguration layers changed flags over the loaded configuration.
func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := builder.resolveConfiguration()
	flagSet := command.Flags()

	if flagSet.Changed(flagRootLabelNameConstant) {
		configuration.RootLabel, _ = flagSet.GetString(flagRootLabelNameConstant)
	}
	if flagSet.Changed(flagRootLabelModeNameConstant) {
		configuration.RootLabelMode = pathtree.RootLabelMode(flagSet.Lookup(flagRootLabelModeNameConstant).Value.String())
	}
	if flagSet.Changed(flagEmptySegmentsNameConstant) {
		configuration.EmptySegments = pathtree.EmptySegmentPolicy(flagSet.Lookup(flagEmptySegmentsNameConstant).Value.String())
	}
	if flagSet.Changed(flagFormatNameConstant) {
		configuration.Format = flagSet.Lookup(flagFormatNameConstant).Value.String()
	}
	if flagSet.Changed(flagOutputNameConstant) {
		configuration.OutputPath, _ = flagSet.GetString(flagOutputNameConstant)
	}
	if flagSet.Changed(flagCopyNameConstant) {
		configuration.CopyToClipboard, _ = flagSet.GetBool(flagCopyNameConstant)
	}

	return configuration.Sanitize()
}

// resolveRootLabel falls back to the working directory name.
func (builder *CommandBuilder) resolveRootLabel(configuredLabel string) string {
	if len(configuredLabel) > 0 {
		return configuredLabel
	}
	if len(builder.WorkingDirectory) == 0 {
		return fallbackRootLabelConstant
	}
	// The base of a filesystem root is a bare separator.
	directoryName := filepath.Base(builder.WorkingDirectory)
	if len(strings.Trim(directoryName, pathSeparatorCharactersConstant)) == 0 {
		return fallbackRootLabelConstant
	}
	return directoryName
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
