package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/changetree/internal/changes"
	"github.com/temirov/changetree/internal/outline"
	"github.com/temirov/changetree/internal/utils"
	flagutils "github.com/temirov/changetree/internal/utils/flags"
	pathutils "github.com/temirov/changetree/internal/utils/path"
)

const (
	applicationNameConstant                 = "changetree"
	applicationShortDescriptionConstant     = "Render changed file paths as an indented tree"
	applicationLongDescriptionConstant      = "changetree turns flat lists of slash-delimited paths, typed or taken from a git branch diff, into an indented outline and review bundles."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	versionFlagConstant                     = "--version"
	versionOutputTemplateConstant           = "%s version: %s\n"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	treeConfigurationKeyConstant            = "tree"
	diffConfigurationKeyConstant            = "diff"
	environmentPrefixConstant               = "CHANGETREE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	runIdentifierFieldConstant              = "run_id"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationSearchPathConstant     = "~/.changetree"
	argumentTerminatorConstant              = "--"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tree   outline.CommandConfiguration   `mapstructure:"tree"`
	Diff   changes.CommandConfiguration   `mapstructure:"diff"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	runIdentifier          string
	commandContextAccessor utils.CommandContextAccessor
	toggleRegistry         *flagutils.ToggleRegistry
	homeExpander           *pathutils.HomeExpander
	runIdentifierGenerator func() string
	versionResolver        func(context.Context) string
	exitFunction           func(int)
	versionOutput          io.Writer
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	homeExpander := pathutils.NewHomeExpander()
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, homeExpander.Expand(userConfigurationSearchPathConstant)},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		toggleRegistry:         flagutils.NewToggleRegistry(),
		homeExpander:           homeExpander,
		runIdentifierGenerator: uuid.NewString,
		versionResolver:        defaultVersionResolver,
		exitFunction:           os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logLevelFlagValue, logLevelFlagNameConstant, string(utils.LogLevelInfo), utils.LogLevelChoices(), logLevelFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logFormatFlagValue, logFormatFlagNameConstant, string(utils.LogFormatConsole), utils.LogFormatChoices(), logFormatFlagUsageConstant)

	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		workingDirectory = ""
	}

	treeBuilder := outline.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() outline.CommandConfiguration {
			return application.configuration.Tree
		},
		ToggleRegistry:   application.toggleRegistry,
		HomeExpander:     homeExpander,
		WorkingDirectory: workingDirectory,
	}
	treeCommand, treeBuildError := treeBuilder.Build()
	if treeBuildError == nil {
		cobraCommand.AddCommand(treeCommand)
	}

	diffBuilder := changes.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() changes.CommandConfiguration {
			return application.configuration.Diff
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ToggleRegistry:               application.toggleRegistry,
		HomeExpander:                 homeExpander,
		WorkingDirectory:             workingDirectory,
	}
	diffCommand, diffBuildError := diffBuilder.Build()
	if diffBuildError == nil {
		cobraCommand.AddCommand(diffCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the command hierarchy with the process arguments and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy with arguments. A --version
// flag ahead of any "--" prints the version and exits.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	if requestsVersion(arguments) {
		versionOutput := application.versionOutput
		if versionOutput == nil {
			versionOutput = os.Stdout
		}
		fmt.Fprintf(versionOutput, versionOutputTemplateConstant, applicationNameConstant, application.versionResolver(application.rootCommand.Context()))
		application.exitFunction(0)
		return nil
	}

	normalizedArguments := application.toggleRegistry.NormalizeArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range outline.DefaultConfigurationValues(treeConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range changes.DefaultConfigurationValues(diffConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	configurationFilePath := application.homeExpander.Resolve(application.configurationFilePath, "")
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.runIdentifier = application.runIdentifierGenerator()
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(runIdentifierFieldConstant, application.runIdentifier),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithRunIdentifier(updatedContext, application.runIdentifier)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func requestsVersion(arguments []string) bool {
	terminatorIndex := slices.Index(arguments, argumentTerminatorConstant)
	if terminatorIndex >= 0 {
		arguments = arguments[:terminatorIndex]
	}
	return slices.Contains(arguments, versionFlagConstant)
}
