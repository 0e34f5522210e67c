package changes

import (
	"strings"
	"time"

	"github.com/temirov/changetree/internal/pathtree"
	"github.com/temirov/changetree/internal/report"
)

const (
	defaultRemoteNameConstant                = "origin"
	defaultBaseBranchConstant                = "main"
	defaultMaxParallelReadsConstant          = 8
	defaultGitTimeoutConstant                = 2 * time.Minute
	configurationRemoteKeyConstant           = "remote"
	configurationBaseBranchKeyConstant       = "base_branch"
	configurationFetchKeyConstant            = "fetch"
	configurationContentsKeyConstant         = "include_contents"
	configurationContentsFromKeyConstant     = "contents_from"
	configurationTopDirectoryKeyConstant     = "label_with_top_directory"
	configurationRootLabelKeyConstant        = "root_label"
	configurationLabelModeKeyConstant        = "root_label_mode"
	configurationEmptySegmentsKeyConstant    = "empty_segments"
	configurationFormatKeyConstant           = "format"
	configurationOutputKeyConstant           = "output"
	configurationCopyKeyConstant             = "copy"
	configurationParallelReadsKeyConstant    = "max_parallel_reads"
	configurationWorkingDirectoryKeyConstant = "working_directory"
	configurationGitTimeoutKeyConstant       = "git_timeout"
	configurationCountTokensKeyConstant      = "count_tokens"
	configurationTokenEncodingKeyConstant    = "token_encoding"
	configurationKeySeparatorConstant        = "."
)

// CommandConfiguration captures configuration values for the diff command.
type CommandConfiguration struct {
	RemoteName            string                      `mapstructure:"remote"`
	BaseBranch            string                      `mapstructure:"base_branch"`
	Fetch                 bool                        `mapstructure:"fetch"`
	IncludeContents       bool                        `mapstructure:"include_contents"`
	ContentsFrom          string                      `mapstructure:"contents_from"`
	LabelWithTopDirectory bool                        `mapstructure:"label_with_top_directory"`
	RootLabel             string                      `mapstructure:"root_label"`
	RootLabelMode         pathtree.RootLabelMode      `mapstructure:"root_label_mode"`
	EmptySegments         pathtree.EmptySegmentPolicy `mapstructure:"empty_segments"`
	Format                string                      `mapstructure:"format"`
	OutputPath            string                      `mapstructure:"output"`
	CopyToClipboard       bool                        `mapstructure:"copy"`
	MaxParallelReads      int                         `mapstructure:"max_parallel_reads"`
	WorkingDirectory      string                      `mapstructure:"working_directory"`
	GitTimeout            time.Duration               `mapstructure:"git_timeout"`
	CountTokens           bool                        `mapstructure:"count_tokens"`
	TokenEncoding         string                      `mapstructure:"token_encoding"`
}

// DefaultCommandConfiguration provides baseline configuration values for the diff command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:            defaultRemoteNameConstant,
		BaseBranch:            defaultBaseBranchConstant,
		Fetch:                 true,
		IncludeContents:       true,
		ContentsFrom:          string(ContentSourceHead),
		LabelWithTopDirectory: false,
		RootLabel:             "",
		RootLabelMode:         pathtree.RootLabelModeLiteral,
		EmptySegments:         pathtree.EmptySegmentPolicySkip,
		Format:                string(report.FormatMarkdown),
		OutputPath:            "",
		CopyToClipboard:       false,
		MaxParallelReads:      defaultMaxParallelReadsConstant,
		WorkingDirectory:      "",
		GitTimeout:            defaultGitTimeoutConstant,
		CountTokens:           false,
		TokenEncoding:         report.DefaultTokenEncoding,
	}
}

// DefaultConfigurationValues produces Viper defaults for the diff command beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationRemoteKeyConstant:           defaults.RemoteName,
		prefix + configurationBaseBranchKeyConstant:       defaults.BaseBranch,
		prefix + configurationFetchKeyConstant:            defaults.Fetch,
		prefix + configurationContentsKeyConstant:         defaults.IncludeContents,
		prefix + configurationContentsFromKeyConstant:     defaults.ContentsFrom,
		prefix + configurationTopDirectoryKeyConstant:     defaults.LabelWithTopDirectory,
		prefix + configurationRootLabelKeyConstant:        defaults.RootLabel,
		prefix + configurationLabelModeKeyConstant:        string(defaults.RootLabelMode),
		prefix + configurationEmptySegmentsKeyConstant:    string(defaults.EmptySegments),
		prefix + configurationFormatKeyConstant:           defaults.Format,
		prefix + configurationOutputKeyConstant:           defaults.OutputPath,
		prefix + configurationCopyKeyConstant:             defaults.CopyToClipboard,
		prefix + configurationParallelReadsKeyConstant:    defaults.MaxParallelReads,
		prefix + configurationWorkingDirectoryKeyConstant: defaults.WorkingDirectory,
		prefix + configurationGitTimeoutKeyConstant:       defaults.GitTimeout.String(),
		prefix + configurationCountTokensKeyConstant:      defaults.CountTokens,
		prefix + configurationTokenEncodingKeyConstant:    defaults.TokenEncoding,
	}
}

// Sanitize trims string values and restores defaults for blank or out-of-range settings.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.RemoteName = valueOrDefault(configuration.RemoteName, defaults.RemoteName)
	sanitized.BaseBranch = valueOrDefault(configuration.BaseBranch, defaults.BaseBranch)
	sanitized.Format = strings.ToLower(valueOrDefault(configuration.Format, defaults.Format))
	sanitized.ContentsFrom = strings.ToLower(valueOrDefault(configuration.ContentsFrom, defaults.ContentsFrom))
	sanitized.TokenEncoding = valueOrDefault(configuration.TokenEncoding, defaults.TokenEncoding)
	sanitized.RootLabel = strings.TrimSpace(configuration.RootLabel)
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	sanitized.WorkingDirectory = strings.TrimSpace(configuration.WorkingDirectory)

	if len(sanitized.RootLabelMode) == 0 {
		sanitized.RootLabelMode = defaults.RootLabelMode
	}
	if len(sanitized.EmptySegments) == 0 {
		sanitized.EmptySegments = defaults.EmptySegments
	}
	if sanitized.MaxParallelReads <= 0 {
		sanitized.MaxParallelReads = defaults.MaxParallelReads
	}
	if sanitized.GitTimeout < 0 {
		sanitized.GitTimeout = 0
	}

	return sanitized
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
