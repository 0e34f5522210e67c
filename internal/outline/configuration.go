package outline

import (
	"strings"

	"github.com/temirov/changetree/internal/pathtree"
	"github.com/temirov/changetree/internal/report"
)

const (
	configurationRootLabelKeyConstant     = "root_label"
	configurationEmptySegmentsKeyConstant = "empty_segments"
	configurationLabelModeKeyConstant     = "root_label_mode"
	configurationFormatKeyConstant        = "format"
	configurationOutputKeyConstant        = "output"
	configurationCopyKeyConstant          = "copy"
	configurationKeySeparatorConstant     = "."
)

// CommandConfiguration captures configuration values for the tree command.
type CommandConfiguration struct {
	RootLabel       string                      `mapstructure:"root_label"`
	EmptySegments   pathtree.EmptySegmentPolicy `mapstructure:"empty_segments"`
	RootLabelMode   pathtree.RootLabelMode      `mapstructure:"root_label_mode"`
	Format          string                      `mapstructure:"format"`
	OutputPath      string                      `mapstructure:"output"`
	CopyToClipboard bool                        `mapstructure:"copy"`
}

// DefaultCommandConfiguration provides baseline configuration values for the tree command.
// A blank root label falls back to the working directory name at run time.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RootLabel:       "",
		EmptySegments:   pathtree.EmptySegmentPolicySkip,
		RootLabelMode:   pathtree.RootLabelModeLiteral,
		Format:          string(report.FormatText),
		OutputPath:      "",
		CopyToClipboard: false,
	}
}

// DefaultConfigurationValues produces Viper defaults for the tree command beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationRootLabelKeyConstant:     defaults.RootLabel,
		prefix + configurationEmptySegmentsKeyConstant: string(defaults.EmptySegments),
		prefix + configurationLabelModeKeyConstant:     string(defaults.RootLabelMode),
		prefix + configurationFormatKeyConstant:        defaults.Format,
		prefix + configurationOutputKeyConstant:        defaults.OutputPath,
		prefix + configurationCopyKeyConstant:          defaults.CopyToClipboard,
	}
}

// Sanitize trims string values and restores defaults for blank settings.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.RootLabel = strings.TrimSpace(configuration.RootLabel)
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	sanitized.Format = strings.ToLower(strings.TrimSpace(configuration.Format))
	if len(sanitized.Format) == 0 {
		sanitized.Format = defaults.Format
	}
	if len(sanitized.EmptySegments) == 0 {
		sanitized.EmptySegments = defaults.EmptySegments
	}
	if len(sanitized.RootLabelMode) == 0 {
		sanitized.RootLabelMode = defaults.RootLabelMode
	}

	return sanitized
}
