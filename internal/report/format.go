package report

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	formatTextStringConstant          = "text"
	formatMarkdownStringConstant      = "markdown"
	formatJSONStringConstant          = "json"
	formatYAMLStringConstant          = "yaml"
	unsupportedFormatMessageConstant  = "unsupported output format"
	unsupportedFormatTemplateConstant = "%w: %q (expected one of %s)"
	formatChoicesSeparatorConstant    = ", "
)

// Format names an output encoding.
type Format string

// Supported output formats.
const (
	FormatText     Format = Format(formatTextStringConstant)
	FormatMarkdown Format = Format(formatMarkdownStringConstant)
	FormatJSON     Format = Format(formatJSONStringConstant)
	FormatYAML     Format = Format(formatYAMLStringConstant)
)

// ErrUnsupportedFormat indicates a format name outside the accepted set.
var ErrUnsupportedFormat = errors.New(unsupportedFormatMessageConstant)

// TreeFormats lists the formats accepted by the tree command.
func TreeFormats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML}
}

// BundleFormats lists the formats accepted by the diff command.
func BundleFormats() []Format {
	return []Format{FormatMarkdown, FormatText, FormatJSON, FormatYAML}
}

// IncludesFileContents reports whether documents rendered in the format carry
// collected file contents.
func (format Format) IncludesFileContents() bool {
	switch format {
	case FormatMarkdown, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// FormatNames converts formats to their string names.
func FormatNames(formats []Format) []string {
	names := make([]string, 0, len(formats))
	for _, format := range formats {
		names = append(names, string(format))
	}
	return names
}

// ParseFormat resolves a case-insensitive format name against the accepted set.
func ParseFormat(value string, accepted []Format) (Format, error) {
	candidate := Format(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(accepted, candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedFormat, value, strings.Join(FormatNames(accepted), formatChoicesSeparatorConstant))
}
