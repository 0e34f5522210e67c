package pathtree

import (
	"errors"
	"fmt"
	"strings"
)

const (
	emptySegmentPolicySkipStringConstant   = "skip"
	emptySegmentPolicyRejectStringConstant = "reject"
	rootLabelModeLiteralStringConstant     = "literal"
	rootLabelModeNestedStringConstant      = "nested"
	unsupportedEmptySegmentPolicyMessage   = "unsupported empty segment policy"
	unsupportedRootLabelModeMessage        = "unsupported root label mode"
	unsupportedOptionValueTemplateConstant = "%w: %q"
)

// EmptySegmentPolicy selects how empty paths and empty path segments are handled.
type EmptySegmentPolicy string

// Supported empty segment policies.
const (
	// EmptySegmentPolicySkip drops empty segments and ignores paths left without segments.
	EmptySegmentPolicySkip EmptySegmentPolicy = EmptySegmentPolicy(emptySegmentPolicySkipStringConstant)

	// EmptySegmentPolicyReject fails the build on the first empty path or empty segment.
	EmptySegmentPolicyReject EmptySegmentPolicy = EmptySegmentPolicy(emptySegmentPolicyRejectStringConstant)
)

// RootLabelMode selects how separators inside the root label are interpreted.
type RootLabelMode string

// Supported root label modes.
const (
	// RootLabelModeLiteral keeps the label as a single node name, separators included.
	RootLabelModeLiteral RootLabelMode = RootLabelMode(rootLabelModeLiteralStringConstant)

	// RootLabelModeNested splits the label into a chain of directory nodes.
	RootLabelModeNested RootLabelMode = RootLabelMode(rootLabelModeNestedStringConstant)
)

// ErrUnsupportedEmptySegmentPolicy indicates an unknown EmptySegmentPolicy value.
var ErrUnsupportedEmptySegmentPolicy = errors.New(unsupportedEmptySegmentPolicyMessage)

// ErrUnsupportedRootLabelMode indicates an unknown RootLabelMode value.
var ErrUnsupportedRootLabelMode = errors.New(unsupportedRootLabelModeMessage)

// Options configures a Builder. The zero value selects the defaults.
type Options struct {
	EmptySegments EmptySegmentPolicy
	RootLabel     RootLabelMode
}

// DefaultOptions returns the skip/literal configuration.
func DefaultOptions() Options {
	return Options{
		EmptySegments: EmptySegmentPolicySkip,
		RootLabel:     RootLabelModeLiteral,
	}
}

// EmptySegmentPolicyChoices lists the accepted empty segment policy names.
func EmptySegmentPolicyChoices() []string {
	return []string{emptySegmentPolicySkipStringConstant, emptySegmentPolicyRejectStringConstant}
}

// RootLabelModeChoices lists the accepted root label mode names.
func RootLabelModeChoices() []string {
	return []string{rootLabelModeLiteralStringConstant, rootLabelModeNestedStringConstant}
}

// ParseEmptySegmentPolicy converts a case-insensitive name into an EmptySegmentPolicy.
// An empty value resolves to EmptySegmentPolicySkip.
func ParseEmptySegmentPolicy(value string) (EmptySegmentPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", emptySegmentPolicySkipStringConstant:
		return EmptySegmentPolicySkip, nil
	case emptySegmentPolicyRejectStringConstant:
		return EmptySegmentPolicyReject, nil
	default:
		return "", fmt.Errorf(unsupportedOptionValueTemplateConstant, ErrUnsupportedEmptySegmentPolicy, value)
	}
}

// ParseRootLabelMode converts a case-insensitive name into a RootLabelMode.
// An empty value resolves to RootLabelModeLiteral.
func ParseRootLabelMode(value string) (RootLabelMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", rootLabelModeLiteralStringConstant:
		return RootLabelModeLiteral, nil
	case rootLabelModeNestedStringConstant:
		return RootLabelModeNested, nil
	default:
		return "", fmt.Errorf(unsupportedOptionValueTemplateConstant, ErrUnsupportedRootLabelMode, value)
	}
}

func (options Options) normalize() (Options, error) {
	emptySegments, policyError := ParseEmptySegmentPolicy(string(options.EmptySegments))
	if policyError != nil {
		return Options{}, policyError
	}
	rootLabel, modeError := ParseRootLabelMode(string(options.RootLabel))
	if modeError != nil {
		return Options{}, modeError
	}
	return Options{EmptySegments: emptySegments, RootLabel: rootLabel}, nil
}

// UnmarshalText lets configuration decoders validate policy names.
func (policy *EmptySegmentPolicy) UnmarshalText(text []byte) error {
	parsedPolicy, parseError := ParseEmptySegmentPolicy(string(text))
	if parseError != nil {
		return parseError
	}
	*policy = parsedPolicy
	return nil
}

// UnmarshalText lets configuration decoders validate mode names.
func (mode *RootLabelMode) UnmarshalText(text []byte) error {
	parsedMode, parseError := ParseRootLabelMode(string(text))
	if parseError != nil {
		return parseError
	}
	*mode = parsedMode
	return nil
}
