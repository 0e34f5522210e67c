package flags

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix       = "<"
	choicePlaceholderSuffix       = ">"
	choiceSeparatorLiteral        = "|"
	choiceListSeparatorLiteral    = ", "
	choiceUsageEmptyTemplate      = "`%s`"
	choiceUsageFullTemplate       = "`%s` %s"
	choiceValueTypeConstant       = "string"
	unsupportedChoiceTemplate     = "%w %q (expected one of %s)"
	unsupportedChoiceMessageLabel = "unsupported value"
)

// ErrUnsupportedChoice indicates a choice flag received a value outside its accepted set.
var ErrUnsupportedChoice = errors.New(unsupportedChoiceMessageLabel)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// ChoiceValue is a pflag.Value restricted to a fixed set of case-insensitive names.
// Accepted values are stored lowercased.
type ChoiceValue struct {
	currentValue string
	choices      []string
	target       *string
}

// AddChoiceFlag registers a string flag that only accepts one of choices.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, defaultChoice string, choices []string, description string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	normalizedChoices := make([]string, 0, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 || slices.Contains(normalizedChoices, normalizedChoice) {
			continue
		}
		normalizedChoices = append(normalizedChoices, normalizedChoice)
	}

	choiceValue := &ChoiceValue{
		currentValue: strings.ToLower(strings.TrimSpace(defaultChoice)),
		choices:      normalizedChoices,
		target:       target,
	}
	if target != nil {
		*target = choiceValue.currentValue
	}

	flagSet.Var(choiceValue, name, FormatChoiceUsage(defaultChoice, choices, description))
}

// Set validates and stores rawValue.
func (value *ChoiceValue) Set(rawValue string) error {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if !slices.Contains(value.choices, normalizedValue) {
		return fmt.Errorf(unsupportedChoiceTemplate, ErrUnsupportedChoice, rawValue, strings.Join(value.choices, choiceListSeparatorLiteral))
	}

	value.currentValue = normalizedValue
	if value.target != nil {
		*value.target = normalizedValue
	}
	return nil
}

// String returns the current value.
func (value *ChoiceValue) String() string {
	if value == nil {
		return ""
	}
	return value.currentValue
}

// Type reports the pflag value type.
func (value *ChoiceValue) Type() string {
	return choiceValueTypeConstant
}

func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	highlightedChoices := highlightDefaultChoice(defaultChoice, choices)
	return choicePlaceholderPrefix + strings.Join(highlightedChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}

		displayValue := trimmedChoice
		if normalizedChoice == normalizedDefault {
			displayValue = strings.ToUpper(trimmedChoice)
		}

		highlighted = append(highlighted, displayValue)
		seen[normalizedChoice] = struct{}{}
	}

	return highlighted
}
