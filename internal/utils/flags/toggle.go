package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	toggleValueTypeConstant                = "bool"
	argumentTerminatorConstant             = "--"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"t":     true,
	"y":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
	"f":     false,
	"n":     false,
}

// ToggleRegistry records yes/no toggle flags so their space-separated values
// can be rewritten before cobra parses the command line.
type ToggleRegistry struct {
	mutex      sync.RWMutex
	names      map[string]struct{}
	shorthands map[string]struct{}
}

// NewToggleRegistry constructs an empty ToggleRegistry.
func NewToggleRegistry() *ToggleRegistry {
	return &ToggleRegistry{
		names:      map[string]struct{}{},
		shorthands: map[string]struct{}{},
	}
}

// AddToggleFlag registers a boolean toggle flag that accepts yes/no style values.
func (registry *ToggleRegistry) AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if registry == nil || flagSet == nil || len(name) == 0 {
		return
	}

	toggleValue := newToggleFlagValue(defaultValue, target)
	flagSet.VarP(toggleValue, name, shorthand, usage)

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue
	flag.Usage = formatToggleUsage(usage, defaultValue)

	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.names[name] = struct{}{}
	if len(shorthand) > 0 {
		registry.shorthands[shorthand] = struct{}{}
	}
}

// NormalizeArguments rewrites toggle flag arguments so "--flag no" becomes "--flag=no" before parsing.
// Only recognized yes/no literals are joined; any other following argument stays positional.
func (registry *ToggleRegistry) NormalizeArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		current := arguments[index]
		if current == argumentTerminatorConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if registry.isToggleArgument(current) && index+1 < len(arguments) && isToggleLiteral(arguments[index+1]) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
			index += 2
			continue
		}

		normalized = append(normalized, current)
		index++
	}

	return normalized
}

// isToggleArgument reports whether argument names a registered toggle without an inline value.
func (registry *ToggleRegistry) isToggleArgument(argument string) bool {
	if registry == nil || strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		_, exists := registry.names[strings.TrimPrefix(argument, longFlagPrefixConstant)]
		return exists
	}

	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		_, exists := registry.shorthands[strings.TrimPrefix(argument, shortFlagPrefixConstant)]
		return exists
	}

	return false
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmed)
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func newToggleFlagValue(defaultValue bool, target *bool) *toggleFlagValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleFlagValue{currentValue: defaultValue, target: target}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}

	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || !value.currentValue {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return toggleValueTypeConstant
}

func parseToggleValue(rawValue string) (bool, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return true, nil
	}

	parsedValue, known := toggleLiterals[strings.ToLower(trimmedValue)]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return parsedValue, nil
}

func isToggleLiteral(value string) bool {
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(value))]
	return known
}
