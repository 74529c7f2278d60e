package errors

import (
	"slices"
	"strconv"
	"strings"
)

// MinStates is the smallest state count for which a ruleset is meaningful.
const MinStates = 2

// ValidateStates validates a state count against the supported range.
// A max of zero disables the upper bound; callers at the process boundary
// (CLI, HTTP) pass their configured limit because construction cost grows
// with states^6.
func ValidateStates(states, max int) error {
	if states < MinStates {
		return New(ErrCodeInvalidStates, "state count must be at least %d, got %d", MinStates, states)
	}
	if max > 0 && states > max {
		return New(ErrCodeInvalidStates, "state count %d exceeds the configured maximum of %d", states, max)
	}
	return nil
}

// ValidateRule validates that a rule number is non-negative.
// Range checking against the state count is done by the ruleset itself.
func ValidateRule(rule int) error {
	if rule < 0 {
		return New(ErrCodeInvalidRule, "rule number must be non-negative, got %d", rule)
	}
	return nil
}

// ParseInt parses a decimal command-line or URL argument. The name is used
// in the error message.
func ParseInt(name, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, New(ErrCodeInvalidInput, "%s cannot be empty", name)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, New(ErrCodeInvalidInput, "%s must be an integer, got %q", name, value)
	}
	return n, nil
}

// Supported graph output formats.
var graphFormats = []string{"dot", "svg", "json"}

// ValidateFormat validates a graph output format name.
func ValidateFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(graphFormats, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(graphFormats, ", "))
	}
	return nil
}
