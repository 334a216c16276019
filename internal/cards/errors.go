package cards

import "fmt"

// FormatError indicates structurally invalid loader input: required
// columns absent, or no valid lines found in non-empty input.
type FormatError struct {
	Source string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid format: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s format: %s", e.Source, e.Reason)
}

// ParseError indicates a specific field on a specific row failed to parse.
type ParseError struct {
	Row   int
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s value %q", e.Row, e.Field, e.Value)
}
