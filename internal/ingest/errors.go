package ingest

import (
	"fmt"
	"strings"
)

// SchemaError reports that no accepted identifier column was found.
type SchemaError struct {
	Missing  string
	Accepted []string
	Found    []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing identifier column %q (accepted: %s); found columns: [%s]",
		e.Missing, strings.Join(e.Accepted, ", "), strings.Join(e.Found, ", "))
}

// ParseError wraps a malformed-CSV failure.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse tabular input: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
