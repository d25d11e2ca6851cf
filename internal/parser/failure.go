package parser

import "fmt"

// FailureKind classifies why a line could not be tokenized.
type FailureKind string

const (
	FailureInvalidTimestamp  FailureKind = "invalid_timestamp"
	FailureInvalidPid        FailureKind = "invalid_pid"
	FailureInvalidDebugLevel FailureKind = "invalid_debug_level"
	FailureInvalidLineNumber FailureKind = "invalid_line_number"
	FailureMissingToken      FailureKind = "missing_token"
	FailureMissingLocation   FailureKind = "missing_location"
)

// ParseFailure describes a classified tokenizer failure for one line.
// Field names the offending field; Raw carries the offending token.
type ParseFailure struct {
	Kind  FailureKind
	Field string
	Raw   string
}

func (f *ParseFailure) Error() string {
	if f.Raw != "" {
		return fmt.Sprintf("%s: %s %q", f.Kind, f.Field, f.Raw)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Field)
}

func missingToken(field string) *ParseFailure {
	return &ParseFailure{Kind: FailureMissingToken, Field: field}
}
