// Package errors defines the factor engine's error taxonomy: ParseError,
// SchemaError, ComputeError, PredicateError and IOError. Each is a typed,
// located value rather than a bare string so callers can tell a parse-time
// failure from a per-factor runtime failure from a dataset-fatal one.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind tags one of the five error categories from spec.md §7.
type Kind string

const (
	ParseErrorKind     Kind = "ParseError"
	SchemaErrorKind    Kind = "SchemaError"
	ComputeErrorKind   Kind = "ComputeError"
	PredicateErrorKind Kind = "PredicateError"
	IOErrorKind        Kind = "IOError"
)

// EngineError is a located error value carrying its taxonomy Kind, the
// offending substring (when known) and an optional wrapped cause.
type EngineError struct {
	Kind    Kind
	Message string
	Source  string // offending substring, e.g. a sub-expression or column name
	Pos     int    // byte offset of Source within the parsed expression; -1 if unknown
	cause   error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Source != "" {
		sb.WriteString(fmt.Sprintf(" (at %q", e.Source))
		if e.Pos >= 0 {
			sb.WriteString(fmt.Sprintf(", offset %d", e.Pos))
		}
		sb.WriteString(")")
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

// Unwrap lets errors.Is/errors.As see through to a wrapped cause.
func (e *EngineError) Unwrap() error {
	return e.cause
}

// NewParseError builds a ParseError pinned to the offending substring and
// its byte offset within the factor string being parsed.
func NewParseError(message, source string, pos int) *EngineError {
	return &EngineError{Kind: ParseErrorKind, Message: message, Source: source, Pos: pos}
}

// NewSchemaError reports a :column reference absent from a dataset. Fatal
// only for the referencing factor; sibling factors proceed.
func NewSchemaError(column string) *EngineError {
	return &EngineError{
		Kind:    SchemaErrorKind,
		Message: fmt.Sprintf("column %q not found in dataset", column),
		Source:  column,
		Pos:     -1,
	}
}

// NewComputeError reports a fatal runtime condition an operator detected
// post-parse (e.g. a zero-width window). Reported as a per-factor failure.
func NewComputeError(message string) *EngineError {
	return &EngineError{Kind: ComputeErrorKind, Message: message, Pos: -1}
}

// NewPredicateError wraps the cause of a predicate factor's failure; fatal
// for the dataset being replayed.
func NewPredicateError(cause error) *EngineError {
	return &EngineError{
		Kind:    PredicateErrorKind,
		Message: "predicate factor failed",
		Pos:     -1,
		cause:   cause,
	}
}

// NewIOError wraps a reader-level failure; fatal for the dataset.
func NewIOError(dataset string, cause error) *EngineError {
	return &EngineError{
		Kind:    IOErrorKind,
		Message: fmt.Sprintf("failed reading dataset %q", dataset),
		Pos:     -1,
		cause:   pkgerrors.WithStack(cause),
	}
}

// Is reports whether err is an EngineError of the given kind.
func Is(err error, kind Kind) bool {
	ee, ok := err.(*EngineError)
	return ok && ee.Kind == kind
}

// Cause unwraps to the deepest wrapped cause, mirroring
// github.com/pkg/errors.Cause so verbose reporting can print the root
// failure alongside the taxonomy tag.
func Cause(err error) error {
	return pkgerrors.Cause(err)
}
