// Package errs defines the structured error taxonomy shared by every
// analysis in bundlescope. Every failure returned across package boundaries
// is an *Error carrying a distinguishable Kind so callers can switch on
// failure class instead of matching message strings.
package errs

import (
	"errors"
	"fmt"
)

// Kind enumerates the failure taxonomy.
type Kind string

const (
	// InvalidInput covers bad numeric arguments or missing required arguments.
	InvalidInput Kind = "InvalidInput"
	// FileIO covers read/write failure on the source or an output path.
	FileIO Kind = "FileIO"
	// ParseFailed means the full-tree parser rejected the input.
	ParseFailed Kind = "ParseFailed"
	// BoundaryScanExceeded means C4 could not resolve a function within its
	// locality window.
	BoundaryScanExceeded Kind = "BoundaryScanExceeded"
	// OffsetOutsideFunction means a deep analysis was requested at module scope.
	OffsetOutsideFunction Kind = "OffsetOutsideFunction"
	// PatternInvalid means regex compilation failed.
	PatternInvalid Kind = "PatternInvalid"
	// PatternNotFound means a patch-oriented command found zero matches.
	PatternNotFound Kind = "PatternNotFound"
	// PatternAmbiguous means a patch-oriented command found more than one match.
	PatternAmbiguous Kind = "PatternAmbiguous"
	// ProtocolMismatch is a warning-only kind emitted by the I/O tracer.
	ProtocolMismatch Kind = "ProtocolMismatch"
)

// Error is the concrete error value returned by every analysis in this module.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is, or wraps, a bundlescope *Error of the given
// kind. Uses errors.As so it sees through any Unwrap chain, not just a
// top-level *Error.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// ExitCode maps a Kind to the process exit code documented for the CLI.
// PatternAmbiguous is special-cased to 2 only by the `match` subcommand;
// callers that need that distinction apply it themselves.
func ExitCode(kind Kind) int {
	switch kind {
	case "":
		return 0
	default:
		return 1
	}
}
