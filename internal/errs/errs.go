// Package errs defines the three structured error kinds the engine's
// failure semantics are built on (spec §7), mirrored on the
// type+message+cause shape of the teacher's pkgs/errors.DevCmdError.
package errs

import "fmt"

// TranslationError is raised by §4.1-§4.5 when TALE source cannot be
// translated into the canonical target form. Line is 0 when unknown.
type TranslationError struct {
	Line    int
	Message string
}

func (e *TranslationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// NotUnderstood builds the canonical "I could not understand" diagnostic.
func NotUnderstood(snippet string) *TranslationError {
	return &TranslationError{Message: "I could not understand: " + snippet}
}

// WrongNumberOfValues builds the canonical arity diagnostic.
func WrongNumberOfValues(snippet string) *TranslationError {
	return &TranslationError{Message: "Wrong number of values: " + snippet}
}

// WithLine returns a copy of e stamped with the original source line number.
func (e *TranslationError) WithLine(line int) *TranslationError {
	return &TranslationError{Line: line, Message: e.Message}
}

// InputExhausted is raised when `ask` reads past the end of the input tape.
type InputExhausted struct{}

func (e *InputExhausted) Error() string {
	return "No more inputs were supplied. Add values in the Inputs box (one per line)."
}

// RuntimeError is the catch-all for sandboxed-execution failures.
// UnknownName specializes the "unbound name" case so the engine can shape
// the dedicated `Unknown variable: <name>` result.
type RuntimeError struct {
	UnknownName string // empty unless this is a name-resolution failure
	Cause       error
}

func (e *RuntimeError) Error() string {
	if e.UnknownName != "" {
		return fmt.Sprintf("Unknown variable: %s", e.UnknownName)
	}
	return e.Cause.Error()
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// NewUnknownName builds a RuntimeError for an unbound identifier.
func NewUnknownName(name string) *RuntimeError {
	return &RuntimeError{UnknownName: name}
}

// Wrap builds a generic RuntimeError around an underlying Go error.
func Wrap(cause error) *RuntimeError {
	return &RuntimeError{Cause: cause}
}
