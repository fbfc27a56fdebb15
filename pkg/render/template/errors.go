package template

import (
	"fmt"
)

// ErrorKind classifies an engine failure coarsely enough for the renderer to
// map it onto its own taxonomy without importing the concrete engine.
type ErrorKind string

const (
	// KindNotFound means the target asset does not exist in the engine's
	// loader.
	KindNotFound ErrorKind = "not_found"
	// KindSyntax means the target exists but could not be compiled.
	KindSyntax ErrorKind = "syntax"
	// KindExecution means compilation succeeded but evaluation failed.
	KindExecution ErrorKind = "execution"
)

// Error is the typed failure engines return through the seam. Line is
// 1-indexed when the engine can attribute the failure to a source line,
// 0 otherwise.
type Error struct {
	Kind   ErrorKind
	Target string
	Macro  string
	Line   int
	Err    error
}

func (e *Error) Error() string {
	where := e.Target
	if e.Macro != "" {
		where = fmt.Sprintf("%s:%s", e.Target, e.Macro)
	}
	if e.Line > 0 {
		return fmt.Sprintf("template: %s %q line %d: %v", e.Kind, where, e.Line, e.Err)
	}
	return fmt.Sprintf("template: %s %q: %v", e.Kind, where, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
