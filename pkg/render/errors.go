package render

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// ErrorKind is the render-boundary failure taxonomy. Malformed registrations
// never reach here; they fail fast at registration time with a
// registry.ConfigurationError.
type ErrorKind string

const (
	// KindResolutionMiss means no applicable rule was found and the engine is
	// configured strict (no fallback target).
	KindResolutionMiss ErrorKind = "resolution_miss"
	// KindEngineError means the external templating engine failed during
	// compilation or execution.
	KindEngineError ErrorKind = "engine_error"
	// KindAssetError means the target template source is unreadable or
	// missing.
	KindAssetError ErrorKind = "asset_error"
)

// Detail is the structured failure description created only on the failure
// path.
type Detail struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Message is the human-readable failure description.
	Message string
	// Target names the template the failure is attributed to, when known.
	Target string
	// Macro names the macro inside Target, for macro-kind registrations.
	Macro string
	// Line is the 1-indexed source line the engine attributed the failure
	// to, 0 when unknown.
	Line int
	// Timestamp records when the failure happened.
	Timestamp time.Time
	// ContextSummary maps the caller-supplied variable names to their
	// runtime type names. Raw values are never included.
	ContextSummary map[string]string
	// StackTrace is the capturing goroutine's stack, one frame per line.
	StackTrace []string
}

// RenderError is the sole carrier of a Detail. It is returned, never
// panicked, from the render API, and implements error so batch callers can
// collect failures with the usual tooling.
type RenderError struct {
	Detail Detail
}

func (e *RenderError) Error() string {
	d := e.Detail
	var b strings.Builder
	fmt.Fprintf(&b, "render: %s: %s", d.Kind, d.Message)
	if d.Target != "" {
		fmt.Fprintf(&b, " (target %q", d.Target)
		if d.Macro != "" {
			fmt.Fprintf(&b, ", macro %q", d.Macro)
		}
		if d.Line > 0 {
			fmt.Fprintf(&b, ", line %d", d.Line)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Kind is a convenience accessor for batch reports.
func (e *RenderError) Kind() ErrorKind {
	return e.Detail.Kind
}

func stackLines() []string {
	return strings.Split(strings.TrimSpace(string(debug.Stack())), "\n")
}
