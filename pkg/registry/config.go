package registry

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind identifies how a rendering target is invoked by the template engine.
type Kind string

// Registration kinds understood by the renderer.
const (
	KindTemplate Kind = "template"
	KindMacro    Kind = "macro"
)

// Valid reports whether the kind is one the renderer knows how to dispatch.
func (k Kind) Valid() bool {
	switch k {
	case KindTemplate, KindMacro:
		return true
	default:
		return false
	}
}

// Config is the immutable registration record. Re-registering the same key
// replaces the record wholesale; last write wins.
type Config struct {
	// Name identifies the registration. For macro kinds it is the macro name
	// inside the target template; for template kinds it usually mirrors Target.
	Name string
	// Kind selects template or macro dispatch.
	Kind Kind
	// Target is the identifier handed to the template engine (a template path).
	Target string
	// Model optionally narrows the rule to renders carrying this model
	// override hint.
	Model string
	// Variation optionally narrows the rule to an alternate rendering
	// (e.g. "compact").
	Variation string
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ConfigurationError{Field: "name", Reason: "name is required"}
	}
	if !c.Kind.Valid() {
		return &ConfigurationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", string(c.Kind))}
	}
	if strings.TrimSpace(c.Target) == "" {
		return &ConfigurationError{Field: "target", Reason: "target is required"}
	}
	return nil
}

// Key is the resolution triple. Empty Model/Variation mean "not narrowed".
type Key struct {
	Type      string
	Model     string
	Variation string
}

// String joins the non-empty parts with ":", matching the diagnostic trace
// output format.
func (k Key) String() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{k.Type, k.Model, k.Variation} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ":")
}

// ConfigurationError signals a malformed registration. It is raised
// synchronously at registration time and never on the render path.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("registry: invalid configuration: %s", e.Reason)
}

// ConventionTarget derives a template path from the key parts, converting
// CamelCase names to snake_case path segments: ("OnlineCourse", "", "compact")
// becomes "online_course/compact.html". Opt-in helper for manifests and
// callers; the resolver itself never falls back to conventions.
func ConventionTarget(typeName, model, variation string) string {
	parts := make([]string, 0, 3)
	if typeName != "" {
		parts = append(parts, snakeCase(typeName))
	}
	if model != "" {
		parts = append(parts, snakeCase(model))
	}
	if variation != "" {
		parts = append(parts, strings.ToLower(variation))
	}
	return strings.Join(parts, "/") + ".html"
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
