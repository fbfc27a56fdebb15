package template

import (
	"io"
)

// TemplateRenderer mirrors the github.com/goliatone/go-template engine
// contract, providing the seam the renderer relies on. Engines manage their
// own template-source loading and compilation caching.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// MacroRenderer is implemented by engines that can invoke a named macro
// defined inside a target template. The macro receives the render context as
// its sole argument, and must be visible to cross-template import: for the
// pongo2 adapter that means declaring it with the export flag,
// {% macro name(ctx) export %}. Engines without macro support simply do not
// implement this interface; the renderer reports macro-kind registrations
// against them as engine failures.
type MacroRenderer interface {
	RenderMacro(target, macro string, data any, out ...io.Writer) (string, error)
}
