// Package template defines the engine-agnostic seam between the renderer and
// the external templating engine. The renderer only sees these interfaces and
// the typed Error; concrete engines live in subpackages (gotemplate wraps
// pongo2) or in the hosting application.
package template
