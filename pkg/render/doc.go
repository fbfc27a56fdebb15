// Package render orchestrates resolution, context isolation and delegation
// to the external templating engine. Render never panics and never lets an
// engine failure escape: every call returns (text, *RenderError) where the
// error is present exactly when the text is not a successful render, so
// batch callers can keep going and aggregate failures.
package render
