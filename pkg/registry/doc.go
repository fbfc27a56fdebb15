// Package registry stores the declarative rules that map a resolution key
// (subject type, optional model override, optional variation) to a named
// rendering target. Storage is purely key/value: ancestry reasoning lives in
// the resolve package. Registration is the single fail-fast surface: a
// malformed Config is rejected synchronously with a ConfigurationError,
// while every later outcome in the pipeline is returned as a value.
package registry
