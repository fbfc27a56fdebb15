package render

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-smartrender/pkg/registry"
	"github.com/goliatone/go-smartrender/pkg/subject"
)

// Option customises the engine at construction time.
type Option func(*Engine)

// WithStore injects a registration store owned by the hosting application.
// Without it the engine creates a private empty store.
func WithStore(store *registry.Store) Option {
	return func(e *Engine) {
		if store != nil {
			e.store = store
		}
	}
}

// WithLogger injects a structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDebug toggles the debug flag injected into render contexts and echoed
// on failure details.
func WithDebug(debug bool) Option {
	return func(e *Engine) {
		e.debug = debug
	}
}

// WithCacheSize bounds the resolution cache. Sizes below 1 keep the default.
func WithCacheSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.cacheSize = size
		}
	}
}

// WithFallbackTarget renders the named template when resolution misses,
// instead of returning a resolution-miss error. The miss policy is the
// caller's decision, not the engine's.
func WithFallbackTarget(target string) Option {
	return func(e *Engine) {
		e.fallback = target
	}
}

// WithClock overrides the engine's time source, used for the injected
// generation timestamp and failure timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

type renderOptions struct {
	model     *subject.Type
	variation string
}

// RenderOption carries per-call hints.
type RenderOption func(*renderOptions)

// WithModel forces the subject to be treated as the given logical type,
// letting unrelated classes share a rendering rule.
func WithModel(t *subject.Type) RenderOption {
	return func(o *renderOptions) {
		o.model = t
	}
}

// WithVariation selects an enumerated alternate rendering, e.g. "compact".
func WithVariation(variation string) RenderOption {
	return func(o *renderOptions) {
		o.variation = variation
	}
}
