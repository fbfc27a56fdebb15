package render

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-smartrender/pkg/registry"
	"github.com/goliatone/go-smartrender/pkg/render/template"
	"github.com/goliatone/go-smartrender/pkg/resolve"
	"github.com/goliatone/go-smartrender/pkg/subject"
)

// Context variables injected with set-only-if-absent semantics, so
// caller-supplied values always win.
const (
	ContextKeyObject      = "object"
	ContextKeyDebugMode   = "debug_mode"
	ContextKeyGeneratedAt = "generated_at"
)

// Engine combines the registration store, the cached resolver and the
// external templating engine behind a single render API.
type Engine struct {
	store    *registry.Store
	resolver *resolve.Resolver
	cache    *resolve.Cache
	tpl      template.TemplateRenderer
	logger   *zap.Logger

	debug     bool
	fallback  string
	cacheSize int
	now       func() time.Time
}

// New wires an engine around the given template renderer. Missing
// collaborators are initialised with defaults: a private store, a no-op
// logger, a cache of resolve.DefaultCacheSize entries and a strict miss
// policy. The cache is subscribed to every store mutation.
func New(tpl template.TemplateRenderer, options ...Option) *Engine {
	e := &Engine{
		tpl:       tpl,
		logger:    zap.NewNop(),
		cacheSize: resolve.DefaultCacheSize,
		now:       time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}

	if e.store == nil {
		e.store = registry.NewStore()
	}
	e.resolver = resolve.New(e.store)

	// NewCache only fails on a nil lookup, which cannot happen here.
	cache, err := resolve.NewCache(e.cacheSize, e.resolver.Resolve)
	if err != nil {
		panic(err)
	}
	e.cache = cache
	e.store.OnMutate(e.cache.Purge)

	return e
}

// Store exposes the registration store for administrative callers.
func (e *Engine) Store() *registry.Store {
	return e.store
}

// Register adds or replaces a rendering rule for t.
func (e *Engine) Register(t *subject.Type, cfg registry.Config) error {
	if err := e.store.Register(t, cfg); err != nil {
		return err
	}
	e.logger.Debug("registered rendering rule",
		zap.String("type", t.Name()),
		zap.String("kind", string(cfg.Kind)),
		zap.String("target", cfg.Target),
		zap.String("model", cfg.Model),
		zap.String("variation", cfg.Variation),
	)
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (e *Engine) MustRegister(t *subject.Type, cfg registry.Config) {
	if err := e.Register(t, cfg); err != nil {
		panic(err)
	}
}

// Unregister removes the rule for the (type, model, variation) key and
// reports whether one existed.
func (e *Engine) Unregister(t *subject.Type, model, variation string) bool {
	return e.store.Unregister(t, model, variation)
}

// Render resolves v to a registered target and renders it with a private
// copy of ctx. The returned error is non-nil exactly when text is not a
// successful render; nothing the underlying engine does can escape as a
// panic or a raw error.
func (e *Engine) Render(v any, ctx Context, options ...RenderOption) (string, *RenderError) {
	var opts renderOptions
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}

	t := subject.TypeOf(v)
	hints := resolve.Hints{Model: opts.model.Name(), Variation: opts.variation}

	cfg, found := e.cache.Resolve(t, hints)
	if !found {
		if e.fallback == "" {
			return "", e.fail(Detail{
				Kind: KindResolutionMiss,
				Message: fmt.Sprintf("no registration for %s (model=%q variation=%q)",
					t.Name(), hints.Model, hints.Variation),
			}, ctx)
		}
		cfg = registry.Config{
			Name:   e.fallback,
			Kind:   registry.KindTemplate,
			Target: e.fallback,
		}
	}

	work := ctx.Clone()
	work.setDefault(ContextKeyObject, v)
	work.setDefault(ContextKeyDebugMode, e.debug)
	work.setDefault(ContextKeyGeneratedAt, e.now())

	text, err := e.dispatch(cfg, work)
	if err != nil {
		detail := Detail{
			Kind:    classify(err),
			Message: err.Error(),
			Target:  cfg.Target,
		}
		if cfg.Kind == registry.KindMacro {
			detail.Macro = cfg.Name
		}
		var terr *template.Error
		if errors.As(err, &terr) {
			detail.Line = terr.Line
		}
		return "", e.fail(detail, ctx)
	}
	return text, nil
}

// Explain returns the ordered resolution trace for v without rendering.
// Diagnostic tooling only; it bypasses the cache.
func (e *Engine) Explain(v any, options ...RenderOption) resolve.Trace {
	var opts renderOptions
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	return e.resolver.Explain(subject.TypeOf(v), resolve.Hints{
		Model:     opts.model.Name(),
		Variation: opts.variation,
	})
}

func (e *Engine) dispatch(cfg registry.Config, work Context) (string, error) {
	if e.tpl == nil {
		return "", fmt.Errorf("render: no template engine configured")
	}

	switch cfg.Kind {
	case registry.KindTemplate:
		return e.tpl.RenderTemplate(cfg.Target, map[string]any(work))
	case registry.KindMacro:
		mr, ok := e.tpl.(template.MacroRenderer)
		if !ok {
			return "", fmt.Errorf("render: engine %T does not support macro targets", e.tpl)
		}
		return mr.RenderMacro(cfg.Target, cfg.Name, map[string]any(work))
	default:
		return "", fmt.Errorf("render: unknown registration kind %q", string(cfg.Kind))
	}
}

// fail completes a Detail with the shared failure plumbing and logs it. The
// context summary is built from the caller's context, not the enriched copy,
// so it lists exactly the variables that were supplied.
func (e *Engine) fail(detail Detail, ctx Context) *RenderError {
	detail.Timestamp = e.now()
	detail.ContextSummary = summarize(ctx)
	detail.StackTrace = stackLines()

	e.logger.Warn("render failed",
		zap.String("kind", string(detail.Kind)),
		zap.String("target", detail.Target),
		zap.String("macro", detail.Macro),
		zap.Int("line", detail.Line),
		zap.String("message", detail.Message),
	)
	return &RenderError{Detail: detail}
}

func classify(err error) ErrorKind {
	var terr *template.Error
	if errors.As(err, &terr) && terr.Kind == template.KindNotFound {
		return KindAssetError
	}
	return KindEngineError
}
