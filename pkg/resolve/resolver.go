package resolve

import (
	"github.com/goliatone/go-smartrender/pkg/registry"
	"github.com/goliatone/go-smartrender/pkg/subject"
)

// Hints carry the caller-supplied narrowing for one resolution: a model
// override name and/or a variation selector. The zero value means "no hints".
type Hints struct {
	Model     string
	Variation string
}

// Resolver walks type ancestry against a registration store. It holds no
// state of its own and never mutates the store.
type Resolver struct {
	store *registry.Store
}

// New creates a resolver reading from store.
func New(store *registry.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the best registration for t under the given hints, or
// false when the entire ancestor chain is exhausted without a match.
func (r *Resolver) Resolve(t *subject.Type, h Hints) (registry.Config, bool) {
	if r == nil || r.store == nil || t == nil {
		return registry.Config{}, false
	}

	for _, ancestor := range t.Linearization() {
		for _, key := range candidateKeys(ancestor.Name(), h) {
			if cfg, ok := r.store.Lookup(key); ok {
				return cfg, true
			}
		}
	}
	return registry.Config{}, false
}

// Explain records every key probed, in order, with the outcome of each.
// Intended for diagnostics, not the render hot path: it never consults the
// cache and does not stop early within a level.
func (r *Resolver) Explain(t *subject.Type, h Hints) Trace {
	trace := Trace{
		Type:  t.Name(),
		Hints: h,
	}
	if r == nil || r.store == nil || t == nil {
		return trace
	}

	for depth, ancestor := range t.Linearization() {
		for _, key := range candidateKeys(ancestor.Name(), h) {
			step := Step{Key: key, Depth: depth}
			cfg, ok := r.store.Lookup(key)
			if ok {
				step.Matched = true
				step.Config = &cfg
				step.Reason = "matched"
			} else {
				step.Reason = "no registration for key"
			}
			trace.Steps = append(trace.Steps, step)

			if ok && !trace.Found {
				trace.Found = true
				trace.Config = cfg
				return trace
			}
		}
	}
	return trace
}

// candidateKeys lists the precedence probes for one ancestor level, most
// specific first. A model override outranks a variation-only match at the
// same level.
func candidateKeys(typeName string, h Hints) []registry.Key {
	keys := make([]registry.Key, 0, 4)
	if h.Model != "" && h.Variation != "" {
		keys = append(keys, registry.Key{Type: typeName, Model: h.Model, Variation: h.Variation})
	}
	if h.Model != "" {
		keys = append(keys, registry.Key{Type: typeName, Model: h.Model})
	}
	if h.Variation != "" {
		keys = append(keys, registry.Key{Type: typeName, Variation: h.Variation})
	}
	keys = append(keys, registry.Key{Type: typeName})
	return keys
}
