// Package resolve picks the best registration for a subject type. The
// resolver is a pure function of (type, hints, store contents): it probes
// four keys per ancestor level, (type, model, variation), (type, model),
// (type, variation), then (type), walking the C3 chain nearest-first and
// stopping at the first match. A miss is an expected outcome, returned as
// (zero Config, false), never an error.
//
// Cache wraps the walk in a bounded LRU memo table keyed by the same triple.
// Any store mutation purges the whole cache; partial invalidation is not
// attempted.
package resolve
