package registry

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-smartrender/pkg/subject"
)

// Store holds at most one Config per Key. Reads are the hot path; mutations
// are assumed rare and administrative. Every mutating call fires the
// registered hooks unconditionally so subscribers (the resolution cache) can
// drop state computed against the previous contents.
type Store struct {
	mu    sync.RWMutex
	rules map[Key]Config

	hookMu sync.Mutex
	hooks  []func()
}

// NewStore creates an empty registration store.
func NewStore() *Store {
	return &Store{
		rules: make(map[Key]Config),
	}
}

// OnMutate subscribes fn to every mutating operation. Hooks run after the
// mutation is visible and outside the store lock.
func (s *Store) OnMutate(fn func()) {
	if s == nil || fn == nil {
		return
	}
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Register stores cfg under the key derived from t and the config's own
// Model/Variation narrowing. A malformed config fails fast with a
// *ConfigurationError; an existing registration for the same key is replaced.
func (s *Store) Register(t *subject.Type, cfg Config) error {
	if t == nil {
		return &ConfigurationError{Field: "type", Reason: "subject type is required"}
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	key := Key{Type: t.Name(), Model: cfg.Model, Variation: cfg.Variation}

	s.mu.Lock()
	s.rules[key] = cfg
	s.mu.Unlock()

	s.fireHooks()
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (s *Store) MustRegister(t *subject.Type, cfg Config) {
	if err := s.Register(t, cfg); err != nil {
		panic(err)
	}
}

// Unregister removes the rule for the (type, model, variation) key and
// reports whether one existed. The mutation hooks fire either way.
func (s *Store) Unregister(t *subject.Type, model, variation string) bool {
	if t == nil {
		return false
	}
	key := Key{Type: t.Name(), Model: model, Variation: variation}

	s.mu.Lock()
	_, existed := s.rules[key]
	delete(s.rules, key)
	s.mu.Unlock()

	s.fireHooks()
	return existed
}

// Lookup returns the exact rule for key, if any. No ancestry reasoning
// happens here.
func (s *Store) Lookup(key Key) (Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.rules[key]
	return cfg, ok
}

// List returns a snapshot of all registrations. Mutating the returned map
// does not affect the store.
func (s *Store) List() map[Key]Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[Key]Config, len(s.rules))
	for key, cfg := range s.rules {
		out[key] = cfg
	}
	return out
}

// Len reports the number of registrations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Clear drops every registration.
func (s *Store) Clear() {
	s.mu.Lock()
	s.rules = make(map[Key]Config)
	s.mu.Unlock()

	s.fireHooks()
}

func (s *Store) fireHooks() {
	s.hookMu.Lock()
	hooks := make([]func(), len(s.hooks))
	copy(hooks, s.hooks)
	s.hookMu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func (s *Store) String() string {
	return fmt.Sprintf("registry.Store(rules=%d)", s.Len())
}
