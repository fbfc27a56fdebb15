package registry

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-smartrender/pkg/subject"
)

// Manifest is the YAML form of a type hierarchy plus its registrations, so
// hosting applications can declare rendering rules next to their templates
// instead of in wiring code.
//
//	types:
//	  - name: Course
//	  - name: OnlineCourse
//	    bases: [Course]
//	registrations:
//	  - type: Course
//	    kind: template
//	    target: course/card.html
//	  - type: Course
//	    kind: macro
//	    name: card
//	    target: course/macros.html
//	    variation: compact
type Manifest struct {
	Types         []TypeDecl         `yaml:"types"`
	Registrations []RegistrationDecl `yaml:"registrations"`
}

// TypeDecl declares a subject type. Bases must be declared earlier in the
// manifest, nearest first.
type TypeDecl struct {
	Name  string   `yaml:"name"`
	Bases []string `yaml:"bases"`
}

// RegistrationDecl declares one rule. An empty kind defaults to template; an
// empty target falls back to the convention-derived path; an empty name for
// template kinds mirrors the target.
type RegistrationDecl struct {
	Type      string `yaml:"type"`
	Kind      string `yaml:"kind"`
	Name      string `yaml:"name"`
	Target    string `yaml:"target"`
	Model     string `yaml:"model"`
	Variation string `yaml:"variation"`
}

// ParseManifest decodes YAML manifest bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("registry: parse manifest: %w", err)
	}
	return &m, nil
}

// Apply declares the manifest's types and registers its rules against store.
// The returned map holds every declared type by name so callers can hand the
// descriptors to the render API. Failures carry the same ConfigurationError
// taxonomy as programmatic registration.
func (m *Manifest) Apply(store *Store) (map[string]*subject.Type, error) {
	if store == nil {
		return nil, &ConfigurationError{Field: "store", Reason: "store is required"}
	}

	types := make(map[string]*subject.Type, len(m.Types))
	for _, decl := range m.Types {
		if decl.Name == "" {
			return nil, &ConfigurationError{Field: "types", Reason: "type name is required"}
		}
		if _, exists := types[decl.Name]; exists {
			return nil, &ConfigurationError{Field: "types", Reason: fmt.Sprintf("type %q declared twice", decl.Name)}
		}

		bases := make([]*subject.Type, 0, len(decl.Bases))
		for _, baseName := range decl.Bases {
			base, ok := types[baseName]
			if !ok {
				return nil, &ConfigurationError{
					Field:  "types",
					Reason: fmt.Sprintf("type %q: base %q is not declared before it", decl.Name, baseName),
				}
			}
			bases = append(bases, base)
		}

		t, err := subject.NewType(decl.Name, bases...)
		if err != nil {
			return nil, &ConfigurationError{Field: "types", Reason: err.Error()}
		}
		types[decl.Name] = t
	}

	for _, decl := range m.Registrations {
		t, ok := types[decl.Type]
		if !ok {
			return nil, &ConfigurationError{
				Field:  "registrations",
				Reason: fmt.Sprintf("registration references undeclared type %q", decl.Type),
			}
		}
		if err := store.Register(t, decl.config()); err != nil {
			return nil, err
		}
	}

	return types, nil
}

func (d RegistrationDecl) config() Config {
	cfg := Config{
		Name:      d.Name,
		Kind:      Kind(d.Kind),
		Target:    d.Target,
		Model:     d.Model,
		Variation: d.Variation,
	}
	if cfg.Kind == "" {
		cfg.Kind = KindTemplate
	}
	if cfg.Target == "" {
		cfg.Target = ConventionTarget(d.Type, d.Model, d.Variation)
	}
	if cfg.Name == "" && cfg.Kind == KindTemplate {
		cfg.Name = cfg.Target
	}
	return cfg
}
