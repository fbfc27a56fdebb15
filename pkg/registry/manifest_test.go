package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleManifest = `
types:
  - name: Course
  - name: OnlineCourse
    bases: [Course]
registrations:
  - type: Course
    kind: template
    target: course/card.html
  - type: Course
    kind: macro
    name: compact
    target: course/macros.html
    variation: compact
  - type: OnlineCourse
`

func TestManifest_Apply(t *testing.T) {
	manifest, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}

	store := NewStore()
	types, err := manifest.Apply(store)
	if err != nil {
		t.Fatalf("apply manifest: %v", err)
	}

	online, ok := types["OnlineCourse"]
	if !ok {
		t.Fatal("OnlineCourse not declared")
	}
	chain := online.Linearization()
	if len(chain) != 2 || chain[1].Name() != "Course" {
		t.Fatalf("expected OnlineCourse -> Course ancestry, got %v", chain)
	}

	got, ok := store.Lookup(Key{Type: "Course"})
	if !ok {
		t.Fatal("Course base rule missing")
	}
	want := Config{Name: "course/card.html", Kind: KindTemplate, Target: "course/card.html"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("base rule mismatch (-want +got):\n%s", diff)
	}

	if got, ok := store.Lookup(Key{Type: "Course", Variation: "compact"}); !ok || got.Kind != KindMacro {
		t.Fatalf("macro rule missing or wrong: %+v ok=%v", got, ok)
	}

	// Declaration with no target falls back to the convention path; no kind
	// defaults to template.
	got, ok = store.Lookup(Key{Type: "OnlineCourse"})
	if !ok {
		t.Fatal("OnlineCourse convention rule missing")
	}
	if got.Target != "online_course.html" || got.Kind != KindTemplate {
		t.Fatalf("convention defaults not applied: %+v", got)
	}
}

func TestManifest_UndeclaredBase(t *testing.T) {
	manifest, err := ParseManifest([]byte("types:\n  - name: B\n    bases: [A]\n"))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	_, err = manifest.Apply(NewStore())
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}

func TestManifest_UndeclaredRegistrationType(t *testing.T) {
	manifest, err := ParseManifest([]byte("registrations:\n  - type: Ghost\n    target: x.html\n"))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if _, err := manifest.Apply(NewStore()); err == nil {
		t.Fatal("expected failure for undeclared registration type")
	}
}

func TestManifest_InvalidKind(t *testing.T) {
	const doc = `
types:
  - name: Course
registrations:
  - type: Course
    kind: widget
    target: x.html
`
	manifest, err := ParseManifest([]byte(doc))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	_, err = manifest.Apply(NewStore())
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigurationError for unknown kind, got %v", err)
	}
}

func TestParseManifest_BadYAML(t *testing.T) {
	if _, err := ParseManifest([]byte("types: [")); err == nil {
		t.Fatal("expected parse failure")
	}
}
