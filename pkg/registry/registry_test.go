package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-smartrender/pkg/subject"
)

func validConfig() Config {
	return Config{
		Name:   "course/card.html",
		Kind:   KindTemplate,
		Target: "course/card.html",
	}
}

func TestRegister_Validation(t *testing.T) {
	course := subject.MustType("RegCourse")

	cases := []struct {
		name string
		typ  *subject.Type
		cfg  Config
	}{
		{
			name: "nil type",
			typ:  nil,
			cfg:  validConfig(),
		},
		{
			name: "empty name",
			typ:  course,
			cfg:  Config{Kind: KindTemplate, Target: "x.html"},
		},
		{
			name: "unknown kind",
			typ:  course,
			cfg:  Config{Name: "x", Kind: Kind("widget"), Target: "x.html"},
		},
		{
			name: "empty target",
			typ:  course,
			cfg:  Config{Name: "x", Kind: KindMacro},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore()
			err := store.Register(tc.typ, tc.cfg)
			if err == nil {
				t.Fatal("expected registration to fail")
			}
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
			}
			if store.Len() != 0 {
				t.Fatalf("failed registration must not be stored, len=%d", store.Len())
			}
		})
	}
}

func TestRegister_LastWriteWins(t *testing.T) {
	course := subject.MustType("LwwCourse")
	store := NewStore()

	store.MustRegister(course, validConfig())
	replacement := Config{Name: "course/alt.html", Kind: KindTemplate, Target: "course/alt.html"}
	store.MustRegister(course, replacement)

	got, ok := store.Lookup(Key{Type: course.Name()})
	if !ok {
		t.Fatal("expected registration to exist")
	}
	if diff := cmp.Diff(replacement, got); diff != "" {
		t.Fatalf("expected replacement config (-want +got):\n%s", diff)
	}
	if store.Len() != 1 {
		t.Fatalf("re-registration must replace, not add: len=%d", store.Len())
	}
}

func TestRegister_NarrowedKeysAreDistinct(t *testing.T) {
	course := subject.MustType("NarrowCourse")
	store := NewStore()

	base := validConfig()
	store.MustRegister(course, base)

	compact := Config{Name: "compact", Kind: KindMacro, Target: "course/macros.html", Variation: "compact"}
	store.MustRegister(course, compact)

	admin := Config{Name: "admin", Kind: KindTemplate, Target: "course/admin.html", Model: "AdminView"}
	store.MustRegister(course, admin)

	if store.Len() != 3 {
		t.Fatalf("expected three distinct keys, len=%d", store.Len())
	}
	if got, ok := store.Lookup(Key{Type: course.Name(), Variation: "compact"}); !ok || got.Name != "compact" {
		t.Fatalf("variation key lookup failed: %v %v", got, ok)
	}
	if got, ok := store.Lookup(Key{Type: course.Name(), Model: "AdminView"}); !ok || got.Name != "admin" {
		t.Fatalf("model key lookup failed: %v %v", got, ok)
	}
}

func TestUnregister(t *testing.T) {
	course := subject.MustType("UnregCourse")
	store := NewStore()
	store.MustRegister(course, validConfig())

	if !store.Unregister(course, "", "") {
		t.Fatal("expected unregister to report removal")
	}
	if store.Unregister(course, "", "") {
		t.Fatal("expected second unregister to report no match")
	}
	if _, ok := store.Lookup(Key{Type: course.Name()}); ok {
		t.Fatal("rule still present after unregister")
	}
}

func TestList_ReturnsSnapshot(t *testing.T) {
	course := subject.MustType("ListCourse")
	store := NewStore()
	store.MustRegister(course, validConfig())

	snapshot := store.List()
	delete(snapshot, Key{Type: course.Name()})

	if store.Len() != 1 {
		t.Fatal("mutating the snapshot must not affect the store")
	}
}

func TestClear(t *testing.T) {
	course := subject.MustType("ClearCourse")
	store := NewStore()
	store.MustRegister(course, validConfig())

	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("expected empty store, len=%d", store.Len())
	}
}

func TestHooks_FireOnEveryMutation(t *testing.T) {
	course := subject.MustType("HookCourse")
	store := NewStore()

	fired := 0
	store.OnMutate(func() { fired++ })

	store.MustRegister(course, validConfig())
	store.Unregister(course, "", "")
	store.Unregister(course, "", "") // no match, still a mutating call
	store.Clear()

	if fired != 4 {
		t.Fatalf("expected 4 hook invocations, got %d", fired)
	}
}

func TestHooks_NotFiredOnInvalidRegister(t *testing.T) {
	store := NewStore()

	fired := 0
	store.OnMutate(func() { fired++ })

	if err := store.Register(subject.MustType("HookCourse2"), Config{}); err == nil {
		t.Fatal("expected validation failure")
	}
	if fired != 0 {
		t.Fatalf("rejected registration must not fire hooks, got %d", fired)
	}
}

func TestKeyString(t *testing.T) {
	cases := []struct {
		key  Key
		want string
	}{
		{Key{Type: "Course"}, "Course"},
		{Key{Type: "Course", Variation: "compact"}, "Course:compact"},
		{Key{Type: "Course", Model: "AdminView"}, "Course:AdminView"},
		{Key{Type: "Course", Model: "AdminView", Variation: "compact"}, "Course:AdminView:compact"},
	}
	for _, tc := range cases {
		if got := tc.key.String(); got != tc.want {
			t.Fatalf("key %+v: want %q, got %q", tc.key, tc.want, got)
		}
	}
}

func TestConventionTarget(t *testing.T) {
	cases := []struct {
		typeName, model, variation string
		want                       string
	}{
		{"Course", "", "", "course.html"},
		{"OnlineCourse", "", "", "online_course.html"},
		{"OnlineCourse", "", "Compact", "online_course/compact.html"},
		{"Course", "AdminView", "detailed", "course/admin_view/detailed.html"},
	}
	for _, tc := range cases {
		if got := ConventionTarget(tc.typeName, tc.model, tc.variation); got != tc.want {
			t.Fatalf("ConventionTarget(%q,%q,%q): want %q, got %q",
				tc.typeName, tc.model, tc.variation, tc.want, got)
		}
	}
}
