package subject

import "testing"

type course struct{ Title string }

var courseType = MustType("Course")

func (course) RenderType() *Type { return courseType }

type plainValue struct{ N int }

func TestTypeOf_Renderable(t *testing.T) {
	if got := TypeOf(course{Title: "Go"}); got != courseType {
		t.Fatalf("expected declared type, got %q", got.Name())
	}
}

func TestTypeOf_PlainValueUsesGoTypeName(t *testing.T) {
	got := TypeOf(plainValue{N: 1})
	if got.Name() != "plainValue" {
		t.Fatalf("expected reflected leaf type, got %q", got.Name())
	}
	if len(got.Linearization()) != 1 {
		t.Fatalf("reflected types must have no ancestors, got %d entries", len(got.Linearization()))
	}
}

func TestTypeOf_MemoisesPerConcreteType(t *testing.T) {
	first := TypeOf(plainValue{N: 1})
	second := TypeOf(&plainValue{N: 2})
	if first != second {
		t.Fatal("expected identical descriptor for value and pointer of the same type")
	}
}

func TestTypeOf_Nil(t *testing.T) {
	got := TypeOf(nil)
	if got == nil || got.Name() != "<nil>" {
		t.Fatalf("expected the nil sentinel type, got %v", got)
	}
}
