package subject

import "fmt"

// Type is an immutable descriptor for a logical subject type. Equality is by
// name at resolution time; the descriptor itself carries the declared bases
// and the precomputed linearization.
type Type struct {
	name  string
	bases []*Type
	chain []*Type
}

// NewType declares a type with the given bases, nearest first. The full
// ancestor chain is linearized eagerly using the C3 merge; hierarchies that
// cannot be linearized consistently are rejected here rather than at
// resolution time.
func NewType(name string, bases ...*Type) (*Type, error) {
	if name == "" {
		return nil, fmt.Errorf("subject: type name is required")
	}
	for i, base := range bases {
		if base == nil {
			return nil, fmt.Errorf("subject: type %q: base %d is nil", name, i)
		}
	}

	t := &Type{
		name:  name,
		bases: append([]*Type(nil), bases...),
	}
	chain, err := linearize(t)
	if err != nil {
		return nil, err
	}
	t.chain = chain
	return t, nil
}

// MustType panics on declaration failure. Useful for package-level type
// hierarchies wired at init time.
func MustType(name string, bases ...*Type) *Type {
	t, err := NewType(name, bases...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the type's declared name.
func (t *Type) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Bases returns a copy of the declared bases, nearest first.
func (t *Type) Bases() []*Type {
	if t == nil {
		return nil
	}
	return append([]*Type(nil), t.bases...)
}

// Linearization returns a copy of the full ancestor chain, starting with the
// type itself and walking nearest to furthest ancestor.
func (t *Type) Linearization() []*Type {
	if t == nil {
		return nil
	}
	return append([]*Type(nil), t.chain...)
}

func (t *Type) String() string {
	return t.Name()
}

// linearize computes L(t) = t + merge(L(b1)...L(bn), [b1...bn]).
func linearize(t *Type) ([]*Type, error) {
	if len(t.bases) == 0 {
		return []*Type{t}, nil
	}

	sequences := make([][]*Type, 0, len(t.bases)+1)
	for _, base := range t.bases {
		sequences = append(sequences, append([]*Type(nil), base.chain...))
	}
	sequences = append(sequences, append([]*Type(nil), t.bases...))

	merged, err := mergeSequences(sequences)
	if err != nil {
		return nil, fmt.Errorf("subject: type %q: %w", t.name, err)
	}
	return append([]*Type{t}, merged...), nil
}

func mergeSequences(sequences [][]*Type) ([]*Type, error) {
	var out []*Type
	for {
		sequences = dropEmpty(sequences)
		if len(sequences) == 0 {
			return out, nil
		}

		candidate := pickHead(sequences)
		if candidate == nil {
			return nil, fmt.Errorf("inconsistent hierarchy, cannot linearize")
		}

		out = append(out, candidate)
		for i, seq := range sequences {
			if len(seq) > 0 && seq[0] == candidate {
				sequences[i] = seq[1:]
			}
		}
	}
}

// pickHead returns the first sequence head that appears in no other
// sequence's tail, or nil when every head is blocked.
func pickHead(sequences [][]*Type) *Type {
	for _, seq := range sequences {
		head := seq[0]
		if !inAnyTail(head, sequences) {
			return head
		}
	}
	return nil
}

func inAnyTail(t *Type, sequences [][]*Type) bool {
	for _, seq := range sequences {
		for _, other := range seq[1:] {
			if other == t {
				return true
			}
		}
	}
	return false
}

func dropEmpty(sequences [][]*Type) [][]*Type {
	out := sequences[:0]
	for _, seq := range sequences {
		if len(seq) > 0 {
			out = append(out, seq)
		}
	}
	return out
}
