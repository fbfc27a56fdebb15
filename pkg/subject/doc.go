// Package subject describes the runtime values the render pipeline dispatches
// on. A Type is an explicit, named descriptor with declared bases; its
// ancestor chain is the C3 linearization of the declared hierarchy, computed
// once at construction so resolution order is deterministic and testable.
// Values that do not implement Renderable fall back to a reflection-derived
// leaf type with no ancestors.
package subject
