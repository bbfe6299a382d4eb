package transform

import (
	"iter"

	"github.com/rulemesh/rulemesh/pkg/geom"
	"github.com/rulemesh/rulemesh/pkg/tint"
)

// State is the accumulated traversal state: the net affine matrix and
// the net color delta gathered along a path through a rule graph. States
// are values; every traversal path carries its own copy.
type State struct {
	Matrix geom.Mat4
	Color  tint.Delta
}

// IdentityState returns the neutral state: identity matrix, zero delta.
func IdentityState() State {
	return State{Matrix: geom.Identity()}
}

// Compose applies every transform in the stack, in listed order, to the
// incoming state. Spatial transforms right-multiply the matrix
// (out = in * T1 * ... * Tn), so each one acts in the frame established
// by its predecessors. Color deltas add, independent of spatial order.
func Compose(stack Stack, in State) State {
	out := in
	for _, t := range stack {
		if t.IsSpatial() {
			out.Matrix = out.Matrix.Mul(t.matrix())
		} else {
			out.Color = out.Color.Add(t.delta())
		}
	}
	return out
}

// Replicate returns a lazy sequence of count accumulated states: the
// i-th element is the stack composed i times onto in. Each repetition
// builds on the previous one, which is what turns a small rotation plus
// a small translation into a helix when repeated. A count of zero yields
// an empty sequence.
//
// The sequence is restartable: every range over it recomputes from in.
func Replicate(count int, stack Stack, in State) iter.Seq[State] {
	return func(yield func(State) bool) {
		s := in
		for i := 0; i < count; i++ {
			s = Compose(stack, s)
			if !yield(s) {
				return
			}
		}
	}
}
