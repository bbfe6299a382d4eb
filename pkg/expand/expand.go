// Package expand implements the rule traversal engine: it walks a rule
// graph depth-first, accumulates transform and color state along each
// path, and emits one instance per shape reference reached.
//
// Traversal order is part of the contract: steps in listed order,
// replications in sequence order, depth-first into subrules. Downstream
// consumers rely on it for deterministic vertex and face ordering.
//
// Rule graphs may cycle, so every expansion carries a termination
// policy. Hitting the recursion bound silently prunes the branch; it is
// never an error, which is what lets bounded self-referential rules
// (fractal-like patterns) terminate naturally.
package expand

import (
	"iter"
	"slices"

	"github.com/rulemesh/rulemesh/pkg/rule"
	"github.com/rulemesh/rulemesh/pkg/transform"
)

// DefaultMaxDepth is the recursion bound used when a policy does not
// specify one.
const DefaultMaxDepth = 10

// Policy is the caller-supplied termination policy for one expansion
// run. MaxDepth bounds the number of rule levels entered along any path
// (the root counts as level one); zero means [DefaultMaxDepth], negative
// expands nothing. Overrides optionally re-bounds individual rules: the
// named rule may appear at most that many times on a single path,
// regardless of remaining global depth.
type Policy struct {
	MaxDepth  int
	Overrides map[rule.Handle]int
}

// Instance is one concrete placement of a shape: the shape id, the
// accumulated state to apply to its base geometry, and the chain of rule
// handles traversed to reach it. The path is carried for error context
// when assembly fails on an unknown shape.
type Instance struct {
	ShapeID string
	State   transform.State
	Path    []rule.Handle
}

// Expand walks the graph depth-first from root with an identity incoming
// state and returns the lazy sequence of instances. The sequence is
// finite for any finite policy and restartable: each range starts over
// from the root.
func Expand(g *rule.Graph, root rule.Handle, p Policy) iter.Seq[Instance] {
	maxDepth := p.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	return func(yield func(Instance) bool) {
		if maxDepth < 1 {
			return
		}
		walk(g, root, p, maxDepth, transform.IdentityState(), []rule.Handle{root}, yield)
	}
}

// walk expands one rule under the given incoming state. path holds the
// rule handles entered so far, h last; its length is the current depth.
// Returns false once the consumer stops the iteration.
func walk(g *rule.Graph, h rule.Handle, p Policy, maxDepth int, in transform.State, path []rule.Handle, yield func(Instance) bool) bool {
	for _, step := range g.Steps(h) {
		for state := range transform.Replicate(step.Count, step.Stack, in) {
			switch target := step.Target.(type) {
			case rule.ShapeRef:
				inst := Instance{
					ShapeID: string(target),
					State:   state,
					Path:    slices.Clone(path),
				}
				if !yield(inst) {
					return false
				}
			case rule.RuleRef:
				next := rule.Handle(target)
				if len(path)+1 > maxDepth {
					continue // depth exhausted: prune silently
				}
				if limit, ok := p.Overrides[next]; ok && occurrences(path, next)+1 > limit {
					continue
				}
				if !walk(g, next, p, maxDepth, state, append(path, next), yield) {
					return false
				}
			}
		}
	}
	return true
}

func occurrences(path []rule.Handle, h rule.Handle) int {
	n := 0
	for _, p := range path {
		if p == h {
			n++
		}
	}
	return n
}

// Count drains a full expansion and returns the number of instances it
// produces. Useful for sizing a run before assembling it.
func Count(g *rule.Graph, root rule.Handle, p Policy) int {
	n := 0
	for range Expand(g, root, p) {
		n++
	}
	return n
}
