// Package rule defines the arena-backed rule graphs the expansion engine
// traverses.
//
// Rules are addressed by stable integer handles rather than pointers so
// that a rule can reference itself, directly or through a cycle, without
// ownership loops. Graphs are constructed once, validated eagerly, and
// read-only thereafter: structural defects (negative counts, dangling
// handles, out-of-range color shifts) are rejected at construction time,
// never discovered mid-traversal.
package rule

import (
	"errors"
	"fmt"

	"github.com/rulemesh/rulemesh/pkg/transform"
)

var (
	// ErrNegativeCount is returned by [Graph.Append] when a step's
	// replication count is negative. A count of zero is legal and
	// contributes nothing.
	ErrNegativeCount = errors.New("replication count must not be negative")

	// ErrEmptyShape is returned by [Graph.Append] when a shape reference
	// has an empty id.
	ErrEmptyShape = errors.New("shape id must not be empty")

	// ErrDanglingRule is returned by [Graph.Append] when a rule reference
	// points at a handle outside the arena. Forward references within the
	// arena are fine; add all rules before appending their steps.
	ErrDanglingRule = errors.New("rule reference outside graph")

	// ErrUnknownRule is returned by [Graph.Steps], [Graph.Name], and
	// [Graph.Append] when the handle does not identify a rule.
	ErrUnknownRule = errors.New("unknown rule handle")

	// ErrDuplicateRuleName is returned by [Graph.Add] when the name is
	// already taken. Anonymous rules (empty name) may repeat.
	ErrDuplicateRuleName = errors.New("duplicate rule name")

	// ErrMissingTarget is returned by [Graph.Append] when a step has no
	// target.
	ErrMissingTarget = errors.New("step has no target")
)

// Handle is a stable identifier for a rule within its graph. Handles are
// dense indices assigned by [Graph.Add] in insertion order.
type Handle int

// Target is the polymorphic end of a step: either a [ShapeRef] naming
// base geometry or a [RuleRef] naming another rule in the same graph.
type Target interface {
	isTarget()
}

// ShapeRef references base geometry by shape id. Resolution happens at
// assembly time through the shape provider.
type ShapeRef string

func (ShapeRef) isTarget() {}

// RuleRef references another rule in the same graph by handle.
// Self-reference and mutual reference are permitted; the expansion
// engine bounds recursion with its termination policy.
type RuleRef Handle

func (RuleRef) isTarget() {}

// Step is one entry of a rule: a transform stack applied Count times
// cumulatively, each repetition targeting either a shape or a subrule.
// Count 1 with an empty stack is a plain untransformed reference.
type Step struct {
	Count  int
	Stack  transform.Stack
	Target Target
}

type node struct {
	name  string
	steps []Step
}

// Graph is the arena holding a set of rules. The zero value is not
// usable; create graphs with [New]. Graph is not safe for concurrent
// mutation, but any number of expansions may read it concurrently once
// construction is done.
type Graph struct {
	nodes  []*node
	byName map[string]Handle
}

// New creates an empty rule graph.
func New() *Graph {
	return &Graph{byName: make(map[string]Handle)}
}

// Add creates a rule and returns its handle. The name may be empty for
// anonymous rules; non-empty names must be unique within the graph.
func (g *Graph) Add(name string) (Handle, error) {
	if name != "" {
		if _, exists := g.byName[name]; exists {
			return 0, fmt.Errorf("%w: %q", ErrDuplicateRuleName, name)
		}
	}
	h := Handle(len(g.nodes))
	g.nodes = append(g.nodes, &node{name: name})
	if name != "" {
		g.byName[name] = h
	}
	return h, nil
}

// Append validates a step and appends it to the rule's step list.
// Validation covers the count, the transform stack's color shifts, and
// the target: shape ids must be non-empty and rule references must point
// inside the arena.
func (g *Graph) Append(h Handle, step Step) error {
	if !g.valid(h) {
		return fmt.Errorf("%w: %d", ErrUnknownRule, h)
	}
	if step.Count < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeCount, step.Count)
	}
	if err := step.Stack.Validate(); err != nil {
		return err
	}
	switch target := step.Target.(type) {
	case ShapeRef:
		if target == "" {
			return ErrEmptyShape
		}
	case RuleRef:
		if !g.valid(Handle(target)) {
			return fmt.Errorf("%w: %d", ErrDanglingRule, target)
		}
	case nil:
		return ErrMissingTarget
	}
	g.nodes[h].steps = append(g.nodes[h].steps, step)
	return nil
}

// Lookup returns the handle for a named rule.
func (g *Graph) Lookup(name string) (Handle, bool) {
	h, ok := g.byName[name]
	return h, ok
}

// Name returns the rule's name, which may be empty for anonymous rules.
func (g *Graph) Name(h Handle) string {
	if !g.valid(h) {
		return ""
	}
	return g.nodes[h].name
}

// Steps returns the rule's steps in listed order. The returned slice is
// the graph's own storage; callers must not modify it.
func (g *Graph) Steps(h Handle) []Step {
	if !g.valid(h) {
		return nil
	}
	return g.nodes[h].steps
}

// Len returns the number of rules in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Handles returns all rule handles in insertion order.
func (g *Graph) Handles() []Handle {
	hs := make([]Handle, len(g.nodes))
	for i := range g.nodes {
		hs[i] = Handle(i)
	}
	return hs
}

// ShapeIDs returns the distinct shape ids referenced anywhere in the
// graph, in first-reference order.
func (g *Graph) ShapeIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, n := range g.nodes {
		for _, s := range n.steps {
			if ref, ok := s.Target.(ShapeRef); ok && !seen[string(ref)] {
				seen[string(ref)] = true
				ids = append(ids, string(ref))
			}
		}
	}
	return ids
}

func (g *Graph) valid(h Handle) bool {
	return h >= 0 && int(h) < len(g.nodes)
}

// label returns a display name for a rule: its name, or "rule N" for
// anonymous rules.
func (g *Graph) label(h Handle) string {
	if n := g.Name(h); n != "" {
		return n
	}
	return fmt.Sprintf("rule %d", h)
}
