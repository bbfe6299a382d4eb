package rule

import "github.com/rulemesh/rulemesh/pkg/transform"

// Builder is the fluent authoring surface over [Graph]. It is pure
// syntax sugar: every call maps onto [Graph.Add] and [Graph.Append],
// with the first error recorded and all later calls ignored until
// [Builder.Build] reports it.
//
//	b := rule.NewBuilder()
//	root := b.Rule("root")
//	root.Rep(36, rule.ShapeRef("cube"), transform.RotateZ(10), transform.TranslateX(1))
//	g, h, err := b.Build(root)
type Builder struct {
	graph *Graph
	err   error
}

// NewBuilder creates a builder over a fresh graph.
func NewBuilder() *Builder {
	return &Builder{graph: New()}
}

// Rule declares a named rule and returns a handle-scoped builder for its
// steps. Pass an empty name for an anonymous subrule.
func (b *Builder) Rule(name string) *RuleBuilder {
	h := Handle(-1)
	if b.err == nil {
		h, b.err = b.graph.Add(name)
	}
	return &RuleBuilder{b: b, h: h}
}

// Build returns the finished graph and the handle of the given root
// builder, or the first error encountered while building.
func (b *Builder) Build(root *RuleBuilder) (*Graph, Handle, error) {
	if b.err != nil {
		return nil, 0, b.err
	}
	return b.graph, root.h, nil
}

// RuleBuilder appends steps to one rule. Methods return the builder for
// chaining.
type RuleBuilder struct {
	b *Builder
	h Handle
}

// Ref returns a target referencing this rule, for recursion or mutual
// reference between rules.
func (r *RuleBuilder) Ref() Target { return RuleRef(r.h) }

// Handle returns the rule's handle.
func (r *RuleBuilder) Handle() Handle { return r.h }

// To appends a single-application step: the transforms are applied once
// and the target is expanded under the resulting state.
func (r *RuleBuilder) To(target Target, tfs ...transform.Transform) *RuleBuilder {
	return r.Rep(1, target, tfs...)
}

// Rep appends a replicated step: the transform stack is applied
// cumulatively n times, expanding the target once per repetition.
func (r *RuleBuilder) Rep(n int, target Target, tfs ...transform.Transform) *RuleBuilder {
	if r.b.err != nil {
		return r
	}
	r.b.err = r.b.graph.Append(r.h, Step{
		Count:  n,
		Stack:  transform.Stack(tfs),
		Target: target,
	})
	return r
}
