package rule

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts a rule graph to Graphviz DOT format. Rules are drawn as
// rounded boxes, shape references as shaded boxes, and each step as an
// edge labeled with its replication count and transform stack. Cycles
// (self-reference or mutual reference) render as back edges, which makes
// them easy to spot when debugging a runaway rule.
//
// The resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph rules {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, h := range g.Handles() {
		fmt.Fprintf(&buf, "  %q;\n", g.label(h))
	}

	shapes := g.ShapeIDs()
	if len(shapes) > 0 {
		buf.WriteString("\n")
		for _, id := range shapes {
			fmt.Fprintf(&buf, "  %q [style=\"filled\", fillcolor=lightgrey];\n", "shape:"+id)
		}
	}

	buf.WriteString("\n")
	for _, h := range g.Handles() {
		for _, step := range g.Steps(h) {
			var to string
			switch target := step.Target.(type) {
			case ShapeRef:
				to = "shape:" + string(target)
			case RuleRef:
				to = g.label(Handle(target))
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", g.label(h), to, edgeLabel(step))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeLabel(step Step) string {
	label := fmt.Sprintf("x%d", step.Count)
	if len(step.Stack) > 0 {
		label += " [" + step.Stack.String() + "]"
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
