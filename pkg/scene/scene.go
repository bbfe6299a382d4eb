// Package scene loads rule graphs from TOML scene documents.
//
// A scene names its rules, their steps, and the generation settings in a
// single file:
//
//	name = "spiral"
//	depth = 12
//
//	[[rule]]
//	name = "root"
//
//	[[rule.step]]
//	count = 36
//	transforms = ["rz 10", "tx 1.5", "hue 10"]
//	shape = "cube"
//
//	[export]
//	formats = ["obj", "mtl"]
//	grouping = "color"
//
// Decoding is strict: keys the schema does not know are rejected rather
// than silently ignored, so typos surface as errors instead of missing
// geometry.
package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	apperrors "github.com/rulemesh/rulemesh/pkg/errors"
	"github.com/rulemesh/rulemesh/pkg/expand"
	"github.com/rulemesh/rulemesh/pkg/rule"
	"github.com/rulemesh/rulemesh/pkg/transform"
)

var (
	// ErrNoRules is returned by [Document.Compile] when the scene defines
	// no rules. The first rule in the document is the expansion root.
	ErrNoRules = errors.New("scene defines no rules")

	// ErrBadTarget is returned by [Document.Compile] when a step names
	// both a shape and a rule, or neither.
	ErrBadTarget = errors.New("step must target exactly one of shape or rule")

	// ErrUnknownRuleName is returned by [Document.Compile] when a step
	// references a rule name the scene does not define.
	ErrUnknownRuleName = errors.New("step references undefined rule")

	// ErrUnknownKeys is returned by [Parse] when the document contains
	// keys outside the scene schema.
	ErrUnknownKeys = errors.New("scene contains unknown keys")
)

// Document is a parsed scene. Compile it into a rule graph with
// [Document.Compile].
type Document struct {
	// Name identifies the scene; it seeds output filenames.
	Name string `toml:"name"`
	// Depth bounds the expansion. Zero means the engine default.
	Depth int `toml:"depth"`
	// Rules in document order; the first is the expansion root.
	Rules []Rule `toml:"rule"`
	// Export carries the output settings.
	Export Export `toml:"export"`
}

// Rule is one named rule of the scene.
type Rule struct {
	Name string `toml:"name"`
	// Limit caps how often this rule may occur along a single expansion
	// path, overriding the scene depth for this rule. Zero means no
	// override.
	Limit int    `toml:"limit"`
	Steps []Step `toml:"step"`
}

// Step is one entry of a rule. Exactly one of Shape or Rule must be set.
type Step struct {
	// Count replicates the step's transform stack cumulatively. Omitted
	// means 1; an explicit 0 is legal and contributes nothing.
	Count *int `toml:"count"`
	// Transforms in compact op notation, e.g. ["rz 10", "tx 1.5"].
	Transforms []string `toml:"transforms"`
	Shape      string   `toml:"shape"`
	Rule       string   `toml:"rule"`
}

// Export holds the scene's output settings. Values are carried verbatim;
// the pipeline validates them against its format and grouping tables.
type Export struct {
	Formats  []string `toml:"formats"`
	Grouping string   `toml:"grouping"`
	Colors   bool     `toml:"colors"`
}

// Load reads and parses a scene file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	return Parse(data)
}

// Parse parses a TOML scene document, rejecting unknown keys.
func Parse(data []byte) (*Document, error) {
	var doc Document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
	}
	return &doc, nil
}

// Compiled is the runnable form of a scene: the rule graph, its root
// handle, and the termination policy assembled from the scene's depth
// and per-rule limits.
type Compiled struct {
	Graph  *rule.Graph
	Root   rule.Handle
	Policy expand.Policy
}

// Compile builds the rule graph. Rules are registered first so steps may
// reference any rule in the document regardless of order; the first rule
// is the root.
func (d *Document) Compile() (*Compiled, error) {
	if len(d.Rules) == 0 {
		return nil, ErrNoRules
	}

	g := rule.New()
	handles := make([]rule.Handle, len(d.Rules))
	for i, r := range d.Rules {
		h, err := g.Add(r.Name)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		handles[i] = h
	}

	overrides := make(map[rule.Handle]int)
	for i, r := range d.Rules {
		if r.Limit > 0 {
			overrides[handles[i]] = r.Limit
		}
		for j, s := range r.Steps {
			step, err := d.compileStep(g, s)
			if err != nil {
				return nil, fmt.Errorf("rule %q step %d: %w", g.Name(handles[i]), j, err)
			}
			if err := g.Append(handles[i], step); err != nil {
				return nil, fmt.Errorf("rule %q step %d: %w", g.Name(handles[i]), j, err)
			}
		}
	}

	policy := expand.Policy{MaxDepth: d.Depth}
	if len(overrides) > 0 {
		policy.Overrides = overrides
	}
	return &Compiled{Graph: g, Root: handles[0], Policy: policy}, nil
}

func (d *Document) compileStep(g *rule.Graph, s Step) (rule.Step, error) {
	var target rule.Target
	switch {
	case s.Shape != "" && s.Rule != "":
		return rule.Step{}, fmt.Errorf("%w: shape %q and rule %q", ErrBadTarget, s.Shape, s.Rule)
	case s.Shape != "":
		// Shape ids become registry lookups and OBJ object names, so
		// reject control characters and whitespace here rather than
		// letting them leak into artifacts.
		if err := apperrors.ValidateShapeID(s.Shape); err != nil {
			return rule.Step{}, err
		}
		target = rule.ShapeRef(s.Shape)
	case s.Rule != "":
		h, ok := g.Lookup(s.Rule)
		if !ok {
			return rule.Step{}, fmt.Errorf("%w: %q", ErrUnknownRuleName, s.Rule)
		}
		target = rule.RuleRef(h)
	default:
		return rule.Step{}, ErrBadTarget
	}

	stack, err := transform.ParseStack(s.Transforms)
	if err != nil {
		return rule.Step{}, err
	}

	count := 1
	if s.Count != nil {
		count = *s.Count
	}
	return rule.Step{Count: count, Stack: stack, Target: target}, nil
}
