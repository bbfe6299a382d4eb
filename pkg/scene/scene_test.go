package scene

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/rulemesh/rulemesh/pkg/errors"
	"github.com/rulemesh/rulemesh/pkg/expand"
	"github.com/rulemesh/rulemesh/pkg/rule"
	"github.com/rulemesh/rulemesh/pkg/transform"
)

const spiralScene = `
name = "spiral"
depth = 12

[[rule]]
name = "root"

[[rule.step]]
count = 36
transforms = ["rz 10", "tx 1.5", "hue 10"]
shape = "cube"

[export]
formats = ["obj", "mtl"]
grouping = "color"
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(spiralScene))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if doc.Name != "spiral" || doc.Depth != 12 {
		t.Errorf("header = %q depth %d, want spiral depth 12", doc.Name, doc.Depth)
	}
	if len(doc.Rules) != 1 || len(doc.Rules[0].Steps) != 1 {
		t.Fatalf("rules = %+v, want one rule with one step", doc.Rules)
	}
	step := doc.Rules[0].Steps[0]
	if step.Count == nil || *step.Count != 36 || step.Shape != "cube" {
		t.Errorf("step = %+v, want count 36 shape cube", step)
	}
	if doc.Export.Grouping != "color" || len(doc.Export.Formats) != 2 {
		t.Errorf("export = %+v", doc.Export)
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`name = "x"` + "\n" + `dept = 5`))
	if !errors.Is(err, ErrUnknownKeys) {
		t.Fatalf("Parse error = %v, want ErrUnknownKeys", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte(`name = [`)); err == nil {
		t.Error("Parse of malformed TOML succeeded")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spiral.toml")
	if err := os.WriteFile(path, []byte(spiralScene), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if doc.Name != "spiral" {
		t.Errorf("Name = %q, want spiral", doc.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestCompile(t *testing.T) {
	doc, err := Parse([]byte(spiralScene))
	if err != nil {
		t.Fatal(err)
	}
	c, err := doc.Compile()
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if c.Graph.Len() != 1 {
		t.Errorf("graph has %d rules, want 1", c.Graph.Len())
	}
	if c.Policy.MaxDepth != 12 {
		t.Errorf("policy depth = %d, want 12", c.Policy.MaxDepth)
	}

	steps := c.Graph.Steps(c.Root)
	if len(steps) != 1 || steps[0].Count != 36 {
		t.Fatalf("root steps = %+v", steps)
	}
	if steps[0].Target != rule.ShapeRef("cube") {
		t.Errorf("target = %v, want cube", steps[0].Target)
	}
	want := transform.Stack{transform.RotateZ(10), transform.TranslateX(1.5), transform.Hue(10)}
	for i, tr := range steps[0].Stack {
		if tr != want[i] {
			t.Errorf("stack[%d] = %v, want %v", i, tr, want[i])
		}
	}
	if n := expand.Count(c.Graph, c.Root, c.Policy); n != 36 {
		t.Errorf("expansion yields %d instances, want 36", n)
	}
}

func TestCompile_CrossRuleReferences(t *testing.T) {
	// "trunk" references "branch" before it is defined; registration
	// happens before step compilation so document order does not matter.
	doc, err := Parse([]byte(`
[[rule]]
name = "trunk"

[[rule.step]]
rule = "branch"
transforms = ["ty 1"]

[[rule]]
name = "branch"
limit = 4

[[rule.step]]
shape = "cube"

[[rule.step]]
count = 2
rule = "branch"
transforms = ["s 0.5", "ty 1"]
`))
	if err != nil {
		t.Fatal(err)
	}
	c, err := doc.Compile()
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	branch, ok := c.Graph.Lookup("branch")
	if !ok {
		t.Fatal("branch rule not in graph")
	}
	if c.Policy.Overrides[branch] != 4 {
		t.Errorf("branch override = %d, want 4", c.Policy.Overrides[branch])
	}
	if c.Policy.MaxDepth != 0 {
		t.Errorf("MaxDepth = %d, want 0 (engine default)", c.Policy.MaxDepth)
	}
	// Omitted count defaults to 1.
	if steps := c.Graph.Steps(c.Root); steps[0].Count != 1 {
		t.Errorf("trunk step count = %d, want 1", steps[0].Count)
	}
}

func TestCompile_RejectsInvalidShapeIDs(t *testing.T) {
	// Shape ids end up in OBJ object names; whitespace and control
	// characters must be rejected at compile time.
	for _, id := range []string{"cu be", "cube\x01", strings.Repeat("c", 129)} {
		doc := &Document{Rules: []Rule{{Name: "r", Steps: []Step{{Shape: id}}}}}
		if _, err := doc.Compile(); !apperrors.Is(err, apperrors.ErrCodeInvalidScene) {
			t.Errorf("Compile with shape id %q error = %v, want INVALID_SCENE", id, err)
		}
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"no rules", `name = "empty"`, ErrNoRules},
		{"both targets", `
[[rule]]
name = "r"
[[rule.step]]
shape = "cube"
rule = "r"
`, ErrBadTarget},
		{"no target", `
[[rule]]
name = "r"
[[rule.step]]
count = 2
`, ErrBadTarget},
		{"unknown rule", `
[[rule]]
name = "r"
[[rule.step]]
rule = "ghost"
`, ErrUnknownRuleName},
		{"duplicate name", `
[[rule]]
name = "r"
[[rule]]
name = "r"
`, rule.ErrDuplicateRuleName},
		{"bad op", `
[[rule]]
name = "r"
[[rule.step]]
shape = "cube"
transforms = ["spin 30"]
`, transform.ErrBadOp},
		{"negative count", `
[[rule]]
name = "r"
[[rule.step]]
count = -1
shape = "cube"
`, rule.ErrNegativeCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if _, err := doc.Compile(); !errors.Is(err, tt.want) {
				t.Errorf("Compile error = %v, want %v", err, tt.want)
			}
		})
	}
}
