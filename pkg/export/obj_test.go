package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rulemesh/rulemesh/pkg/expand"
	"github.com/rulemesh/rulemesh/pkg/mesh"
	"github.com/rulemesh/rulemesh/pkg/rule"
	"github.com/rulemesh/rulemesh/pkg/shape"
	"github.com/rulemesh/rulemesh/pkg/tint"
	"github.com/rulemesh/rulemesh/pkg/transform"
)

// rowMesh assembles n cubes translated along x, optionally hue-shifted
// per repetition.
func rowMesh(t *testing.T, n int, tfs ...transform.Transform) *mesh.Mesh {
	t.Helper()
	b := rule.NewBuilder()
	root := b.Rule("row").Rep(n, rule.ShapeRef("cube"), tfs...)
	g, h, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}
	m, err := mesh.Assemble(expand.Expand(g, h, expand.Policy{MaxDepth: 1}), shape.DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestWriteOBJ_AllTogether(t *testing.T) {
	m := rowMesh(t, 2, transform.TranslateX(1))
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, m); err != nil {
		t.Fatalf("WriteOBJ error: %v", err)
	}
	out := buf.String()

	if got := strings.Count(out, "\nv "); got+boolToInt(strings.HasPrefix(out, "v ")) != 16 {
		t.Errorf("vertex records = %d, want 16", got+boolToInt(strings.HasPrefix(out, "v ")))
	}
	if got := strings.Count(out, "f "); got != 12 {
		t.Errorf("face records = %d, want 12", got)
	}
	if got := strings.Count(out, "o "); got != 1 {
		t.Errorf("object records = %d, want 1", got)
	}
	if !strings.Contains(out, "o mesh\n") {
		t.Errorf("missing default object name, got:\n%s", out)
	}
	if strings.Contains(out, "mtllib") || strings.Contains(out, "usemtl") {
		t.Errorf("material records without a material lib, got:\n%s", out)
	}
}

func TestWriteOBJ_FacesAreOneIndexed(t *testing.T) {
	m := rowMesh(t, 1, transform.TranslateX(1))
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, m); err != nil {
		t.Fatalf("WriteOBJ error: %v", err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.HasPrefix(line, "f ") {
			continue
		}
		if strings.Contains(" "+line[2:]+" ", " 0 ") {
			t.Fatalf("face record references vertex 0: %q", line)
		}
	}
	// The first cube face is {0,1,2,3} in mesh indices.
	if !strings.Contains(buf.String(), "f 1 2 3 4\n") {
		t.Errorf("first face not shifted to 1-based indices:\n%s", buf.String())
	}
}

func TestWriteOBJ_ByInstance(t *testing.T) {
	m := rowMesh(t, 3, transform.TranslateX(1))
	var buf bytes.Buffer
	err := WriteOBJ(&buf, m, WithGrouping(GroupByInstance), WithMaterialLib("row.mtl"))
	if err != nil {
		t.Fatalf("WriteOBJ error: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "mtllib row.mtl\n") {
		t.Errorf("missing mtllib header:\n%s", out)
	}
	for _, want := range []string{"o cube_0\n", "o cube_1\n", "o cube_2\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing object %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "usemtl "); got != 3 {
		t.Errorf("usemtl records = %d, want 3", got)
	}
}

func TestWriteOBJ_ByColor(t *testing.T) {
	// Two repetitions with no color shift share one material; a hue shift
	// per repetition splits them.
	same := rowMesh(t, 2, transform.TranslateX(1))
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, same, WithGrouping(GroupByColor), WithMaterialLib("m.mtl")); err != nil {
		t.Fatalf("WriteOBJ error: %v", err)
	}
	if got := strings.Count(buf.String(), "o color_"); got != 1 {
		t.Errorf("uniform mesh produced %d color objects, want 1", got)
	}

	shifted := rowMesh(t, 2, transform.TranslateX(1), transform.Hue(120))
	buf.Reset()
	if err := WriteOBJ(&buf, shifted, WithGrouping(GroupByColor), WithMaterialLib("m.mtl")); err != nil {
		t.Fatalf("WriteOBJ error: %v", err)
	}
	if got := strings.Count(buf.String(), "o color_"); got != 2 {
		t.Errorf("hue-shifted mesh produced %d color objects, want 2", got)
	}
}

func TestWriteOBJ_BadGrouping(t *testing.T) {
	m := rowMesh(t, 1)
	err := WriteOBJ(&bytes.Buffer{}, m, WithGrouping("bogus"))
	if !errors.Is(err, ErrBadGrouping) {
		t.Errorf("WriteOBJ error = %v, want ErrBadGrouping", err)
	}
}

func TestWriteMTL(t *testing.T) {
	m := rowMesh(t, 3, transform.TranslateX(1), transform.Hue(120))
	var buf bytes.Buffer
	if err := WriteMTL(&buf, m); err != nil {
		t.Fatalf("WriteMTL error: %v", err)
	}
	out := buf.String()

	// Hue 120, 240, 360(=0): green, blue, red.
	if got := strings.Count(out, "newmtl "); got != 3 {
		t.Errorf("materials = %d, want 3", got)
	}
	if !strings.Contains(out, "newmtl mat_00ff00\nKd 0 1 0\n") {
		t.Errorf("missing green material:\n%s", out)
	}
	if !strings.Contains(out, "newmtl mat_0000ff\nKd 0 0 1\n") {
		t.Errorf("missing blue material:\n%s", out)
	}
	if !strings.Contains(out, "newmtl mat_ff0000\nKd 1 0 0\n") {
		t.Errorf("missing red material:\n%s", out)
	}
}

func TestMaterialName(t *testing.T) {
	if got := MaterialName(tint.Color{H: 0, S: 1, V: 1}); got != "mat_ff0000" {
		t.Errorf("MaterialName(red) = %q, want mat_ff0000", got)
	}
}

func TestWriteJSON(t *testing.T) {
	m := rowMesh(t, 2, transform.TranslateX(1))
	var buf bytes.Buffer
	if err := WriteJSON(&buf, m, WithJSONColors()); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	var doc struct {
		Vertices [][3]float64 `json:"vertices"`
		Colors   []string     `json:"colors"`
		Faces    [][]int      `json:"faces"`
		Groups   []struct {
			Shape       string `json:"shape"`
			VertexStart int    `json:"vertex_start"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Vertices) != 16 || len(doc.Colors) != 16 || len(doc.Faces) != 12 {
		t.Errorf("document has %d vertices, %d colors, %d faces; want 16, 16, 12",
			len(doc.Vertices), len(doc.Colors), len(doc.Faces))
	}
	if len(doc.Groups) != 2 || doc.Groups[1].Shape != "cube" || doc.Groups[1].VertexStart != 8 {
		t.Errorf("groups = %+v, want two cube groups at vertex starts 0 and 8", doc.Groups)
	}
	if doc.Colors[0] != "#ff0000" {
		t.Errorf("first color = %q, want #ff0000", doc.Colors[0])
	}
}

func TestWriteJSON_Indented(t *testing.T) {
	m := rowMesh(t, 1)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, m, WithJSONIndent("  ")); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"vertices\"") {
		t.Errorf("output not indented:\n%s", buf.String())
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
