// Package export serializes assembled meshes to interchange formats:
// Wavefront OBJ with an optional MTL material sidecar, and a JSON
// document for downstream tooling.
//
// Output is deterministic for a given mesh and options, which keeps
// artifact content hashes stable across runs.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rulemesh/rulemesh/pkg/mesh"
	"github.com/rulemesh/rulemesh/pkg/tint"
)

// ErrBadGrouping is returned by [WriteOBJ] when the grouping mode is not
// one of the [Grouping] constants.
var ErrBadGrouping = errors.New("invalid grouping mode")

// Grouping selects how instances map onto OBJ objects.
type Grouping string

const (
	// GroupAll emits the whole mesh as a single object.
	GroupAll Grouping = "all"
	// GroupByInstance emits one object per assembled instance.
	GroupByInstance Grouping = "instance"
	// GroupByColor buckets instances by color and emits one object per
	// distinct color, each bound to its material.
	GroupByColor Grouping = "color"
)

// ValidGroupings lists the accepted grouping modes.
var ValidGroupings = []Grouping{GroupAll, GroupByInstance, GroupByColor}

// OBJOption configures OBJ output via [WriteOBJ].
type OBJOption func(*objWriter)

type objWriter struct {
	grouping Grouping
	mtllib   string
	name     string
}

// WithGrouping sets the object grouping mode. The default is [GroupAll].
func WithGrouping(g Grouping) OBJOption { return func(w *objWriter) { w.grouping = g } }

// WithMaterialLib references an MTL sidecar by filename and binds each
// object to its material with usemtl records. Write the sidecar itself
// with [WriteMTL]. Without this option no material records are emitted
// and colors are carried only by the MTL-less geometry.
func WithMaterialLib(filename string) OBJOption { return func(w *objWriter) { w.mtllib = filename } }

// WithObjectName sets the object name used by [GroupAll]. The default is
// "mesh".
func WithObjectName(name string) OBJOption { return func(w *objWriter) { w.name = name } }

// WriteOBJ writes the mesh as a Wavefront OBJ document. Vertex records
// come first in mesh order, so face indices are the mesh's own indices
// shifted to OBJ's 1-based convention regardless of grouping.
func WriteOBJ(w io.Writer, m *mesh.Mesh, opts ...OBJOption) error {
	ow := objWriter{grouping: GroupAll, name: "mesh"}
	for _, opt := range opts {
		opt(&ow)
	}

	bw := bufio.NewWriter(w)
	if ow.mtllib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", ow.mtllib)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(v.Position.X), ftoa(v.Position.Y), ftoa(v.Position.Z))
	}

	var err error
	switch ow.grouping {
	case GroupAll:
		err = ow.writeAll(bw, m)
	case GroupByInstance:
		err = ow.writeByInstance(bw, m)
	case GroupByColor:
		err = ow.writeByColor(bw, m)
	default:
		return fmt.Errorf("%w: %q", ErrBadGrouping, ow.grouping)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

func (ow *objWriter) writeAll(bw *bufio.Writer, m *mesh.Mesh) error {
	fmt.Fprintf(bw, "o %s\n", ow.name)
	if ow.mtllib != "" && len(m.Groups) > 0 {
		fmt.Fprintf(bw, "usemtl %s\n", MaterialName(groupColor(m, 0)))
	}
	for _, f := range m.Faces {
		writeFace(bw, f)
	}
	return nil
}

func (ow *objWriter) writeByInstance(bw *bufio.Writer, m *mesh.Mesh) error {
	for i, g := range m.Groups {
		fmt.Fprintf(bw, "o %s_%d\n", g.ShapeID, i)
		if ow.mtllib != "" {
			fmt.Fprintf(bw, "usemtl %s\n", MaterialName(groupColor(m, i)))
		}
		for _, f := range m.Faces[g.FaceStart : g.FaceStart+g.FaceCount] {
			writeFace(bw, f)
		}
	}
	return nil
}

func (ow *objWriter) writeByColor(bw *bufio.Writer, m *mesh.Mesh) error {
	// Bucket instance groups by color, preserving first-seen order.
	byColor := make(map[string][]int)
	var order []string
	for i := range m.Groups {
		hex := groupColor(m, i).Hex()
		if _, seen := byColor[hex]; !seen {
			order = append(order, hex)
		}
		byColor[hex] = append(byColor[hex], i)
	}

	for _, hex := range order {
		fmt.Fprintf(bw, "o color_%s\n", hex[1:])
		if ow.mtllib != "" {
			fmt.Fprintf(bw, "usemtl %s\n", MaterialName(groupColor(m, byColor[hex][0])))
		}
		for _, gi := range byColor[hex] {
			g := m.Groups[gi]
			for _, f := range m.Faces[g.FaceStart : g.FaceStart+g.FaceCount] {
				writeFace(bw, f)
			}
		}
	}
	return nil
}

// WriteMTL writes the material sidecar: one newmtl record per distinct
// instance color, with the diffuse component set from the HSV color's RGB
// conversion. Materials appear in first-seen instance order.
func WriteMTL(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)
	seen := make(map[string]bool)
	for i := range m.Groups {
		c := groupColor(m, i)
		name := MaterialName(c)
		if seen[name] {
			continue
		}
		seen[name] = true
		r, g, b := c.RGB()
		fmt.Fprintf(bw, "newmtl %s\n", name)
		fmt.Fprintf(bw, "Kd %s %s %s\n", ftoa(r), ftoa(g), ftoa(b))
	}
	return bw.Flush()
}

// MaterialName returns the deterministic material name for a color,
// derived from its quantized hex form: "mat_ff0000" for pure red.
func MaterialName(c tint.Color) string {
	return "mat_" + c.Hex()[1:]
}

// groupColor returns the representative color of an instance group. The
// expansion applies one delta per instance, so every vertex of a group
// with uniform base colors carries the same color; the first vertex
// stands for the group.
func groupColor(m *mesh.Mesh, i int) tint.Color {
	g := m.Groups[i]
	if g.VertexCount == 0 {
		return tint.Color{}
	}
	return m.Vertices[g.VertexStart].Color
}

func writeFace(bw *bufio.Writer, f []int) {
	bw.WriteByte('f')
	for _, idx := range f {
		bw.WriteByte(' ')
		bw.WriteString(strconv.Itoa(idx + 1))
	}
	bw.WriteByte('\n')
}

// ftoa formats a coordinate with the shortest representation that
// round-trips, keeping files compact and diffs stable.
func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
