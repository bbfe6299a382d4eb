// Package mesh assembles expansion instance streams into flat,
// renderable meshes.
//
// Assembly is purely additive and order-preserving: for each instance it
// fetches base geometry through the shape provider, transforms every
// vertex by the instance's accumulated matrix, shifts every vertex color
// by the accumulated delta, and appends the result with face indices
// offset by the running vertex count. Instances never share vertices,
// even when geometrically coincident.
package mesh

import (
	"fmt"
	"iter"
	"strings"

	"github.com/rulemesh/rulemesh/pkg/expand"
	"github.com/rulemesh/rulemesh/pkg/geom"
	"github.com/rulemesh/rulemesh/pkg/rule"
	"github.com/rulemesh/rulemesh/pkg/shape"
)

// Group records the span one instance contributed to a mesh. Groups let
// exporters reconstruct instance boundaries (per-instance or per-color
// object grouping) without re-running the expansion.
type Group struct {
	ShapeID     string
	VertexStart int
	VertexCount int
	FaceStart   int
	FaceCount   int
}

// Mesh is the final owned output of a generation run: a flat vertex
// buffer, a face index buffer referencing it, and per-instance group
// spans. Every face index is within the vertex buffer's bounds.
type Mesh struct {
	Vertices []shape.Vertex
	Faces    []shape.Face
	Groups   []Group
}

// Assemble drains the instance stream and builds the output mesh.
// Fetching geometry for an unregistered shape id aborts the run with an
// error wrapping [shape.ErrUnknownShape] that names the shape and the
// rule path that produced the instance; this indicates a malformed rule
// graph, not a recoverable condition.
func Assemble(instances iter.Seq[expand.Instance], provider shape.Provider) (*Mesh, error) {
	m := &Mesh{}
	for inst := range instances {
		base, err := provider.Geometry(inst.ShapeID)
		if err != nil {
			return nil, fmt.Errorf("assemble shape %q (rule path %s): %w", inst.ShapeID, formatPath(inst.Path), err)
		}

		offset := len(m.Vertices)
		group := Group{
			ShapeID:     inst.ShapeID,
			VertexStart: offset,
			VertexCount: len(base.Vertices),
			FaceStart:   len(m.Faces),
			FaceCount:   len(base.Faces),
		}

		for _, v := range base.Vertices {
			m.Vertices = append(m.Vertices, shape.Vertex{
				Position: inst.State.Matrix.TransformPoint(v.Position),
				Color:    inst.State.Color.Apply(v.Color),
			})
		}
		for _, f := range base.Faces {
			face := make(shape.Face, len(f))
			for i, idx := range f {
				face[i] = idx + offset
			}
			m.Faces = append(m.Faces, face)
		}
		m.Groups = append(m.Groups, group)
	}
	return m, nil
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// FaceCount returns the number of faces in the mesh.
func (m *Mesh) FaceCount() int { return len(m.Faces) }

// InstanceCount returns the number of instances assembled into the mesh.
func (m *Mesh) InstanceCount() int { return len(m.Groups) }

// Bounds returns the axis-aligned bounding box of the mesh. An empty
// mesh reports zero bounds.
func (m *Mesh) Bounds() (min, max geom.Vec3) {
	if len(m.Vertices) == 0 {
		return geom.Vec3{}, geom.Vec3{}
	}
	min = m.Vertices[0].Position
	max = min
	for _, v := range m.Vertices[1:] {
		p := v.Position
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return min, max
}

// formatPath renders a rule handle chain as "0>2>2" for error messages.
func formatPath(path []rule.Handle) string {
	parts := make([]string, len(path))
	for i, h := range path {
		parts[i] = fmt.Sprint(int(h))
	}
	return strings.Join(parts, ">")
}
