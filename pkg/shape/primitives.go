package shape

import (
	"math"

	"github.com/rulemesh/rulemesh/pkg/geom"
	"github.com/rulemesh/rulemesh/pkg/tint"
)

// baseColor is the base color of the builtin primitives: fully saturated
// red (H=0, S=1, V=1), so that hue shifts walk the full color wheel and
// saturation/value shifts have headroom downward.
var baseColor = tint.Color{H: 0, S: 1, V: 1}

// Cube returns a unit cube centered at the origin: 8 vertices and 6 quad
// faces spanning [-0.5, 0.5] on every axis.
func Cube() Geometry {
	positions := []geom.Vec3{
		{X: -0.5, Y: 0.5, Z: 0.5},
		{X: -0.5, Y: -0.5, Z: 0.5},
		{X: 0.5, Y: -0.5, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: 0.5},
		{X: -0.5, Y: 0.5, Z: -0.5},
		{X: -0.5, Y: -0.5, Z: -0.5},
		{X: 0.5, Y: -0.5, Z: -0.5},
		{X: 0.5, Y: 0.5, Z: -0.5},
	}
	vertices := make([]Vertex, len(positions))
	for i, p := range positions {
		vertices[i] = Vertex{Position: p, Color: baseColor}
	}
	return Geometry{
		Vertices: vertices,
		Faces: []Face{
			{0, 1, 2, 3},
			{7, 6, 5, 4},
			{3, 2, 6, 7},
			{4, 0, 3, 7},
			{4, 5, 1, 0},
			{1, 5, 6, 2},
		},
	}
}

// Sphere returns an icosphere of diameter 1: an icosahedron subdivided
// the given number of times, every vertex projected onto the sphere of
// radius 0.5. Each subdivision splits every triangle into four, so the
// face count is 20 * 4^subdivisions. Negative subdivision counts are
// treated as zero.
func Sphere(subdivisions int) Geometry {
	positions, faces := icosahedron()
	for i := 0; i < subdivisions; i++ {
		positions, faces = subdivide(positions, faces)
	}

	vertices := make([]Vertex, len(positions))
	for i, p := range positions {
		vertices[i] = Vertex{Position: p.Normalize().Scale(0.5), Color: baseColor}
	}
	return Geometry{Vertices: vertices, Faces: faces}
}

// icosahedron returns the 12 vertices and 20 triangular faces of a
// regular icosahedron built from three orthogonal golden rectangles.
func icosahedron() ([]geom.Vec3, []Face) {
	phi := (1 + math.Sqrt(5)) / 2
	positions := []geom.Vec3{
		{X: -1, Y: phi, Z: 0}, {X: 1, Y: phi, Z: 0}, {X: -1, Y: -phi, Z: 0}, {X: 1, Y: -phi, Z: 0},
		{X: 0, Y: -1, Z: phi}, {X: 0, Y: 1, Z: phi}, {X: 0, Y: -1, Z: -phi}, {X: 0, Y: 1, Z: -phi},
		{X: phi, Y: 0, Z: -1}, {X: phi, Y: 0, Z: 1}, {X: -phi, Y: 0, Z: -1}, {X: -phi, Y: 0, Z: 1},
	}
	faces := []Face{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return positions, faces
}

// subdivide splits every triangle into four by inserting edge midpoints.
// Midpoints are shared between adjacent triangles via an edge cache so
// that vertices stay welded.
func subdivide(positions []geom.Vec3, faces []Face) ([]geom.Vec3, []Face) {
	type edge struct{ a, b int }
	midpoints := make(map[edge]int)

	midpoint := func(a, b int) int {
		key := edge{a, b}
		if a > b {
			key = edge{b, a}
		}
		if idx, ok := midpoints[key]; ok {
			return idx
		}
		positions = append(positions, positions[a].Lerp(positions[b], 0.5))
		idx := len(positions) - 1
		midpoints[key] = idx
		return idx
	}

	out := make([]Face, 0, len(faces)*4)
	for _, f := range faces {
		a, b, c := f[0], f[1], f[2]
		ab := midpoint(a, b)
		bc := midpoint(b, c)
		ca := midpoint(c, a)
		out = append(out,
			Face{a, ab, ca},
			Face{b, bc, ab},
			Face{c, ca, bc},
			Face{ab, bc, ca},
		)
	}
	return positions, out
}
