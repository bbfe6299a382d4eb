// Package shape defines the shape provider interface consumed by mesh
// assembly, a map-backed registry implementation, and the builtin
// primitives (unit cube, icosphere).
//
// Base geometry is opaque to the engine: providers hand out vertices and
// faces in local coordinates and the core only ever reads them. A
// provider must be pure and deterministic for a given id.
package shape

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rulemesh/rulemesh/pkg/geom"
	"github.com/rulemesh/rulemesh/pkg/tint"
)

var (
	// ErrUnknownShape is returned by [Registry.Geometry] when the id is
	// not registered. Assembly treats this as fatal: it indicates a rule
	// graph referencing geometry that was never provided.
	ErrUnknownShape = errors.New("unknown shape")

	// ErrInvalidShapeID is returned by [Registry.Register] when the id is
	// empty.
	ErrInvalidShapeID = errors.New("shape id must not be empty")

	// ErrDuplicateShapeID is returned by [Registry.Register] when the id
	// is already registered.
	ErrDuplicateShapeID = errors.New("duplicate shape id")

	// ErrFaceOutOfBounds is returned by [Registry.Register] when a face
	// references a vertex index outside the vertex list.
	ErrFaceOutOfBounds = errors.New("face index out of bounds")
)

// Vertex is one point of base geometry: a position in local coordinates
// and a base color the expansion's color delta is applied to.
type Vertex struct {
	Position geom.Vec3
	Color    tint.Color
}

// Face is an index n-gon referencing vertices by zero-based position.
// Builtin primitives use triangles and quads.
type Face []int

// Geometry is a shape's base data. The engine never mutates it.
type Geometry struct {
	Vertices []Vertex
	Faces    []Face
}

// Validate checks that every face index is within the vertex list.
func (g Geometry) Validate() error {
	for fi, f := range g.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(g.Vertices) {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrFaceOutOfBounds, fi, idx, len(g.Vertices))
			}
		}
	}
	return nil
}

// Provider resolves shape ids to base geometry. Implementations must be
// pure and deterministic per id.
type Provider interface {
	// Geometry returns the base geometry for the shape id, or an error
	// wrapping [ErrUnknownShape] when the id is unregistered.
	Geometry(shapeID string) (Geometry, error)
}

// Registry is a map-backed [Provider]. The zero value is not usable;
// create registries with [NewRegistry] or [DefaultRegistry]. Registries
// are safe for concurrent reads once registration is done.
type Registry struct {
	shapes map[string]Geometry
}

// NewRegistry creates an empty shape registry.
func NewRegistry() *Registry {
	return &Registry{shapes: make(map[string]Geometry)}
}

// DefaultRegistry returns a registry pre-loaded with the builtin
// primitives under the ids "cube" and "sphere".
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("cube", Cube())
	_ = r.Register("sphere", Sphere(0))
	return r
}

// Register adds geometry under the id, validating it eagerly so that
// malformed faces are caught here rather than mid-assembly.
func (r *Registry) Register(id string, g Geometry) error {
	if id == "" {
		return ErrInvalidShapeID
	}
	if _, exists := r.shapes[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateShapeID, id)
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("shape %q: %w", id, err)
	}
	r.shapes[id] = g
	return nil
}

// Geometry implements [Provider].
func (r *Registry) Geometry(shapeID string) (Geometry, error) {
	g, ok := r.shapes[shapeID]
	if !ok {
		return Geometry{}, fmt.Errorf("%w: %q", ErrUnknownShape, shapeID)
	}
	return g, nil
}

// IDs returns the registered shape ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.shapes))
	for id := range r.shapes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
