package export

import (
	"encoding/json"
	"io"

	"github.com/rulemesh/rulemesh/pkg/mesh"
)

// JSONOption configures JSON output via [WriteJSON].
type JSONOption func(*jsonWriter)

type jsonWriter struct {
	indent string
	colors bool
}

// WithJSONIndent pretty-prints the document with the given indentation
// string. The default is compact output.
func WithJSONIndent(indent string) JSONOption { return func(w *jsonWriter) { w.indent = indent } }

// WithJSONColors includes per-vertex colors as "#rrggbb" strings.
func WithJSONColors() JSONOption { return func(w *jsonWriter) { w.colors = true } }

type jsonDocument struct {
	Vertices [][3]float64 `json:"vertices"`
	Colors   []string     `json:"colors,omitempty"`
	Faces    [][]int      `json:"faces"`
	Groups   []jsonGroup  `json:"groups"`
}

type jsonGroup struct {
	Shape       string `json:"shape"`
	VertexStart int    `json:"vertex_start"`
	VertexCount int    `json:"vertex_count"`
	FaceStart   int    `json:"face_start"`
	FaceCount   int    `json:"face_count"`
}

// WriteJSON writes the mesh as a JSON document: a flat vertex array, a
// face index array referencing it, and the instance group spans. The
// layout mirrors the in-memory mesh so downstream tooling can consume it
// without reassembling.
func WriteJSON(w io.Writer, m *mesh.Mesh, opts ...JSONOption) error {
	jw := jsonWriter{}
	for _, opt := range opts {
		opt(&jw)
	}

	doc := jsonDocument{
		Vertices: make([][3]float64, len(m.Vertices)),
		Faces:    make([][]int, len(m.Faces)),
		Groups:   make([]jsonGroup, len(m.Groups)),
	}
	for i, v := range m.Vertices {
		doc.Vertices[i] = [3]float64{v.Position.X, v.Position.Y, v.Position.Z}
	}
	if jw.colors {
		doc.Colors = make([]string, len(m.Vertices))
		for i, v := range m.Vertices {
			doc.Colors[i] = v.Color.Hex()
		}
	}
	for i, f := range m.Faces {
		doc.Faces[i] = []int(f)
	}
	for i, g := range m.Groups {
		doc.Groups[i] = jsonGroup{
			Shape:       g.ShapeID,
			VertexStart: g.VertexStart,
			VertexCount: g.VertexCount,
			FaceStart:   g.FaceStart,
			FaceCount:   g.FaceCount,
		}
	}

	enc := json.NewEncoder(w)
	if jw.indent != "" {
		enc.SetIndent("", jw.indent)
	}
	return enc.Encode(doc)
}
