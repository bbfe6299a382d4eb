package pipeline

import (
	"encoding/json"

	"github.com/rulemesh/rulemesh/pkg/mesh"
)

// marshalMesh serializes a mesh for caching and content hashing. The
// encoding preserves full float precision, so a cached mesh exports
// byte-identically to a freshly assembled one.
func marshalMesh(m *mesh.Mesh) ([]byte, error) {
	return json.Marshal(m)
}

// unmarshalMesh restores a mesh serialized by marshalMesh.
func unmarshalMesh(data []byte) (*mesh.Mesh, error) {
	var m mesh.Mesh
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
