// Package cache provides content-addressed caching for generation
// results: expanded meshes keyed by scene content, and exported
// artifacts keyed by mesh content plus format options.
//
// Backends share one interface; the CLI uses the file backend under the
// user cache directory, the HTTP server can use Redis, and tests use the
// null backend.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached value class. Meshes are expensive to recompute
// relative to their size; artifacts are cheap derivations of a cached
// mesh and expire sooner.
const (
	MeshTTL     = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// Cache is the backend interface. Implementations must treat a missing
// key as a miss, not an error.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// MeshKeyOpts capture everything besides the scene content that changes
// the expanded mesh.
type MeshKeyOpts struct {
	Depth int
}

// ArtifactKeyOpts capture everything besides the mesh content that
// changes an exported artifact.
type ArtifactKeyOpts struct {
	Format   string
	Grouping string
	Colors   bool
}

// Keyer derives cache keys for the pipeline's value classes. Keys for
// the same inputs must be identical across processes so that file and
// Redis backends can be shared.
type Keyer interface {
	// MeshKey keys an expanded mesh by the scene content hash and the
	// expansion options.
	MeshKey(sceneHash string, opts MeshKeyOpts) string

	// ArtifactKey keys an exported artifact by the mesh content hash and
	// the export options.
	ArtifactKey(meshHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key derivation: a class prefix plus a
// SHA-256 over the inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// MeshKey implements [Keyer].
func (k *DefaultKeyer) MeshKey(sceneHash string, opts MeshKeyOpts) string {
	return hashKey("mesh", sceneHash, opts)
}

// ArtifactKey implements [Keyer].
func (k *DefaultKeyer) ArtifactKey(meshHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", meshHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
