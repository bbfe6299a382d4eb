package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a cache key of the form "class:hash(parts...)", where
// class is "mesh" or "artifact". The parts (content hash plus the
// options that change the cached value) are JSON-encoded before
// hashing so struct options key deterministically.
func hashKey(class string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars): keys double as shared Redis keys,
	// so collisions across users must be off the table.
	return fmt.Sprintf("%s:%s", class, hex.EncodeToString(hash[:]))
}

// Hash computes the content hash used throughout the pipeline: scene
// documents and serialized meshes are addressed by it. Returns the
// full 64-character SHA-256 hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
