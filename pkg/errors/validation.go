package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// sceneNameRegex matches safe scene names: they seed output filenames,
// so only filename-safe characters are allowed.
var sceneNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateSceneName validates a scene name for safety and correctness.
// Scene names seed output filenames and cache keys, so the rules are
// intentionally conservative:
//   - No empty names
//   - No control characters
//   - Filename-safe characters only
//   - Maximum length of 128 characters
func ValidateSceneName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidScene, "scene name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidScene, "scene name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidScene, "scene name contains invalid control characters")
		}
	}

	if !sceneNameRegex.MatchString(name) {
		return New(ErrCodeInvalidScene, "invalid scene name: %q", name)
	}

	return nil
}

// ValidateShapeID validates a shape id referenced by a scene.
// Shape ids are registry keys and appear in OBJ object names.
func ValidateShapeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidScene, "shape id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidScene, "shape id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidScene, "shape id contains invalid characters: %q", id)
		}
	}

	return nil
}

// ValidateOutputPath validates a file path the CLI writes artifacts to.
// It prevents path traversal out of the chosen output directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "output path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "output path cannot contain backslashes")
	}

	return nil
}
