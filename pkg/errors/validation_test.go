package errors

import (
	"strings"
	"testing"
)

func TestValidateSceneName(t *testing.T) {
	valid := []string{"spiral", "hue-wheel", "tower_v2", "a", "scene.01"}
	for _, name := range valid {
		if err := ValidateSceneName(name); err != nil {
			t.Errorf("ValidateSceneName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"-leading-dash",
		"has space",
		"slash/name",
		"dot\x00null",
		"tab\tname",
		strings.Repeat("a", 129),
	}
	for _, name := range invalid {
		if err := ValidateSceneName(name); !Is(err, ErrCodeInvalidScene) {
			t.Errorf("ValidateSceneName(%q) = %v, want INVALID_SCENE", name, err)
		}
	}
}

func TestValidateShapeID(t *testing.T) {
	for _, id := range []string{"cube", "sphere", "my-shape"} {
		if err := ValidateShapeID(id); err != nil {
			t.Errorf("ValidateShapeID(%q) = %v, want nil", id, err)
		}
	}
	for _, id := range []string{"", "has space", "ctrl\x01", strings.Repeat("x", 129)} {
		if err := ValidateShapeID(id); !Is(err, ErrCodeInvalidScene) {
			t.Errorf("ValidateShapeID(%q) = %v, want INVALID_SCENE", id, err)
		}
	}
}

func TestValidateOutputPath(t *testing.T) {
	valid := []string{"out.obj", "renders/spiral.obj", "/tmp/scene.json"}
	for _, p := range valid {
		if err := ValidateOutputPath(p); err != nil {
			t.Errorf("ValidateOutputPath(%q) = %v, want nil", p, err)
		}
	}

	invalid := []string{
		"",
		"../escape.obj",
		"nested/../../escape.obj",
		"win\\style.obj",
		"null\x00byte.obj",
		strings.Repeat("p", 501),
	}
	for _, p := range invalid {
		if err := ValidateOutputPath(p); !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateOutputPath(%q) = %v, want INVALID_INPUT", p, err)
		}
	}
}
