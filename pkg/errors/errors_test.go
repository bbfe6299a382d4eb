package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidScene, "scene %q has no rules", "empty")
	if err.Code != ErrCodeInvalidScene {
		t.Errorf("Code = %s, want INVALID_SCENE", err.Code)
	}
	if err.Message != `scene "empty" has no rules` {
		t.Errorf("Message = %q", err.Message)
	}
	want := `INVALID_SCENE: scene "empty" has no rules`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "failed to export %s", "obj")

	if err.Cause != cause {
		t.Error("Cause not preserved")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
	want := "INTERNAL_ERROR: failed to export obj: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeInvalidFormat, "unknown format")
	if !Is(err, ErrCodeInvalidFormat) {
		t.Error("Is should match the error's code")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeInternal) {
		t.Error("Is should not match a plain error")
	}

	// Code is found through wrapping layers.
	wrapped := fmt.Errorf("outer: %w", err)
	if !Is(wrapped, ErrCodeInvalidFormat) {
		t.Error("Is should unwrap to find the code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeShapeNotFound, "no such shape")); got != ErrCodeShapeNotFound {
		t.Errorf("GetCode = %s, want SHAPE_NOT_FOUND", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode of plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidDepth, "depth must not exceed 64")
	if got := UserMessage(err); got != "depth must not exceed 64" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage of plain error = %q", got)
	}
}
