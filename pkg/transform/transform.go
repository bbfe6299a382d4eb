// Package transform defines the atomic spatial and color operations of
// the rule engine, ordered stacks of them, and their composition into
// accumulated traversal state.
//
// Spatial transforms compose by right-multiplication: each transform in
// a stack acts in the local frame established by the transforms before
// it, so a rotation followed by a translation moves along the rotated
// axis. Color shifts compose by addition, independent of the spatial
// order (see the tint package for wrap and clamp semantics).
package transform

import (
	"fmt"

	"github.com/rulemesh/rulemesh/pkg/geom"
	"github.com/rulemesh/rulemesh/pkg/tint"
)

// kind enumerates the closed set of transform variants.
type kind int

const (
	kindIdentity kind = iota
	kindRotateX
	kindRotateY
	kindRotateZ
	kindTranslateX
	kindTranslateY
	kindTranslateZ
	kindScaleX
	kindScaleY
	kindScaleZ
	kindScaleUniform
	kindHue
	kindSaturation
	kindValue
)

var kindNames = map[kind]string{
	kindIdentity:     "identity",
	kindRotateX:      "rx",
	kindRotateY:      "ry",
	kindRotateZ:      "rz",
	kindTranslateX:   "tx",
	kindTranslateY:   "ty",
	kindTranslateZ:   "tz",
	kindScaleX:       "sx",
	kindScaleY:       "sy",
	kindScaleZ:       "sz",
	kindScaleUniform: "s",
	kindHue:          "hue",
	kindSaturation:   "sat",
	kindValue:        "val",
}

// Transform is an immutable atomic operation: a rotation about an axis,
// a translation along an axis, a scale, or a color shift. The zero value
// is the identity. Use the constructors to create transforms.
type Transform struct {
	kind   kind
	amount float64
}

// RotateX rotates about the X axis by the given angle in degrees.
func RotateX(degrees float64) Transform { return Transform{kindRotateX, degrees} }

// RotateY rotates about the Y axis by the given angle in degrees.
func RotateY(degrees float64) Transform { return Transform{kindRotateY, degrees} }

// RotateZ rotates about the Z axis by the given angle in degrees.
func RotateZ(degrees float64) Transform { return Transform{kindRotateZ, degrees} }

// TranslateX translates along the X axis.
func TranslateX(d float64) Transform { return Transform{kindTranslateX, d} }

// TranslateY translates along the Y axis.
func TranslateY(d float64) Transform { return Transform{kindTranslateY, d} }

// TranslateZ translates along the Z axis.
func TranslateZ(d float64) Transform { return Transform{kindTranslateZ, d} }

// ScaleX scales along the X axis.
func ScaleX(f float64) Transform { return Transform{kindScaleX, f} }

// ScaleY scales along the Y axis.
func ScaleY(f float64) Transform { return Transform{kindScaleY, f} }

// ScaleZ scales along the Z axis.
func ScaleZ(f float64) Transform { return Transform{kindScaleZ, f} }

// Scale scales uniformly in all dimensions.
func Scale(f float64) Transform { return Transform{kindScaleUniform, f} }

// Hue shifts the color hue by the given angle in degrees.
// The shift wraps around the color wheel when applied.
func Hue(degrees float64) Transform { return Transform{kindHue, degrees} }

// Saturation shifts the color saturation by delta.
// Valid deltas are in [-1,1]; the accumulated shift clamps at application.
func Saturation(delta float64) Transform { return Transform{kindSaturation, delta} }

// Value shifts the color value (lightness) by delta.
// Valid deltas are in [-1,1]; the accumulated shift clamps at application.
func Value(delta float64) Transform { return Transform{kindValue, delta} }

// String returns the transform in the compact op notation used by scene
// documents, e.g. "rx 30" or "s 0.5".
func (t Transform) String() string {
	if t.kind == kindIdentity {
		return "identity"
	}
	return fmt.Sprintf("%s %v", kindNames[t.kind], t.amount)
}

// IsSpatial reports whether the transform affects geometry rather than color.
func (t Transform) IsSpatial() bool {
	switch t.kind {
	case kindHue, kindSaturation, kindValue, kindIdentity:
		return false
	}
	return true
}

// Validate checks construction-time invariants. Only the color shifts
// carry a bounded range; spatial transforms accept any finite amount.
func (t Transform) Validate() error {
	switch t.kind {
	case kindSaturation:
		return tint.Delta{Sat: t.amount}.Validate()
	case kindValue:
		return tint.Delta{Val: t.amount}.Validate()
	}
	return nil
}

// matrix returns the spatial matrix for the transform, or the identity
// for color transforms.
func (t Transform) matrix() geom.Mat4 {
	switch t.kind {
	case kindRotateX:
		return geom.RotateX(t.amount)
	case kindRotateY:
		return geom.RotateY(t.amount)
	case kindRotateZ:
		return geom.RotateZ(t.amount)
	case kindTranslateX:
		return geom.Translate(t.amount, 0, 0)
	case kindTranslateY:
		return geom.Translate(0, t.amount, 0)
	case kindTranslateZ:
		return geom.Translate(0, 0, t.amount)
	case kindScaleX:
		return geom.Scale(t.amount, 1, 1)
	case kindScaleY:
		return geom.Scale(1, t.amount, 1)
	case kindScaleZ:
		return geom.Scale(1, 1, t.amount)
	case kindScaleUniform:
		return geom.Scale(t.amount, t.amount, t.amount)
	}
	return geom.Identity()
}

// delta returns the color delta for the transform, or the neutral delta
// for spatial transforms.
func (t Transform) delta() tint.Delta {
	switch t.kind {
	case kindHue:
		return tint.Delta{Hue: t.amount}
	case kindSaturation:
		return tint.Delta{Sat: t.amount}
	case kindValue:
		return tint.Delta{Val: t.amount}
	}
	return tint.Delta{}
}

// Stack is an ordered sequence of transforms. Order is semantically
// significant: later entries apply after earlier ones, in the local
// frame the earlier ones established.
type Stack []Transform

// Validate checks every transform in the stack.
func (s Stack) Validate() error {
	for i, t := range s {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transform %d (%s): %w", i, t, err)
		}
	}
	return nil
}

// String renders the stack in compact op notation, space-joined.
func (s Stack) String() string {
	out := ""
	for i, t := range s {
		if i > 0 {
			out += ", "
		}
		out += t.String()
	}
	return out
}
