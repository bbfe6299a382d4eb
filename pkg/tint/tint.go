// Package tint provides the HSV color model and cumulative color deltas
// used by the rule expansion engine.
//
// Colors live in HSV space: hue in degrees [0,360), saturation and value
// in [0,1]. Deltas compose by addition; hue wraps modulo 360 (negative
// deltas are equivalent to their positive complement) and saturation and
// value clamp to [0,1] when a delta is applied. Wrapping and clamping are
// deferred to application time so that composition stays associative.
package tint

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadDelta is returned by [Delta.Validate] when a saturation or value
// shift lies outside [-1,1]. Out-of-range shifts are rejected eagerly at
// rule construction rather than silently clamped mid-traversal.
var ErrBadDelta = errors.New("color delta out of range")

// Color is an HSV color. H is in degrees [0,360); S and V are in [0,1].
type Color struct {
	H, S, V float64
}

// RGB converts the color to red, green, and blue components in [0,1]
// using the standard HSV-to-RGB mapping.
func (c Color) RGB() (r, g, b float64) {
	h := wrapHue(c.H) / 60
	chroma := c.V * c.S
	x := chroma * (1 - math.Abs(math.Mod(h, 2)-1))
	m := c.V - chroma

	switch {
	case h < 1:
		r, g, b = chroma, x, 0
	case h < 2:
		r, g, b = x, chroma, 0
	case h < 3:
		r, g, b = 0, chroma, x
	case h < 4:
		r, g, b = 0, x, chroma
	case h < 5:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}
	return r + m, g + m, b + m
}

// Hex returns the color as a lowercase "#rrggbb" string with each
// component quantized to 8 bits. Used for deterministic material naming.
func (c Color) Hex() string {
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02x%02x%02x", quantize(r), quantize(g), quantize(b))
}

func quantize(f float64) uint8 {
	v := math.Round(f * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Delta is a cumulative color shift: hue in degrees, saturation and value
// shifts in [-1,1]. The zero value is the neutral delta.
type Delta struct {
	Hue, Sat, Val float64
}

// Add returns the composition of d followed by o. Hue adds without
// wrapping; saturation and value add without clamping. Both are resolved
// when the delta is applied to a color.
func (d Delta) Add(o Delta) Delta {
	return Delta{
		Hue: d.Hue + o.Hue,
		Sat: d.Sat + o.Sat,
		Val: d.Val + o.Val,
	}
}

// Apply shifts c by the delta. The hue wraps modulo 360 and saturation
// and value clamp to [0,1], so the result is always a valid color.
func (d Delta) Apply(c Color) Color {
	return Color{
		H: wrapHue(c.H + d.Hue),
		S: clamp01(c.S + d.Sat),
		V: clamp01(c.V + d.Val),
	}
}

// IsZero reports whether the delta is the neutral shift.
func (d Delta) IsZero() bool { return d == Delta{} }

// Validate checks that the saturation and value shifts are within [-1,1].
// The hue shift is unbounded since it wraps.
func (d Delta) Validate() error {
	if d.Sat < -1 || d.Sat > 1 {
		return fmt.Errorf("%w: saturation shift %v", ErrBadDelta, d.Sat)
	}
	if d.Val < -1 || d.Val > 1 {
		return fmt.Errorf("%w: value shift %v", ErrBadDelta, d.Val)
	}
	return nil
}

// wrapHue maps any hue angle into [0,360). Negative angles wrap to their
// positive complement, so -30 and 330 coincide.
func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
