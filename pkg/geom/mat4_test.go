package geom

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEq(a, b float64) bool { return math.Abs(a-b) < epsilon }

func vecApproxEq(a, b Vec3) bool {
	return approxEq(a.X, b.X) && approxEq(a.Y, b.Y) && approxEq(a.Z, b.Z)
}

func TestIdentity_TransformPoint(t *testing.T) {
	p := V(1, 2, 3)
	got := Identity().TransformPoint(p)
	if !vecApproxEq(got, p) {
		t.Errorf("Identity().TransformPoint(%v) = %v, want %v", p, got, p)
	}
}

func TestTranslate_TransformPoint(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		in      Vec3
		want    Vec3
	}{
		{"x only", 2, 0, 0, V(1, 1, 1), V(3, 1, 1)},
		{"all axes", 1, -2, 3, V(0, 0, 0), V(1, -2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.x, tt.y, tt.z).TransformPoint(tt.in)
			if !vecApproxEq(got, tt.want) {
				t.Errorf("Translate(%v,%v,%v).TransformPoint(%v) = %v, want %v",
					tt.x, tt.y, tt.z, tt.in, got, tt.want)
			}
		})
	}
}

func TestScale_TransformPoint(t *testing.T) {
	got := Scale(2, 3, 4).TransformPoint(V(1, 1, 1))
	want := V(2, 3, 4)
	if !vecApproxEq(got, want) {
		t.Errorf("Scale(2,3,4).TransformPoint(1,1,1) = %v, want %v", got, want)
	}
}

func TestRotate_QuarterTurns(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"z 90 maps x to y", RotateZ(90), V(1, 0, 0), V(0, 1, 0)},
		{"z -90 maps x to -y", RotateZ(-90), V(1, 0, 0), V(0, -1, 0)},
		{"x 90 maps y to z", RotateX(90), V(0, 1, 0), V(0, 0, 1)},
		{"y 90 maps z to x", RotateY(90), V(0, 0, 1), V(1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if !vecApproxEq(got, tt.want) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMul_CompositionOrder(t *testing.T) {
	// Rotate-then-translate differs from translate-then-rotate.
	// In right-multiplication order, m.Mul(o) applies o in m's local frame.
	rt := RotateZ(90).Mul(Translate(1, 0, 0))
	got := rt.TransformPoint(V(0, 0, 0))
	want := V(0, 1, 0) // translation happens in the rotated frame
	if !vecApproxEq(got, want) {
		t.Errorf("RotateZ(90)*Translate(1,0,0) at origin = %v, want %v", got, want)
	}

	tr := Translate(1, 0, 0).Mul(RotateZ(90))
	got = tr.TransformPoint(V(0, 0, 0))
	want = V(1, 0, 0) // rotation about origin leaves it, then the outer translate applies
	if !vecApproxEq(got, want) {
		t.Errorf("Translate(1,0,0)*RotateZ(90) at origin = %v, want %v", got, want)
	}
}

func TestMul_MatchesSequentialApplication(t *testing.T) {
	a := RotateY(30)
	b := Translate(2, -1, 0.5)
	c := Scale(0.5, 0.5, 0.5)
	p := V(1, 2, 3)

	composed := a.Mul(b).Mul(c).TransformPoint(p)
	sequential := a.TransformPoint(b.TransformPoint(c.TransformPoint(p)))
	if !vecApproxEq(composed, sequential) {
		t.Errorf("composed transform = %v, want sequential result %v", composed, sequential)
	}
}

func TestMul_IdentityIsNeutral(t *testing.T) {
	m := RotateX(17).Mul(Translate(1, 2, 3)).Mul(Scale(2, 2, 2))
	if got := m.Mul(Identity()); got != m {
		t.Errorf("m * I = %v, want %v", got, m)
	}
	if got := Identity().Mul(m); got != m {
		t.Errorf("I * m = %v, want %v", got, m)
	}
}

func TestVec3_Arithmetic(t *testing.T) {
	a, b := V(1, 2, 3), V(4, 5, 6)
	if got := a.Add(b); !vecApproxEq(got, V(5, 7, 9)) {
		t.Errorf("Add = %v, want (5 7 9)", got)
	}
	if got := b.Sub(a); !vecApproxEq(got, V(3, 3, 3)) {
		t.Errorf("Sub = %v, want (3 3 3)", got)
	}
	if got := a.Dot(b); !approxEq(got, 32) {
		t.Errorf("Dot = %v, want 32", got)
	}
	if got := V(1, 0, 0).Cross(V(0, 1, 0)); !vecApproxEq(got, V(0, 0, 1)) {
		t.Errorf("Cross = %v, want (0 0 1)", got)
	}
	if got := V(3, 4, 0).Length(); !approxEq(got, 5) {
		t.Errorf("Length = %v, want 5", got)
	}
	if got := V(0, 3, 0).Normalize(); !vecApproxEq(got, V(0, 1, 0)) {
		t.Errorf("Normalize = %v, want (0 1 0)", got)
	}
	if got := a.Lerp(b, 0.5); !vecApproxEq(got, V(2.5, 3.5, 4.5)) {
		t.Errorf("Lerp = %v, want (2.5 3.5 4.5)", got)
	}
}
