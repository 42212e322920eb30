package omath

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the threshold below which denominators and lengths are treated as zero.
const Epsilon = float32(1e-6)

// ApproxEq determines whether two floating point numbers are close enough to each other
// by a threshold of 1e-5.
func ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// ClampFloat clamps the given value to the given range.
func ClampFloat(num, min, max float32) float32 {
	if num < min {
		return min
	}
	return math32.Min(num, max)
}

// Lerp interpolates between a and b by t, with t clamped to [0, 1].
func Lerp(a, b, t float32) float32 {
	t = ClampFloat(t, 0, 1)
	return a*(1-t) + b*t
}

// IsZero returns true if every component of the vector is exactly zero.
func IsZero(v mgl32.Vec3) bool {
	return v == mgl32.Vec3{}
}

// SafeNormalize returns the normalized vector, or a zero vector if its length is too small
// to normalize without producing NaN.
func SafeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l <= Epsilon {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// Project returns the projection of v onto the normal passed. The normal does not need
// to be normalized.
func Project(v, normal mgl32.Vec3) mgl32.Vec3 {
	sqrLen := normal.LenSqr()
	if sqrLen <= Epsilon*Epsilon {
		return mgl32.Vec3{}
	}
	return normal.Mul(v.Dot(normal) / sqrLen)
}

// ProjectOnPlane removes the component of v along the plane normal passed.
func ProjectOnPlane(v, normal mgl32.Vec3) mgl32.Vec3 {
	return v.Sub(Project(v, normal))
}

// Angle returns the unsigned angle in degrees between the two vectors. Zero length vectors
// are treated as being aligned.
func Angle(a, b mgl32.Vec3) float32 {
	denominator := math32.Sqrt(a.LenSqr() * b.LenSqr())
	if denominator < 1e-15 {
		return 0
	}
	dot := ClampFloat(a.Dot(b)/denominator, -1, 1)
	return mgl32.RadToDeg(math32.Acos(dot))
}

// HorizontalLenSqr returns the squared length of v once its component along up is removed.
func HorizontalLenSqr(v, up mgl32.Vec3) float32 {
	return ProjectOnPlane(v, up).LenSqr()
}

// AnyPerpendicular returns a unit vector perpendicular to v. v is expected to be non-zero.
func AnyPerpendicular(v mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math32.Abs(v.X()) > 0.9*v.Len() {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return SafeNormalize(v.Cross(axis))
}

// MinimizeConvex finds the x in [lo, hi] minimising the convex function f using a ternary search,
// returning x and f(x).
func MinimizeConvex(f func(x float32) float32, lo, hi float32) (float32, float32) {
	start, end := lo, hi
	tolerance := (hi - lo) * 1e-6
	for i := 0; i < 64 && hi-lo > tolerance; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if f(m1) <= f(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	x := (lo + hi) / 2
	best := f(x)
	// Flat regions can stall the search away from the ends of the range.
	if v := f(start); v < best {
		best, x = v, start
	}
	if v := f(end); v < best {
		best, x = v, end
	}
	return x, best
}
