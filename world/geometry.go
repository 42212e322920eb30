package world

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/omath"
)

// closestPointOnSegment returns the point on the segment ab closest to p.
func closestPointOnSegment(a, b, p mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	denom := ab.LenSqr()
	if denom <= omath.Epsilon*omath.Epsilon {
		return a
	}
	t := omath.ClampFloat(p.Sub(a).Dot(ab)/denom, 0, 1)
	return a.Add(ab.Mul(t))
}

// closestPointsBetweenSegments returns the closest pair of points between the segments p1q1 and
// p2q2, the first point lying on p1q1.
func closestPointsBetweenSegments(p1, q1, p2, q2 mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	d1, d2 := q1.Sub(p1), q2.Sub(p2)
	r := p1.Sub(p2)
	a, e := d1.LenSqr(), d2.LenSqr()
	f := d2.Dot(r)

	const eps = omath.Epsilon * omath.Epsilon
	var s, t float32
	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		t = omath.ClampFloat(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			s = omath.ClampFloat(-c/a, 0, 1)
			break
		}
		b := d1.Dot(d2)
		if denom := a*e - b*b; denom > eps {
			s = omath.ClampFloat((b*f-c*e)/denom, 0, 1)
		}
		t = (b*s + f) / e
		if t < 0 {
			t, s = 0, omath.ClampFloat(-c/a, 0, 1)
		} else if t > 1 {
			t, s = 1, omath.ClampFloat((b-c)/a, 0, 1)
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// raySphere intersects a ray with a sphere, returning the distance along the ray of the first
// intersection. Rays starting inside the sphere hit at a distance of zero.
func raySphere(origin, dir, center mgl32.Vec3, radius float32) (float32, bool) {
	m := origin.Sub(center)
	b := m.Dot(dir)
	c := m.LenSqr() - radius*radius
	if c > 0 && b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	return math32.Max(-b-math32.Sqrt(disc), 0), true
}
