package clip

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// parallelTolerance is the cross product magnitude below which two unit
// plane normals are treated as parallel.
const parallelTolerance = 1.0e-8

// Plane is a half-space. A point x is inside when Normal·x - Distance >= 0.
type Plane struct {
	Normal   v3.Vec
	Distance float64

	// Invisible marks edges cut along this plane as hidden.
	Invisible bool
	// Interior marks a plane that does not bound the original clip volume,
	// e.g. one introduced by splitting a non-convex region.
	Interior bool
}

// NewPlane returns a visible plane with the normal scaled to unit length.
// The normal must be non-zero.
func NewPlane(normal v3.Vec, distance float64) Plane {
	l := normal.Length()
	return Plane{Normal: normal.MulScalar(1 / l), Distance: distance / l}
}

// PlaneFromPointNormal returns the plane through origin with the given
// inward normal. ok is false for a zero normal.
func PlaneFromPointNormal(origin, normal v3.Vec) (Plane, bool) {
	l := normal.Length()
	if l == 0 || math.IsNaN(l) {
		return Plane{}, false
	}
	n := normal.MulScalar(1 / l)
	return Plane{Normal: n, Distance: n.Dot(origin)}, true
}

// Evaluate returns the signed altitude of x above the plane.
func (p Plane) Evaluate(x v3.Vec) float64 {
	return p.Normal.Dot(x) - p.Distance
}

// Negate returns the complementary half-space.
func (p Plane) Negate() Plane {
	p.Normal = p.Normal.MulScalar(-1)
	p.Distance = -p.Distance
	return p
}

// IsPointOnOrInside reports whether x is inside within tol.
func (p Plane) IsPointOnOrInside(x v3.Vec, tol float64) bool {
	return p.Evaluate(x) >= -tol
}

// IntersectPlanes returns a point on the line shared by a and b and the
// line direction. ok is false when the normals are parallel within 1e-8.
func IntersectPlanes(a, b Plane) (origin, direction v3.Vec, ok bool) {
	direction = a.Normal.Cross(b.Normal)
	if direction.Length() < parallelTolerance {
		return v3.Vec{}, v3.Vec{}, false
	}
	aa, bb, ab := a.Normal.Dot(a.Normal), b.Normal.Dot(b.Normal), a.Normal.Dot(b.Normal)
	det := aa*bb - ab*ab
	ca := (a.Distance*bb - b.Distance*ab) / det
	cb := (b.Distance*aa - a.Distance*ab) / det
	origin = a.Normal.MulScalar(ca).Add(b.Normal.MulScalar(cb))
	return origin, direction.Normalize(), true
}

// disjointParallel reports whether a and b have anti-parallel normals and
// half-spaces that do not meet, comparing offsets along the shared normal.
func disjointParallel(a, b Plane, tol float64) bool {
	la, lb := a.Normal.Length(), b.Normal.Length()
	if la == 0 || lb == 0 {
		return false
	}
	na, nb := a.Normal.MulScalar(1/la), b.Normal.MulScalar(1/lb)
	if na.Cross(nb).Length() >= parallelTolerance || na.Dot(nb) > 0 {
		return false
	}
	// a admits na·x >= da, b admits na·x <= -db.
	return a.Distance/la+b.Distance/lb > tol
}

// RangePlanes returns the six inward planes bounding box.
func RangePlanes(box sdf.Box3) ConvexClipPlaneSet {
	return ConvexClipPlaneSet{
		{Normal: v3.Vec{X: 1}, Distance: box.Min.X},
		{Normal: v3.Vec{X: -1}, Distance: -box.Max.X},
		{Normal: v3.Vec{Y: 1}, Distance: box.Min.Y},
		{Normal: v3.Vec{Y: -1}, Distance: -box.Max.Y},
		{Normal: v3.Vec{Z: 1}, Distance: box.Min.Z},
		{Normal: v3.Vec{Z: -1}, Distance: -box.Max.Z},
	}
}
