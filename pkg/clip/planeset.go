package clip

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ConvexClipPlaneSet is the intersection of its planes. An empty set
// places no constraint.
type ConvexClipPlaneSet []Plane

// ClipPlaneSet is the union of its convex parts.
type ClipPlaneSet []ConvexClipPlaneSet

// IsEmpty reports whether the set provably admits no point: some pair of
// anti-parallel planes faces away from each other by more than tol.
func (s ConvexClipPlaneSet) IsEmpty(tol float64) bool {
	for i := range s {
		for j := i + 1; j < len(s); j++ {
			if disjointParallel(s[i], s[j], tol) {
				return true
			}
		}
	}
	return false
}

// IsPointInside reports whether x satisfies every plane within tol.
func (s ConvexClipPlaneSet) IsPointInside(x v3.Vec, tol float64) bool {
	for _, p := range s {
		if !p.IsPointOnOrInside(x, tol) {
			return false
		}
	}
	return true
}

// classification is the relation of a point set to a convex set.
type classification int

const (
	straddles classification = iota
	allInside
	allOutside
)

// classify compares points against every plane. When exclusive, the set
// is allOutside once one plane has every point at or below tol, so
// geometry only touching a plane is rejected. Otherwise a plane rejects
// only when no point lies above tol and at least one lies below -tol, so
// geometry lying in the plane is kept. The set is allInside when every
// point clears every plane: h >= -tol, or h > tol when exclusive.
func (s ConvexClipPlaneSet) classify(points []v3.Vec, tol float64, exclusive bool) classification {
	inside := true
	for _, p := range s {
		above, below := false, false
		for _, x := range points {
			h := p.Evaluate(x)
			if h > tol {
				above = true
			}
			if h < -tol {
				below = true
			}
			if exclusive {
				if h <= tol {
					inside = false
				}
			} else if h < -tol {
				inside = false
			}
		}
		if !above && (exclusive || below) {
			return allOutside
		}
	}
	if inside {
		return allInside
	}
	return straddles
}

// hasUnconstrainedPart reports whether the set has no parts or a part
// with no planes.
func (s ClipPlaneSet) hasUnconstrainedPart() bool {
	if len(s) == 0 {
		return true
	}
	for _, c := range s {
		if len(c) == 0 {
			return true
		}
	}
	return false
}

// IsPointInside reports whether x lies inside any convex part.
func (s ClipPlaneSet) IsPointInside(x v3.Vec, tol float64) bool {
	if s.hasUnconstrainedPart() {
		return true
	}
	for _, c := range s {
		if c.IsPointInside(x, tol) {
			return true
		}
	}
	return false
}
