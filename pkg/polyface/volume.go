package polyface

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

type directedEdge struct{ from, to int }

// IsClosedByEdgePairing reports whether every directed edge a->b is matched
// by the same number of edges b->a. Edges between equal point indices are
// ignored. An empty mesh is not closed.
func (m *Mesh) IsClosedByEdgePairing() bool {
	counts := make(map[directedEdge]int)
	v := NewVisitor(m)
	for v.Next() {
		n := v.NumEdgesThisFace()
		for i := 0; i < n; i++ {
			a, b := v.PointIndex[i], v.PointIndex[(i+1)%n]
			if a == b {
				continue
			}
			counts[directedEdge{a, b}]++
		}
	}
	if len(counts) == 0 {
		return false
	}
	for e, c := range counts {
		if counts[directedEdge{e.to, e.from}] != c {
			return false
		}
	}
	return true
}

// SumTetrahedralVolumes returns the signed volume enclosed by the faces,
// summed as tetrahedra from origin to each fan triangle. Faces wound
// counter-clockwise seen from outside give a positive volume. The result
// is independent of origin only for closed meshes.
func (m *Mesh) SumTetrahedralVolumes(origin v3.Vec) float64 {
	var sum float64
	v := NewVisitor(m)
	for v.Next() {
		n := v.NumEdgesThisFace()
		if n < 3 {
			continue
		}
		a := v.Points[0].Sub(origin)
		for i := 1; i+1 < n; i++ {
			b := v.Points[i].Sub(origin)
			c := v.Points[i+1].Sub(origin)
			sum += a.Dot(b.Cross(c))
		}
	}
	return sum / 6
}

// ValidatedVolume validates m, checks closure and returns the signed
// volume measured from the first point.
func (m *Mesh) ValidatedVolume() (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, fmt.Errorf("polyface: volume: %w", err)
	}
	if !m.IsClosedByEdgePairing() {
		return 0, ErrNotClosed
	}
	return m.SumTetrahedralVolumes(m.Points[0]), nil
}
