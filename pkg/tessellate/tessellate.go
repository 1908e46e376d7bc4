// Package tessellate turns kernel solids into welded polyface meshes.
// Each kernel triangle becomes one face carrying its facet normal.
package tessellate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/polyface"
)

// ErrEmpty is returned when every triangle was degenerate.
var ErrEmpty = errors.New("tessellate: no faces")

// Tessellate renders s with k and welds the triangles into a mesh.
func Tessellate(k kernel.Kernel, s kernel.Solid, tol polyface.Tolerances) (*polyface.Mesh, error) {
	tris, err := k.Triangles(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return FromTriangles(tris, tol)
}

// FromTriangles welds a triangle soup into a mesh. Triangles with no area,
// or whose corners weld together, are dropped.
func FromTriangles(tris []kernel.Triangle, tol polyface.Tolerances) (*polyface.Mesh, error) {
	b, err := polyface.NewBuilder(nil, tol)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	dropped := 0
	for _, tri := range tris {
		n, ok := polyface.NewellNormal(tri[:])
		if !ok {
			dropped++
			continue
		}
		var idx [3]int
		for j, p := range tri {
			idx[j] = b.FindOrAddPoint(p)
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[2] == idx[0] {
			dropped++
			continue
		}
		ni, err := b.FindOrAddNormal(n)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %w", err)
		}
		for _, i := range idx {
			b.AddPointIndex(i, true)
			b.AddNormalIndex(ni)
		}
		b.AddIndexTerminators()
		b.EndFace()
	}
	m := b.Mesh()
	polyface.Logger().Debug("tessellate",
		slog.Int("triangles", len(tris)),
		slog.Int("dropped", dropped),
		slog.Int("points", m.PointCount()))
	if m.IsEmpty() {
		return nil, ErrEmpty
	}
	return m, nil
}
