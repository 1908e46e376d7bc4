// Package frustum models view volumes as eight-corner hexahedra and
// measures how much of one frustum another covers.
package frustum

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/chazu/facet/pkg/clip"
	"github.com/chazu/facet/pkg/polyface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Corner indices. Bit 0 selects left/right, bit 1 bottom/top and bit 2
// rear/front. Rear is the far plane of a perspective frustum.
const (
	LeftBottomRear = iota
	RightBottomRear
	LeftTopRear
	RightTopRear
	LeftBottomFront
	RightBottomFront
	LeftTopFront
	RightTopFront
)

// BoxFaces lists the corners of each face counter-clockwise seen from
// outside: rear, front, bottom, top, left, right.
var BoxFaces = [6][4]int{
	{0, 2, 3, 1},
	{4, 5, 7, 6},
	{0, 1, 5, 4},
	{2, 6, 7, 3},
	{0, 4, 6, 2},
	{1, 3, 7, 5},
}

// Frustum holds eight corners in the order given by the corner constants.
type Frustum [8]v3.Vec

// FromBox returns the frustum with the corners of box.
func FromBox(box sdf.Box3) Frustum {
	var f Frustum
	for i := range f {
		c := box.Min
		if i&1 != 0 {
			c.X = box.Max.X
		}
		if i&2 != 0 {
			c.Y = box.Max.Y
		}
		if i&4 != 0 {
			c.Z = box.Max.Z
		}
		f[i] = c
	}
	return f
}

// Camera describes a perspective view.
type Camera struct {
	Eye, Target, Up v3.Vec
	// FovY is the vertical field of view in radians.
	FovY   float64
	Aspect float64
	Near   float64
	Far    float64
}

// FromPerspective returns the frustum a camera sees between its near and
// far planes.
func FromPerspective(c Camera) (Frustum, error) {
	var f Frustum
	switch {
	case !(c.FovY > 0 && c.FovY < math.Pi):
		return f, fmt.Errorf("frustum: field of view %g outside (0, pi)", c.FovY)
	case !(c.Aspect > 0):
		return f, fmt.Errorf("frustum: aspect %g must be positive", c.Aspect)
	case !(c.Near > 0 && c.Far > c.Near):
		return f, fmt.Errorf("frustum: need 0 < near < far, have near %g far %g", c.Near, c.Far)
	}
	forward := c.Target.Sub(c.Eye)
	if forward.Length() == 0 {
		return f, fmt.Errorf("frustum: eye and target coincide")
	}
	forward = forward.Normalize()
	right := forward.Cross(c.Up)
	if right.Length() < 1.0e-12 {
		return f, fmt.Errorf("frustum: up vector is parallel to the view direction")
	}
	right = right.Normalize()
	up := right.Cross(forward)

	tan := math.Tan(c.FovY / 2)
	for i := range f {
		dist := c.Far
		if i&4 != 0 {
			dist = c.Near
		}
		h := dist * tan
		w := h * c.Aspect
		sx, sy := -1.0, -1.0
		if i&1 != 0 {
			sx = 1
		}
		if i&2 != 0 {
			sy = 1
		}
		f[i] = c.Eye.Add(forward.MulScalar(dist)).
			Add(right.MulScalar(sx * w)).
			Add(up.MulScalar(sy * h))
	}
	return f, nil
}

// Mesh returns the six quad faces of the frustum.
func (f Frustum) Mesh() *polyface.Mesh {
	b, err := polyface.NewBuilder(nil, polyface.DefaultTolerances())
	if err != nil {
		panic(err) // default tolerances are valid
	}
	for _, face := range BoxFaces {
		pts := []v3.Vec{f[face[0]], f[face[1]], f[face[2]], f[face[3]]}
		// Without normals or params AddPolygon cannot fail.
		_ = b.AddPolygon(pts, nil, nil)
	}
	return b.Mesh()
}

// Volume returns the enclosed volume, or 0 with a warning when the mesh
// does not close or the corners are wound inside out.
func (f Frustum) Volume() float64 {
	m := f.Mesh()
	if !m.IsClosedByEdgePairing() {
		polyface.Logger().Warn("frustum: mesh is not closed")
		return 0
	}
	v := m.SumTetrahedralVolumes(f[0])
	if v < 0 {
		polyface.Logger().Warn("frustum: negative volume", slog.Float64("volume", v))
		return 0
	}
	return v
}

// Planes returns the inward planes of the faces. Faces with no area are
// skipped.
func (f Frustum) Planes() clip.ConvexClipPlaneSet {
	set := make(clip.ConvexClipPlaneSet, 0, len(BoxFaces))
	for _, face := range BoxFaces {
		pts := []v3.Vec{f[face[0]], f[face[1]], f[face[2]], f[face[3]]}
		n, ok := polyface.NewellNormal(pts)
		if !ok {
			continue
		}
		centroid := pts[0].Add(pts[1]).Add(pts[2]).Add(pts[3]).MulScalar(0.25)
		p, _ := clip.PlaneFromPointNormal(centroid, n.MulScalar(-1))
		set = append(set, p)
	}
	return set
}

// Range returns the bounding box of the corners.
func (f Frustum) Range() sdf.Box3 {
	box := sdf.Box3{Min: f[0], Max: f[0]}
	for _, c := range f[1:] {
		box = box.Include(c)
	}
	return box
}
