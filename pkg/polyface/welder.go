package polyface

import (
	"log/slog"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// unitNormalTolerance bounds | |n| - 1 | for FindOrAddNormal.
const unitNormalTolerance = 1.0e-3

// Tolerances are the welding tolerances for points, normals and params.
type Tolerances struct {
	Point  float64 `toml:"point" yaml:"point" json:"point"`
	Normal float64 `toml:"normal" yaml:"normal" json:"normal"`
	Param  float64 `toml:"param" yaml:"param" json:"param"`
}

// DefaultTolerances returns point 1e-8, normal 1e-10, param 1e-10.
func DefaultTolerances() Tolerances {
	return Tolerances{Point: 1.0e-8, Normal: 1.0e-10, Param: 1.0e-10}
}

// Validate requires every tolerance to be positive and finite.
func (t Tolerances) Validate() error {
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"point", t.Point},
		{"normal", t.Normal},
		{"param", t.Param},
	} {
		if !(c.v > 0) || math.IsInf(c.v, 0) {
			return &ValidationError{
				Code:    CodeInvalidTolerance,
				Message: c.name + " tolerance must be positive and finite",
			}
		}
	}
	return nil
}

// QPoint3d is an integer lattice key for a 3D value.
type QPoint3d struct {
	X, Y, Z int64
}

// QPoint2d is an integer lattice key for a 2D value.
type QPoint2d struct {
	X, Y int64
}

// maxLatticeCoordinate bounds |v/tol| for a lattice key to fit an int64.
const maxLatticeCoordinate = 1 << 62

// InLattice reports whether every v/tol is finite and within
// maxLatticeCoordinate. The Quantize functions are meaningful only for
// values that pass.
func InLattice(tol float64, vs ...float64) bool {
	for _, v := range vs {
		if !(math.Abs(v/tol) < maxLatticeCoordinate) {
			return false
		}
	}
	return true
}

// QuantizePoint keys a point by floor(v/tol) per axis.
func QuantizePoint(p v3.Vec, tol float64) QPoint3d {
	return QPoint3d{
		X: int64(math.Floor(p.X / tol)),
		Y: int64(math.Floor(p.Y / tol)),
		Z: int64(math.Floor(p.Z / tol)),
	}
}

// QuantizeVector keys a vector by truncating v/tol toward zero.
// Unlike QuantizePoint there is no floor, so -0.5 and 0.5 cells both key
// to zero.
func QuantizeVector(v v3.Vec, tol float64) QPoint3d {
	return QPoint3d{
		X: int64(v.X / tol),
		Y: int64(v.Y / tol),
		Z: int64(v.Z / tol),
	}
}

// QuantizeParam keys a param by truncating uv/tol toward zero.
func QuantizeParam(p v2.Vec, tol float64) QPoint2d {
	return QPoint2d{
		X: int64(p.X / tol),
		Y: int64(p.Y / tol),
	}
}

// FindOrAddPoint returns the zero-based index of a point with the same
// lattice key, appending p to the mesh on a miss.
//
// Without WithNeighborSearch, points closer than the tolerance that fall
// in adjacent cells get distinct indices. Points outside the lattice
// (see InLattice) only weld to an identical point.
func (b *Builder) FindOrAddPoint(p v3.Vec) int {
	if !InLattice(b.tol.Point, p.X, p.Y, p.Z) {
		return b.findOrAddExactPoint(p)
	}
	key := QuantizePoint(p, b.tol.Point)
	if b.neighborSearch {
		return b.findOrAddClustered(key, p)
	}
	if idx, ok := b.pointMap[key]; ok {
		return idx
	}
	idx := len(b.mesh.Points)
	b.mesh.Points = append(b.mesh.Points, p)
	b.pointMap[key] = idx
	return idx
}

// findOrAddClustered searches the key's cell and its 26 neighbours for a
// point within tolerance.
func (b *Builder) findOrAddClustered(key QPoint3d, p v3.Vec) int {
	tol2 := b.tol.Point * b.tol.Point
	best, bestD2 := -1, math.Inf(1)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				cell := QPoint3d{X: key.X + dx, Y: key.Y + dy, Z: key.Z + dz}
				for _, idx := range b.pointCells[cell] {
					d := b.mesh.Points[idx].Sub(p)
					if d2 := d.Dot(d); d2 <= tol2 && d2 < bestD2 {
						best, bestD2 = idx, d2
					}
				}
			}
		}
	}
	if best >= 0 {
		return best
	}
	idx := len(b.mesh.Points)
	b.mesh.Points = append(b.mesh.Points, p)
	b.pointCells[key] = append(b.pointCells[key], idx)
	return idx
}

func (b *Builder) findOrAddExactPoint(p v3.Vec) int {
	if idx, ok := b.pointExact[p]; ok {
		return idx
	}
	Logger().Warn("polyface: point outside welding lattice",
		slog.Float64("x", p.X), slog.Float64("y", p.Y), slog.Float64("z", p.Z),
		slog.Float64("tolerance", b.tol.Point))
	idx := len(b.mesh.Points)
	b.mesh.Points = append(b.mesh.Points, p)
	b.pointExact[p] = idx
	return idx
}

// FindOrAddNormal returns the zero-based index of a normal with the same
// truncated lattice key, appending n on a miss. n must be unit length
// within 0.001.
func (b *Builder) FindOrAddNormal(n v3.Vec) (int, error) {
	if l := n.Length(); math.Abs(l-1) > unitNormalTolerance || math.IsNaN(l) {
		return 0, &ValidationError{
			Code:    CodeNonUnitNormal,
			Index:   len(b.mesh.Normals),
			Message: "normal must be unit length",
		}
	}
	idx := len(b.mesh.Normals)
	if !InLattice(b.tol.Normal, n.X, n.Y, n.Z) {
		if found, ok := b.normalExact[n]; ok {
			return found, nil
		}
		b.mesh.Normals = append(b.mesh.Normals, n)
		b.normalExact[n] = idx
		return idx, nil
	}
	key := QuantizeVector(n, b.tol.Normal)
	if found, ok := b.normalMap[key]; ok {
		return found, nil
	}
	b.mesh.Normals = append(b.mesh.Normals, n)
	b.normalMap[key] = idx
	return idx, nil
}

// FindOrAddParam returns the zero-based index of a param with the same
// truncated lattice key, appending uv on a miss. Params outside the
// lattice only weld to an identical param.
func (b *Builder) FindOrAddParam(uv v2.Vec) int {
	idx := len(b.mesh.Params)
	if !InLattice(b.tol.Param, uv.X, uv.Y) {
		if found, ok := b.paramExact[uv]; ok {
			return found
		}
		b.mesh.Params = append(b.mesh.Params, uv)
		b.paramExact[uv] = idx
		return idx
	}
	key := QuantizeParam(uv, b.tol.Param)
	if found, ok := b.paramMap[key]; ok {
		return found
	}
	b.mesh.Params = append(b.mesh.Params, uv)
	b.paramMap[key] = idx
	return idx
}
