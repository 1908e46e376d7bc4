package polyface

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Builder welds incoming attributes into a Mesh and appends one-based
// index streams. A Builder owns its welding maps; it is not safe for
// concurrent use, but independent builders may run in parallel.
type Builder struct {
	mesh *Mesh
	tol  Tolerances

	pointMap  map[QPoint3d]int
	normalMap map[QPoint3d]int
	paramMap  map[QPoint2d]int

	// Values too large for a lattice key weld on exact equality only.
	pointExact  map[v3.Vec]int
	normalExact map[v3.Vec]int
	paramExact  map[v2.Vec]int

	neighborSearch bool
	pointCells     map[QPoint3d][]int

	faceData  FaceData
	faceStart int
}

// Option configures a Builder.
type Option func(*Builder)

// WithNeighborSearch makes FindOrAddPoint search the 26 neighbouring
// lattice cells, so points within tolerance merge even when they straddle
// a cell boundary.
func WithNeighborSearch() Option {
	return func(b *Builder) { b.neighborSearch = true }
}

// NewBuilder returns a builder that appends to m. A nil m starts a new
// mesh. Welding only sees attributes added through this builder.
func NewBuilder(m *Mesh, tol Tolerances, opts ...Option) (*Builder, error) {
	if err := tol.Validate(); err != nil {
		return nil, fmt.Errorf("polyface: new builder: %w", err)
	}
	if m == nil {
		m = New()
	}
	b := &Builder{
		mesh:        m,
		tol:         tol,
		pointMap:    make(map[QPoint3d]int),
		normalMap:   make(map[QPoint3d]int),
		paramMap:    make(map[QPoint2d]int),
		pointExact:  make(map[v3.Vec]int),
		normalExact: make(map[v3.Vec]int),
		paramExact:  make(map[v2.Vec]int),
		pointCells:  make(map[QPoint3d][]int),
		faceData:    NewFaceData(),
		faceStart:   len(m.PointIndex),
	}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// Mesh returns the mesh being built.
func (b *Builder) Mesh() *Mesh { return b.mesh }

// Tolerances returns the welding tolerances.
func (b *Builder) Tolerances() Tolerances { return b.tol }

// AddPointIndex appends zeroBasedIndex+1, negated when the edge leaving
// this vertex is hidden.
func (b *Builder) AddPointIndex(zeroBasedIndex int, visible bool) {
	idx := zeroBasedIndex + 1
	if !visible {
		idx = -idx
	}
	b.mesh.PointIndex = append(b.mesh.PointIndex, idx)
}

// AddNormalIndex appends zeroBasedIndex+1.
func (b *Builder) AddNormalIndex(zeroBasedIndex int) {
	b.mesh.NormalIndex = append(b.mesh.NormalIndex, zeroBasedIndex+1)
}

// AddParamIndex appends zeroBasedIndex+1.
func (b *Builder) AddParamIndex(zeroBasedIndex int) {
	b.mesh.ParamIndex = append(b.mesh.ParamIndex, zeroBasedIndex+1)
}

// AddAuxIndex appends zeroBasedIndex+1 to the aux index stream.
func (b *Builder) AddAuxIndex(zeroBasedIndex int) {
	aux := b.auxData()
	aux.Indices = append(aux.Indices, zeroBasedIndex+1)
}

// AddPointIndexTerminator closes the current face in the point stream.
func (b *Builder) AddPointIndexTerminator() {
	b.mesh.PointIndex = append(b.mesh.PointIndex, 0)
}

// AddNormalIndexTerminator closes the current face in the normal stream.
func (b *Builder) AddNormalIndexTerminator() {
	b.mesh.NormalIndex = append(b.mesh.NormalIndex, 0)
}

// AddParamIndexTerminator closes the current face in the param stream.
func (b *Builder) AddParamIndexTerminator() {
	b.mesh.ParamIndex = append(b.mesh.ParamIndex, 0)
}

// AddAuxIndexTerminator closes the current face in the aux stream.
func (b *Builder) AddAuxIndexTerminator() {
	aux := b.auxData()
	aux.Indices = append(aux.Indices, 0)
}

// AddIndexTerminators terminates the point stream, and the normal, param
// and aux streams when they are populated. Do not also call the
// individual terminator methods for the same face.
func (b *Builder) AddIndexTerminators() {
	b.AddPointIndexTerminator()
	if len(b.mesh.NormalIndex) > 0 {
		b.AddNormalIndexTerminator()
	}
	if len(b.mesh.ParamIndex) > 0 {
		b.AddParamIndexTerminator()
	}
	if b.mesh.AuxData != nil && len(b.mesh.AuxData.Indices) > 0 {
		b.AddAuxIndexTerminator()
	}
}

// SetFaceData stages data for the face in progress. Its index range is
// overwritten by EndFace.
func (b *Builder) SetFaceData(fd FaceData) {
	b.faceData = fd
}

// EndFace records the staged face data for the face just terminated and
// resets the stage. Call it once per face, after the terminators.
func (b *Builder) EndFace() {
	fd := b.faceData
	fd.IndexStart = b.faceStart
	fd.IndexEnd = len(b.mesh.PointIndex)
	b.mesh.FaceData = append(b.mesh.FaceData, fd)
	b.faceStart = fd.IndexEnd
	b.faceData = NewFaceData()
}

// AddAuxDataByIndex appends the values every channel holds for index. The
// aux container is created on first use with the layout of channels.
func (b *Builder) AddAuxDataByIndex(channels AuxChannels, index int) {
	aux := b.auxDataFor(channels)
	for i, c := range aux.Channels {
		if i >= len(channels) {
			break
		}
		c.AppendDataByIndex(channels[i], index)
	}
}

// AddInterpolatedAuxData appends the weighted blend of the given source
// vertex values and returns the zero-based index of the new value.
func (b *Builder) AddInterpolatedAuxData(channels AuxChannels, indices []int, fractions []float64) int {
	aux := b.auxDataFor(channels)
	for i, c := range aux.Channels {
		if i >= len(channels) {
			break
		}
		c.AppendInterpolated(channels[i], indices, fractions)
	}
	return aux.ValueCount() - 1
}

func (b *Builder) auxData() *AuxData {
	if b.mesh.AuxData == nil {
		b.mesh.AuxData = &AuxData{}
	}
	return b.mesh.AuxData
}

func (b *Builder) auxDataFor(channels AuxChannels) *AuxData {
	aux := b.auxData()
	if len(aux.Channels) == 0 {
		aux.Channels = channels.CloneEmpty()
	}
	return aux
}

// AddPolygon welds one face with all edges visible. normals and params may
// be nil; otherwise they must match points in length.
func (b *Builder) AddPolygon(points []v3.Vec, normals []v3.Vec, params []v2.Vec) error {
	if normals != nil && len(normals) != len(points) {
		return fmt.Errorf("polyface: add polygon: %d normals for %d points", len(normals), len(points))
	}
	if params != nil && len(params) != len(points) {
		return fmt.Errorf("polyface: add polygon: %d params for %d points", len(params), len(points))
	}
	normalIdx := make([]int, len(normals))
	for i, n := range normals {
		idx, err := b.FindOrAddNormal(n)
		if err != nil {
			return fmt.Errorf("polyface: add polygon: vertex %d: %w", i, err)
		}
		normalIdx[i] = idx
	}
	for i, p := range points {
		b.AddPointIndex(b.FindOrAddPoint(p), true)
		if normals != nil {
			b.AddNormalIndex(normalIdx[i])
		}
		if params != nil {
			b.AddParamIndex(b.FindOrAddParam(params[i]))
		}
	}
	b.AddIndexTerminators()
	b.EndFace()
	return nil
}

// AddMesh re-welds every face of src into the builder, keeping edge
// visibility, normals, params, aux data and face data.
func (b *Builder) AddMesh(src *Mesh) error {
	if err := src.Validate(); err != nil {
		return fmt.Errorf("polyface: add mesh: %w", err)
	}
	v := NewVisitor(src)
	for v.Next() {
		if fd, ok := src.FaceDataAt(v.IndexStart()); ok {
			b.SetFaceData(fd)
		}
		for i := 0; i < v.NumEdgesThisFace(); i++ {
			b.AddPointIndex(b.FindOrAddPoint(v.Points[i]), v.Visible[i])
			if v.HasNormals() {
				idx, err := b.FindOrAddNormal(v.Normals[i])
				if err != nil {
					return fmt.Errorf("polyface: add mesh: read index %d: %w", v.IndexStart()+i, err)
				}
				b.AddNormalIndex(idx)
			}
			if v.HasParams() {
				b.AddParamIndex(b.FindOrAddParam(v.Params[i]))
			}
			if v.HasAux() {
				b.AddAuxDataByIndex(src.AuxData.Channels, v.AuxIndex[i])
				b.AddAuxIndex(b.mesh.AuxData.ValueCount() - 1)
			}
		}
		b.AddIndexTerminators()
		b.EndFace()
	}
	return nil
}
