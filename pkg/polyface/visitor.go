package polyface

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Visitor walks the faces of a mesh, loading each face's attributes into
// slices that are reused between calls. The mesh must be valid.
type Visitor struct {
	mesh *Mesh

	next      int
	start     int
	faceIndex int

	Points  []v3.Vec
	Normals []v3.Vec
	Params  []v2.Vec
	Visible []bool

	// Zero-based indices into the mesh attribute arrays.
	PointIndex  []int
	NormalIndex []int
	ParamIndex  []int
	AuxIndex    []int
}

// NewVisitor returns a visitor positioned before the first face.
func NewVisitor(m *Mesh) *Visitor {
	v := &Visitor{mesh: m}
	v.Reset()
	return v
}

// Reset rewinds to before the first face.
func (v *Visitor) Reset() {
	v.next = 0
	v.start = 0
	v.faceIndex = -1
}

// HasNormals reports whether the mesh carries a normal index stream.
func (v *Visitor) HasNormals() bool {
	return len(v.mesh.NormalIndex) > 0 && len(v.mesh.NormalIndex) == len(v.mesh.PointIndex)
}

// HasParams reports whether the mesh carries a param index stream.
func (v *Visitor) HasParams() bool {
	return len(v.mesh.ParamIndex) > 0 && len(v.mesh.ParamIndex) == len(v.mesh.PointIndex)
}

// HasAux reports whether the mesh carries an aux index stream.
func (v *Visitor) HasAux() bool {
	aux := v.mesh.AuxData
	return aux != nil && len(aux.Indices) > 0 && len(aux.Indices) == len(v.mesh.PointIndex)
}

// Next loads the next non-empty face. It returns false when there are no
// more faces.
func (v *Visitor) Next() bool {
	pi := v.mesh.PointIndex
	for v.next < len(pi) && pi[v.next] == 0 {
		v.next++
	}
	if v.next >= len(pi) {
		return false
	}
	v.start = v.next
	end := v.start
	for end < len(pi) && pi[end] != 0 {
		end++
	}
	v.load(v.start, end)
	v.next = end
	v.faceIndex++
	return true
}

func (v *Visitor) load(start, end int) {
	m := v.mesh
	v.Points = v.Points[:0]
	v.Normals = v.Normals[:0]
	v.Params = v.Params[:0]
	v.Visible = v.Visible[:0]
	v.PointIndex = v.PointIndex[:0]
	v.NormalIndex = v.NormalIndex[:0]
	v.ParamIndex = v.ParamIndex[:0]
	v.AuxIndex = v.AuxIndex[:0]
	hasNormals, hasParams, hasAux := v.HasNormals(), v.HasParams(), v.HasAux()
	for i := start; i < end; i++ {
		k := abs(m.PointIndex[i]) - 1
		v.PointIndex = append(v.PointIndex, k)
		v.Points = append(v.Points, m.Points[k])
		v.Visible = append(v.Visible, m.PointIndex[i] > 0)
		if hasNormals {
			n := m.NormalIndex[i] - 1
			v.NormalIndex = append(v.NormalIndex, n)
			v.Normals = append(v.Normals, m.Normals[n])
		}
		if hasParams {
			p := m.ParamIndex[i] - 1
			v.ParamIndex = append(v.ParamIndex, p)
			v.Params = append(v.Params, m.Params[p])
		}
		if hasAux {
			v.AuxIndex = append(v.AuxIndex, m.AuxData.Indices[i]-1)
		}
	}
}

// IndexStart returns the read index of the current face's first vertex.
func (v *Visitor) IndexStart() int { return v.start }

// FaceIndex returns the ordinal of the current face.
func (v *Visitor) FaceIndex() int { return v.faceIndex }

// NumEdgesThisFace returns the vertex count of the current face.
func (v *Visitor) NumEdgesThisFace() int { return len(v.Points) }

// LoadVertexData returns a detail holding vertex i of the current face
// with full weight.
func (v *Visitor) LoadVertexData(i int) FacetLocationDetail {
	d := NewFacetLocationDetail(v.start, 0)
	d.SetPoint(v.Points[i])
	if v.HasParams() {
		d.SetParam(v.Params[i])
	}
	if v.HasNormals() {
		d.SetNormal(v.Normals[i])
	}
	d.SourceIndex = []int{i}
	d.SourceFraction = []float64{1}
	return d
}

// InterpolateDataOnEdge returns the detail at fraction along the edge from
// vertex i to its successor.
func (v *Visitor) InterpolateDataOnEdge(i int, fraction float64) FacetLocationDetail {
	n := len(v.Points)
	d := InterpolateDetails(v.LoadVertexData(i%n), v.LoadVertexData((i+1)%n), fraction)
	d.A = fraction
	return d
}

// FacetNormal returns the Newell normal of the current face, or false for
// a face with no area.
func (v *Visitor) FacetNormal() (v3.Vec, bool) {
	return NewellNormal(v.Points)
}

// NewellNormal returns the unit area normal of a polygon, or false when
// its area is zero.
func NewellNormal(points []v3.Vec) (v3.Vec, bool) {
	var sum v3.Vec
	if len(points) < 3 {
		return sum, false
	}
	origin := points[0]
	for i := 1; i+1 < len(points); i++ {
		sum = sum.Add(points[i].Sub(origin).Cross(points[i+1].Sub(origin)))
	}
	l := sum.Length()
	if l == 0 {
		return sum, false
	}
	return sum.MulScalar(1 / l), true
}
