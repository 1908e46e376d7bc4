// Package polyface defines the indexed mesh container and the welding
// builder that fills it. A mesh stores deduplicated points, normals and
// params plus one-based index streams that reference them per face. The
// sign of a point index encodes the visibility of the edge leaving that
// vertex; a zero index terminates a face.
package polyface

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is an indexed polyface.
//
// Writes through a Builder are unchecked; call Validate before handing a
// mesh to code that dereferences its indices.
type Mesh struct {
	Points  []v3.Vec
	Normals []v3.Vec
	Params  []v2.Vec

	PointIndex  []int // one-based, signed for visibility, 0 terminates a face
	NormalIndex []int // empty, or parallel to PointIndex
	ParamIndex  []int // empty, or parallel to PointIndex

	FaceData []FaceData
	AuxData  *AuxData
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// PointCount returns the number of points.
func (m *Mesh) PointCount() int { return len(m.Points) }

// NormalCount returns the number of normals.
func (m *Mesh) NormalCount() int { return len(m.Normals) }

// ParamCount returns the number of params.
func (m *Mesh) ParamCount() int { return len(m.Params) }

// IsEmpty returns true if the mesh has no point indices.
func (m *Mesh) IsEmpty() bool {
	return m.FaceCount() == 0
}

// FaceCount returns the number of non-empty index runs in the point index
// stream. A trailing run without a terminator still counts.
func (m *Mesh) FaceCount() int {
	n := 0
	inFace := false
	for _, idx := range m.PointIndex {
		if idx == 0 {
			if inFace {
				n++
			}
			inFace = false
			continue
		}
		inFace = true
	}
	if inFace {
		n++
	}
	return n
}

// TerminatorCount returns the number of zero entries in the point index
// stream.
func (m *Mesh) TerminatorCount() int {
	n := 0
	for _, idx := range m.PointIndex {
		if idx == 0 {
			n++
		}
	}
	return n
}

// Range returns the bounding box of all points. The box of an empty mesh
// has Min > Max.
func (m *Mesh) Range() sdf.Box3 {
	box := nullBox3()
	for _, p := range m.Points {
		box = box.Include(p)
	}
	return box
}

// LargestCoordinate returns the largest absolute coordinate of any point.
func (m *Mesh) LargestCoordinate() float64 {
	var a float64
	for _, p := range m.Points {
		a = math.Max(a, math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z))))
	}
	return a
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Points:      append([]v3.Vec(nil), m.Points...),
		Normals:     append([]v3.Vec(nil), m.Normals...),
		Params:      append([]v2.Vec(nil), m.Params...),
		PointIndex:  append([]int(nil), m.PointIndex...),
		NormalIndex: append([]int(nil), m.NormalIndex...),
		ParamIndex:  append([]int(nil), m.ParamIndex...),
		FaceData:    append([]FaceData(nil), m.FaceData...),
	}
	if m.AuxData != nil {
		c.AuxData = m.AuxData.Clone()
	}
	return c
}

// FaceDataAt returns the face data record whose index range contains the
// given read index.
func (m *Mesh) FaceDataAt(readIndex int) (FaceData, bool) {
	for _, fd := range m.FaceData {
		if readIndex >= fd.IndexStart && readIndex < fd.IndexEnd {
			return fd, true
		}
	}
	return FaceData{}, false
}

// Validate checks every index stream against its attribute array and the
// parallel-stream layout. It returns the first problem as a
// *ValidationError.
func (m *Mesh) Validate() error {
	if err := checkIndexStream("point", m.PointIndex, len(m.Points), true); err != nil {
		return err
	}
	if err := checkParallelStream("normal", m.NormalIndex, m.PointIndex, len(m.Normals)); err != nil {
		return err
	}
	if err := checkParallelStream("param", m.ParamIndex, m.PointIndex, len(m.Params)); err != nil {
		return err
	}
	if m.AuxData != nil && len(m.AuxData.Indices) > 0 {
		if err := m.AuxData.Validate(); err != nil {
			return err
		}
		if err := checkParallelStream("aux", m.AuxData.Indices, m.PointIndex, m.AuxData.ValueCount()); err != nil {
			return err
		}
	}
	for i, fd := range m.FaceData {
		if fd.IndexStart < 0 || fd.IndexEnd < fd.IndexStart || fd.IndexEnd > len(m.PointIndex) {
			return &ValidationError{
				Code:    CodeFaceDataRange,
				Index:   i,
				Message: "face data index range lies outside the point index stream",
			}
		}
	}
	return nil
}

func checkIndexStream(name string, stream []int, count int, signed bool) error {
	for i, idx := range stream {
		if idx == 0 {
			continue
		}
		if idx < 0 && !signed {
			return &ValidationError{
				Code:    CodeNegativeIndex,
				Index:   i,
				Message: name + " index is negative in an unsigned stream",
			}
		}
		if abs(idx) > count {
			return &ValidationError{
				Code:    CodeIndexOutOfRange,
				Index:   i,
				Message: name + " index exceeds attribute count",
			}
		}
	}
	return nil
}

func checkParallelStream(name string, stream, pointIndex []int, count int) error {
	if len(stream) == 0 {
		return nil
	}
	if len(stream) != len(pointIndex) {
		return &ValidationError{
			Code:    CodeStreamLength,
			Index:   len(stream),
			Message: name + " index stream is not parallel to the point index stream",
		}
	}
	for i := range stream {
		if (stream[i] == 0) != (pointIndex[i] == 0) {
			return &ValidationError{
				Code:    CodeTerminatorMismatch,
				Index:   i,
				Message: name + " index terminator does not match point index terminator",
			}
		}
	}
	return checkIndexStream(name, stream, count, false)
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func nullBox3() sdf.Box3 {
	inf := math.Inf(1)
	return sdf.Box3{
		Min: v3.Vec{X: inf, Y: inf, Z: inf},
		Max: v3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}
