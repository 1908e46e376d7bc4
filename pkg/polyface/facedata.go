package polyface

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// FaceData is the per-face record attached by Builder.EndFace.
type FaceData struct {
	// ParamDistanceRange is the param range rescaled to model distances.
	ParamDistanceRange sdf.Box2
	// ParamRange is the range the stored params actually span.
	ParamRange sdf.Box2

	// IndexStart and IndexEnd delimit the face in the point index stream,
	// terminators included.
	IndexStart, IndexEnd int
}

// NewFaceData returns face data with null ranges and an empty index range.
func NewFaceData() FaceData {
	var fd FaceData
	fd.Init()
	return fd
}

// Init restores null ranges and a zero index range.
func (fd *FaceData) Init() {
	fd.ParamDistanceRange = nullBox2()
	fd.ParamRange = nullBox2()
	fd.IndexStart, fd.IndexEnd = 0, 0
}

// IndexCount returns the number of point index entries the face spans.
func (fd FaceData) IndexCount() int {
	return fd.IndexEnd - fd.IndexStart
}

// HasParamRange reports whether ParamRange has been set.
func (fd FaceData) HasParamRange() bool {
	return !isNullBox2(fd.ParamRange)
}

// ConvertParamToNormalized maps a stored param into 0..1 across ParamRange.
// An axis with zero extent maps to 0.
func (fd FaceData) ConvertParamToNormalized(p v2.Vec) v2.Vec {
	if !fd.HasParamRange() {
		return p
	}
	return v2.Vec{
		X: normalizedFraction(p.X, fd.ParamRange.Min.X, fd.ParamRange.Max.X),
		Y: normalizedFraction(p.Y, fd.ParamRange.Min.Y, fd.ParamRange.Max.Y),
	}
}

// ConvertParamToDistance maps a stored param into ParamDistanceRange.
func (fd FaceData) ConvertParamToDistance(p v2.Vec) v2.Vec {
	n := fd.ConvertParamToNormalized(p)
	if isNullBox2(fd.ParamDistanceRange) {
		return n
	}
	r := fd.ParamDistanceRange
	return v2.Vec{
		X: r.Min.X + n.X*(r.Max.X-r.Min.X),
		Y: r.Min.Y + n.Y*(r.Max.Y-r.Min.Y),
	}
}

// ScaleDistances scales ParamDistanceRange about the origin.
func (fd *FaceData) ScaleDistances(s float64) {
	if isNullBox2(fd.ParamDistanceRange) {
		return
	}
	fd.ParamDistanceRange.Min = fd.ParamDistanceRange.Min.MulScalar(s)
	fd.ParamDistanceRange.Max = fd.ParamDistanceRange.Max.MulScalar(s)
}

// SetParamDistanceRangeFromNewFaceData is called right after the facets of
// a face were added to m. It sets ParamRange from the params the facets in
// [IndexStart, endIndex) reference, and ParamDistanceRange from per-axis
// scale factors fitted to the facet edge lengths. endIndex <= 0 means the
// end of the point index stream.
func (fd *FaceData) SetParamDistanceRangeFromNewFaceData(m *Mesh, endIndex int) {
	if endIndex <= 0 || endIndex > len(m.PointIndex) {
		endIndex = len(m.PointIndex)
	}
	if len(m.ParamIndex) != len(m.PointIndex) {
		return
	}
	fd.ParamRange = nullBox2()
	var sumDU, sumDUU, sumDV, sumDVV float64
	start := fd.IndexStart
	for start < endIndex {
		end := start
		for end < endIndex && m.PointIndex[end] != 0 {
			end++
		}
		n := end - start
		for i := 0; i < n; i++ {
			ia, ib := start+i, start+(i+1)%n
			pa := m.Params[m.ParamIndex[ia]-1]
			pb := m.Params[m.ParamIndex[ib]-1]
			fd.ParamRange = fd.ParamRange.Include(pa)
			d := m.Points[abs(m.PointIndex[ib])-1].Sub(m.Points[abs(m.PointIndex[ia])-1]).Length()
			du, dv := math.Abs(pb.X-pa.X), math.Abs(pb.Y-pa.Y)
			sumDU += d * du
			sumDUU += du * du
			sumDV += d * dv
			sumDVV += dv * dv
		}
		start = end + 1
	}
	if isNullBox2(fd.ParamRange) {
		return
	}
	uScale, vScale := 1.0, 1.0
	if sumDUU > 0 {
		uScale = sumDU / sumDUU
	}
	if sumDVV > 0 {
		vScale = sumDV / sumDVV
	}
	fd.ParamDistanceRange = sdf.Box2{
		Min: v2.Vec{},
		Max: v2.Vec{
			X: uScale * (fd.ParamRange.Max.X - fd.ParamRange.Min.X),
			Y: vScale * (fd.ParamRange.Max.Y - fd.ParamRange.Min.Y),
		},
	}
}

func normalizedFraction(v, lo, hi float64) float64 {
	if hi-lo <= 0 {
		return 0
	}
	return (v - lo) / (hi - lo)
}

func nullBox2() sdf.Box2 {
	inf := math.Inf(1)
	return sdf.Box2{
		Min: v2.Vec{X: inf, Y: inf},
		Max: v2.Vec{X: -inf, Y: -inf},
	}
}

func isNullBox2(b sdf.Box2) bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y
}
