package polyface

import (
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ActiveMask flags which interpolated values a FacetLocationDetail holds.
type ActiveMask uint8

const (
	HasPoint ActiveMask = 1 << iota
	HasParam
	HasNormal
)

// FacetLocationDetail describes a point within a facet as a weighted blend
// of facet vertices, together with the blended point, param and normal.
type FacetLocationDetail struct {
	ReadIndex  int
	IsInterior bool
	Active     ActiveMask

	Point  v3.Vec
	Param  v2.Vec
	Normal v3.Vec

	// SourceIndex holds facet-local vertex indices, each listed once, and
	// SourceFraction the matching blend weights.
	SourceIndex    []int
	SourceFraction []float64

	A float64
}

// NewFacetLocationDetail returns a zeroed detail with the given read index
// and sort key.
func NewFacetLocationDetail(readIndex int, a float64) FacetLocationDetail {
	return FacetLocationDetail{ReadIndex: readIndex, A: a}
}

// Zero clears all contents.
func (d *FacetLocationDetail) Zero() {
	*d = FacetLocationDetail{}
}

// SetPoint sets the point and marks it active.
func (d *FacetLocationDetail) SetPoint(p v3.Vec) {
	d.Point = p
	d.Active |= HasPoint
}

// SetParam sets the param and marks it active.
func (d *FacetLocationDetail) SetParam(p v2.Vec) {
	d.Param = p
	d.Active |= HasParam
}

// SetNormal sets the normal and marks it active.
func (d *FacetLocationDetail) SetNormal(n v3.Vec) {
	d.Normal = n
	d.Active |= HasNormal
}

// TryGetPoint returns the point if it is active.
func (d FacetLocationDetail) TryGetPoint() (v3.Vec, bool) {
	return d.Point, d.Active&HasPoint != 0
}

// TryGetParam returns the param if it is active.
func (d FacetLocationDetail) TryGetParam() (v2.Vec, bool) {
	return d.Param, d.Active&HasParam != 0
}

// TryGetNormal returns the normal if it is active.
func (d FacetLocationDetail) TryGetNormal() (v3.Vec, bool) {
	return d.Normal, d.Active&HasNormal != 0
}

// NumWeights returns the number of source vertices blended together.
func (d FacetLocationDetail) NumWeights() int {
	return len(d.SourceIndex)
}

// TryGetWeight returns the i'th blend weight.
func (d FacetLocationDetail) TryGetWeight(i int) (float64, bool) {
	if i < 0 || i >= len(d.SourceFraction) {
		return 0, false
	}
	return d.SourceFraction[i], true
}

// TryGetVertexIndex returns the i'th facet-local source vertex index.
func (d FacetLocationDetail) TryGetVertexIndex(i int) (int, bool) {
	if i < 0 || i >= len(d.SourceIndex) {
		return 0, false
	}
	return d.SourceIndex[i], true
}

// AccumulateScaledData adds fraction times every active value of src and
// merges its source weights, scaled by fraction, into d. The interior flag
// is recomputed: a blend of three or more vertices with positive weight
// lies inside the facet.
func (d *FacetLocationDetail) AccumulateScaledData(src FacetLocationDetail, fraction float64) {
	if src.Active&HasPoint != 0 {
		d.Point = d.Point.Add(src.Point.MulScalar(fraction))
	}
	if src.Active&HasParam != 0 {
		d.Param = d.Param.Add(src.Param.MulScalar(fraction))
	}
	if src.Active&HasNormal != 0 {
		d.Normal = d.Normal.Add(src.Normal.MulScalar(fraction))
	}
	d.Active |= src.Active
	d.A += fraction * src.A
	for k, idx := range src.SourceIndex {
		d.addWeight(idx, fraction*src.SourceFraction[k])
	}
	positive := 0
	for _, w := range d.SourceFraction {
		if w > 0 {
			positive++
		}
	}
	d.IsInterior = positive >= 3
}

func (d *FacetLocationDetail) addWeight(index int, w float64) {
	for k, idx := range d.SourceIndex {
		if idx == index {
			d.SourceFraction[k] += w
			return
		}
	}
	d.SourceIndex = append(d.SourceIndex, index)
	d.SourceFraction = append(d.SourceFraction, w)
}

// InterpolateDetails returns the blend (1-f)*a + f*b. An active normal is
// renormalized when it has non-zero length.
func InterpolateDetails(a, b FacetLocationDetail, f float64) FacetLocationDetail {
	out := FacetLocationDetail{ReadIndex: a.ReadIndex}
	out.AccumulateScaledData(a, 1-f)
	out.AccumulateScaledData(b, f)
	if out.Active&HasNormal != 0 {
		if l := out.Normal.Length(); l > 0 {
			out.Normal = out.Normal.MulScalar(1 / l)
		}
	}
	return out
}

// SortA sorts details by A.
func SortA(details []FacetLocationDetail) {
	sort.SliceStable(details, func(i, j int) bool { return details[i].A < details[j].A })
}

// SortUV sorts details lexically by param.
func SortUV(details []FacetLocationDetail) {
	sort.SliceStable(details, func(i, j int) bool {
		if details[i].Param.X != details[j].Param.X {
			return details[i].Param.X < details[j].Param.X
		}
		return details[i].Param.Y < details[j].Param.Y
	})
}
