package polyface

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
)

func vertexDetail(i int, p v3.Vec) FacetLocationDetail {
	d := NewFacetLocationDetail(0, 0)
	d.SetPoint(p)
	d.SourceIndex = []int{i}
	d.SourceFraction = []float64{1}
	return d
}

func TestFacetLocationDetailTryGet(t *testing.T) {
	d := NewFacetLocationDetail(7, 0.5)
	if _, ok := d.TryGetPoint(); ok {
		t.Error("TryGetPoint() ok on empty detail")
	}
	d.SetParam(v2.Vec{X: 1})
	if p, ok := d.TryGetParam(); !ok || p.X != 1 {
		t.Errorf("TryGetParam() = %v, %v", p, ok)
	}
	if _, ok := d.TryGetNormal(); ok {
		t.Error("TryGetNormal() ok without a normal")
	}
	if _, ok := d.TryGetWeight(0); ok {
		t.Error("TryGetWeight(0) ok without weights")
	}
	d.Zero()
	assert.Equal(t, FacetLocationDetail{}, d)
}

func TestInterpolateDetails(t *testing.T) {
	a := vertexDetail(0, v3.Vec{})
	a.SetNormal(v3.Vec{X: 1})
	b := vertexDetail(1, v3.Vec{X: 4})
	b.SetNormal(v3.Vec{Y: 1})

	d := InterpolateDetails(a, b, 0.25)
	p, _ := d.TryGetPoint()
	assert.InDelta(t, 1.0, p.X, 1e-12)
	n, ok := d.TryGetNormal()
	assert.True(t, ok)
	assert.InDelta(t, 1.0, n.Length(), 1e-12)
	assert.Equal(t, 2, d.NumWeights())
	w, _ := d.TryGetWeight(1)
	assert.InDelta(t, 0.25, w, 1e-12)
	assert.False(t, d.IsInterior)
}

func TestAccumulateScaledDataMergesWeights(t *testing.T) {
	edge := InterpolateDetails(vertexDetail(0, v3.Vec{}), vertexDetail(1, v3.Vec{X: 1}), 0.5)
	var d FacetLocationDetail
	d.AccumulateScaledData(edge, 0.5)
	d.AccumulateScaledData(vertexDetail(0, v3.Vec{}), 0.25)
	assert.Equal(t, []int{0, 1}, d.SourceIndex)
	assert.InDeltaSlice(t, []float64{0.5, 0.25}, d.SourceFraction, 1e-12)
	assert.False(t, d.IsInterior)

	d.AccumulateScaledData(vertexDetail(2, v3.Vec{Y: 1}), 0.25)
	assert.True(t, d.IsInterior, "three positive weights lie inside the facet")
	idx, ok := d.TryGetVertexIndex(2)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestSortDetails(t *testing.T) {
	ds := []FacetLocationDetail{{A: 3}, {A: 1}, {A: 2}}
	SortA(ds)
	assert.Equal(t, []float64{1, 2, 3}, []float64{ds[0].A, ds[1].A, ds[2].A})

	ds = []FacetLocationDetail{
		{Param: v2.Vec{X: 1, Y: 0}},
		{Param: v2.Vec{X: 0, Y: 2}},
		{Param: v2.Vec{X: 0, Y: 1}},
	}
	SortUV(ds)
	assert.Equal(t, v2.Vec{X: 0, Y: 1}, ds[0].Param)
	assert.Equal(t, v2.Vec{X: 0, Y: 2}, ds[1].Param)
	assert.Equal(t, v2.Vec{X: 1, Y: 0}, ds[2].Param)
}
