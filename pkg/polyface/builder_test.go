package polyface

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPointIndexSign(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		visible bool
		want    int
	}{
		{"visible zero", 0, true, 1},
		{"hidden zero", 0, false, -1},
		{"visible", 6, true, 7},
		{"hidden", 6, false, -7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t, DefaultTolerances())
			b.AddPointIndex(tt.index, tt.visible)
			if got := b.Mesh().PointIndex[0]; got != tt.want {
				t.Errorf("AddPointIndex(%d, %v) stored %d, want %d", tt.index, tt.visible, got, tt.want)
			}
		})
	}
}

func TestAddUnsignedIndices(t *testing.T) {
	b := newTestBuilder(t, DefaultTolerances())
	b.AddNormalIndex(0)
	b.AddParamIndex(4)
	b.AddAuxIndex(2)
	m := b.Mesh()
	assert.Equal(t, []int{1}, m.NormalIndex)
	assert.Equal(t, []int{5}, m.ParamIndex)
	assert.Equal(t, []int{3}, m.AuxData.Indices)
}

func TestIndexStreamParity(t *testing.T) {
	b := newTestBuilder(t, DefaultTolerances())
	tri := []v3.Vec{{}, {X: 1}, {Y: 1}}
	quad := []v3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	for _, face := range [][]v3.Vec{tri, quad, tri} {
		require.NoError(t, b.AddPolygon(face, nil, nil))
	}
	m := b.Mesh()
	if got, want := m.TerminatorCount(), len(m.FaceData); got != want {
		t.Errorf("TerminatorCount() = %d, want %d EndFace records", got, want)
	}
	if got := m.FaceCount(); got != 3 {
		t.Errorf("FaceCount() = %d, want 3", got)
	}
	if got := m.PointCount(); got != 4 {
		t.Errorf("PointCount() = %d, want 4 welded points", got)
	}
	assert.NoError(t, m.Validate())
}

func TestAddIndexTerminatorsOnlyPopulatedStreams(t *testing.T) {
	b := newTestBuilder(t, DefaultTolerances())
	for i := 0; i < 3; i++ {
		b.AddPointIndex(i, true)
		b.AddNormalIndex(0)
	}
	b.AddIndexTerminators()
	m := b.Mesh()
	assert.Equal(t, []int{1, 2, 3, 0}, m.PointIndex)
	assert.Equal(t, []int{1, 1, 1, 0}, m.NormalIndex)
	assert.Empty(t, m.ParamIndex)
	assert.Nil(t, m.AuxData)
}

func TestEndFaceRecordsStagedFaceData(t *testing.T) {
	b := newTestBuilder(t, DefaultTolerances())

	staged := NewFaceData()
	staged.ParamRange = staged.ParamRange.Include(v2.Vec{X: 1, Y: 2})
	b.SetFaceData(staged)
	require.NoError(t, b.AddPolygon([]v3.Vec{{}, {X: 1}, {Y: 1}}, nil, nil))
	require.NoError(t, b.AddPolygon([]v3.Vec{{}, {X: 1}, {Z: 1}}, nil, nil))

	m := b.Mesh()
	require.Len(t, m.FaceData, 2)
	assert.True(t, m.FaceData[0].HasParamRange())
	assert.Equal(t, 0, m.FaceData[0].IndexStart)
	assert.Equal(t, 4, m.FaceData[0].IndexEnd)
	assert.False(t, m.FaceData[1].HasParamRange(), "stage must reset after EndFace")
	assert.Equal(t, 4, m.FaceData[1].IndexStart)
	assert.Equal(t, 8, m.FaceData[1].IndexEnd)

	fd, ok := m.FaceDataAt(5)
	require.True(t, ok)
	assert.Equal(t, 4, fd.IndexStart)
}

func TestEndFaceWithoutIndices(t *testing.T) {
	b := newTestBuilder(t, DefaultTolerances())
	b.EndFace()
	m := b.Mesh()
	require.Len(t, m.FaceData, 1)
	assert.Equal(t, 0, m.FaceData[0].IndexCount())
}

func TestAddPolygonAttributes(t *testing.T) {
	b := newTestBuilder(t, DefaultTolerances())
	pts := []v3.Vec{{}, {X: 1}, {Y: 1}}
	nrm := []v3.Vec{{Z: 1}, {Z: 1}, {Z: 1}}
	uv := []v2.Vec{{}, {X: 1}, {Y: 1}}
	require.NoError(t, b.AddPolygon(pts, nrm, uv))

	m := b.Mesh()
	assert.Equal(t, []int{1, 1, 1, 0}, m.NormalIndex)
	assert.Equal(t, []int{1, 2, 3, 0}, m.ParamIndex)
	assert.Equal(t, 1, m.NormalCount())

	assert.Error(t, b.AddPolygon(pts, nrm[:2], nil))
	assert.Error(t, b.AddPolygon(pts, nil, uv[:1]))
	err := b.AddPolygon(pts, []v3.Vec{{Z: 2}, {Z: 1}, {Z: 1}}, nil)
	assert.True(t, IsValidationCode(err, CodeNonUnitNormal), "error = %v", err)
}

func scalarChannels(values ...float64) AuxChannels {
	return AuxChannels{{
		Name: "temperature",
		Type: AuxScalar,
		Data: []*AuxChannelData{{Input: 0, Values: values}},
	}}
}

func TestAddAuxData(t *testing.T) {
	b := newTestBuilder(t, DefaultTolerances())
	src := scalarChannels(10, 20, 30)

	b.AddAuxDataByIndex(src, 1)
	idx := b.AddInterpolatedAuxData(src, []int{0, 2}, []float64{0.25, 0.75})

	aux := b.Mesh().AuxData
	require.NotNil(t, aux)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, aux.ValueCount())
	assert.Equal(t, "temperature", aux.Channels[0].Name)
	assert.InDeltaSlice(t, []float64{20, 25}, aux.Channels[0].Data[0].Values, 1e-12)
	assert.Equal(t, []float64{10, 20, 30}, src[0].Data[0].Values, "source must not change")
}

func TestAddAuxDataVectorChannel(t *testing.T) {
	b := newTestBuilder(t, DefaultTolerances())
	src := AuxChannels{{
		Name: "displacement",
		Type: AuxVector,
		Data: []*AuxChannelData{{Values: []float64{1, 2, 3, 4, 5, 6}}},
	}}
	b.AddAuxDataByIndex(src, 1)
	b.AddInterpolatedAuxData(src, []int{0, 1}, []float64{0.5, 0.5})
	assert.InDeltaSlice(t, []float64{4, 5, 6, 2.5, 3.5, 4.5}, b.Mesh().AuxData.Channels[0].Data[0].Values, 1e-12)
}

func TestAddMeshReweldsAndKeepsVisibility(t *testing.T) {
	src := New()
	src.Points = []v3.Vec{{}, {X: 1}, {Y: 1}, {}, {X: 1, Y: 1}}
	src.PointIndex = []int{1, -2, 3, 0, 4, 2, -5, 0}
	src.AuxData = &AuxData{
		Channels: scalarChannels(1, 2, 3, 4, 5),
		Indices:  []int{1, 2, 3, 0, 4, 2, 5, 0},
	}

	b := newTestBuilder(t, DefaultTolerances())
	require.NoError(t, b.AddMesh(src))

	m := b.Mesh()
	require.NoError(t, m.Validate())
	assert.Equal(t, 4, m.PointCount(), "duplicate origin must weld")
	assert.Equal(t, []int{1, -2, 3, 0, 1, 2, -4, 0}, m.PointIndex)
	assert.Equal(t, 6, m.AuxData.ValueCount())
	assert.Len(t, m.FaceData, 2)
}

func TestAddMeshRejectsInvalidSource(t *testing.T) {
	src := New()
	src.Points = []v3.Vec{{}}
	src.PointIndex = []int{1, 2, 3, 0}

	b := newTestBuilder(t, DefaultTolerances())
	err := b.AddMesh(src)
	assert.True(t, IsValidationCode(err, CodeIndexOutOfRange), "error = %v", err)
}

func TestAddMeshRejectsMismatchedAuxChannels(t *testing.T) {
	src := New()
	src.Points = []v3.Vec{{}, {X: 1}, {Y: 1}}
	src.PointIndex = []int{1, 2, 3, 0}
	src.AuxData = &AuxData{
		Channels: append(scalarChannels(1, 2, 3), &AuxChannel{
			Name: "short",
			Data: []*AuxChannelData{{Values: []float64{1}}},
		}),
		Indices: []int{1, 2, 3, 0},
	}

	b := newTestBuilder(t, DefaultTolerances())
	err := b.AddMesh(src)
	assert.True(t, IsValidationCode(err, CodeAuxLayout), "error = %v", err)
}
