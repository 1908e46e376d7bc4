package polyface

import (
	"errors"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxFaces lists the corners of each box face counter-clockwise seen from
// outside. Corner i has x = bit0, y = bit1, z = bit2.
var boxFaces = [6][4]int{
	{0, 2, 3, 1},
	{4, 5, 7, 6},
	{0, 1, 5, 4},
	{2, 6, 7, 3},
	{0, 4, 6, 2},
	{1, 3, 7, 5},
}

func boxMesh(t *testing.T, min, max v3.Vec, faces int) *Mesh {
	t.Helper()
	var corners [8]v3.Vec
	for i := range corners {
		corners[i] = v3.Vec{X: min.X, Y: min.Y, Z: min.Z}
		if i&1 != 0 {
			corners[i].X = max.X
		}
		if i&2 != 0 {
			corners[i].Y = max.Y
		}
		if i&4 != 0 {
			corners[i].Z = max.Z
		}
	}
	b := newTestBuilder(t, DefaultTolerances())
	for _, f := range boxFaces[:faces] {
		face := []v3.Vec{corners[f[0]], corners[f[1]], corners[f[2]], corners[f[3]]}
		require.NoError(t, b.AddPolygon(face, nil, nil))
	}
	return b.Mesh()
}

func TestIsClosedByEdgePairing(t *testing.T) {
	one := v3.Vec{X: 1, Y: 1, Z: 1}
	tests := []struct {
		name string
		mesh *Mesh
		want bool
	}{
		{"empty", New(), false},
		{"box", boxMesh(t, v3.Vec{}, one, 6), true},
		{"open box", boxMesh(t, v3.Vec{}, one, 5), false},
		{"single triangle", &Mesh{Points: []v3.Vec{{}, {X: 1}, {Y: 1}}, PointIndex: []int{1, 2, 3, 0}}, false},
		{
			"double-sided triangle",
			&Mesh{Points: []v3.Vec{{}, {X: 1}, {Y: 1}}, PointIndex: []int{1, 2, 3, 0, 3, 2, 1, 0}},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mesh.IsClosedByEdgePairing(); got != tt.want {
				t.Errorf("IsClosedByEdgePairing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSumTetrahedralVolumes(t *testing.T) {
	m := boxMesh(t, v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 3, Y: 5, Z: 7}, 6)
	for _, origin := range []v3.Vec{{}, {X: 2, Y: 3, Z: 4}, {X: -10, Y: 40, Z: 7}} {
		assert.InDelta(t, 24.0, m.SumTetrahedralVolumes(origin), 1e-9, "origin %v", origin)
	}

	// Reversing every face flips the sign.
	rev := m.Clone()
	v := NewVisitor(m)
	rev.PointIndex = rev.PointIndex[:0]
	for v.Next() {
		for i := v.NumEdgesThisFace() - 1; i >= 0; i-- {
			rev.PointIndex = append(rev.PointIndex, v.PointIndex[i]+1)
		}
		rev.PointIndex = append(rev.PointIndex, 0)
	}
	assert.InDelta(t, -24.0, rev.SumTetrahedralVolumes(v3.Vec{}), 1e-9)
}

func TestValidatedVolume(t *testing.T) {
	vol, err := boxMesh(t, v3.Vec{}, v3.Vec{X: 2, Y: 2, Z: 2}, 6).ValidatedVolume()
	require.NoError(t, err)
	assert.InDelta(t, 8.0, vol, 1e-12)

	_, err = boxMesh(t, v3.Vec{}, v3.Vec{X: 2, Y: 2, Z: 2}, 4).ValidatedVolume()
	if !errors.Is(err, ErrNotClosed) {
		t.Errorf("ValidatedVolume() error = %v, want ErrNotClosed", err)
	}
}
