package engine

import (
	"testing"

	"github.com/chazu/facet/pkg/frustum"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(sphere :radius 5)`,
			expect: `(sphere "__kw_radius" 5)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :height 4 :radius 1)`,
			expect: `(cylinder "__kw_height" 4 "__kw_radius" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote inside string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`clip-box :min`",
			expect: "`clip-box :min`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(frustum-box :min lo)`,
			expect: `(frustum_box "__kw_min" lo)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -1 0 -2.5)`,
			expect: `(vec3 -1 0 -2.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "comment ends at newline",
			input:  "; first\n(is-closed m)",
			expect: "// first\n(is_closed m)",
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:far-plane`,
			expect: `"__kw_far-plane"`,
		},
		{
			name:   "unterminated string",
			input:  `(emit "open`,
			expect: `(emit "open`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test kernel: every solid is its bounding box.
// ---------------------------------------------------------------------------

type boxSolid struct {
	bb sdf.Box3
}

func (s *boxSolid) BoundingBox() sdf.Box3 { return s.bb }

type testKernel struct{}

func (k *testKernel) Box(size v3.Vec) (kernel.Solid, error) {
	return &boxSolid{bb: sdf.Box3{Max: size}}, nil
}

func (k *testKernel) Cylinder(h, r float64) (kernel.Solid, error) {
	return &boxSolid{bb: sdf.Box3{Min: v3.Vec{X: -r, Y: -r, Z: -h / 2}, Max: v3.Vec{X: r, Y: r, Z: h / 2}}}, nil
}

func (k *testKernel) Sphere(r float64) (kernel.Solid, error) {
	return &boxSolid{bb: sdf.Box3{Min: v3.Vec{X: -r, Y: -r, Z: -r}, Max: v3.Vec{X: r, Y: r, Z: r}}}, nil
}

func (k *testKernel) Union(a, b kernel.Solid) kernel.Solid {
	bb := a.BoundingBox()
	other := b.BoundingBox()
	return &boxSolid{bb: bb.Include(other.Min).Include(other.Max)}
}

func (k *testKernel) Difference(a, _ kernel.Solid) kernel.Solid   { return a }
func (k *testKernel) Intersection(a, _ kernel.Solid) kernel.Solid { return a }

func (k *testKernel) Translate(s kernel.Solid, d v3.Vec) kernel.Solid {
	bb := s.BoundingBox()
	return &boxSolid{bb: sdf.Box3{Min: bb.Min.Add(d), Max: bb.Max.Add(d)}}
}

func (k *testKernel) Rotate(s kernel.Solid, _ v3.Vec) kernel.Solid { return s }

func (k *testKernel) Triangles(s kernel.Solid) ([]kernel.Triangle, error) {
	c := frustum.FromBox(s.BoundingBox())
	var tris []kernel.Triangle
	for _, f := range frustum.BoxFaces {
		tris = append(tris,
			kernel.Triangle{c[f[0]], c[f[1]], c[f[2]]},
			kernel.Triangle{c[f[0]], c[f[2]], c[f[3]]})
	}
	return tris, nil
}

var _ kernel.Kernel = (*testKernel)(nil)

// evalScene runs source on a test-kernel engine and fails on any error.
func evalScene(t *testing.T, source string) *Scene {
	t.Helper()
	eng := NewEngine(WithKernel(&testKernel{}))
	s, evalErrs, err := eng.Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, s)
	return s
}

func value(t *testing.T, s *Scene, name string) any {
	t.Helper()
	v, ok := s.Value(name)
	require.True(t, ok, "no value %q in %+v", name, s.Values)
	return v
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

func TestEmitSolid(t *testing.T) {
	s := evalScene(t, `(emit "cube" (box :size (vec3 2 2 2)))`)
	require.Len(t, s.Meshes, 1)
	nm := s.Meshes[0]
	assert.Equal(t, "cube", nm.Name)
	assert.NotNil(t, nm.Solid)
	assert.True(t, nm.Mesh.IsClosedByEdgePairing())
	assert.Equal(t, 8, nm.Mesh.PointCount())
}

func TestMeshQueries(t *testing.T) {
	s := evalScene(t, `
(def m (tessellate (translate (box :size (vec3 1 2 3)) (vec3 5 0 0))))
(emit "vol" (volume m))
(emit "closed" (is-closed m))
(emit "faces" (face-count m))
`)
	assert.InDelta(t, 6.0, value(t, s, "vol"), 1e-12)
	assert.Equal(t, true, value(t, s, "closed"))
	assert.Equal(t, 12.0, value(t, s, "faces"))
}

func TestBooleanFold(t *testing.T) {
	s := evalScene(t, `
(def a (box :size (vec3 1 1 1)))
(def b (translate a (vec3 2 0 0)))
(def c (translate a (vec3 0 3 0)))
(emit "u" (union a b c))
`)
	m, ok := s.Mesh("u")
	require.True(t, ok)
	r := m.Range()
	assert.Equal(t, v3.Vec{X: 3, Y: 4, Z: 1}, r.Max)
}

func TestOverlapBuiltin(t *testing.T) {
	s := evalScene(t, `
(def a (frustum-box :max (vec3 2 2 2)))
(def b (frustum-box :min (vec3 1 1 1) :max (vec3 3 3 3)))
(emit "ab" (overlap a b))
(emit "self" (overlap a a))
(emit "apart" (overlap a (frustum-box :min (vec3 5 5 5) :max (vec3 6 6 6))))
`)
	assert.InDelta(t, 0.125, value(t, s, "ab"), 1e-9)
	assert.InDelta(t, 1.0, value(t, s, "self"), 1e-12)
	assert.Equal(t, 0.0, value(t, s, "apart"))
}

func TestPerspectiveBuiltin(t *testing.T) {
	s := evalScene(t, `
(def f (perspective :eye (vec3 0 0 0) :target (vec3 0 0 -1) :up (vec3 0 1 0)
                    :fov 90 :aspect 1 :near 1 :far 2))
(emit "v" (frustum-volume f))
(emit "frustum" f)
`)
	assert.InDelta(t, 28.0/3.0, value(t, s, "v"), 1e-9)
	m, ok := s.Mesh("frustum")
	require.True(t, ok)
	assert.Equal(t, 6, m.FaceCount())
}

func TestClipBoxBuiltin(t *testing.T) {
	s := evalScene(t, `
(def m (tessellate (box :size (vec3 2 2 2))))
(emit "cut" (clip-box m :min (vec3 -1 -1 -1) :max (vec3 1 3 3)))
(emit "whole" (clip-box m :min (vec3 -1 -1 -1) :max (vec3 3 3 3)))
(emit "none" (face-count (clip-box m :min (vec3 5 5 5) :max (vec3 6 6 6))))
`)
	cut, ok := s.Mesh("cut")
	require.True(t, ok)
	require.NoError(t, cut.Validate())
	assert.InDelta(t, 1.0, cut.Range().Max.X, 1e-12)
	assert.False(t, cut.IsClosedByEdgePairing(), "clipping does not cap the cut")

	whole, ok := s.Mesh("whole")
	require.True(t, ok)
	assert.Equal(t, 12, whole.FaceCount())
	assert.Equal(t, 0.0, value(t, s, "none"))
}

func TestClipFrustumBuiltin(t *testing.T) {
	s := evalScene(t, `
(def m (frustum-mesh (frustum-box :max (vec3 4 4 4))))
(emit "inner" (clip-frustum m (frustum-box :min (vec3 1 1 1) :max (vec3 3 3 3))))
`)
	m, ok := s.Mesh("inner")
	require.True(t, ok)
	assert.True(t, m.IsEmpty(), "the inner box sees no faces of the outer one")
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"vec3 arity", `(vec3 1 2)`},
		{"vec3 non-number", `(vec3 1 "a" 2)`},
		{"box size not vec3", `(box :size 3)`},
		{"union needs two", `(union (box))`},
		{"translate non-solid", `(translate 1 (vec3 0 0 0))`},
		{"tessellate non-solid", `(tessellate (vec3 0 0 0))`},
		{"overlap arity", `(overlap (frustum-box))`},
		{"overlap non-frustum", `(overlap 1 2)`},
		{"bad camera", `(perspective :fov 0)`},
		{"volume of open mesh", `(volume (clip-box (tessellate (box :size (vec3 2 2 2))) :max (vec3 1 3 3)))`},
		{"emit string", `(emit "x" "y")`},
		{"emit unnamed", `(emit 1 2)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine(WithKernel(&testKernel{}))
			s, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			if len(evalErrs) == 0 {
				t.Fatalf("Evaluate(%q) returned no eval errors", tt.source)
			}
			if s != nil {
				t.Errorf("expected nil scene on error")
			}
		})
	}
}

func TestEmitSdfxSphere(t *testing.T) {
	eng := NewEngine(WithKernel(sdfx.New(sdfx.WithCells(30))))
	s, evalErrs, err := eng.Evaluate(`(emit "ball" (sphere :radius 5))`)
	require.NoError(t, err)
	require.Empty(t, evalErrs)

	m, ok := s.Mesh("ball")
	require.True(t, ok)
	assert.Greater(t, m.FaceCount(), 100)
	r := m.Range()
	assert.InDelta(t, 5.0, r.Max.X, 0.5)
}
