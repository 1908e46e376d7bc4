package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/facet/pkg/clip"
	"github.com/chazu/facet/pkg/frustum"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/polyface"
	"github.com/chazu/facet/pkg/tessellate"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel solid.
type sexpSolid struct {
	solid kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	bb := s.solid.BoundingBox()
	return fmt.Sprintf("(solid %v %v)", bb.Min, bb.Max)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a polyface mesh.
type sexpMesh struct {
	mesh *polyface.Mesh
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh :points %d :faces %d)", m.mesh.PointCount(), m.mesh.FaceCount())
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpFrustum wraps a frustum.
type sexpFrustum struct {
	f frustum.Frustum
}

func (f *sexpFrustum) SexpString(ps *zygo.PrintState) string {
	r := f.f.Range()
	return fmt.Sprintf("(frustum %v %v)", r.Min, r.Max)
}
func (f *sexpFrustum) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// A trailing keyword with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float returns keyword key as a number, or def when it is absent.
func (a kwArgs) float(key string, def float64) (float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// vec returns keyword key as a vec3, or def when it is absent.
func (a kwArgs) vec(key string, def v3.Vec) (v3.Vec, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("%s: %w", key, err)
	}
	return vec, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a kernel solid from a sexpSolid.
func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toMesh extracts a polyface mesh from a sexpMesh.
func toMesh(s zygo.Sexp) (*polyface.Mesh, error) {
	if v, ok := s.(*sexpMesh); ok {
		return v.mesh, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// toFrustum extracts a frustum from a sexpFrustum.
func toFrustum(s zygo.Sexp) (frustum.Frustum, error) {
	if v, ok := s.(*sexpFrustum); ok {
		return v.f, nil
	}
	return frustum.Frustum{}, fmt.Errorf("expected frustum, got %T (%s)", s, s.SexpString(nil))
}

// toSolids extracts every argument as a solid, requiring at least min.
func toSolids(fn string, args []zygo.Sexp, min int) ([]kernel.Solid, error) {
	if len(args) < min {
		return nil, fmt.Errorf("%s requires at least %d solids, got %d", fn, min, len(args))
	}
	out := make([]kernel.Solid, len(args))
	for i, a := range args {
		s, err := toSolid(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out[i] = s
	}
	return out, nil
}

func float(f float64) zygo.Sexp { return &zygo.SexpFloat{Val: f} }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtin is the zygomys function signature.
type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the facet builtins into a zygomys environment.
// emit appends to scene.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals, and
// kebab-case names reach zygomys in the underscore form registered here.
func (e *Engine) registerBuiltins(env *zygo.Zlisp, scene *Scene) {
	k := e.kernel
	clipOpts := clip.Options{Triangulate: e.triangulate, Tolerances: e.tol}

	// clipInto runs one clip pass, keeping untouched input whole.
	clipInto := func(fn string, run func(clip.Output) (clip.Outcome, error)) (zygo.Sexp, error) {
		acc, err := clip.NewFrustumPolyfaceClipper(e.tol)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		acc.KeepUnclipped = true
		if _, err := run(acc); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		return &sexpMesh{mesh: acc.Mesh()}, nil
	}

	fns := map[string]builtin{
		// -------------------------------------------------------------------
		// (vec3 1 2 3)
		// -------------------------------------------------------------------
		"vec3": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 3 {
				return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
			}
			var c [3]float64
			for i, a := range args {
				f, err := toFloat64(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
				}
				c[i] = f
			}
			return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
		},

		// -------------------------------------------------------------------
		// Primitives: (box :size (vec3 10 20 30)), (cylinder :height 10
		// :radius 2), (sphere :radius 5)
		// -------------------------------------------------------------------
		"box": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			size, err := parseArgs(args).vec("size", v3.Vec{X: 1, Y: 1, Z: 1})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: %w", err)
			}
			s, err := k.Box(size)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpSolid{solid: s}, nil
		},
		"cylinder": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			h, err := pa.float("height", 1)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
			}
			r, err := pa.float("radius", 1)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
			}
			s, err := k.Cylinder(h, r)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpSolid{solid: s}, nil
		},
		"sphere": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			r, err := parseArgs(args).float("radius", 1)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
			}
			s, err := k.Sphere(r)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpSolid{solid: s}, nil
		},

		// -------------------------------------------------------------------
		// Booleans: (union a b ...), (difference a b ...), (intersection a b ...)
		// -------------------------------------------------------------------
		"union": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return fold("union", args, k.Union)
		},
		"difference": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return fold("difference", args, k.Difference)
		},
		"intersection": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return fold("intersection", args, k.Intersection)
		},

		// -------------------------------------------------------------------
		// Transforms: (translate s (vec3 1 0 0)), (rotate s (vec3 0 0 90))
		// -------------------------------------------------------------------
		"translate": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			s, v, err := solidAndVec("translate", args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpSolid{solid: k.Translate(s, v)}, nil
		},
		"rotate": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			s, v, err := solidAndVec("rotate", args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpSolid{solid: k.Rotate(s, v)}, nil
		},

		// -------------------------------------------------------------------
		// (tessellate solid)
		// -------------------------------------------------------------------
		"tessellate": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("tessellate requires a solid")
			}
			s, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("tessellate: %w", err)
			}
			m, err := tessellate.Tessellate(k, s, e.tol)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpMesh{mesh: m}, nil
		},

		// -------------------------------------------------------------------
		// Frusta: (frustum-box :min (vec3 0 0 0) :max (vec3 1 1 1)),
		// (perspective :eye e :target t :up u :fov 60 :aspect 1.5 :near 1 :far 100)
		// -------------------------------------------------------------------
		"frustum_box": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			lo, err := pa.vec("min", v3.Vec{})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("frustum-box: %w", err)
			}
			hi, err := pa.vec("max", v3.Vec{X: 1, Y: 1, Z: 1})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("frustum-box: %w", err)
			}
			return &sexpFrustum{f: frustum.FromBox(sdf.Box3{Min: lo, Max: hi})}, nil
		},
		"perspective": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			cam, err := parseCamera(parseArgs(args))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("perspective: %w", err)
			}
			f, err := frustum.FromPerspective(cam)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpFrustum{f: f}, nil
		},
		"frustum_mesh": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("frustum-mesh requires a frustum")
			}
			f, err := toFrustum(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("frustum-mesh: %w", err)
			}
			return &sexpMesh{mesh: f.Mesh()}, nil
		},
		"frustum_volume": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("frustum-volume requires a frustum")
			}
			f, err := toFrustum(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("frustum-volume: %w", err)
			}
			return float(f.Volume()), nil
		},
		"overlap": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("overlap requires two frusta, got %d arguments", len(args))
			}
			a, err := toFrustum(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("overlap: first: %w", err)
			}
			b, err := toFrustum(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("overlap: second: %w", err)
			}
			return float(frustum.ComputeFrustumOverlap(a, b)), nil
		},

		// -------------------------------------------------------------------
		// Mesh queries: (volume m), (is-closed m), (face-count m)
		// -------------------------------------------------------------------
		"volume": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			m, err := oneMesh("volume", args)
			if err != nil {
				return zygo.SexpNull, err
			}
			v, err := m.ValidatedVolume()
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: %w", err)
			}
			return float(v), nil
		},
		"is_closed": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			m, err := oneMesh("is-closed", args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &zygo.SexpBool{Val: m.IsClosedByEdgePairing()}, nil
		},
		"face_count": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			m, err := oneMesh("face-count", args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &zygo.SexpInt{Val: int64(m.FaceCount())}, nil
		},

		// -------------------------------------------------------------------
		// Clipping: (clip-box m :min (vec3 ...) :max (vec3 ...)),
		// (clip-frustum m f)
		// -------------------------------------------------------------------
		"clip_box": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("clip-box requires a mesh")
			}
			m, err := toMesh(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("clip-box: %w", err)
			}
			lo, err := pa.vec("min", v3.Vec{})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("clip-box: %w", err)
			}
			hi, err := pa.vec("max", v3.Vec{X: 1, Y: 1, Z: 1})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("clip-box: %w", err)
			}
			return clipInto("clip-box", func(out clip.Output) (clip.Outcome, error) {
				return clip.ClipToRange(m, sdf.Box3{Min: lo, Max: hi}, out, clipOpts)
			})
		},
		"clip_frustum": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("clip-frustum requires a mesh and a frustum")
			}
			m, err := toMesh(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("clip-frustum: %w", err)
			}
			f, err := toFrustum(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("clip-frustum: %w", err)
			}
			return clipInto("clip-frustum", func(out clip.Output) (clip.Outcome, error) {
				return clip.ClipPolyface(m, clip.ClipPlaneSet{f.Planes()}, out, clipOpts)
			})
		},

		// -------------------------------------------------------------------
		// (emit "name" value)
		// -------------------------------------------------------------------
		"emit": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("emit requires a name and a value")
			}
			label, err := toString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("emit: name: %w", err)
			}
			switch v := args[1].(type) {
			case *sexpMesh:
				scene.Meshes = append(scene.Meshes, NamedMesh{Name: label, Mesh: v.mesh})
			case *sexpSolid:
				m, err := tessellate.Tessellate(k, v.solid, e.tol)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("emit %q: %w", label, err)
				}
				scene.Meshes = append(scene.Meshes, NamedMesh{Name: label, Mesh: m, Solid: v.solid})
			case *sexpFrustum:
				scene.Meshes = append(scene.Meshes, NamedMesh{Name: label, Mesh: v.f.Mesh()})
			case *zygo.SexpFloat:
				scene.Values = append(scene.Values, NamedValue{Name: label, Value: v.Val})
			case *zygo.SexpInt:
				scene.Values = append(scene.Values, NamedValue{Name: label, Value: float64(v.Val)})
			case *zygo.SexpBool:
				scene.Values = append(scene.Values, NamedValue{Name: label, Value: v.Val})
			default:
				return zygo.SexpNull, fmt.Errorf("emit %q: cannot emit %T (%s)", label, args[1], args[1].SexpString(nil))
			}
			return args[1], nil
		},
	}

	for name, fn := range fns {
		env.AddFunction(name, fn)
	}
}

// fold combines two or more solids left to right.
func fold(fn string, args []zygo.Sexp, op func(a, b kernel.Solid) kernel.Solid) (zygo.Sexp, error) {
	solids, err := toSolids(fn, args, 2)
	if err != nil {
		return zygo.SexpNull, err
	}
	acc := solids[0]
	for _, s := range solids[1:] {
		acc = op(acc, s)
	}
	return &sexpSolid{solid: acc}, nil
}

func solidAndVec(fn string, args []zygo.Sexp) (kernel.Solid, v3.Vec, error) {
	if len(args) != 2 {
		return nil, v3.Vec{}, fmt.Errorf("%s requires a solid and a vec3", fn)
	}
	s, err := toSolid(args[0])
	if err != nil {
		return nil, v3.Vec{}, fmt.Errorf("%s: %w", fn, err)
	}
	v, err := toVec3(args[1])
	if err != nil {
		return nil, v3.Vec{}, fmt.Errorf("%s: %w", fn, err)
	}
	return s, v, nil
}

func oneMesh(fn string, args []zygo.Sexp) (*polyface.Mesh, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s requires a mesh", fn)
	}
	m, err := toMesh(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return m, nil
}

// parseCamera reads perspective keywords. fov is in degrees.
func parseCamera(pa kwArgs) (frustum.Camera, error) {
	var cam frustum.Camera
	var err error
	if cam.Eye, err = pa.vec("eye", v3.Vec{}); err != nil {
		return cam, err
	}
	if cam.Target, err = pa.vec("target", v3.Vec{Z: -1}); err != nil {
		return cam, err
	}
	if cam.Up, err = pa.vec("up", v3.Vec{Y: 1}); err != nil {
		return cam, err
	}
	fov, err := pa.float("fov", 60)
	if err != nil {
		return cam, err
	}
	cam.FovY = sdf.DtoR(fov)
	if cam.Aspect, err = pa.float("aspect", 1); err != nil {
		return cam, err
	}
	if cam.Near, err = pa.float("near", 0.1); err != nil {
		return cam, err
	}
	if cam.Far, err = pa.float("far", 100); err != nil {
		return cam, err
	}
	return cam, nil
}
