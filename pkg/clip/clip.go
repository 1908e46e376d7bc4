// Package clip intersects polyface meshes with unions of convex plane
// sets. A clip reports one of three outcomes: the mesh lies inside and is
// passed through untouched, it lies outside and produces nothing, or it is
// cut and the retained faces are rebuilt into new meshes.
package clip

import (
	"fmt"
	"log/slog"

	"github.com/chazu/facet/pkg/polyface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Outcome classifies a clip.
type Outcome int

const (
	TrivialReject Outcome = iota
	TrivialAccept
	ClipRequired
)

func (o Outcome) String() string {
	switch o {
	case TrivialReject:
		return "trivial-reject"
	case TrivialAccept:
		return "trivial-accept"
	case ClipRequired:
		return "clip-required"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Output receives clip results. ProcessUnclippedPolyface is called once
// with the input mesh on a trivial accept; ProcessClippedPolyface is called
// once per non-empty mesh built from a contributing convex part.
type Output interface {
	ProcessUnclippedPolyface(m *polyface.Mesh) error
	ProcessClippedPolyface(m *polyface.Mesh) error
}

// Options control clipping.
type Options struct {
	// Triangulate fans every clipped polygon into triangles.
	Triangulate bool
	// Tolerances weld the output meshes. Zero means polyface defaults.
	Tolerances polyface.Tolerances
	// PlaneTolerance is the on-plane band. Zero means
	// 1e-9 * (1 + largest coordinate of the input).
	PlaneTolerance float64
	// ExcludeOnPlane treats geometry lying on a plane as outside.
	ExcludeOnPlane bool
}

// DefaultOptions returns inclusive, untriangulated clipping with default
// welding tolerances.
func DefaultOptions() Options {
	return Options{Tolerances: polyface.DefaultTolerances()}
}

func (o Options) tolerances() polyface.Tolerances {
	if o.Tolerances == (polyface.Tolerances{}) {
		return polyface.DefaultTolerances()
	}
	return o.Tolerances
}

func (o Options) planeTolerance(m *polyface.Mesh) float64 {
	if o.PlaneTolerance > 0 {
		return o.PlaneTolerance
	}
	return 1.0e-9 * (1 + m.LargestCoordinate())
}

// ClipPolyface clips m against the union set and reports to out.
//
// A set with no parts, or with a part that has no planes, places no
// constraint and accepts m. Parts that provably admit no point are
// skipped.
func ClipPolyface(m *polyface.Mesh, set ClipPlaneSet, out Output, opts Options) (Outcome, error) {
	if err := m.Validate(); err != nil {
		return TrivialReject, fmt.Errorf("clip: %w", err)
	}
	log := polyface.Logger()
	if set.hasUnconstrainedPart() {
		log.Debug("clip: unconstrained plane set", slog.Int("parts", len(set)))
		return acceptUnclipped(m, out)
	}

	tol := opts.planeTolerance(m)
	points := referencedPoints(m)
	var active []ConvexClipPlaneSet
	for i, c := range set {
		if c.IsEmpty(tol) {
			log.Debug("clip: skipping empty convex part", slog.Int("part", i))
			continue
		}
		switch c.classify(points, tol, opts.ExcludeOnPlane) {
		case allInside:
			return acceptUnclipped(m, out)
		case straddles:
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return TrivialReject, nil
	}

	tols := opts.tolerances()
	emitted := 0
	for _, c := range active {
		clipped, err := clipConvex(m, c, tol, tols, opts)
		if err != nil {
			return ClipRequired, err
		}
		if clipped.IsEmpty() {
			continue
		}
		log.Debug("clip: convex part produced mesh",
			slog.Int("faces", clipped.FaceCount()),
			slog.Int("points", clipped.PointCount()))
		if err := out.ProcessClippedPolyface(clipped); err != nil {
			return ClipRequired, fmt.Errorf("clip: output: %w", err)
		}
		emitted++
	}
	if emitted == 0 {
		log.Debug("clip: straddling parts left nothing", slog.Int("parts", len(active)))
		return TrivialReject, nil
	}
	return ClipRequired, nil
}

func acceptUnclipped(m *polyface.Mesh, out Output) (Outcome, error) {
	if err := out.ProcessUnclippedPolyface(m); err != nil {
		return TrivialAccept, fmt.Errorf("clip: output: %w", err)
	}
	return TrivialAccept, nil
}

// referencedPoints returns each point the index stream references once.
func referencedPoints(m *polyface.Mesh) []v3.Vec {
	seen := make([]bool, len(m.Points))
	var pts []v3.Vec
	for _, idx := range m.PointIndex {
		if idx == 0 {
			continue
		}
		if idx < 0 {
			idx = -idx
		}
		if !seen[idx-1] {
			seen[idx-1] = true
			pts = append(pts, m.Points[idx-1])
		}
	}
	return pts
}

// ClipToRange clips m to an axis-aligned box.
func ClipToRange(m *polyface.Mesh, box sdf.Box3, out Output, opts Options) (Outcome, error) {
	return ClipPolyface(m, ClipPlaneSet{RangePlanes(box)}, out, opts)
}

// ClipToPlaneSetIntersection clips m to the region inside every set,
// applying the sets in order. The outcome is TrivialAccept only if every
// set accepted m unchanged.
func ClipToPlaneSetIntersection(m *polyface.Mesh, sets []ClipPlaneSet, out Output, opts Options) (Outcome, error) {
	current := []*polyface.Mesh{m}
	untouched := true
	for i, set := range sets {
		var next []*polyface.Mesh
		for _, cm := range current {
			res, err := Clip(cm, set, opts)
			if err != nil {
				return ClipRequired, fmt.Errorf("clip: set %d: %w", i, err)
			}
			switch res.Outcome {
			case TrivialAccept:
				next = append(next, cm)
			case ClipRequired:
				untouched = false
				next = append(next, res.Clipped...)
			}
		}
		if len(next) == 0 {
			return TrivialReject, nil
		}
		current = next
	}
	if untouched {
		return acceptUnclipped(m, out)
	}
	for _, cm := range current {
		if err := out.ProcessClippedPolyface(cm); err != nil {
			return ClipRequired, fmt.Errorf("clip: output: %w", err)
		}
	}
	return ClipRequired, nil
}

// Result is the outcome of Clip with the meshes the outcome carries.
type Result struct {
	Outcome   Outcome
	Unclipped *polyface.Mesh
	Clipped   []*polyface.Mesh
}

var _ Output = (*Result)(nil)

// ProcessUnclippedPolyface records the pass-through mesh.
func (r *Result) ProcessUnclippedPolyface(m *polyface.Mesh) error {
	r.Unclipped = m
	return nil
}

// ProcessClippedPolyface appends a clipped mesh.
func (r *Result) ProcessClippedPolyface(m *polyface.Mesh) error {
	r.Clipped = append(r.Clipped, m)
	return nil
}

// Clip is ClipPolyface returning the outcome and meshes as a value.
func Clip(m *polyface.Mesh, set ClipPlaneSet, opts Options) (Result, error) {
	var r Result
	outcome, err := ClipPolyface(m, set, &r, opts)
	r.Outcome = outcome
	return r, err
}
