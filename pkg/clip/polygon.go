package clip

import (
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/polyface"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// clipVertex is a polygon vertex during clipping. visible applies to the
// edge leaving the vertex.
type clipVertex struct {
	detail  polyface.FacetLocationDetail
	visible bool
}

// clipConvex clips every face of m to the convex set and welds the
// surviving polygons into a new mesh.
func clipConvex(m *polyface.Mesh, set ConvexClipPlaneSet, tol float64, tols polyface.Tolerances, opts Options) (*polyface.Mesh, error) {
	b, err := polyface.NewBuilder(nil, tols)
	if err != nil {
		return nil, fmt.Errorf("clip: %w", err)
	}
	v := polyface.NewVisitor(m)
	var poly, scratch []clipVertex
	for v.Next() {
		poly = poly[:0]
		for i := 0; i < v.NumEdgesThisFace(); i++ {
			poly = append(poly, clipVertex{detail: v.LoadVertexData(i), visible: v.Visible[i]})
		}
		for _, p := range set {
			scratch = clipToPlane(poly, p, tol, opts.ExcludeOnPlane, scratch[:0])
			poly, scratch = dropDuplicates(scratch, tols.Point), poly
			if len(poly) < 3 {
				break
			}
		}
		if len(poly) < 3 {
			continue
		}

		fd, hasFaceData := m.FaceDataAt(v.IndexStart())
		if !opts.Triangulate || len(poly) == 3 {
			if err := emitPolygon(b, v, m, poly, fd, hasFaceData); err != nil {
				return nil, err
			}
			continue
		}
		n := len(poly)
		for i := 1; i+1 < n; i++ {
			tri := []clipVertex{poly[0], poly[i], poly[i+1]}
			// Fan diagonals are hidden.
			tri[0].visible = i == 1 && poly[0].visible
			tri[2].visible = i+2 == n && poly[i+1].visible
			if err := emitPolygon(b, v, m, tri, fd, hasFaceData); err != nil {
				return nil, err
			}
		}
	}
	return b.Mesh(), nil
}

// clipToPlane is one Sutherland-Hodgman step. A crossing that leaves the
// half-space starts an edge along the plane, visible unless the plane is
// invisible; a crossing that enters continues the original edge.
func clipToPlane(poly []clipVertex, p Plane, tol float64, exclusive bool, out []clipVertex) []clipVertex {
	n := len(poly)
	h := make([]float64, n)
	in := make([]bool, n)
	for i, cv := range poly {
		h[i] = p.Evaluate(cv.detail.Point)
		if exclusive {
			in[i] = h[i] > tol
		} else {
			in[i] = h[i] >= -tol
		}
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		switch {
		case in[i] && in[j]:
			out = append(out, poly[i])
		case in[i]:
			out = append(out, poly[i], clipVertex{
				detail:  crossing(poly[i], poly[j], h[i], h[j]),
				visible: !p.Invisible,
			})
		case in[j]:
			out = append(out, clipVertex{
				detail:  crossing(poly[i], poly[j], h[i], h[j]),
				visible: poly[i].visible,
			})
		}
	}
	return out
}

func crossing(a, b clipVertex, ha, hb float64) polyface.FacetLocationDetail {
	var f float64
	if d := ha - hb; d != 0 {
		f = math.Max(0, math.Min(1, ha/d))
	}
	return polyface.InterpolateDetails(a.detail, b.detail, f)
}

// dropDuplicates removes vertices within tol of their predecessor, in
// place. The survivor takes the visibility of the edge that continues.
func dropDuplicates(poly []clipVertex, tol float64) []clipVertex {
	near := func(a, b clipVertex) bool {
		d := a.detail.Point.Sub(b.detail.Point)
		return d.Dot(d) <= tol*tol
	}
	out := poly[:0]
	for _, cv := range poly {
		if k := len(out); k > 0 && near(out[k-1], cv) {
			out[k-1].visible = cv.visible
			continue
		}
		out = append(out, cv)
	}
	for len(out) > 1 && near(out[len(out)-1], out[0]) {
		out = out[:len(out)-1]
	}
	return out
}

// emitPolygon welds one clipped polygon into b, blending normals, params
// and aux values from the source face.
func emitPolygon(b *polyface.Builder, v *polyface.Visitor, src *polyface.Mesh, poly []clipVertex, fd polyface.FaceData, hasFaceData bool) error {
	if hasFaceData {
		b.SetFaceData(fd)
	}
	var facetNormal v3.Vec
	haveFacetNormal := false
	if v.HasNormals() {
		pts := make([]v3.Vec, len(poly))
		for i, cv := range poly {
			pts[i] = cv.detail.Point
		}
		facetNormal, haveFacetNormal = polyface.NewellNormal(pts)
	}
	for _, cv := range poly {
		d := cv.detail
		b.AddPointIndex(b.FindOrAddPoint(d.Point), cv.visible)
		if v.HasNormals() {
			n, ok := d.TryGetNormal()
			if !ok || math.Abs(n.Length()-1) > 1.0e-6 {
				// Opposed vertex normals blend to zero.
				if haveFacetNormal {
					n = facetNormal
				} else {
					n = v.Normals[d.SourceIndex[0]]
				}
			}
			idx, err := b.FindOrAddNormal(n)
			if err != nil {
				return fmt.Errorf("clip: read index %d: %w", v.IndexStart(), err)
			}
			b.AddNormalIndex(idx)
		}
		if v.HasParams() {
			uv, _ := d.TryGetParam()
			b.AddParamIndex(b.FindOrAddParam(uv))
		}
		if v.HasAux() {
			indices := make([]int, len(d.SourceIndex))
			for k, s := range d.SourceIndex {
				indices[k] = v.AuxIndex[s]
			}
			b.AddAuxIndex(b.AddInterpolatedAuxData(src.AuxData.Channels, indices, d.SourceFraction))
		}
	}
	b.AddIndexTerminators()
	b.EndFace()
	return nil
}
