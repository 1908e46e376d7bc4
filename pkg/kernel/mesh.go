package kernel

import (
	"github.com/chazu/facet/pkg/polyface"
	"github.com/chewxy/math32"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// NewMesh flattens a valid polyface into a render mesh. Each face is fan
// triangulated with its own copy of its vertices. Vertex normals come from
// the polyface's normal stream when it has one, otherwise from the face's
// area normal. Faces with no area are skipped.
func NewMesh(pm *polyface.Mesh, name string) *Mesh {
	out := &Mesh{Name: name}
	v := polyface.NewVisitor(pm)
	for v.Next() {
		faceNormal, ok := v.FacetNormal()
		if !ok {
			continue
		}
		base := uint32(out.VertexCount())
		for i, p := range v.Points {
			n := faceNormal
			if v.HasNormals() {
				n = v.Normals[i]
			}
			nx, ny, nz := unit(float32(n.X), float32(n.Y), float32(n.Z))
			out.Vertices = append(out.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			out.Normals = append(out.Normals, nx, ny, nz)
		}
		for i := 1; i+1 < len(v.Points); i++ {
			out.Indices = append(out.Indices, base, base+uint32(i), base+uint32(i+1))
		}
	}
	return out
}

// unit rescales a float32 vector to length one.
func unit(x, y, z float32) (float32, float32, float32) {
	l := math32.Sqrt(x*x + y*y + z*z)
	if l == 0 {
		return 0, 0, 0
	}
	return x / l, y / l, z / l
}
