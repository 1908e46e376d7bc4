package engine

import (
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/polyface"
)

// Scene collects what a script emits, in emission order.
type Scene struct {
	Meshes []NamedMesh
	Values []NamedValue
}

// NamedMesh is an emitted mesh. Solid is set when the mesh was tessellated
// from a kernel solid.
type NamedMesh struct {
	Name  string
	Mesh  *polyface.Mesh
	Solid kernel.Solid
}

// NamedValue is an emitted number or boolean.
type NamedValue struct {
	Name  string
	Value any
}

// Mesh returns the first emitted mesh called name.
func (s *Scene) Mesh(name string) (*polyface.Mesh, bool) {
	for _, m := range s.Meshes {
		if m.Name == name {
			return m.Mesh, true
		}
	}
	return nil, false
}

// Value returns the first emitted value called name.
func (s *Scene) Value(name string) (any, bool) {
	for _, v := range s.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// IsEmpty reports whether nothing was emitted.
func (s *Scene) IsEmpty() bool {
	return len(s.Meshes) == 0 && len(s.Values) == 0
}
