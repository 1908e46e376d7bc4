// Package kernel defines the solid modelling backend used to build
// geometry. The sdfx subpackage implements it with signed distance
// fields; tessellate turns its triangle output into welded polyfaces.
package kernel

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is three vertices wound counter-clockwise seen from outside.
type Triangle [3]v3.Vec

// Solid is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() sdf.Box3
}

// Kernel builds and combines solids.
type Kernel interface {
	// Primitives. Box has its minimum corner at the origin; Cylinder and
	// Sphere are centred on it.
	Box(size v3.Vec) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, offset v3.Vec) Solid
	Rotate(s Solid, degrees v3.Vec) Solid // Euler angles about X, then Y, then Z

	// Triangles approximates the boundary of s.
	Triangles(s Solid) ([]Triangle, error)
}
