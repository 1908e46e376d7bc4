package clip

import (
	"fmt"

	"github.com/chazu/facet/pkg/polyface"
)

// FrustumPolyfaceClipper is an Output that welds every clipped mesh it
// receives into one accumulated mesh and latches whether an unclipped mesh
// was seen.
type FrustumPolyfaceClipper struct {
	builder   *polyface.Builder
	unclipped bool

	// KeepUnclipped also welds pass-through meshes into the result.
	KeepUnclipped bool
}

var _ Output = (*FrustumPolyfaceClipper)(nil)

// NewFrustumPolyfaceClipper returns an empty clipper sink.
func NewFrustumPolyfaceClipper(tol polyface.Tolerances) (*FrustumPolyfaceClipper, error) {
	b, err := polyface.NewBuilder(nil, tol)
	if err != nil {
		return nil, fmt.Errorf("clip: frustum clipper: %w", err)
	}
	return &FrustumPolyfaceClipper{builder: b}, nil
}

// ProcessUnclippedPolyface latches the unclipped flag.
func (c *FrustumPolyfaceClipper) ProcessUnclippedPolyface(m *polyface.Mesh) error {
	c.unclipped = true
	if c.KeepUnclipped {
		return c.builder.AddMesh(m)
	}
	return nil
}

// ProcessClippedPolyface welds m into the accumulated mesh.
func (c *FrustumPolyfaceClipper) ProcessClippedPolyface(m *polyface.Mesh) error {
	return c.builder.AddMesh(m)
}

// Unclipped reports whether any mesh passed through unclipped.
func (c *FrustumPolyfaceClipper) Unclipped() bool { return c.unclipped }

// Mesh returns the accumulated mesh.
func (c *FrustumPolyfaceClipper) Mesh() *polyface.Mesh { return c.builder.Mesh() }

// HasOutput reports whether any faces were accumulated.
func (c *FrustumPolyfaceClipper) HasOutput() bool { return !c.builder.Mesh().IsEmpty() }
