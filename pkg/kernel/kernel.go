// Package kernel defines the meshing backend abstraction. Implementations
// (extrude, sdfx) turn extrusion profiles into triangle meshes behind this
// interface, so exact prism meshing and SDF-based preview meshing are
// interchangeable.
package kernel

import (
	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/mesh"
)

// Mesher turns a 2D extrusion profile swept from z0 to z1 into a triangle
// mesh. Implementations decide fidelity: the extrude backend is exact, the
// sdfx backend trades accuracy for robustness on hostile profiles.
type Mesher interface {
	MeshExtrusion(profile []geom.Point2, z0, z1 float64) (*mesh.Mesh, error)
}
