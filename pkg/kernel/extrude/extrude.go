// Package extrude is the exact meshing backend: profiles become capped
// prisms with one vertex per profile corner.
package extrude

import (
	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/kernel"
	"github.com/lumenworks/lumengeo/pkg/mesh"
)

// Compile-time interface check.
var _ kernel.Mesher = Mesher{}

// Mesher meshes extrusions exactly via direct prism construction.
type Mesher struct {
	// OpenEnds leaves the prism uncapped, for shaft-style solids.
	OpenEnds bool
}

func (m Mesher) MeshExtrusion(profile []geom.Point2, z0, z1 float64) (*mesh.Mesh, error) {
	return mesh.Extrude(profile, z0, z1, mesh.ExtrudeOptions{
		CapBottom: !m.OpenEnds,
		CapTop:    !m.OpenEnds,
	})
}
