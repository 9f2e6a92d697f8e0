// Package sdfx implements the kernel.Mesher interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Profiles become signed
// distance fields, extruded and polygonized by marching cubes. The output
// is approximate but robust: self-touching or barely-degenerate profiles
// that break exact prism construction still mesh.
package sdfx

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/kernel"
	"github.com/lumenworks/lumengeo/pkg/mesh"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// Compile-time interface check.
var _ kernel.Mesher = (*Mesher)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 100

// Mesher meshes extrusions by polygonizing a signed distance field.
type Mesher struct {
	// Cells is the marching cubes resolution along the longest axis.
	// Zero takes the default.
	Cells int
}

// New returns a preview mesher at the default resolution.
func New() *Mesher {
	return &Mesher{}
}

func (m *Mesher) MeshExtrusion(profile []geom.Point2, z0, z1 float64) (*mesh.Mesh, error) {
	if len(profile) < 3 {
		return nil, fmt.Errorf("sdfx mesher: profile has %d points, need at least 3", len(profile))
	}
	height := z1 - z0
	if height <= 0 {
		return nil, fmt.Errorf("sdfx mesher: non-positive height %g", height)
	}

	verts := make([]v2.Vec, 0, len(profile))
	for _, p := range profile {
		verts = append(verts, v2.Vec{X: p.X, Y: p.Y})
	}
	poly, err := sdf.Polygon2D(verts)
	if err != nil {
		return nil, fmt.Errorf("sdfx mesher: %w", err)
	}

	// Extrude3D is symmetric about z=0; shift to [z0, z1].
	solid := sdf.Extrude3D(poly, height)
	solid = sdf.Transform3D(solid, sdf.Translate3d(v3.Vec{Z: z0 + height/2}))

	cells := m.Cells
	if cells <= 0 {
		cells = defaultMeshCells
	}
	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx mesher: marching cubes produced no triangles")
	}

	out := &mesh.Mesh{
		Vertices:  make([]geom.Point3, 0, len(triangles)*3),
		Triangles: make([]mesh.Triangle, 0, len(triangles)),
	}
	for _, tri := range triangles {
		base := uint32(len(out.Vertices))
		for j := 0; j < 3; j++ {
			out.Vertices = append(out.Vertices, geom.Point3{X: tri[j].X, Y: tri[j].Y, Z: tri[j].Z})
		}
		out.Triangles = append(out.Triangles, mesh.Triangle{base, base + 1, base + 2})
	}
	mesh.Weld(out, tol.EpsWeld)
	return out, nil
}
