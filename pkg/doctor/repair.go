package doctor

import (
	"math"
	"sort"

	"github.com/lumenworks/lumengeo"
	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/mesh"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// RepairOptions tunes the optional stages of the repair pipeline. The zero
// value runs only the mandatory stages (weld, degenerate removal, winding
// fix); use DefaultRepairOptions for the standard configuration.
type RepairOptions struct {
	// WeldEpsilon is the vertex welding distance. Zero selects the default,
	// two orders of magnitude below the scene weld tolerance so repair never
	// collapses intentionally distinct geometry.
	WeldEpsilon float64
	// FillHoles closes triangular boundary loops with a single triangle.
	FillHoles bool
	// MakeTwoSided duplicates every triangle with reversed winding.
	MakeTwoSided bool
	// SplitComponents reorders triangles by connected component,
	// largest first.
	SplitComponents bool
	// SimplifyRatio, when in (0, 1), keeps roughly that fraction of
	// triangles by stride decimation. Outside that range it is ignored.
	SimplifyRatio float64
}

// DefaultRepairOptions fills holes and leaves every other optional stage off.
func DefaultRepairOptions() RepairOptions {
	return RepairOptions{FillHoles: true}
}

// decimationMinTriangles is the size below which stride decimation is
// skipped; tiny meshes would lose their shape entirely.
const decimationMinTriangles = 8

// RepairResult is the output of Repair: the cleaned mesh, its per-triangle
// unit normals, and a fresh health report over the result.
type RepairResult struct {
	Mesh    *mesh.Mesh
	Normals []geom.Vector3
	Report  *HealthReport
}

// Repair runs the fixed repair pipeline, each stage consuming the previous
// stage's output: weld, remove degenerates, fix winding, then the optional
// stages in declaration order. It never fails: a still-unhealthy result is
// described by the attached report and left to the caller to gate on.
func Repair(m *mesh.Mesh, opts RepairOptions) *RepairResult {
	weldEps := opts.WeldEpsilon
	if weldEps <= 0 {
		weldEps = tol.EpsWeld * 0.01
	}

	verts, remap := mesh.MergeVertices(m.Vertices, weldEps)
	tris := make([]mesh.Triangle, len(m.Triangles))
	for i, t := range m.Triangles {
		tris[i] = mesh.Triangle{uint32(remap[t[0]]), uint32(remap[t[1]]), uint32(remap[t[2]])}
	}
	tris = mesh.RemoveDegenerateTriangles(tris, verts, tol.EpsArea)
	tris = mesh.FixWindingByCentroid(tris, verts)
	if opts.FillHoles {
		tris = fillSmallHoles(tris, 3)
	}
	if opts.SimplifyRatio > 0 && opts.SimplifyRatio < 1 && len(tris) > decimationMinTriangles {
		step := int(math.Round(1.0 / opts.SimplifyRatio))
		if step < 2 {
			step = 2
		}
		kept := tris[:0]
		for i, t := range tris {
			if i%step == 0 {
				kept = append(kept, t)
			}
		}
		tris = kept
	}
	if opts.SplitComponents {
		comps := SplitConnectedComponents(tris)
		sort.SliceStable(comps, func(i, j int) bool { return len(comps[i]) > len(comps[j]) })
		tris = tris[:0]
		for _, comp := range comps {
			tris = append(tris, comp...)
		}
	}
	if opts.MakeTwoSided {
		doubled := make([]mesh.Triangle, 0, 2*len(tris))
		doubled = append(doubled, tris...)
		for _, t := range tris {
			doubled = append(doubled, mesh.Triangle{t[0], t[2], t[1]})
		}
		tris = doubled
	}

	out := &mesh.Mesh{Vertices: verts, Triangles: tris}
	result := &RepairResult{
		Mesh:    out,
		Normals: repairNormals(out),
		Report:  Diagnose(out),
	}
	lumengeo.Logger().Debug("mesh repair complete",
		"vertices_in", len(m.Vertices), "vertices_out", len(verts),
		"triangles_in", len(m.Triangles), "triangles_out", len(tris))
	return result
}

// repairNormals computes per-triangle unit normals, substituting +Z for
// triangles too degenerate to orient.
func repairNormals(m *mesh.Mesh) []geom.Vector3 {
	out := make([]geom.Vector3, len(m.Triangles))
	for i, t := range m.Triangles {
		n := m.TriangleNormal(t)
		if n.Length() <= tol.EpsPos {
			out[i] = geom.Vector3{Z: 1}
			continue
		}
		out[i] = n.Normalize()
	}
	return out
}
