// Package doctor diagnoses triangle-mesh health and runs the standard repair
// pipeline. Diagnosis never fails: unhealthy geometry is described, not
// rejected, so callers can decide per severity what to surface or gate on.
package doctor

import (
	"math"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/mesh"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// Severity grades a single health metric.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Metric keys in a HealthReport.
const (
	MetricDegenerateTriangles = "degenerate_triangles"
	MetricDuplicateFaces      = "duplicate_faces"
	MetricSliverTriangles     = "sliver_triangles"
	MetricInvertedWinding     = "inverted_winding_triangles"
	MetricNonManifoldEdges    = "non_manifold_edges"
	MetricOpenBoundaryEdges   = "open_boundary_edges"
	MetricDuplicateVertices   = "duplicate_vertices"
	MetricComponents          = "disconnected_components"
	MetricHugeCoordinates     = "huge_coordinate_values"
	MetricSelfIntersections   = "self_intersections_approx"
)

// hugeCoordinate is the absolute coordinate magnitude beyond which a vertex
// component counts as an outlier.
const hugeCoordinate = 1e6

// HealthReport is the result of diagnosing a mesh: one count and one severity
// per metric, plus free-form warning and error notes for structural problems
// that have no count (an empty mesh, say).
type HealthReport struct {
	Counts     map[string]int
	Severities map[string]Severity
	Warnings   []string
	Errors     []string
}

// HasErrors reports whether any metric is at error severity or a structural
// error note was recorded.
func (r *HealthReport) HasErrors() bool {
	if len(r.Errors) > 0 {
		return true
	}
	for _, s := range r.Severities {
		if s == SeverityError {
			return true
		}
	}
	return false
}

func (r *HealthReport) set(metric string, count int, sev Severity) {
	r.Counts[metric] = count
	r.Severities[metric] = sev
}

func warnIf(cond bool) Severity {
	if cond {
		return SeverityWarn
	}
	return SeverityOK
}

func errorIf(cond bool) Severity {
	if cond {
		return SeverityError
	}
	return SeverityOK
}

// Diagnose runs every health metric over the mesh and returns the report.
// It never returns an error: bad geometry is reported, not rejected.
func Diagnose(m *mesh.Mesh) *HealthReport {
	r := &HealthReport{
		Counts:     make(map[string]int),
		Severities: make(map[string]Severity),
	}
	if len(m.Vertices) == 0 {
		r.Errors = append(r.Errors, "no vertices")
	}
	if len(m.Triangles) == 0 {
		r.Errors = append(r.Errors, "no triangles")
	}

	degenerate := 0
	sliver := 0
	dupFaces := 0
	inverted := 0
	seenFaces := make(map[[3]uint32]struct{}, len(m.Triangles))
	for _, t := range m.Triangles {
		key := sortedFaceKey(t)
		if _, ok := seenFaces[key]; ok {
			dupFaces++
		}
		seenFaces[key] = struct{}{}

		a, b, c := t[0], t[1], t[2]
		if a == b || b == c || a == c {
			degenerate++
			continue
		}
		va, vb, vc := m.Vertices[a], m.Vertices[b], m.Vertices[c]
		if geom.TriangleArea(va, vb, vc) <= tol.EpsArea {
			degenerate++
			continue
		}
		shortest, longest := edgeExtremes(va, vb, vc)
		if longest > 0 && shortest/longest < tol.EpsSliverRatio {
			sliver++
		}
		n := vb.Sub(va).Cross(vc.Sub(va))
		centroid := va.Add(vb).Add(vc).Scale(1.0 / 3.0)
		if n.Dot(centroid) < 0 {
			inverted++
		}
	}
	r.set(MetricDegenerateTriangles, degenerate, errorIf(degenerate > 0))
	r.set(MetricDuplicateFaces, dupFaces, warnIf(dupFaces > 0))
	r.set(MetricSliverTriangles, sliver, warnIf(sliver > 0))
	r.set(MetricInvertedWinding, inverted, warnIf(inverted > 0))

	nonManifold := 0
	for _, n := range mesh.EdgeIncidence(m.Triangles) {
		if n > 2 {
			nonManifold++
		}
	}
	open := len(mesh.DetectOpenEdges(m.Triangles))
	r.set(MetricNonManifoldEdges, nonManifold, errorIf(nonManifold > 0))
	r.set(MetricOpenBoundaryEdges, open, warnIf(open > 0))

	// Exact duplicates only: welds at the angular epsilon, far below the
	// geometric weld distance, so near-coincident but distinct vertices do
	// not count.
	merged, _ := mesh.MergeVertices(m.Vertices, tol.EpsAng)
	dupVerts := len(m.Vertices) - len(merged)
	if dupVerts < 0 {
		dupVerts = 0
	}
	r.set(MetricDuplicateVertices, dupVerts, warnIf(dupVerts > 0))

	comps := countVertexComponents(m.Triangles)
	r.set(MetricComponents, comps, warnIf(comps > 1))

	huge := 0
	for _, v := range m.Vertices {
		for _, c := range [3]float64{v.X, v.Y, v.Z} {
			if math.Abs(c) > hugeCoordinate {
				huge++
			}
		}
	}
	r.set(MetricHugeCoordinates, huge, warnIf(huge > 0))

	si := 0
	if len(m.Vertices) > 0 && len(m.Triangles) > 0 {
		si = SelfIntersections(m)
	}
	r.set(MetricSelfIntersections, si, warnIf(si > 0))

	return r
}

func sortedFaceKey(t mesh.Triangle) [3]uint32 {
	k := [3]uint32{t[0], t[1], t[2]}
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
	if k[1] > k[2] {
		k[1], k[2] = k[2], k[1]
	}
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
	return k
}

func edgeExtremes(a, b, c geom.Point3) (shortest, longest float64) {
	e0 := b.Sub(a).Length()
	e1 := c.Sub(b).Length()
	e2 := a.Sub(c).Length()
	shortest = math.Min(e0, math.Min(e1, e2))
	longest = math.Max(e0, math.Max(e1, e2))
	return shortest, longest
}
