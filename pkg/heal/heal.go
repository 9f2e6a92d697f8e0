// Package heal runs provenance-tracked mesh healing: the same structural
// cleanup as the repair pipeline, but every diagnosed issue is attributed to
// the source face it came from and every structural change is recorded in an
// audit trail. Import pipelines use the report's content hash as a cache key.
package heal

import (
	"sort"

	"github.com/lumenworks/lumengeo/pkg/doctor"
	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/mesh"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// FaceRef attributes a triangle back to the source object and face it was
// triangulated from. Empty string fields mean unknown provenance; a bare
// triangle index is always available.
type FaceRef struct {
	ObjectID      string `json:"object_id,omitempty"`
	FaceID        string `json:"face_id,omitempty"`
	TriangleIndex int    `json:"triangle_index"`
}

// Action records one structural change the healing pass made.
type Action struct {
	Name    string         `json:"action"`
	Details map[string]int `json:"details"`
}

// EdgeIssue attributes a problematic edge to the triangles incident on it.
// Incident faces are indices into the healed triangle list.
type EdgeIssue struct {
	Edge          [2]uint32 `json:"edge"`
	IncidentFaces []int     `json:"incident_faces"`
}

// PairIssue attributes a coarse self-intersection to both triangles.
type PairIssue struct {
	A FaceRef `json:"triangle_a"`
	B FaceRef `json:"triangle_b"`
}

// Issues collects the diagnosed problems, bucketed by kind and attributed to
// FaceRefs wherever the provenance survives the cleanup.
type Issues struct {
	NonManifoldEdges        []EdgeIssue `json:"non_manifold_edges"`
	DegenerateTriangles     []FaceRef   `json:"degenerate_triangles"`
	InvertedNormals         []FaceRef   `json:"inverted_normals"`
	DuplicateCoplanarFaces  []FaceRef   `json:"duplicate_coplanar_faces"`
	SliverTriangles         []FaceRef   `json:"sliver_triangles"`
	SelfIntersectionsCoarse []PairIssue `json:"self_intersections_coarse"`
	OpenShellEdges          []EdgeIssue `json:"open_shell_edges"`
}

// Counts returns the per-bucket issue counts keyed like the JSON field names.
func (is *Issues) Counts() map[string]int {
	return map[string]int{
		"non_manifold_edges":        len(is.NonManifoldEdges),
		"degenerate_triangles":      len(is.DegenerateTriangles),
		"inverted_normals":          len(is.InvertedNormals),
		"duplicate_coplanar_faces":  len(is.DuplicateCoplanarFaces),
		"sliver_triangles":          len(is.SliverTriangles),
		"self_intersections_coarse": len(is.SelfIntersectionsCoarse),
		"open_shell_edges":          len(is.OpenShellEdges),
	}
}

// SizeStats is a vertex/triangle count pair.
type SizeStats struct {
	Vertices  int `json:"vertices"`
	Triangles int `json:"triangles"`
}

// Report is the audit output of Heal: the epsilons used, the issue buckets,
// every action taken, input/output sizes, and a content hash of the healed
// mesh suitable as a cache key.
type Report struct {
	Epsilons        map[string]float64 `json:"epsilons"`
	Counts          map[string]int     `json:"counts"`
	Issues          Issues             `json:"issues"`
	Actions         []Action           `json:"actions"`
	Input           SizeStats          `json:"input"`
	Output          SizeStats          `json:"output"`
	CleanedMeshHash string             `json:"cleaned_mesh_hash"`
}

// Result is the healed mesh with per-triangle provenance and its report.
type Result struct {
	Mesh         *mesh.Mesh
	TriangleRefs []FaceRef
	Report       *Report
}

// Options tunes the healing pass. Zero epsilons select the policy defaults.
type Options struct {
	// TriangleRefs carries per-triangle provenance in lockstep with the
	// input triangles. Nil, or a slice of the wrong length, falls back to
	// bare triangle indices.
	TriangleRefs []FaceRef
	WeldEpsilon  float64
	AreaEpsilon  float64
	// SliverRatioEpsilon is the shortest/longest edge ratio below which a
	// triangle is flagged as a sliver.
	SliverRatioEpsilon float64
	// NormalEpsilon is the tolerance on the inverted-winding dot product.
	NormalEpsilon float64
	// KeepDuplicateFaces disables coplanar duplicate-face removal.
	// Duplicates are still diagnosed.
	KeepDuplicateFaces bool
}

func (o *Options) fill() {
	if o.WeldEpsilon <= 0 {
		o.WeldEpsilon = tol.EpsWeld
	}
	if o.AreaEpsilon <= 0 {
		o.AreaEpsilon = tol.EpsArea
	}
	if o.SliverRatioEpsilon <= 0 {
		o.SliverRatioEpsilon = tol.EpsSliverRatio
	}
	if o.NormalEpsilon <= 0 {
		o.NormalEpsilon = tol.EpsPos
	}
}

// Heal cleans the mesh and attributes every diagnosed issue to its source
// face. Inverted normals are diagnostic only: they are recorded before the
// winding pass rewrites them. Heal never fails; unhealthy geometry is
// described in the report.
func Heal(m *mesh.Mesh, opts Options) *Result {
	opts.fill()

	refs := opts.TriangleRefs
	if len(refs) != len(m.Triangles) {
		refs = make([]FaceRef, len(m.Triangles))
		for i := range refs {
			refs[i] = FaceRef{TriangleIndex: i}
		}
	}

	var issues Issues
	var actions []Action

	verts, remap := mesh.MergeVertices(m.Vertices, opts.WeldEpsilon)
	tris := make([]mesh.Triangle, len(m.Triangles))
	for i, t := range m.Triangles {
		tris[i] = mesh.Triangle{uint32(remap[t[0]]), uint32(remap[t[1]]), uint32(remap[t[2]])}
	}
	if len(verts) != len(m.Vertices) {
		actions = append(actions, Action{
			Name: "merge_near_duplicate_vertices",
			Details: map[string]int{
				"before": len(m.Vertices),
				"after":  len(verts),
				"merged": len(m.Vertices) - len(verts),
			},
		})
	}

	clean := make([]mesh.Triangle, 0, len(tris))
	cleanRefs := make([]FaceRef, 0, len(refs))
	degenerate := 0
	for i, t := range tris {
		if isDegenerate(t, verts, opts.AreaEpsilon) {
			degenerate++
			issues.DegenerateTriangles = append(issues.DegenerateTriangles, refs[i])
			continue
		}
		clean = append(clean, t)
		cleanRefs = append(cleanRefs, refs[i])
	}
	if degenerate > 0 {
		actions = append(actions, Action{
			Name: "remove_degenerate_triangles",
			Details: map[string]int{
				"removed": degenerate,
				"before":  len(tris),
				"after":   len(clean),
			},
		})
	}

	dedup := make([]mesh.Triangle, 0, len(clean))
	dedupRefs := make([]FaceRef, 0, len(cleanRefs))
	duplicates := 0
	seen := make(map[[3]uint32]struct{}, len(clean))
	for i, t := range clean {
		key := sortedKey(t)
		if _, ok := seen[key]; ok {
			duplicates++
			issues.DuplicateCoplanarFaces = append(issues.DuplicateCoplanarFaces, cleanRefs[i])
			if !opts.KeepDuplicateFaces {
				continue
			}
		}
		seen[key] = struct{}{}
		dedup = append(dedup, t)
		dedupRefs = append(dedupRefs, cleanRefs[i])
	}
	if !opts.KeepDuplicateFaces && duplicates > 0 {
		actions = append(actions, Action{
			Name: "deduplicate_coplanar_duplicate_faces",
			Details: map[string]int{
				"removed": duplicates,
				"before":  len(clean),
				"after":   len(dedup),
			},
		})
	}

	// Slivers and inverted windings are diagnosed before the winding pass so
	// the refs point at what the importer actually produced.
	for i, t := range dedup {
		va, vb, vc := verts[t[0]], verts[t[1]], verts[t[2]]
		shortest, longest := edgeExtremes(va, vb, vc)
		if longest > 0 && shortest/longest < opts.SliverRatioEpsilon {
			issues.SliverTriangles = append(issues.SliverTriangles, dedupRefs[i])
		}
		n := vb.Sub(va).Cross(vc.Sub(va))
		centroid := va.Add(vb).Add(vc).Scale(1.0 / 3.0)
		if n.Dot(centroid) < -opts.NormalEpsilon {
			issues.InvertedNormals = append(issues.InvertedNormals, dedupRefs[i])
		}
	}

	wound := mesh.FixWindingByCentroid(dedup, verts)
	flipped := 0
	for i := range dedup {
		if wound[i] != dedup[i] {
			flipped++
		}
	}
	if flipped > 0 {
		actions = append(actions, Action{
			Name:    "unify_winding",
			Details: map[string]int{"flipped": flipped},
		})
	}

	incidence := edgeFaces(wound)
	for _, e := range sortedEdges(incidence, func(faces []int) bool { return len(faces) > 2 }) {
		issues.NonManifoldEdges = append(issues.NonManifoldEdges, EdgeIssue{
			Edge:          [2]uint32{e.A, e.B},
			IncidentFaces: incidence[e],
		})
	}
	for _, e := range sortedEdges(incidence, func(faces []int) bool { return len(faces) == 1 }) {
		issues.OpenShellEdges = append(issues.OpenShellEdges, EdgeIssue{
			Edge:          [2]uint32{e.A, e.B},
			IncidentFaces: incidence[e],
		})
	}

	healed := &mesh.Mesh{Vertices: verts, Triangles: wound}
	if len(verts) > 0 && len(wound) > 0 {
		for _, pair := range doctor.SelfIntersectionPairs(healed) {
			issues.SelfIntersectionsCoarse = append(issues.SelfIntersectionsCoarse, PairIssue{
				A: dedupRefs[pair[0]],
				B: dedupRefs[pair[1]],
			})
		}
	}

	report := &Report{
		Epsilons: map[string]float64{
			"weld_epsilon":         opts.WeldEpsilon,
			"area_epsilon":         opts.AreaEpsilon,
			"sliver_ratio_epsilon": opts.SliverRatioEpsilon,
			"normal_epsilon":       opts.NormalEpsilon,
		},
		Counts:          issues.Counts(),
		Issues:          issues,
		Actions:         actions,
		Input:           SizeStats{Vertices: len(m.Vertices), Triangles: len(m.Triangles)},
		Output:          SizeStats{Vertices: len(verts), Triangles: len(wound)},
		CleanedMeshHash: StableMeshHash(verts, wound),
	}
	return &Result{Mesh: healed, TriangleRefs: dedupRefs, Report: report}
}

func isDegenerate(t mesh.Triangle, verts []geom.Point3, areaEps float64) bool {
	a, b, c := t[0], t[1], t[2]
	if a == b || b == c || a == c {
		return true
	}
	if len(verts) == 0 {
		return false
	}
	return geom.TriangleArea(verts[a], verts[b], verts[c]) <= areaEps
}

func sortedKey(t mesh.Triangle) [3]uint32 {
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
	shortest, longest = e0, e0
	for _, e := range [2]float64{e1, e2} {
		if e < shortest {
			shortest = e
		}
		if e > longest {
			longest = e
		}
	}
	return shortest, longest
}

func edgeFaces(triangles []mesh.Triangle) map[mesh.Edge][]int {
	out := make(map[mesh.Edge][]int, len(triangles)*3/2)
	for i, t := range triangles {
		out[mesh.NewEdge(t[0], t[1])] = append(out[mesh.NewEdge(t[0], t[1])], i)
		out[mesh.NewEdge(t[1], t[2])] = append(out[mesh.NewEdge(t[1], t[2])], i)
		out[mesh.NewEdge(t[2], t[0])] = append(out[mesh.NewEdge(t[2], t[0])], i)
	}
	return out
}

func sortedEdges(incidence map[mesh.Edge][]int, keep func([]int) bool) []mesh.Edge {
	var edges []mesh.Edge
	for e, faces := range incidence {
		if keep(faces) {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges
}
