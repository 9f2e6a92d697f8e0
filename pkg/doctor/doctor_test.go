package doctor

import (
	"reflect"
	"testing"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/mesh"
)

func unitSquare() []geom.Point2 {
	return []geom.Point2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
}

func closedBox(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.Extrude(unitSquare(), 0, 1, mesh.ExtrudeOptions{CapBottom: true, CapTop: true})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// flatQuad is a single quad in the z=0 plane, two triangles.
func flatQuad() *mesh.Mesh {
	return &mesh.Mesh{
		Vertices: []geom.Point3{
			{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 1},
		},
		Triangles: []mesh.Triangle{{0, 1, 2}, {0, 2, 3}},
	}
}

// ringOfQuads is a flat square ring: outer square 0-3, inner square 4-7,
// four quads between them, leaving the middle open.
func ringOfQuads() *mesh.Mesh {
	m := &mesh.Mesh{
		Vertices: []geom.Point3{
			{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 0, Y: 3},
			{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2},
		},
	}
	for i := uint32(0); i < 4; i++ {
		j := (i + 1) % 4
		m.Triangles = append(m.Triangles,
			mesh.Triangle{i, j, 4 + j},
			mesh.Triangle{i, 4 + j, 4 + i},
		)
	}
	return m
}

func TestSeverityString(t *testing.T) {
	cases := []struct {
		sev  Severity
		want string
	}{
		{SeverityOK, "ok"},
		{SeverityWarn, "warn"},
		{SeverityError, "error"},
		{Severity(42), "unknown"},
	}
	for _, c := range cases {
		if got := c.sev.String(); got != c.want {
			t.Errorf("Severity(%d).String() = %q, want %q", c.sev, got, c.want)
		}
	}
}

func TestDiagnoseHealthyBox(t *testing.T) {
	r := Diagnose(closedBox(t))
	if r.HasErrors() {
		t.Fatalf("healthy box reported errors: %+v", r)
	}
	for metric, sev := range r.Severities {
		if sev != SeverityOK {
			t.Errorf("%s severity = %s (count %d), want ok", metric, sev, r.Counts[metric])
		}
	}
	if got := r.Counts[MetricComponents]; got != 1 {
		t.Errorf("components = %d, want 1", got)
	}
	if got := r.Counts[MetricOpenBoundaryEdges]; got != 0 {
		t.Errorf("open edges = %d, want 0", got)
	}
}

func TestDiagnoseEmpty(t *testing.T) {
	r := Diagnose(&mesh.Mesh{})
	if !r.HasErrors() {
		t.Fatal("empty mesh must report errors")
	}
	if len(r.Errors) != 2 {
		t.Errorf("errors = %v, want no-vertices and no-triangles notes", r.Errors)
	}
}

func TestDiagnoseDegenerateAndDuplicate(t *testing.T) {
	m := flatQuad()
	m.Triangles = append(m.Triangles,
		mesh.Triangle{0, 0, 1}, // repeated index
		mesh.Triangle{2, 0, 1}, // duplicate of {0,1,2} under sorting
	)
	r := Diagnose(m)
	if got := r.Counts[MetricDegenerateTriangles]; got != 1 {
		t.Errorf("degenerate count = %d, want 1", got)
	}
	if r.Severities[MetricDegenerateTriangles] != SeverityError {
		t.Error("degenerate triangles must be error severity")
	}
	if got := r.Counts[MetricDuplicateFaces]; got != 1 {
		t.Errorf("duplicate face count = %d, want 1", got)
	}
	if !r.HasErrors() {
		t.Error("report with degenerate triangles must have errors")
	}
}

func TestDiagnoseDuplicateVertices(t *testing.T) {
	m := flatQuad()
	m.Vertices = append(m.Vertices, m.Vertices[0])
	r := Diagnose(m)
	if got := r.Counts[MetricDuplicateVertices]; got != 1 {
		t.Errorf("duplicate vertices = %d, want 1", got)
	}
	if r.Severities[MetricDuplicateVertices] != SeverityWarn {
		t.Error("duplicate vertices must be warn severity")
	}
}

func TestDiagnoseHugeCoordinates(t *testing.T) {
	m := flatQuad()
	m.Vertices[0].Z = 2e6
	r := Diagnose(m)
	if got := r.Counts[MetricHugeCoordinates]; got != 1 {
		t.Errorf("huge coordinate count = %d, want 1", got)
	}
}

func TestDiagnoseDisconnectedComponents(t *testing.T) {
	a := closedBox(t)
	b, err := mesh.Extrude(unitSquare(), 5, 6, mesh.ExtrudeOptions{CapBottom: true, CapTop: true})
	if err != nil {
		t.Fatal(err)
	}
	a.Merge(b)
	r := Diagnose(a)
	if got := r.Counts[MetricComponents]; got != 2 {
		t.Errorf("components = %d, want 2", got)
	}
	if r.Severities[MetricComponents] != SeverityWarn {
		t.Error("multiple components must be warn severity")
	}
}

func TestSplitConnectedComponents(t *testing.T) {
	a := closedBox(t)
	b, err := mesh.Extrude(unitSquare(), 5, 6, mesh.ExtrudeOptions{CapBottom: true, CapTop: true})
	if err != nil {
		t.Fatal(err)
	}
	a.Merge(b)
	comps := SplitConnectedComponents(a.Triangles)
	if len(comps) != 2 {
		t.Fatalf("component count = %d, want 2", len(comps))
	}
	if len(comps[0]) != 12 || len(comps[1]) != 12 {
		t.Errorf("component sizes = %d, %d, want 12 each", len(comps[0]), len(comps[1]))
	}
}

func TestBoundaryLoopsRectangle(t *testing.T) {
	loops := BoundaryLoops(flatQuad().Triangles)
	if len(loops) != 1 {
		t.Fatalf("loop count = %d, want 1", len(loops))
	}
	if len(loops[0]) != 4 {
		t.Errorf("loop length = %d, want 4", len(loops[0]))
	}
	if want := []uint32{0, 1, 2, 3}; !reflect.DeepEqual(loops[0], want) {
		t.Errorf("loop = %v, want %v", loops[0], want)
	}
}

func TestBoundaryLoopsRing(t *testing.T) {
	loops := BoundaryLoops(ringOfQuads().Triangles)
	if len(loops) != 2 {
		t.Fatalf("loop count = %d, want 2 (outer + inner hole)", len(loops))
	}
	for i, loop := range loops {
		if len(loop) != 4 {
			t.Errorf("loop %d length = %d, want 4", i, len(loop))
		}
	}
}

func TestBoundaryLoopsClosedMesh(t *testing.T) {
	if loops := BoundaryLoops(closedBox(t).Triangles); loops != nil {
		t.Errorf("closed box loops = %v, want none", loops)
	}
}

func TestRepairFillsTriangularHole(t *testing.T) {
	m := closedBox(t)
	// Drop one bottom-cap triangle, leaving a triangular hole.
	tris := m.Triangles[:0]
	removed := false
	for _, tri := range m.Triangles {
		if !removed && tri == (mesh.Triangle{0, 3, 2}) {
			removed = true
			continue
		}
		tris = append(tris, tri)
	}
	if !removed {
		t.Fatal("expected cap triangle not found")
	}
	m.Triangles = tris

	res := Repair(m, DefaultRepairOptions())
	if got := res.Report.Counts[MetricOpenBoundaryEdges]; got != 0 {
		t.Errorf("open edges after repair = %d, want 0", got)
	}
}

func TestRepairIdempotent(t *testing.T) {
	m := closedBox(t)
	m.Vertices = append(m.Vertices, m.Vertices[3]) // stray duplicate
	once := Repair(m, DefaultRepairOptions())
	twice := Repair(once.Mesh, DefaultRepairOptions())
	if !reflect.DeepEqual(once.Mesh.Vertices, twice.Mesh.Vertices) {
		t.Error("second repair changed vertices")
	}
	if !reflect.DeepEqual(once.Mesh.Triangles, twice.Mesh.Triangles) {
		t.Error("second repair changed triangles")
	}
}

func TestRepairWeldsAndDropsCollapsed(t *testing.T) {
	m := &mesh.Mesh{
		Vertices: []geom.Point3{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1e-12, Y: 0}, {X: 0, Y: 1},
		},
		// Second triangle collapses once vertex 2 welds into vertex 0.
		Triangles: []mesh.Triangle{{0, 1, 3}, {0, 1, 2}},
	}
	res := Repair(m, RepairOptions{})
	if got := len(res.Mesh.Vertices); got != 3 {
		t.Errorf("vertex count = %d, want 3", got)
	}
	if got := len(res.Mesh.Triangles); got != 1 {
		t.Errorf("triangle count = %d, want 1", got)
	}
}

func TestRepairTwoSided(t *testing.T) {
	res := Repair(flatQuad(), RepairOptions{MakeTwoSided: true})
	if got := len(res.Mesh.Triangles); got != 4 {
		t.Fatalf("triangle count = %d, want 4", got)
	}
	fwd := res.Mesh.Triangles[0]
	rev := res.Mesh.Triangles[2]
	if rev != (mesh.Triangle{fwd[0], fwd[2], fwd[1]}) {
		t.Errorf("reversed triangle = %v for forward %v", rev, fwd)
	}
	if len(res.Normals) != 4 {
		t.Errorf("normal count = %d, want 4", len(res.Normals))
	}
}

func TestRepairSimplify(t *testing.T) {
	m := closedBox(t) // 12 triangles
	res := Repair(m, RepairOptions{SimplifyRatio: 0.5})
	if got := len(res.Mesh.Triangles); got != 6 {
		t.Errorf("triangle count = %d, want 6 (every 2nd of 12)", got)
	}
	// Tiny meshes are exempt.
	small := Repair(flatQuad(), RepairOptions{SimplifyRatio: 0.5})
	if got := len(small.Mesh.Triangles); got != 2 {
		t.Errorf("small mesh triangle count = %d, want 2", got)
	}
}

func TestRepairSplitComponentsOrdersLargestFirst(t *testing.T) {
	a := closedBox(t) // 12 triangles
	b := flatQuad()   // 2 triangles
	b.Vertices = shiftZ(b.Vertices, 10)
	joined := &mesh.Mesh{}
	joined.Merge(b)
	joined.Merge(a)
	res := Repair(joined, RepairOptions{SplitComponents: true})
	comps := SplitConnectedComponents(res.Mesh.Triangles)
	if len(comps) != 2 {
		t.Fatalf("component count = %d, want 2", len(comps))
	}
	if len(comps[0]) < len(comps[1]) {
		t.Errorf("components not largest-first: %d then %d", len(comps[0]), len(comps[1]))
	}
}

func shiftZ(pts []geom.Point3, dz float64) []geom.Point3 {
	out := make([]geom.Point3, len(pts))
	for i, p := range pts {
		out[i] = geom.Point3{X: p.X, Y: p.Y, Z: p.Z + dz}
	}
	return out
}

func TestSelfIntersectionsClean(t *testing.T) {
	if got := SelfIntersections(closedBox(t)); got != 0 {
		t.Errorf("closed box self-intersections = %d, want 0", got)
	}
}

func TestSelfIntersectionsPiercing(t *testing.T) {
	m := &mesh.Mesh{
		Vertices: []geom.Point3{
			{X: 0, Y: 0, Z: 0},
			{X: 4, Y: 0, Z: 0},
			{X: 0, Y: 4, Z: 0},
			{X: 1, Y: 1, Z: -1},
			{X: 2, Y: 1, Z: 1},
			{X: 1, Y: 2, Z: 1},
		},
		Triangles: []mesh.Triangle{{0, 1, 2}, {3, 4, 5}},
	}
	if got := SelfIntersections(m); got != 1 {
		t.Errorf("piercing pair self-intersections = %d, want 1", got)
	}
	r := Diagnose(m)
	if got := r.Counts[MetricSelfIntersections]; got != 1 {
		t.Errorf("report self-intersections = %d, want 1", got)
	}
	if r.Severities[MetricSelfIntersections] != SeverityWarn {
		t.Error("self-intersections must be warn severity")
	}
}

func TestSelfIntersectionsSharedVertexSkipped(t *testing.T) {
	// Two triangles sharing an edge fold onto each other; shared vertices
	// exempt the pair.
	m := flatQuad()
	if got := SelfIntersections(m); got != 0 {
		t.Errorf("shared-vertex pair counted: %d, want 0", got)
	}
}
