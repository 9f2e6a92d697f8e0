package heal

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/mesh"
)

func closedBox(t *testing.T) *mesh.Mesh {
	t.Helper()
	square := []geom.Point2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	m, err := mesh.Extrude(square, 0, 1, mesh.ExtrudeOptions{CapBottom: true, CapTop: true})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestHealCleanBox(t *testing.T) {
	res := Heal(closedBox(t), Options{})
	for bucket, n := range res.Report.Counts {
		if n != 0 {
			t.Errorf("clean box: %s = %d, want 0", bucket, n)
		}
	}
	if len(res.Report.Actions) != 0 {
		t.Errorf("clean box actions = %+v, want none", res.Report.Actions)
	}
	if res.Report.Input != res.Report.Output {
		t.Errorf("sizes changed: %+v -> %+v", res.Report.Input, res.Report.Output)
	}
	if !strings.HasPrefix(res.Report.CleanedMeshHash, "sha256:") {
		t.Errorf("hash = %q, want sha256: prefix", res.Report.CleanedMeshHash)
	}
}

func TestHealRemovesDegenerateWithProvenance(t *testing.T) {
	m := closedBox(t)
	m.Triangles = append(m.Triangles, mesh.Triangle{0, 0, 1})
	refs := make([]FaceRef, len(m.Triangles))
	for i := range refs {
		refs[i] = FaceRef{ObjectID: "wall-7", FaceID: "f", TriangleIndex: i}
	}
	res := Heal(m, Options{TriangleRefs: refs})

	if got := len(res.Report.Issues.DegenerateTriangles); got != 1 {
		t.Fatalf("degenerate issue count = %d, want 1", got)
	}
	ref := res.Report.Issues.DegenerateTriangles[0]
	if ref.ObjectID != "wall-7" || ref.TriangleIndex != 12 {
		t.Errorf("degenerate ref = %+v, want object wall-7 triangle 12", ref)
	}
	if got := len(res.Mesh.Triangles); got != 12 {
		t.Errorf("healed triangle count = %d, want 12", got)
	}
	if len(res.TriangleRefs) != len(res.Mesh.Triangles) {
		t.Errorf("refs (%d) not in lockstep with triangles (%d)",
			len(res.TriangleRefs), len(res.Mesh.Triangles))
	}
	if !hasAction(res.Report.Actions, "remove_degenerate_triangles") {
		t.Errorf("actions = %+v, want remove_degenerate_triangles", res.Report.Actions)
	}
}

func TestHealDeduplicatesFaces(t *testing.T) {
	m := closedBox(t)
	first := m.Triangles[0]
	m.Triangles = append(m.Triangles, mesh.Triangle{first[1], first[2], first[0]})
	res := Heal(m, Options{})
	if got := res.Report.Counts["duplicate_coplanar_faces"]; got != 1 {
		t.Errorf("duplicate count = %d, want 1", got)
	}
	if got := len(res.Mesh.Triangles); got != 12 {
		t.Errorf("triangle count = %d, want duplicate removed (12)", got)
	}
	if !hasAction(res.Report.Actions, "deduplicate_coplanar_duplicate_faces") {
		t.Errorf("actions = %+v, want dedup action", res.Report.Actions)
	}

	kept := Heal(m, Options{KeepDuplicateFaces: true})
	if got := len(kept.Mesh.Triangles); got != 13 {
		t.Errorf("KeepDuplicateFaces triangle count = %d, want 13", got)
	}
	if got := kept.Report.Counts["duplicate_coplanar_faces"]; got != 1 {
		t.Errorf("KeepDuplicateFaces still diagnoses: got %d, want 1", got)
	}
}

func TestHealWeldAction(t *testing.T) {
	m := closedBox(t)
	m.Vertices = append(m.Vertices, m.Vertices[0])
	res := Heal(m, Options{})
	if !hasAction(res.Report.Actions, "merge_near_duplicate_vertices") {
		t.Fatalf("actions = %+v, want weld action", res.Report.Actions)
	}
	if res.Report.Output.Vertices != 8 {
		t.Errorf("output vertices = %d, want 8", res.Report.Output.Vertices)
	}
}

func TestHealInvertedDiagnosticOnly(t *testing.T) {
	// Triangle away from the origin, wound toward it: diagnosed as inverted
	// and then rewound by the winding pass.
	m := &mesh.Mesh{
		Vertices: []geom.Point3{
			{X: 0, Y: 0, Z: 5}, {X: 1, Y: 0, Z: 5}, {X: 0, Y: 1, Z: 5},
		},
		Triangles: []mesh.Triangle{{0, 2, 1}},
	}
	res := Heal(m, Options{})
	if got := res.Report.Counts["inverted_normals"]; got != 1 {
		t.Errorf("inverted count = %d, want 1", got)
	}
	if res.Mesh.Triangles[0] != (mesh.Triangle{0, 1, 2}) {
		t.Errorf("triangle after heal = %v, want rewound {0 1 2}", res.Mesh.Triangles[0])
	}
	if !hasAction(res.Report.Actions, "unify_winding") {
		t.Errorf("actions = %+v, want unify_winding", res.Report.Actions)
	}
	// Open shell edges of a lone triangle.
	if got := res.Report.Counts["open_shell_edges"]; got != 3 {
		t.Errorf("open shell edges = %d, want 3", got)
	}
}

func TestHealNonManifold(t *testing.T) {
	// Three triangles fanning off one shared edge (0,1).
	m := &mesh.Mesh{
		Vertices: []geom.Point3{
			{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1},
			{X: 0.5, Y: 1, Z: 1}, {X: 0.5, Y: -1, Z: 1}, {X: 0.5, Y: 0, Z: 2},
		},
		Triangles: []mesh.Triangle{{0, 1, 2}, {0, 1, 3}, {0, 1, 4}},
	}
	res := Heal(m, Options{})
	if got := len(res.Report.Issues.NonManifoldEdges); got != 1 {
		t.Fatalf("non-manifold edge count = %d, want 1", got)
	}
	issue := res.Report.Issues.NonManifoldEdges[0]
	if issue.Edge != [2]uint32{0, 1} {
		t.Errorf("edge = %v, want [0 1]", issue.Edge)
	}
	if len(issue.IncidentFaces) != 3 {
		t.Errorf("incident faces = %v, want 3 entries", issue.IncidentFaces)
	}
}

func TestHealHashPureAndSensitive(t *testing.T) {
	a := Heal(closedBox(t), Options{})
	b := Heal(closedBox(t), Options{})
	if a.Report.CleanedMeshHash != b.Report.CleanedMeshHash {
		t.Error("equal input must hash equal")
	}
	moved := closedBox(t)
	moved.Vertices[0].X += 0.5
	c := Heal(moved, Options{})
	if c.Report.CleanedMeshHash == a.Report.CleanedMeshHash {
		t.Error("different geometry must hash different")
	}
}

func TestStableMeshHashRounding(t *testing.T) {
	verts := []geom.Point3{{X: 1.0 / 3.0, Y: 0, Z: 0}}
	tris := []mesh.Triangle{}
	h1 := StableMeshHash(verts, tris)
	// Noise far below 12 significant digits is absorbed.
	noisy := []geom.Point3{{X: 1.0/3.0 + 1e-15, Y: 0, Z: 0}}
	h2 := StableMeshHash(noisy, tris)
	if h1 != h2 {
		t.Error("sub-precision noise changed the hash")
	}
	bumped := []geom.Point3{{X: 1.0/3.0 + 1e-9, Y: 0, Z: 0}}
	if StableMeshHash(bumped, tris) == h1 {
		t.Error("representable change did not change the hash")
	}
}

func TestTriangulateFaces(t *testing.T) {
	faces := [][]uint32{
		{0, 1, 2, 3}, // quad: 2 triangles
		{4, 5},       // skipped
		{4, 5, 6},    // 1 triangle
	}
	tris, refs := TriangulateFaces(faces, "obj-1", "")
	wantTris := []mesh.Triangle{{0, 1, 2}, {0, 2, 3}, {4, 5, 6}}
	if !reflect.DeepEqual(tris, wantTris) {
		t.Errorf("triangles = %v, want %v", tris, wantTris)
	}
	if len(refs) != 3 {
		t.Fatalf("ref count = %d, want 3", len(refs))
	}
	if refs[0].FaceID != "face_1" || refs[1].FaceID != "face_1" || refs[2].FaceID != "face_3" {
		t.Errorf("face ids = %q %q %q", refs[0].FaceID, refs[1].FaceID, refs[2].FaceID)
	}
	for i, r := range refs {
		if r.TriangleIndex != i || r.ObjectID != "obj-1" {
			t.Errorf("ref %d = %+v", i, r)
		}
	}
}

func hasAction(actions []Action, name string) bool {
	for _, a := range actions {
		if a.Name == name {
			return true
		}
	}
	return false
}
