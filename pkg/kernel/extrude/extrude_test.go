package extrude

import (
	"testing"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/mesh"
)

var square = []geom.Point2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}

func TestMeshExtrusionClosed(t *testing.T) {
	m, err := Mesher{}.MeshExtrusion(square, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 8 || len(m.Triangles) != 12 {
		t.Fatalf("got %d vertices / %d triangles, want 8 / 12", len(m.Vertices), len(m.Triangles))
	}
	if err := m.CheckManifold(); err != nil {
		t.Errorf("closed prism not manifold: %v", err)
	}
	open := 0
	for _, count := range mesh.EdgeIncidence(m.Triangles) {
		if count == 1 {
			open++
		}
	}
	if open != 0 {
		t.Errorf("closed prism has %d open edges", open)
	}
}

func TestMeshExtrusionOpenEnds(t *testing.T) {
	m, err := Mesher{OpenEnds: true}.MeshExtrusion(square, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Triangles) != 8 {
		t.Fatalf("got %d triangles, want 8 side triangles only", len(m.Triangles))
	}
	open := 0
	for _, count := range mesh.EdgeIncidence(m.Triangles) {
		if count == 1 {
			open++
		}
	}
	if open != 8 {
		t.Errorf("open tube has %d open edges, want 8", open)
	}
}

func TestMeshExtrusionRejectsBadInput(t *testing.T) {
	if _, err := (Mesher{}).MeshExtrusion(square[:2], 0, 3); err == nil {
		t.Error("expected error for two-point profile")
	}
	if _, err := (Mesher{}).MeshExtrusion(square, 3, 3); err == nil {
		t.Error("expected error for zero height")
	}
}
