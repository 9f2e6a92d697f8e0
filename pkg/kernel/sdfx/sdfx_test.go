package sdfx

import (
	"math"
	"testing"

	"github.com/lumenworks/lumengeo/pkg/geom"
)

func TestMeshExtrusionApproximatesBox(t *testing.T) {
	square := []geom.Point2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	m, err := New().MeshExtrusion(square, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Triangles) == 0 {
		t.Fatal("no triangles")
	}

	mn := geom.Point3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	mx := geom.Point3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, v := range m.Vertices {
		mn.X, mn.Y, mn.Z = math.Min(mn.X, v.X), math.Min(mn.Y, v.Y), math.Min(mn.Z, v.Z)
		mx.X, mx.Y, mx.Z = math.Max(mx.X, v.X), math.Max(mx.Y, v.Y), math.Max(mx.Z, v.Z)
	}
	const slack = 0.15 // marching cubes cell-level accuracy
	wantMin := geom.Point3{X: 0, Y: 0, Z: 0}
	wantMax := geom.Point3{X: 2, Y: 2, Z: 2}
	if math.Abs(mn.X-wantMin.X) > slack || math.Abs(mn.Y-wantMin.Y) > slack || math.Abs(mn.Z-wantMin.Z) > slack {
		t.Errorf("min = %v, want about %v", mn, wantMin)
	}
	if math.Abs(mx.X-wantMax.X) > slack || math.Abs(mx.Y-wantMax.Y) > slack || math.Abs(mx.Z-wantMax.Z) > slack {
		t.Errorf("max = %v, want about %v", mx, wantMax)
	}
}

func TestMeshExtrusionRejectsBadInput(t *testing.T) {
	square := []geom.Point2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	if _, err := New().MeshExtrusion(square[:2], 0, 2); err == nil {
		t.Error("expected error for two-point profile")
	}
	if _, err := New().MeshExtrusion(square, 1, 1); err == nil {
		t.Error("expected error for zero height")
	}
}
