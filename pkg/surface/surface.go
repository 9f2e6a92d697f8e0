// Package surface prepares planar scene surfaces for simulation: normal
// fixing, vertex snapping, topology-aware coplanar merging, and the
// non-manifold diagnostics that feed the scene prep report.
package surface

import (
	"fmt"
	"math"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// SurfaceSpec is a planar polygonal surface with room and material tags.
// The tags participate in coplanar merging: only surfaces sharing both are
// merge candidates.
type SurfaceSpec struct {
	ID         string        `json:"id" yaml:"id"`
	Name       string        `json:"name" yaml:"name"`
	Kind       string        `json:"kind" yaml:"kind"`
	Vertices   []geom.Point3 `json:"vertices" yaml:"vertices"`
	Normal     *geom.Vector3 `json:"normal,omitempty" yaml:"normal,omitempty"`
	RoomID     string        `json:"room_id,omitempty" yaml:"room_id,omitempty"`
	MaterialID string        `json:"material_id,omitempty" yaml:"material_id,omitempty"`
}

// AssertSurface validates the preconditions every prep stage assumes: at
// least three vertices, a non-degenerate vertex fan, and planarity within
// the plane tolerance.
func AssertSurface(s SurfaceSpec) error {
	pts := s.Vertices
	if len(pts) < 3 {
		return fmt.Errorf("surface %q: must contain at least 3 vertices, got %d", s.ID, len(pts))
	}
	p0 := pts[0]
	var normal geom.Vector3
	found := false
	for i := 1; i < len(pts)-1; i++ {
		n := pts[i].Sub(p0).Cross(pts[i+1].Sub(p0))
		if n.Length() > tol.EpsArea {
			normal = n
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("surface %q: vertices are degenerate or collinear", s.ID)
	}
	normal = normal.Normalize()
	for _, p := range pts {
		if d := math.Abs(p.Sub(p0).Dot(normal)); d > tol.EpsPlane {
			return fmt.Errorf("surface %q: non-planar, vertex deviates %.6g from plane", s.ID, d)
		}
	}
	return nil
}

// dedupeVertices drops consecutive near-coincident vertices and a trailing
// closure vertex.
func dedupeVertices(vertices []geom.Point3, eps float64) []geom.Point3 {
	if len(vertices) == 0 {
		return nil
	}
	out := []geom.Point3{vertices[0]}
	for _, p := range vertices[1:] {
		q := out[len(out)-1]
		if math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps && math.Abs(p.Z-q.Z) <= eps {
			continue
		}
		out = append(out, p)
	}
	if len(out) >= 2 {
		a, b := out[0], out[len(out)-1]
		if math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps {
			out = out[:len(out)-1]
		}
	}
	return out
}

// FixSurfaceNormals dedupes each surface's ring, recomputes its Newell
// normal, and flips the ring when a declared normal points the other way.
// Surfaces that collapse below three vertices pass through untouched.
func FixSurfaceNormals(surfaces []SurfaceSpec) []SurfaceSpec {
	fixed := make([]SurfaceSpec, 0, len(surfaces))
	for _, s := range surfaces {
		verts := dedupeVertices(s.Vertices, tol.EpsAng)
		if len(verts) < 3 {
			fixed = append(fixed, s)
			continue
		}
		n := geom.NewellNormal(verts)
		if s.Normal != nil {
			wanted := s.Normal.Normalize()
			if n.Dot(wanted) < 0 {
				verts = reversedRing(verts)
				n = geom.NewellNormal(verts)
			}
		}
		s.Vertices = verts
		s.Normal = &n
		fixed = append(fixed, s)
	}
	return fixed
}

// CloseTinyGaps snaps near-coincident vertices across all surfaces onto the
// average position of their snap-grid bucket, then re-dedupes each ring and
// refreshes its normal.
func CloseTinyGaps(surfaces []SurfaceSpec, tolerance float64) []SurfaceSpec {
	if tolerance <= 0 {
		return surfaces
	}
	inv := 1.0 / tolerance
	type bucket struct {
		sum   geom.Point3
		count int
	}
	buckets := make(map[[3]int64]*bucket)
	key := func(p geom.Point3) [3]int64 {
		return [3]int64{
			int64(math.Round(p.X * inv)),
			int64(math.Round(p.Y * inv)),
			int64(math.Round(p.Z * inv)),
		}
	}
	for _, s := range surfaces {
		for _, v := range s.Vertices {
			k := key(v)
			b, ok := buckets[k]
			if !ok {
				b = &bucket{}
				buckets[k] = b
			}
			b.sum = b.sum.Add(v)
			b.count++
		}
	}
	out := make([]SurfaceSpec, 0, len(surfaces))
	for _, s := range surfaces {
		verts := make([]geom.Point3, 0, len(s.Vertices))
		for _, v := range s.Vertices {
			b := buckets[key(v)]
			verts = append(verts, b.sum.Scale(1.0/float64(b.count)))
		}
		s.Vertices = dedupeVertices(verts, tol.EpsAng)
		if len(s.Vertices) >= 3 {
			n := geom.NewellNormal(s.Vertices)
			s.Normal = &n
		}
		out = append(out, s)
	}
	return out
}

func reversedRing(ring []geom.Point3) []geom.Point3 {
	out := make([]geom.Point3, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}
