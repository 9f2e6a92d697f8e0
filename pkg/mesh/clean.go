package mesh

import (
	"math"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

type gridKey struct {
	X, Y, Z int64
}

// MergeVertices welds vertices that fall into the same eps-sized grid bucket.
// The first vertex seen in a bucket is kept as the representative; the remap
// slice sends every original index to its representative in the output.
func MergeVertices(vertices []geom.Point3, eps float64) ([]geom.Point3, []int) {
	inv := 1.0 / math.Max(eps, tol.EpsPos)
	out := make([]geom.Point3, 0, len(vertices))
	remap := make([]int, 0, len(vertices))
	buckets := make(map[gridKey]int, len(vertices))
	for _, v := range vertices {
		k := gridKey{
			X: int64(math.Round(v.X * inv)),
			Y: int64(math.Round(v.Y * inv)),
			Z: int64(math.Round(v.Z * inv)),
		}
		idx, ok := buckets[k]
		if !ok {
			idx = len(out)
			buckets[k] = idx
			out = append(out, v)
		}
		remap = append(remap, idx)
	}
	return out, remap
}

// Weld rewrites m in place with vertices merged at the given distance and
// triangle indices remapped. Triangles collapsed by the weld are left in
// place for RemoveDegenerateTriangles to strip.
func Weld(m *Mesh, eps float64) {
	verts, remap := MergeVertices(m.Vertices, eps)
	m.Vertices = verts
	for i, t := range m.Triangles {
		m.Triangles[i] = Triangle{
			uint32(remap[t[0]]),
			uint32(remap[t[1]]),
			uint32(remap[t[2]]),
		}
	}
}

// RemoveDegenerateTriangles drops triangles with a repeated index or an area
// at or below areaEps.
func RemoveDegenerateTriangles(triangles []Triangle, vertices []geom.Point3, areaEps float64) []Triangle {
	out := make([]Triangle, 0, len(triangles))
	for _, t := range triangles {
		a, b, c := t[0], t[1], t[2]
		if a == b || b == c || a == c {
			continue
		}
		if geom.TriangleArea(vertices[a], vertices[b], vertices[c]) <= areaEps {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FixWindingByCentroid flips each triangle whose normal points toward the
// origin side of its centroid. This is a deterministic global orientation
// rule; it assumes an origin-centric solid and misorients faces of shells
// that do not enclose the origin. Kept because downstream consumers expect
// exactly this rule.
func FixWindingByCentroid(triangles []Triangle, vertices []geom.Point3) []Triangle {
	if len(triangles) == 0 {
		return nil
	}
	out := make([]Triangle, 0, len(triangles))
	for _, t := range triangles {
		va := vertices[t[0]]
		vb := vertices[t[1]]
		vc := vertices[t[2]]
		n := vb.Sub(va).Cross(vc.Sub(va))
		centroid := va.Add(vb).Add(vc).Scale(1.0 / 3.0)
		if n.Dot(centroid) < 0 {
			out = append(out, Triangle{t[0], t[2], t[1]})
		} else {
			out = append(out, t)
		}
	}
	return out
}

// DetectOpenEdges returns the undirected edges used by exactly one triangle,
// in first-occurrence order.
func DetectOpenEdges(triangles []Triangle) []Edge {
	counts := make(map[Edge]int, len(triangles)*3/2)
	order := make([]Edge, 0, len(triangles)*3/2)
	for _, t := range triangles {
		for _, e := range [3]Edge{
			NewEdge(t[0], t[1]),
			NewEdge(t[1], t[2]),
			NewEdge(t[2], t[0]),
		} {
			if counts[e] == 0 {
				order = append(order, e)
			}
			counts[e]++
		}
	}
	open := make([]Edge, 0)
	for _, e := range order {
		if counts[e] == 1 {
			open = append(open, e)
		}
	}
	return open
}
