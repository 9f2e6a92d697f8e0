package doctor

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/mesh"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// rectPad inflates triangle bounding boxes so axis-degenerate triangles
// still form valid r-tree rectangles.
const rectPad = 1e-9

type triEntry struct {
	rect rtreego.Rect
	idx  int
}

func (t *triEntry) Bounds() rtreego.Rect { return t.rect }

// segmentIntersectsTriangle is a Möller-Trumbore style segment test:
// true when segment p0-p1 crosses triangle (a, b, c), including hits on the
// boundary. Segments parallel to the triangle plane never count.
func segmentIntersectsTriangle(p0, p1, a, b, c geom.Point3) bool {
	d := p1.Sub(p0)
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	pvec := d.Cross(e2)
	det := e1.Dot(pvec)
	if det < tol.EpsPos && det > -tol.EpsPos {
		return false
	}
	invDet := 1.0 / det
	tvec := p0.Sub(a)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return false
	}
	qvec := tvec.Cross(e1)
	v := d.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return false
	}
	t := e2.Dot(qvec) * invDet
	return t >= 0 && t <= 1
}

// SelfIntersections counts triangle pairs whose edges pierce each other.
func SelfIntersections(m *mesh.Mesh) int {
	return len(SelfIntersectionPairs(m))
}

// SelfIntersectionPairs finds triangle index pairs (i < j) whose edges
// pierce each other. Candidate pairs come from an r-tree over triangle
// bounding boxes; pairs sharing a vertex are skipped, and each unordered
// pair appears at most once, in ascending (i, j) order. The result matches
// a naive all-pairs sweep exactly.
func SelfIntersectionPairs(m *mesh.Mesh) [][2]int {
	if len(m.Triangles) < 2 {
		return nil
	}
	entries := make([]*triEntry, len(m.Triangles))
	tree := rtreego.NewTree(3, 8, 16)
	for i, t := range m.Triangles {
		entries[i] = &triEntry{rect: triRect(m, t), idx: i}
		tree.Insert(entries[i])
	}

	var hits [][2]int
	for i, ti := range m.Triangles {
		vi := [3]geom.Point3{m.Vertices[ti[0]], m.Vertices[ti[1]], m.Vertices[ti[2]]}
		found := tree.SearchIntersect(entries[i].rect)
		cand := make([]int, 0, len(found))
		for _, s := range found {
			j := s.(*triEntry).idx
			if j > i {
				cand = append(cand, j)
			}
		}
		sort.Ints(cand)
		for _, j := range cand {
			tj := m.Triangles[j]
			if sharesVertex(ti, tj) {
				continue
			}
			vj := [3]geom.Point3{m.Vertices[tj[0]], m.Vertices[tj[1]], m.Vertices[tj[2]]}
			if trianglePairIntersects(vi, vj) {
				hits = append(hits, [2]int{i, j})
			}
		}
	}
	return hits
}

func trianglePairIntersects(v1, v2 [3]geom.Point3) bool {
	for k := 0; k < 3; k++ {
		if segmentIntersectsTriangle(v1[k], v1[(k+1)%3], v2[0], v2[1], v2[2]) {
			return true
		}
	}
	for k := 0; k < 3; k++ {
		if segmentIntersectsTriangle(v2[k], v2[(k+1)%3], v1[0], v1[1], v1[2]) {
			return true
		}
	}
	return false
}

func sharesVertex(a, b mesh.Triangle) bool {
	for _, u := range a {
		for _, v := range b {
			if u == v {
				return true
			}
		}
	}
	return false
}

func triRect(m *mesh.Mesh, t mesh.Triangle) rtreego.Rect {
	a := m.Vertices[t[0]]
	b := m.Vertices[t[1]]
	c := m.Vertices[t[2]]
	mn := geom.Point3{
		X: min3(a.X, b.X, c.X),
		Y: min3(a.Y, b.Y, c.Y),
		Z: min3(a.Z, b.Z, c.Z),
	}
	mx := geom.Point3{
		X: max3(a.X, b.X, c.X),
		Y: max3(a.Y, b.Y, c.Y),
		Z: max3(a.Z, b.Z, c.Z),
	}
	lengths := []float64{
		mx.X - mn.X + rectPad,
		mx.Y - mn.Y + rectPad,
		mx.Z - mn.Z + rectPad,
	}
	r, err := rtreego.NewRect(rtreego.Point{mn.X, mn.Y, mn.Z}, lengths)
	if err != nil {
		// Lengths are always positive; unreachable in practice.
		r, _ = rtreego.NewRect(rtreego.Point{mn.X, mn.Y, mn.Z}, []float64{rectPad, rectPad, rectPad})
	}
	return r
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
