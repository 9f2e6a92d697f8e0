// Package mesh defines the indexed triangle mesh value type and the cleaning
// primitives the higher-level diagnosis and repair passes are built from.
package mesh

import (
	"fmt"

	"github.com/lumenworks/lumengeo/pkg/geom"
)

// Triangle is a counter-clockwise index triple into a vertex slice.
type Triangle [3]uint32

// Mesh is an indexed triangle mesh. Vertices carry no attributes beyond
// position; per-face metadata lives with the callers that need it.
type Mesh struct {
	Vertices  []geom.Point3
	Triangles []Triangle
}

// Validate checks structural integrity: at least one vertex and every
// triangle index in range.
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("mesh has no vertices")
	}
	n := uint32(len(m.Vertices))
	for i, t := range m.Triangles {
		for _, idx := range t {
			if idx >= n {
				return fmt.Errorf("triangle %d: vertex index %d out of range [0, %d)", i, idx, n)
			}
		}
	}
	return nil
}

// Edge is an undirected edge key with A <= B.
type Edge struct {
	A, B uint32
}

// NewEdge builds the canonical undirected key for (u, v).
func NewEdge(u, v uint32) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{u, v}
}

// EdgeIncidence counts how many triangles share each undirected edge.
func EdgeIncidence(triangles []Triangle) map[Edge]int {
	counts := make(map[Edge]int, len(triangles)*3/2)
	for _, t := range triangles {
		counts[NewEdge(t[0], t[1])]++
		counts[NewEdge(t[1], t[2])]++
		counts[NewEdge(t[2], t[0])]++
	}
	return counts
}

// CheckManifold reports an error for any edge shared by more than two
// triangles. Open edges are allowed; authoring meshes are often unclosed.
func (m *Mesh) CheckManifold() error {
	if err := m.Validate(); err != nil {
		return err
	}
	for e, n := range EdgeIncidence(m.Triangles) {
		if n > 2 {
			return fmt.Errorf("non-manifold edge (%d, %d) with incidence %d", e.A, e.B, n)
		}
	}
	return nil
}

// Merge appends other's geometry to m, offsetting indices.
func (m *Mesh) Merge(other *Mesh) {
	offset := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, t := range other.Triangles {
		m.Triangles = append(m.Triangles, Triangle{t[0] + offset, t[1] + offset, t[2] + offset})
	}
}

// TriangleNormal returns the unnormalized face normal of triangle t.
func (m *Mesh) TriangleNormal(t Triangle) geom.Vector3 {
	a := m.Vertices[t[0]]
	b := m.Vertices[t[1]]
	c := m.Vertices[t[2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// Normals returns per-triangle unit normals. Degenerate triangles yield the
// zero vector.
func (m *Mesh) Normals() []geom.Vector3 {
	out := make([]geom.Vector3, len(m.Triangles))
	for i, t := range m.Triangles {
		out[i] = m.TriangleNormal(t).Normalize()
	}
	return out
}

// ExtrudeOptions selects which caps an extruded prism receives.
type ExtrudeOptions struct {
	CapBottom bool
	CapTop    bool
}

// Extrude builds a prism mesh from a simple 2D profile swept from z0 to z1.
// Side walls are two triangles per profile edge; caps are fan-triangulated
// from the first profile vertex, so non-convex profiles need the exact
// boolean path upstream before meshing.
func Extrude(profile []geom.Point2, z0, z1 float64, opts ExtrudeOptions) (*Mesh, error) {
	if z1 <= z0 {
		return nil, fmt.Errorf("extrusion height must be > 0, got [%g, %g]", z0, z1)
	}
	if len(profile) < 3 {
		return nil, fmt.Errorf("extrusion profile requires at least 3 points, got %d", len(profile))
	}
	n := len(profile)
	m := &Mesh{Vertices: make([]geom.Point3, 0, 2*n)}
	for _, p := range profile {
		m.Vertices = append(m.Vertices, geom.Point3{X: p.X, Y: p.Y, Z: z0})
	}
	for _, p := range profile {
		m.Vertices = append(m.Vertices, geom.Point3{X: p.X, Y: p.Y, Z: z1})
	}

	un := uint32(n)
	for i := 0; i < n; i++ {
		j := uint32((i + 1) % n)
		b0, b1 := uint32(i), j
		t0, t1 := uint32(i)+un, j+un
		m.Triangles = append(m.Triangles, Triangle{b0, b1, t1}, Triangle{b0, t1, t0})
	}
	if opts.CapBottom {
		for i := 1; i < n-1; i++ {
			m.Triangles = append(m.Triangles, Triangle{0, uint32(i + 1), uint32(i)})
		}
	}
	if opts.CapTop {
		for i := 1; i < n-1; i++ {
			m.Triangles = append(m.Triangles, Triangle{un, un + uint32(i), un + uint32(i+1)})
		}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("extruded mesh: %w", err)
	}
	return m, nil
}
