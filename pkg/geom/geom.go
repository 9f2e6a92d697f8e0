// Package geom defines the scalar and vector value types shared by every
// kernel component. Points and vectors are plain immutable values with no
// identity beyond their coordinates.
package geom

import (
	"fmt"
	"math"
)

// Point2 is an immutable 2D coordinate pair.
type Point2 struct {
	X, Y float64
}

// Point3 is an immutable 3D coordinate triple.
type Point3 struct {
	X, Y, Z float64
}

// Vector3 is an alias kept for readability where a Point3 acts as a
// direction rather than a position.
type Vector3 = Point3

func (p Point2) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func (p Point3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

// Add returns p + q.
func (p Point3) Add(q Point3) Point3 {
	return Point3{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p - q.
func (p Point3) Sub(q Point3) Point3 {
	return Point3{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns p scaled by s.
func (p Point3) Scale(s float64) Point3 {
	return Point3{p.X * s, p.Y * s, p.Z * s}
}

// Dot returns the dot product of p and q.
func (p Point3) Dot(q Point3) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Cross returns the cross product of p and q.
func (p Point3) Cross(q Point3) Point3 {
	return Point3{
		p.Y*q.Z - p.Z*q.Y,
		p.Z*q.X - p.X*q.Z,
		p.X*q.Y - p.Y*q.X,
	}
}

// Length returns the Euclidean norm of p.
func (p Point3) Length() float64 {
	return math.Sqrt(p.Dot(p))
}

// Normalize returns p scaled to unit length. A zero-length vector is
// returned unchanged; callers that need a guaranteed unit vector check
// Length first.
func (p Point3) Normalize() Point3 {
	l := p.Length()
	if l == 0 {
		return p
	}
	return p.Scale(1.0 / l)
}

// Add returns p + q.
func (p Point2) Add(q Point2) Point2 {
	return Point2{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point2) Sub(q Point2) Point2 {
	return Point2{p.X - q.X, p.Y - q.Y}
}

// Scale returns p scaled by s.
func (p Point2) Scale(s float64) Point2 {
	return Point2{p.X * s, p.Y * s}
}

// Dot returns the dot product of p and q.
func (p Point2) Dot(q Point2) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the 2D cross product (z-component) of p and q.
func (p Point2) Cross(q Point2) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Length returns the Euclidean norm of p.
func (p Point2) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist returns the distance between p and q.
func (p Point2) Dist(q Point2) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Orient2D returns the signed doubled area of triangle (a, b, c):
// positive when c lies left of the directed line a->b.
func Orient2D(a, b, c Point2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// SignedArea returns the signed area of a closed 2D loop
// (positive for counter-clockwise winding).
func SignedArea(loop []Point2) float64 {
	if len(loop) < 3 {
		return 0
	}
	s := 0.0
	for i := range loop {
		a := loop[i]
		b := loop[(i+1)%len(loop)]
		s += a.X*b.Y - b.X*a.Y
	}
	return 0.5 * s
}

// NewellNormal computes the Newell normal of a 3D polygon loop, normalized.
// Fewer than 3 vertices yields the +Z axis.
func NewellNormal(loop []Point3) Vector3 {
	if len(loop) < 3 {
		return Point3{0, 0, 1}
	}
	var n Point3
	for i := range loop {
		a := loop[i]
		b := loop[(i+1)%len(loop)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n.Normalize()
}

// PlaneBasis derives a right-handed orthonormal (u, v) basis for the plane
// with the given unit normal. The reference axis is chosen away from the
// dominant normal component so the cross products stay well-conditioned.
func PlaneBasis(n Vector3) (u, v Vector3) {
	ref := Point3{1, 0, 0}
	if math.Abs(n.X) >= 0.9 {
		ref = Point3{0, 1, 0}
	}
	u = ref.Cross(n).Normalize()
	v = n.Cross(u).Normalize()
	return u, v
}

// TriangleArea returns the area of triangle (a, b, c) in 3D.
func TriangleArea(a, b, c Point3) float64 {
	return 0.5 * b.Sub(a).Cross(c.Sub(a)).Length()
}

// Centroid2 returns the vertex mean of a 2D loop.
func Centroid2(loop []Point2) Point2 {
	if len(loop) == 0 {
		return Point2{}
	}
	var c Point2
	for _, p := range loop {
		c.X += p.X
		c.Y += p.Y
	}
	return c.Scale(1.0 / float64(len(loop)))
}
