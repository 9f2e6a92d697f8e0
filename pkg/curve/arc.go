// Package curve implements the 2D curve kernel: circular arcs with DXF bulge
// construction, line segments, polycurves, their pairwise intersections, and
// rational spline evaluation. All intersection routines share the tangency
// policy: a discriminant within the weld tolerance of zero is clamped, so
// tangent contact yields exactly one point.
package curve

import (
	"fmt"
	"math"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// Arc is a circular arc. Angles are radians; CCW selects the direction of
// travel from StartRad to EndRad.
type Arc struct {
	Center   geom.Point2
	Radius   float64
	StartRad float64
	EndRad   float64
	CCW      bool
}

// normAngle maps an angle into [0, 2π).
func normAngle(a float64) float64 {
	out := math.Mod(a, 2*math.Pi)
	if out < 0 {
		out += 2 * math.Pi
	}
	return out
}

// ccwDelta is the counter-clockwise sweep from a0 to a1 in [0, 2π).
func ccwDelta(a0, a1 float64) float64 {
	d := normAngle(a1) - normAngle(a0)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d
}

// ArcFromBulge builds the arc through start and end with the given DXF bulge
// factor (tan of a quarter of the included angle; positive is
// counter-clockwise). Zero bulge and coincident endpoints are errors: the
// former is a straight segment, not an arc.
func ArcFromBulge(start, end geom.Point2, bulge float64) (Arc, error) {
	if math.Abs(bulge) <= tol.EpsPos {
		return Arc{}, fmt.Errorf("bulge cannot be zero for arc")
	}
	chord := start.Dist(end)
	if chord <= tol.EpsPos {
		return Arc{}, fmt.Errorf("bulge arc requires distinct endpoints")
	}
	theta := 4 * math.Atan(bulge)
	st := math.Sin(theta * 0.5)
	if math.Abs(st) <= tol.EpsPos {
		return Arc{}, fmt.Errorf("invalid bulge angle")
	}
	radius := math.Abs(chord / (2 * st))

	mid := start.Add(end).Scale(0.5)
	d := end.Sub(start)
	n := geom.Point2{X: -d.Y, Y: d.X}
	n = n.Scale(1 / n.Length())
	rise := math.Sqrt(math.Max(radius*radius-(chord*0.5)*(chord*0.5), 0))
	sign := 1.0
	if bulge < 0 {
		sign = -1.0
	}
	center := mid.Add(n.Scale(sign * rise))

	return Arc{
		Center:   center,
		Radius:   radius,
		StartRad: math.Atan2(start.Y-center.Y, start.X-center.X),
		EndRad:   math.Atan2(end.Y-center.Y, end.X-center.X),
		CCW:      bulge > 0,
	}, nil
}

// StartPoint returns the arc's start endpoint.
func (a Arc) StartPoint() geom.Point2 {
	return geom.Point2{
		X: a.Center.X + a.Radius*math.Cos(a.StartRad),
		Y: a.Center.Y + a.Radius*math.Sin(a.StartRad),
	}
}

// EndPoint returns the arc's end endpoint.
func (a Arc) EndPoint() geom.Point2 {
	return geom.Point2{
		X: a.Center.X + a.Radius*math.Cos(a.EndRad),
		Y: a.Center.Y + a.Radius*math.Sin(a.EndRad),
	}
}

// Sweep returns the swept angle in [0, 2π), following the arc's direction.
func (a Arc) Sweep() float64 {
	if a.CCW {
		return ccwDelta(a.StartRad, a.EndRad)
	}
	return ccwDelta(a.EndRad, a.StartRad)
}

// ContainsAngle reports whether the angle lies on the arc's swept range,
// honoring direction, with an eps slack at the endpoints.
func (a Arc) ContainsAngle(angle, eps float64) bool {
	ang := normAngle(angle)
	if a.CCW {
		return ccwDelta(a.StartRad, ang) <= a.Sweep()+eps
	}
	return ccwDelta(a.EndRad, ang) <= a.Sweep()+eps
}

// PointAt evaluates the arc at parameter t in [0, 1] along its direction of
// travel. Out-of-range parameters clamp to the endpoints.
func (a Arc) PointAt(t float64) geom.Point2 {
	tt := math.Min(1, math.Max(0, t))
	sw := a.Sweep()
	ang := a.StartRad + sw*tt
	if !a.CCW {
		ang = a.StartRad - sw*tt
	}
	return geom.Point2{
		X: a.Center.X + a.Radius*math.Cos(ang),
		Y: a.Center.Y + a.Radius*math.Sin(ang),
	}
}

// NearestPoint returns the closest point of the arc to p: the radial
// projection when it lands on the swept range, otherwise the nearer endpoint.
func (a Arc) NearestPoint(p geom.Point2) geom.Point2 {
	v := p.Sub(a.Center)
	if v.Length() <= tol.EpsPos {
		return nearerOf(a.StartPoint(), a.EndPoint(), p)
	}
	ang := math.Atan2(v.Y, v.X)
	if a.ContainsAngle(ang, tol.EpsWeld) {
		return geom.Point2{
			X: a.Center.X + a.Radius*math.Cos(ang),
			Y: a.Center.Y + a.Radius*math.Sin(ang),
		}
	}
	return nearerOf(a.StartPoint(), a.EndPoint(), p)
}

func nearerOf(a, b, ref geom.Point2) geom.Point2 {
	if a.Dist(ref) <= b.Dist(ref) {
		return a
	}
	return b
}

// SegmentIntersections returns the points where segment a-b crosses the arc,
// deduplicated at eps. A discriminant within eps below zero is clamped, so a
// tangent segment yields exactly one point.
func (arc Arc) SegmentIntersections(a, b geom.Point2, eps float64) []geom.Point2 {
	d := b.Sub(a)
	f := a.Sub(arc.Center)

	qa := d.Dot(d)
	if qa <= tol.EpsPos {
		return nil
	}
	qb := 2 * f.Dot(d)
	qc := f.Dot(f) - arc.Radius*arc.Radius
	disc := qb*qb - 4*qa*qc
	if disc < -eps {
		return nil
	}
	if disc < 0 {
		disc = 0
	}
	s := math.Sqrt(disc)
	var out []geom.Point2
	for _, t := range [2]float64{(-qb - s) / (2 * qa), (-qb + s) / (2 * qa)} {
		if t < -eps || t > 1+eps {
			continue
		}
		t = math.Min(1, math.Max(0, t))
		p := a.Add(d.Scale(t))
		ang := math.Atan2(p.Y-arc.Center.Y, p.X-arc.Center.X)
		if arc.ContainsAngle(ang, eps) {
			out = appendDistinct(out, p, eps)
		}
	}
	return out
}

// ArcIntersections returns the points where two arcs cross, deduplicated at
// eps. Externally or internally tangent circles within eps yield exactly one
// point; concentric circles yield none.
func (arc Arc) ArcIntersections(other Arc, eps float64) []geom.Point2 {
	delta := other.Center.Sub(arc.Center)
	d := delta.Length()
	r0, r1 := arc.Radius, other.Radius
	if d <= tol.EpsPos {
		return nil
	}
	if d > r0+r1+eps {
		return nil
	}
	if d < math.Abs(r0-r1)-eps {
		return nil
	}

	a := (r0*r0 - r1*r1 + d*d) / (2 * d)
	h2 := r0*r0 - a*a
	if h2 < -eps {
		return nil
	}
	h := math.Sqrt(math.Max(0, h2))
	mid := arc.Center.Add(delta.Scale(a / d))
	perp := geom.Point2{X: -delta.Y * (h / d), Y: delta.X * (h / d)}

	var out []geom.Point2
	for _, p := range [2]geom.Point2{mid.Add(perp), mid.Sub(perp)} {
		a0 := math.Atan2(p.Y-arc.Center.Y, p.X-arc.Center.X)
		a1 := math.Atan2(p.Y-other.Center.Y, p.X-other.Center.X)
		if arc.ContainsAngle(a0, eps) && other.ContainsAngle(a1, eps) {
			out = appendDistinct(out, p, eps)
		}
	}
	return out
}

func appendDistinct(pts []geom.Point2, p geom.Point2, eps float64) []geom.Point2 {
	for _, q := range pts {
		if p.Dist(q) <= eps {
			return pts
		}
	}
	return append(pts, p)
}
