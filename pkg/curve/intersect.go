package curve

import (
	"math"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// Segment2D is a straight segment from A to B.
type Segment2D struct {
	A, B geom.Point2
}

// Line2D is an infinite-intent line carried by two points. Drawing layers
// treat it as a construction entity; intersection queries convert it to its
// carrying segment.
type Line2D struct {
	A, B geom.Point2
}

// AsSegment returns the segment between the line's defining points.
func (l Line2D) AsSegment() Segment2D { return Segment2D{A: l.A, B: l.B} }

// Length returns the distance between the line's defining points.
func (l Line2D) Length() float64 { return l.A.Dist(l.B) }

// SegmentIntersections returns the crossing point of two segments, if any.
// Parallel segments (including collinear overlaps) yield no points.
func SegmentIntersections(s1, s2 Segment2D, eps float64) []geom.Point2 {
	r := s1.B.Sub(s1.A)
	s := s2.B.Sub(s2.A)
	den := r.Cross(s)
	if math.Abs(den) <= tol.EpsPos {
		return nil
	}
	qp := s2.A.Sub(s1.A)
	t := qp.Cross(s) / den
	u := qp.Cross(r) / den
	if t >= -eps && t <= 1+eps && u >= -eps && u <= 1+eps {
		return []geom.Point2{s1.A.Add(r.Scale(t))}
	}
	return nil
}

// NearestIntersection picks the point closest to ref, or false when the
// candidate list is empty.
func NearestIntersection(points []geom.Point2, ref geom.Point2) (geom.Point2, bool) {
	if len(points) == 0 {
		return geom.Point2{}, false
	}
	best := points[0]
	bestDist := best.Dist(ref)
	for _, p := range points[1:] {
		if d := p.Dist(ref); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, true
}

// ClusterPoints greedily merges points within eps of an existing cluster,
// averaging the cluster position as members join. First-occurrence order is
// preserved.
func ClusterPoints(points []geom.Point2, eps float64) []geom.Point2 {
	var out []geom.Point2
	for _, p := range points {
		merged := false
		for i, q := range out {
			if p.Dist(q) <= eps {
				out[i] = geom.Point2{X: (q.X + p.X) * 0.5, Y: (q.Y + p.Y) * 0.5}
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, p)
		}
	}
	return out
}
