package poly

import (
	"math"

	"github.com/lumenworks/lumengeo/pkg/geom"
)

// AxisRect is an axis-aligned rectangle as (x0, x1, y0, y1).
type AxisRect [4]float64

// IsAxisRect reports whether a ring is an axis-aligned rectangle within eps,
// and returns its bounds.
func IsAxisRect(ring []geom.Point2, eps float64) (bool, AxisRect) {
	if len(ring) < 4 {
		return false, AxisRect{}
	}
	r := ringBounds(ring)
	for _, p := range ring {
		onX := math.Abs(p.X-r[0]) <= eps || math.Abs(p.X-r[1]) <= eps
		onY := math.Abs(p.Y-r[2]) <= eps || math.Abs(p.Y-r[3]) <= eps
		if !onX || !onY {
			return false, AxisRect{}
		}
	}
	return true, r
}

func ringBounds(ring []geom.Point2) AxisRect {
	r := AxisRect{ring[0].X, ring[0].X, ring[0].Y, ring[0].Y}
	for _, p := range ring[1:] {
		r[0] = math.Min(r[0], p.X)
		r[1] = math.Max(r[1], p.X)
		r[2] = math.Min(r[2], p.Y)
		r[3] = math.Max(r[3], p.Y)
	}
	return r
}

const (
	axisX = 0
	axisY = 1
)

// clipHalfPlane is Sutherland-Hodgman clipping of a ring against a single
// axis-parallel half-plane.
func clipHalfPlane(ring []geom.Point2, axis int, k float64, keepGE bool, eps float64) []geom.Point2 {
	if len(ring) == 0 {
		return nil
	}
	coord := func(p geom.Point2) float64 {
		if axis == axisX {
			return p.X
		}
		return p.Y
	}
	inside := func(p geom.Point2) bool {
		if keepGE {
			return coord(p) >= k-eps
		}
		return coord(p) <= k+eps
	}
	intersect := func(a, b geom.Point2) geom.Point2 {
		dv := coord(b) - coord(a)
		if math.Abs(dv) <= eps {
			return a
		}
		t := (k - coord(a)) / dv
		t = math.Max(0, math.Min(1, t))
		return geom.Point2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
	}

	var out []geom.Point2
	prev := ring[len(ring)-1]
	prevIn := inside(prev)
	for _, cur := range ring {
		curIn := inside(cur)
		if curIn {
			if !prevIn {
				out = append(out, intersect(prev, cur))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, intersect(prev, cur))
		}
		prev, prevIn = cur, curIn
	}
	return out
}

// subtractAxisRect partitions ring minus rect into disjoint simple pieces:
// the parts left and right of the cut, and the middle band above and below
// it. A cut that misses the ring's bounds leaves the ring untouched.
func subtractAxisRect(ring []geom.Point2, cut AxisRect, eps float64) [][]geom.Point2 {
	if len(ring) < 3 {
		return nil
	}
	b := ringBounds(ring)
	if math.Min(b[1], cut[1])-math.Max(b[0], cut[0]) <= eps ||
		math.Min(b[3], cut[3])-math.Max(b[2], cut[2]) <= eps {
		return [][]geom.Point2{ring}
	}

	left := clipHalfPlane(ring, axisX, cut[0], false, eps)
	right := clipHalfPlane(ring, axisX, cut[1], true, eps)
	mid := clipHalfPlane(clipHalfPlane(ring, axisX, cut[0], true, eps), axisX, cut[1], false, eps)
	bottom := clipHalfPlane(mid, axisY, cut[2], false, eps)
	top := clipHalfPlane(mid, axisY, cut[3], true, eps)

	var parts [][]geom.Point2
	for _, p := range [][]geom.Point2{left, right, bottom, top} {
		if len(p) < 3 || math.Abs(geom.SignedArea(p)) <= eps {
			continue
		}
		parts = append(parts, p)
	}
	return parts
}

// SubtractRectCuts subtracts axis-aligned rectangular cuts from a simple
// polygon by half-plane partitioning, so interior cuts come back as a set
// of simple hole-free pieces instead of a polygon-with-hole. The second
// return is false when any cut is not an axis-aligned rectangle; callers
// then fall back to the general boolean backend.
func SubtractRectCuts(outer []geom.Point2, cuts [][]geom.Point2, eps float64) (MultiPolygon, bool) {
	if len(outer) < 3 {
		return MultiPolygon{}, false
	}
	rects := make([]AxisRect, 0, len(cuts))
	for _, cut := range cuts {
		ok, r := IsAxisRect(cut, eps)
		if !ok {
			return MultiPolygon{}, false
		}
		rects = append(rects, r)
	}

	parts := [][]geom.Point2{outer}
	for _, r := range rects {
		var next [][]geom.Point2
		for _, part := range parts {
			next = append(next, subtractAxisRect(part, r, eps)...)
		}
		parts = next
	}

	var out MultiPolygon
	for _, part := range parts {
		out.Polygons = append(out.Polygons, UVPolygon{Outer: ensureCCW(part)})
	}
	return out, true
}
