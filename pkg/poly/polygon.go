// Package poly implements 2D polygon validation, repair, offsetting and the
// boolean backend the surface and CSG layers delegate to. Booleans and
// offsets run on integer-coordinate polygon clipping; validation and repair
// are tolerance-based on float coordinates.
package poly

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// Polygon2D is a simple polygon: an open ring of at least three points.
type Polygon2D struct {
	Points []geom.Point2
}

// NewPolygon2D builds a simple polygon, rejecting rings of fewer than three
// points. Callers with possibly-degenerate input go through MakePolygonValid
// first.
func NewPolygon2D(points []geom.Point2) (Polygon2D, error) {
	if len(points) < 3 {
		return Polygon2D{}, fmt.Errorf("polygon requires at least 3 points, got %d", len(points))
	}
	return Polygon2D{Points: points}, nil
}

// Area returns the absolute area of the polygon.
func (p Polygon2D) Area() float64 {
	return math.Abs(geom.SignedArea(p.Points))
}

// UVPolygon is a polygon with holes in a local (u, v) plane basis. The outer
// ring winds counter-clockwise, holes clockwise.
type UVPolygon struct {
	Outer []geom.Point2
	Holes [][]geom.Point2
}

// MultiPolygon is a set of disjoint UVPolygons, as produced by boolean
// operations that split their input.
type MultiPolygon struct {
	Polygons []UVPolygon
}

// ValidityReport describes what is wrong with a polygon-with-holes. It is a
// diagnose-and-report value: producing it never fails.
type ValidityReport struct {
	Valid             bool
	SelfIntersections int
	Winding           string
	HolesOutsideOuter int
	DuplicateVertices int
	Warnings          []string
}

// dupRoundDigits is the decimal precision at which vertices count as
// duplicates in validity checks.
const dupRoundDigits = 9

// toRing converts an open point ring to a closed orb ring.
func toRing(points []geom.Point2) orb.Ring {
	r := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		r = append(r, orb.Point{p.X, p.Y})
	}
	if len(points) > 0 {
		r = append(r, orb.Point{points[0].X, points[0].Y})
	}
	return r
}

// ValidatePolygonWithHoles reports self-intersections over non-adjacent edge
// pairs, duplicate vertices, winding, and holes whose centroid falls outside
// the outer ring.
func ValidatePolygonWithHoles(outer []geom.Point2, holes [][]geom.Point2) ValidityReport {
	if len(outer) < 3 {
		return ValidityReport{
			Valid:    false,
			Winding:  "CW",
			Warnings: []string{"outer polygon has fewer than 3 points"},
		}
	}

	dup := 0
	seen := make(map[[2]float64]struct{}, len(outer))
	for _, p := range outer {
		key := [2]float64{roundTo(p.X, dupRoundDigits), roundTo(p.Y, dupRoundDigits)}
		if _, ok := seen[key]; ok {
			dup++
		}
		seen[key] = struct{}{}
	}

	si := selfIntersections(outer)

	winding := "CW"
	if toRing(outer).Orientation() == orb.CCW {
		winding = "CCW"
	}

	var warnings []string
	holesOut := 0
	outerRing := toRing(outer)
	for _, hole := range holes {
		if len(hole) < 3 {
			warnings = append(warnings, "hole has fewer than 3 points")
			holesOut++
			continue
		}
		c := geom.Centroid2(hole)
		if !planar.RingContains(outerRing, orb.Point{c.X, c.Y}) {
			holesOut++
		}
	}

	return ValidityReport{
		Valid:             si == 0 && holesOut == 0,
		SelfIntersections: si,
		Winding:           winding,
		HolesOutsideOuter: holesOut,
		DuplicateVertices: dup,
		Warnings:          warnings,
	}
}

// selfIntersections counts strict crossings between non-adjacent edges.
func selfIntersections(ring []geom.Point2) int {
	n := len(ring)
	count := 0
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			c, d := ring[j], ring[(j+1)%n]
			if strictCross(a, b, c, d) {
				count++
			}
		}
	}
	return count
}

func strictCross(a, b, c, d geom.Point2) bool {
	o1 := geom.Orient2D(a, b, c)
	o2 := geom.Orient2D(a, b, d)
	o3 := geom.Orient2D(c, d, a)
	o4 := geom.Orient2D(c, d, b)
	return o1*o2 < 0 && o3*o4 < 0
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

// MakePolygonValid repairs a point ring: snap vertices to the eps grid, drop
// consecutive duplicates and a trailing closure point, enforce CCW winding;
// if the ring still fails validation, simplify it on the boolean backend,
// and as a last lossy resort rebuild the convex hull.
func MakePolygonValid(points []geom.Point2, snapEps float64) []geom.Point2 {
	if snapEps <= 0 {
		snapEps = tol.EpsWeld
	}
	inv := 1.0 / math.Max(snapEps, tol.EpsPos)
	out := make([]geom.Point2, 0, len(points))
	for _, p := range points {
		q := geom.Point2{
			X: math.Round(p.X*inv) / inv,
			Y: math.Round(p.Y*inv) / inv,
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if math.Abs(last.X-q.X) <= snapEps && math.Abs(last.Y-q.Y) <= snapEps {
				continue
			}
		}
		out = append(out, q)
	}
	if len(out) >= 2 {
		first, last := out[0], out[len(out)-1]
		if math.Abs(first.X-last.X) <= snapEps && math.Abs(first.Y-last.Y) <= snapEps {
			out = out[:len(out)-1]
		}
	}

	if ValidatePolygonWithHoles(out, nil).Valid {
		return ensureCCW(out)
	}
	if simplified, ok := simplifyRing(out); ok {
		return ensureCCW(simplified)
	}
	return convexHull(out)
}

// MakePolygonWithHolesValid repairs the outer ring and every hole, drops
// holes that collapse or fall outside the repaired outer, winds holes
// clockwise, and re-validates the result.
func MakePolygonWithHolesValid(outer []geom.Point2, holes [][]geom.Point2, snapEps float64) ([]geom.Point2, [][]geom.Point2, ValidityReport) {
	fixedOuter := MakePolygonValid(outer, snapEps)
	outerRing := toRing(fixedOuter)
	var fixedHoles [][]geom.Point2
	for _, hole := range holes {
		h := MakePolygonValid(hole, snapEps)
		if len(h) < 3 {
			continue
		}
		if geom.SignedArea(h) > 0 {
			h = reversed(h)
		}
		c := geom.Centroid2(h)
		if planar.RingContains(outerRing, orb.Point{c.X, c.Y}) {
			fixedHoles = append(fixedHoles, h)
		}
	}
	return fixedOuter, fixedHoles, ValidatePolygonWithHoles(fixedOuter, fixedHoles)
}

func ensureCCW(ring []geom.Point2) []geom.Point2 {
	if geom.SignedArea(ring) < 0 {
		return reversed(ring)
	}
	return ring
}

func reversed(ring []geom.Point2) []geom.Point2 {
	out := make([]geom.Point2, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

// convexHull is the monotone-chain hull, the last-resort lossy repair.
func convexHull(points []geom.Point2) []geom.Point2 {
	uniq := make(map[geom.Point2]struct{}, len(points))
	pts := make([]geom.Point2, 0, len(points))
	for _, p := range points {
		if _, ok := uniq[p]; !ok {
			uniq[p] = struct{}{}
			pts = append(pts, p)
		}
	}
	sortPoints(pts)
	if len(pts) < 3 {
		return pts
	}
	var lower []geom.Point2
	for _, p := range pts {
		for len(lower) >= 2 && geom.Orient2D(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []geom.Point2
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && geom.Orient2D(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

func sortPoints(pts []geom.Point2) {
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && lessPoint(pts[j], pts[j-1]); j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}
}

func lessPoint(a, b geom.Point2) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}
