package poly

import (
	"fmt"
	"math"

	clipper "github.com/ctessum/go.clipper"

	"github.com/lumenworks/lumengeo/pkg/geom"
)

// clipperScale converts float coordinates to the clipping backend's integer
// grid. 1e7 keeps sub-weld precision while leaving headroom for coordinates
// up to 1e11 before int64 concerns.
const clipperScale = 1e7

func toClipperPath(points []geom.Point2) clipper.Path {
	path := make(clipper.Path, 0, len(points))
	for _, p := range points {
		path = append(path, clipper.NewIntPoint(
			clipper.CInt(math.Round(p.X*clipperScale)),
			clipper.CInt(math.Round(p.Y*clipperScale)),
		))
	}
	return path
}

func fromClipperPath(path clipper.Path) []geom.Point2 {
	points := make([]geom.Point2, 0, len(path))
	for _, ip := range path {
		points = append(points, geom.Point2{
			X: float64(ip.X) / clipperScale,
			Y: float64(ip.Y) / clipperScale,
		})
	}
	return points
}

// SubtractWithHoles subtracts the cut rings from a polygon-with-holes. Cuts
// that split the subject produce multiple result polygons; cuts strictly
// interior to the subject produce holes.
func SubtractWithHoles(subject UVPolygon, cuts [][]geom.Point2) (MultiPolygon, error) {
	c := clipper.NewClipper(clipper.IoNone)
	if !c.AddPath(toClipperPath(subject.Outer), clipper.PtSubject, true) {
		return MultiPolygon{}, fmt.Errorf("subtract: degenerate subject outer ring")
	}
	for _, hole := range subject.Holes {
		c.AddPath(toClipperPath(hole), clipper.PtSubject, true)
	}
	for _, cut := range cuts {
		if len(cut) < 3 {
			continue
		}
		c.AddPath(toClipperPath(cut), clipper.PtClip, true)
	}
	tree, ok := c.Execute2(clipper.CtDifference, clipper.PftEvenOdd, clipper.PftEvenOdd)
	if !ok {
		return MultiPolygon{}, fmt.Errorf("subtract: clip execution failed")
	}
	return multiFromTree(tree), nil
}

// Intersect clips ring a against ring b and returns the overlap regions.
func Intersect(a, b []geom.Point2) (MultiPolygon, error) {
	c := clipper.NewClipper(clipper.IoNone)
	if !c.AddPath(toClipperPath(a), clipper.PtSubject, true) {
		return MultiPolygon{}, fmt.Errorf("intersect: degenerate subject ring")
	}
	if !c.AddPath(toClipperPath(b), clipper.PtClip, true) {
		return MultiPolygon{}, fmt.Errorf("intersect: degenerate clip ring")
	}
	tree, ok := c.Execute2(clipper.CtIntersection, clipper.PftEvenOdd, clipper.PftEvenOdd)
	if !ok {
		return MultiPolygon{}, fmt.Errorf("intersect: clip execution failed")
	}
	return multiFromTree(tree), nil
}

// Union merges the given rings into disjoint polygons-with-holes.
func Union(rings [][]geom.Point2) (MultiPolygon, error) {
	c := clipper.NewClipper(clipper.IoNone)
	added := false
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		if c.AddPath(toClipperPath(ring), clipper.PtSubject, true) {
			added = true
		}
	}
	if !added {
		return MultiPolygon{}, fmt.Errorf("union: no usable rings")
	}
	tree, ok := c.Execute2(clipper.CtUnion, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return MultiPolygon{}, fmt.Errorf("union: clip execution failed")
	}
	return multiFromTree(tree), nil
}

// multiFromTree flattens a clip result tree into polygons-with-holes. Islands
// nested inside holes become polygons of their own.
func multiFromTree(tree *clipper.PolyTree) MultiPolygon {
	var out MultiPolygon
	var walk func(node *clipper.PolyNode)
	walk = func(node *clipper.PolyNode) {
		p := UVPolygon{Outer: ensureCCW(fromClipperPath(node.Contour()))}
		for _, child := range node.Childs() {
			hole := fromClipperPath(child.Contour())
			if geom.SignedArea(hole) > 0 {
				hole = reversed(hole)
			}
			p.Holes = append(p.Holes, hole)
			for _, island := range child.Childs() {
				walk(island)
			}
		}
		out.Polygons = append(out.Polygons, p)
	}
	for _, node := range tree.Childs() {
		walk(node)
	}
	return out
}

// simplifyRing resolves self-intersections by unioning the ring with itself
// on the integer grid. It succeeds only when the result is a single ring.
func simplifyRing(ring []geom.Point2) ([]geom.Point2, bool) {
	if len(ring) < 3 {
		return nil, false
	}
	c := clipper.NewClipper(clipper.IoNone)
	if !c.AddPath(toClipperPath(ring), clipper.PtSubject, true) {
		return nil, false
	}
	paths, ok := c.Execute1(clipper.CtUnion, clipper.PftEvenOdd, clipper.PftEvenOdd)
	if !ok || len(paths) != 1 {
		return nil, false
	}
	out := fromClipperPath(paths[0])
	if len(out) < 3 {
		return nil, false
	}
	return out, true
}

// MultiArea returns the total area of the multipolygon, holes subtracted.
func (m MultiPolygon) MultiArea() float64 {
	total := 0.0
	for _, p := range m.Polygons {
		total += math.Abs(geom.SignedArea(p.Outer))
		for _, h := range p.Holes {
			total -= math.Abs(geom.SignedArea(h))
		}
	}
	return total
}
