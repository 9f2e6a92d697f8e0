package curve

import (
	"fmt"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// Part is a polycurve piece: a Segment2D or an Arc.
type Part interface {
	partEndpoints() (start, end geom.Point2)
}

func (s Segment2D) partEndpoints() (geom.Point2, geom.Point2) { return s.A, s.B }
func (a Arc) partEndpoints() (geom.Point2, geom.Point2)       { return a.StartPoint(), a.EndPoint() }

var (
	_ Part = Segment2D{}
	_ Part = Arc{}
)

// PolyCurve is an ordered run of segments and arcs.
type PolyCurve struct {
	Parts []Part
}

// continuityTol is the end-to-start gap allowed between consecutive parts.
const continuityTol = 1e-5

// NewPolyCurve builds a polycurve, checking that consecutive parts connect
// end-to-start and, when closed, that the last part connects back to the
// first.
func NewPolyCurve(parts []Part, closed bool) (PolyCurve, error) {
	for i := 0; i+1 < len(parts); i++ {
		_, end := parts[i].partEndpoints()
		start, _ := parts[i+1].partEndpoints()
		if end.Dist(start) > continuityTol {
			return PolyCurve{}, fmt.Errorf("polycurve parts %d and %d are not end-to-start continuous", i, i+1)
		}
	}
	if closed && len(parts) > 0 {
		_, end := parts[len(parts)-1].partEndpoints()
		start, _ := parts[0].partEndpoints()
		if end.Dist(start) > continuityTol {
			return PolyCurve{}, fmt.Errorf("closed polycurve must connect end-to-start")
		}
	}
	return PolyCurve{Parts: parts}, nil
}

// PolyCurveFromPolyline lifts a point chain into a polycurve of segments.
func PolyCurveFromPolyline(points []geom.Point2, closed bool) PolyCurve {
	if len(points) < 2 {
		return PolyCurve{}
	}
	parts := make([]Part, 0, len(points))
	for i := 0; i+1 < len(points); i++ {
		parts = append(parts, Segment2D{A: points[i], B: points[i+1]})
	}
	if closed {
		parts = append(parts, Segment2D{A: points[len(points)-1], B: points[0]})
	}
	return PolyCurve{Parts: parts}
}

// Intersections returns every crossing between the two polycurves' parts,
// clustered at the weld tolerance so crossings at part joints count once.
func (pc PolyCurve) Intersections(other PolyCurve) []geom.Point2 {
	return PartIntersections(pc.Parts, other.Parts, tol.EpsWeld)
}

// PartIntersections intersects every part of a against every part of b and
// clusters the results at eps.
func PartIntersections(a, b []Part, eps float64) []geom.Point2 {
	var raw []geom.Point2
	for _, pa := range a {
		for _, pb := range b {
			raw = append(raw, partPairIntersections(pa, pb, eps)...)
		}
	}
	return ClusterPoints(raw, eps)
}

func partPairIntersections(a, b Part, eps float64) []geom.Point2 {
	switch av := a.(type) {
	case Segment2D:
		switch bv := b.(type) {
		case Segment2D:
			return SegmentIntersections(av, bv, eps)
		case Arc:
			return bv.SegmentIntersections(av.A, av.B, eps)
		}
	case Arc:
		switch bv := b.(type) {
		case Segment2D:
			return av.SegmentIntersections(bv.A, bv.B, eps)
		case Arc:
			return av.ArcIntersections(bv, eps)
		}
	}
	return nil
}
