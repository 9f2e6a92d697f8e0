package curve

import (
	"fmt"
	"math"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// Spline2D is a rational B-spline (NURBS) curve in the plane, evaluated with
// de Boor's algorithm in homogeneous coordinates. Nil Knots selects a
// clamped uniform knot vector (uniform ascending when Closed); nil Weights
// means uniform weights.
type Spline2D struct {
	ControlPoints []geom.Point2
	Degree        int
	Knots         []float64
	Weights       []float64
	Closed        bool
}

// NewSpline2D validates the spline definition.
func NewSpline2D(ctrl []geom.Point2, degree int, knots, weights []float64, closed bool) (*Spline2D, error) {
	n := len(ctrl)
	if n < 2 {
		return nil, fmt.Errorf("spline needs at least 2 control points, got %d", n)
	}
	if degree < 1 {
		return nil, fmt.Errorf("spline degree must be >= 1, got %d", degree)
	}
	if degree >= n {
		return nil, fmt.Errorf("spline degree %d must be < control point count %d", degree, n)
	}
	if knots != nil && len(knots) != n+degree+1 {
		return nil, fmt.Errorf("knot count %d, want %d (control + degree + 1)", len(knots), n+degree+1)
	}
	if weights != nil && len(weights) != n {
		return nil, fmt.Errorf("weight count %d must equal control point count %d", len(weights), n)
	}
	return &Spline2D{
		ControlPoints: ctrl,
		Degree:        degree,
		Knots:         knots,
		Weights:       weights,
		Closed:        closed,
	}, nil
}

func (s *Spline2D) knotVector() []float64 {
	if s.Knots != nil {
		return s.Knots
	}
	n := len(s.ControlPoints)
	p := s.Degree
	if s.Closed {
		out := make([]float64, n+p+1)
		for i := range out {
			out[i] = float64(i)
		}
		return out
	}
	out := make([]float64, 0, n+p+1)
	for i := 0; i <= p; i++ {
		out = append(out, 0)
	}
	inner := n - p - 1
	if inner > 0 {
		step := 1.0 / float64(inner+1)
		for i := 1; i <= inner; i++ {
			out = append(out, step*float64(i))
		}
	}
	for i := 0; i <= p; i++ {
		out = append(out, 1)
	}
	return out
}

type homoPoint struct {
	x, y, w float64
}

func (s *Spline2D) weightedControl() []homoPoint {
	out := make([]homoPoint, len(s.ControlPoints))
	for i, p := range s.ControlPoints {
		w := 1.0
		if s.Weights != nil {
			w = s.Weights[i]
		}
		out[i] = homoPoint{x: p.X * w, y: p.Y * w, w: w}
	}
	return out
}

func findSpan(u float64, p int, knots []float64, nCtrl int) int {
	n := nCtrl - 1
	if u >= knots[n+1] {
		return n
	}
	if u <= knots[p] {
		return p
	}
	lo, hi := p, n+1
	mid := (lo + hi) / 2
	for u < knots[mid] || u >= knots[mid+1] {
		if u < knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
		mid = (lo + hi) / 2
	}
	return mid
}

func deBoorHomogeneous(u float64, p int, knots []float64, ctrl []homoPoint) homoPoint {
	k := findSpan(u, p, knots, len(ctrl))
	d := make([]homoPoint, p+1)
	for j := 0; j <= p; j++ {
		d[j] = ctrl[j+k-p]
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			i := j + k - p
			den := knots[i+p-r+1] - knots[i]
			alpha := 0.0
			if math.Abs(den) > tol.EpsPos {
				alpha = (u - knots[i]) / den
			}
			d[j] = homoPoint{
				x: (1-alpha)*d[j-1].x + alpha*d[j].x,
				y: (1-alpha)*d[j-1].y + alpha*d[j].y,
				w: (1-alpha)*d[j-1].w + alpha*d[j].w,
			}
		}
	}
	return d[p]
}

// Evaluate returns the curve point at parameter u, clamped to the spline's
// valid knot range.
func (s *Spline2D) Evaluate(u float64) (geom.Point2, error) {
	knots := s.knotVector()
	p := s.Degree
	uMin := knots[p]
	uMax := knots[len(s.ControlPoints)]
	uu := math.Min(math.Max(u, uMin), uMax)
	h := deBoorHomogeneous(uu, p, knots, s.weightedControl())
	if math.Abs(h.w) <= tol.EpsPos {
		return geom.Point2{}, fmt.Errorf("spline evaluation produced near-zero homogeneous weight at u=%g", uu)
	}
	return geom.Point2{X: h.x / h.w, Y: h.y / h.w}, nil
}

// ToPolyline samples the spline into a polyline, dropping consecutive
// duplicates. Closed splines are re-closed onto the first sample.
func (s *Spline2D) ToPolyline(samplesPerSpan int) ([]geom.Point2, error) {
	knots := s.knotVector()
	p := s.Degree
	u0 := knots[p]
	u1 := knots[len(s.ControlPoints)]
	if u1 <= u0+tol.EpsPos {
		return []geom.Point2{s.ControlPoints[0]}, nil
	}
	spans := len(s.ControlPoints) - p
	if spans < 1 {
		spans = 1
	}
	steps := samplesPerSpan * spans
	if steps < 8 {
		steps = 8
	}
	out := make([]geom.Point2, 0, steps+1)
	for i := 0; i <= steps; i++ {
		u := u0 + (u1-u0)*float64(i)/float64(steps)
		pt, err := s.Evaluate(u)
		if err != nil {
			return nil, err
		}
		if len(out) == 0 || pt.Dist(out[len(out)-1]) > tol.EpsPos {
			out = append(out, pt)
		}
	}
	if s.Closed && len(out) > 0 && out[len(out)-1].Dist(out[0]) > tol.EpsPos {
		out = append(out, out[0])
	}
	return out, nil
}
