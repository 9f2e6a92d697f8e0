package poly

import (
	"fmt"
	"math"

	clipper "github.com/ctessum/go.clipper"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// OffsetFailureCode classifies why a polygon offset produced no usable
// polygon. Callers branch on the code, not the message.
type OffsetFailureCode string

const (
	OffsetInvalidInput OffsetFailureCode = "invalid_input"
	OffsetEmpty        OffsetFailureCode = "empty"
	OffsetSplit        OffsetFailureCode = "split"
	OffsetNonSimple    OffsetFailureCode = "non_simple"
	OffsetDegenerate   OffsetFailureCode = "degenerate"
	OffsetInvalid      OffsetFailureCode = "invalid"
)

// OffsetFailure is the typed failure carried by a non-ok OffsetResult.
type OffsetFailure struct {
	Code    OffsetFailureCode
	Message string
}

func (f *OffsetFailure) Error() string {
	return fmt.Sprintf("offset failed (%s): %s", f.Code, f.Message)
}

// OffsetResult reports an offset outcome. Exactly one of Polygon (when OK)
// or Failure (when not) is meaningful.
type OffsetResult struct {
	OK      bool
	Polygon Polygon2D
	Failure *OffsetFailure
}

func offsetFailure(code OffsetFailureCode, format string, args ...any) OffsetResult {
	return OffsetResult{Failure: &OffsetFailure{Code: code, Message: fmt.Sprintf(format, args...)}}
}

// OffsetPolygon grows (positive distance) or shrinks (negative distance) a
// simple polygon with round joins. The result must again be a single simple
// polygon; shrinks that split the shape or grows that capture a hole are
// reported as typed failures rather than silently picking a part.
func OffsetPolygon(p Polygon2D, distance float64) OffsetResult {
	if len(p.Points) < 3 {
		return offsetFailure(OffsetInvalidInput, "polygon has %d points, need at least 3", len(p.Points))
	}
	if report := ValidatePolygonWithHoles(p.Points, nil); !report.Valid {
		return offsetFailure(OffsetInvalidInput, "polygon is not simple: %d self-intersections", report.SelfIntersections)
	}
	if distance == 0 {
		return OffsetResult{OK: true, Polygon: p}
	}

	co := clipper.NewClipperOffset()
	co.AddPath(toClipperPath(ensureCCW(p.Points)), clipper.JtRound, clipper.EtClosedPolygon)
	solution := co.Execute(distance * clipperScale)
	if len(solution) == 0 {
		return offsetFailure(OffsetEmpty, "offset by %g consumed the polygon", distance)
	}

	var outers, holes []clipper.Path
	for _, path := range solution {
		if clipper.Orientation(path) {
			outers = append(outers, path)
		} else {
			holes = append(holes, path)
		}
	}
	if len(holes) > 0 {
		return offsetFailure(OffsetNonSimple, "offset by %g produced %d hole(s)", distance, len(holes))
	}
	if len(outers) > 1 {
		return offsetFailure(OffsetSplit, "offset by %g split the polygon into %d parts", distance, len(outers))
	}

	points := fromClipperPath(outers[0])
	if len(points) < 3 {
		return offsetFailure(OffsetDegenerate, "offset result collapsed to %d points", len(points))
	}
	if math.Abs(geom.SignedArea(points)) <= tol.EpsPos {
		return offsetFailure(OffsetDegenerate, "offset result has near-zero area")
	}
	if report := ValidatePolygonWithHoles(points, nil); !report.Valid {
		return offsetFailure(OffsetInvalid, "offset result is not simple: %d self-intersections", report.SelfIntersections)
	}
	return OffsetResult{OK: true, Polygon: Polygon2D{Points: ensureCCW(points)}}
}
