package csg

import (
	"errors"
	"fmt"
	"math"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/poly"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// ErrorCode classifies why a CSG evaluation could not produce solids.
type ErrorCode string

const (
	CodeEmpty              ErrorCode = "empty"
	CodeDegenerate         ErrorCode = "degenerate"
	CodeInvalid            ErrorCode = "invalid"
	CodeUnsupportedHole    ErrorCode = "unsupported_hole"
	CodeUnsupported        ErrorCode = "unsupported"
	CodeInvalidOp          ErrorCode = "invalid_op"
	CodeBackendUnavailable ErrorCode = "backend_unavailable"
)

// Error is the typed failure CSG evaluation returns. Callers branch on
// Code.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("csg %s: %s", e.Code, e.Message)
}

func csgError(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the typed code from a CSG error chain, or "" when the
// error is not a CSG error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ExtrusionSolid is a simple polygon swept along Z from Z0 to Z1.
type ExtrusionSolid struct {
	Profile []geom.Point2
	Z0, Z1  float64
}

// ToSolidNode renders the extrusion back into a tree leaf.
func (e ExtrusionSolid) ToSolidNode() SolidNode {
	return SolidNode{
		Kind: SolidExtrusion,
		Params: map[string]any{
			"profile": append([]geom.Point2(nil), e.Profile...),
			"z0":      e.Z0,
			"z1":      e.Z1,
		},
	}
}

// solidToExtrusion decodes an extrusion leaf. Z bounds are normalized so
// Z0 <= Z1; a "height" param substitutes for a missing "z1".
func solidToExtrusion(s SolidNode) (ExtrusionSolid, error) {
	if s.Kind != SolidExtrusion {
		return ExtrusionSolid{}, csgError(CodeUnsupported, "unsupported solid kind: %s", s.Kind)
	}
	profile := paramProfile(s.Params)
	z0, _ := paramFloat(s.Params, "z0", 0)
	z1, hasZ1 := paramFloat(s.Params, "z1", 0)
	if !hasZ1 {
		h, _ := paramFloat(s.Params, "height", 0)
		z1 = z0 + h
	}
	if z1 < z0 {
		z0, z1 = z1, z0
	}
	return ExtrusionSolid{Profile: profile, Z0: z0, Z1: z1}, nil
}

// Eval reduces a CSG expression to a flat list of extrusion solids. Binary
// operations require each side to reduce to exactly one solid; anything
// else is reported with a typed error code rather than a partial result.
func Eval(expr Expr) ([]SolidNode, error) {
	switch node := expr.(type) {
	case SolidNode:
		return []SolidNode{node}, nil
	case Node:
		left, err := Eval(node.A)
		if err != nil {
			return nil, err
		}
		right, err := Eval(node.B)
		if err != nil {
			return nil, err
		}
		if len(left) != 1 || len(right) != 1 {
			return nil, csgError(CodeUnsupported, "binary ops require single solids on both sides, got %d and %d", len(left), len(right))
		}
		a, err := solidToExtrusion(left[0])
		if err != nil {
			return nil, err
		}
		b, err := solidToExtrusion(right[0])
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case OpDiff:
			return extrusionDiff(a, b)
		case OpUnion:
			return extrusionUnion(a, b)
		case OpIsect:
			return extrusionIsect(a, b)
		default:
			return nil, csgError(CodeInvalidOp, "unsupported op: %s", node.Op)
		}
	default:
		return nil, csgError(CodeInvalid, "unknown expression type %T", expr)
	}
}

// extrusionDiff subtracts B from A. A cut outside A's Z interval leaves A
// untouched; a cut that carves a cavity is rejected because a hole cannot
// be represented as a simple extrusion profile.
func extrusionDiff(a, b ExtrusionSolid) ([]SolidNode, error) {
	if a.Z1-a.Z0 <= tol.EpsPos {
		return nil, csgError(CodeDegenerate, "minuend extrusion has zero height")
	}
	if b.Z1-b.Z0 <= tol.EpsPos {
		return []SolidNode{a.ToSolidNode()}, nil
	}
	if math.Min(a.Z1, b.Z1)-math.Max(a.Z0, b.Z0) <= tol.EpsPos {
		return []SolidNode{a.ToSolidNode()}, nil
	}

	// Axis-aligned rectangular cuts partition into simple hole-free pieces,
	// so an interior cut stays representable as extrusions.
	if parts, ok := poly.SubtractRectCuts(a.Profile, [][]geom.Point2{b.Profile}, tol.EpsPlane); ok {
		return solidsFromFootprints(parts, a.Z0, a.Z1)
	}

	cut, err := poly.SubtractWithHoles(poly.UVPolygon{Outer: a.Profile}, [][]geom.Point2{b.Profile})
	if err != nil {
		return nil, csgError(CodeBackendUnavailable, "2d boolean backend: %v", err)
	}
	if len(cut.Polygons) == 0 {
		return nil, csgError(CodeEmpty, "difference removes the entire solid")
	}
	var out []SolidNode
	for _, p := range cut.Polygons {
		if len(p.Holes) > 0 {
			return nil, csgError(CodeUnsupportedHole, "difference produced a hole not representable as an extrusion")
		}
		if len(p.Outer) < 3 || math.Abs(geom.SignedArea(p.Outer)) <= tol.EpsArea {
			continue
		}
		out = append(out, ExtrusionSolid{Profile: p.Outer, Z0: a.Z0, Z1: a.Z1}.ToSolidNode())
	}
	if len(out) == 0 {
		return nil, csgError(CodeInvalid, "difference produced no valid solids")
	}
	return out, nil
}

// solidsFromFootprints turns hole-free difference pieces into extrusion
// solids over the given Z interval, dropping degenerate slivers.
func solidsFromFootprints(parts poly.MultiPolygon, z0, z1 float64) ([]SolidNode, error) {
	if len(parts.Polygons) == 0 {
		return nil, csgError(CodeEmpty, "difference removes the entire solid")
	}
	var out []SolidNode
	for _, p := range parts.Polygons {
		if len(p.Outer) < 3 || math.Abs(geom.SignedArea(p.Outer)) <= tol.EpsArea {
			continue
		}
		out = append(out, ExtrusionSolid{Profile: p.Outer, Z0: z0, Z1: z1}.ToSolidNode())
	}
	if len(out) == 0 {
		return nil, csgError(CodeInvalid, "difference produced no valid solids")
	}
	return out, nil
}

// extrusionUnion keeps both operands. A union that happens to be a single
// simple extrusion is not detected; downstream meshing merges the parts.
func extrusionUnion(a, b ExtrusionSolid) ([]SolidNode, error) {
	return []SolidNode{a.ToSolidNode(), b.ToSolidNode()}, nil
}

// extrusionIsect intersects the Z intervals and the 2D profiles. The
// profile overlap must be a single simple polygon.
func extrusionIsect(a, b ExtrusionSolid) ([]SolidNode, error) {
	z0 := math.Max(a.Z0, b.Z0)
	z1 := math.Min(a.Z1, b.Z1)
	if z1-z0 <= tol.EpsPos {
		return nil, csgError(CodeEmpty, "no Z overlap")
	}
	overlap, err := poly.Intersect(a.Profile, b.Profile)
	if err != nil {
		return nil, csgError(CodeBackendUnavailable, "2d boolean backend: %v", err)
	}
	if len(overlap.Polygons) == 0 {
		return nil, csgError(CodeEmpty, "no XY overlap")
	}
	outer := overlap.Polygons[0].Outer
	if len(outer) < 3 || math.Abs(geom.SignedArea(outer)) <= tol.EpsArea {
		return nil, csgError(CodeInvalid, "invalid intersection profile")
	}
	return []SolidNode{ExtrusionSolid{Profile: outer, Z0: z0, Z1: z1}.ToSolidNode()}, nil
}
