// Package csg evaluates constructive solid geometry trees over extrusion
// solids. Binary operations reduce to 2D profile booleans over a shared Z
// interval; results that cannot be represented as simple extrusions come
// back as typed errors instead of approximations.
package csg

import (
	"fmt"

	"github.com/lumenworks/lumengeo/pkg/geom"
)

// Expr is a CSG expression: either a SolidNode leaf or a Node operation.
type Expr interface {
	exprNode()
	// ToMap renders the expression as a plain map for serialization; FromMap
	// reverses it losslessly.
	ToMap() map[string]any
}

// SolidKind tags what a SolidNode leaf holds.
type SolidKind string

const (
	SolidExtrusion SolidKind = "extrusion"
	SolidMesh      SolidKind = "mesh"
	SolidPrimitive SolidKind = "primitive"
)

// SolidNode is a CSG leaf. Params carries the kind-specific payload; for
// extrusions that is "profile", "z0" and "z1" (or "height").
type SolidNode struct {
	Kind   SolidKind
	Params map[string]any
}

func (SolidNode) exprNode() {}

func (s SolidNode) ToMap() map[string]any {
	params := make(map[string]any, len(s.Params))
	for k, v := range s.Params {
		params[k] = v
	}
	return map[string]any{"type": "solid", "kind": string(s.Kind), "params": params}
}

// Op is a binary CSG operation.
type Op string

const (
	OpUnion Op = "union"
	OpDiff  Op = "diff"
	OpIsect Op = "isect"
)

// Node applies a binary operation to two subexpressions.
type Node struct {
	Op   Op
	A, B Expr
}

func (Node) exprNode() {}

func (n Node) ToMap() map[string]any {
	return map[string]any{
		"type": "csg",
		"op":   string(n.Op),
		"A":    n.A.ToMap(),
		"B":    n.B.ToMap(),
	}
}

// FromMap rebuilds an expression from its ToMap rendering. It also accepts
// maps decoded from JSON, where numbers are float64 and point lists are
// nested []any.
func FromMap(payload map[string]any) (Expr, error) {
	switch t, _ := payload["type"].(string); t {
	case "solid":
		kind, _ := payload["kind"].(string)
		if kind == "" {
			return nil, fmt.Errorf("solid node missing kind")
		}
		params := map[string]any{}
		if p, ok := payload["params"].(map[string]any); ok {
			for k, v := range p {
				params[k] = v
			}
		}
		return SolidNode{Kind: SolidKind(kind), Params: params}, nil
	case "csg":
		op, _ := payload["op"].(string)
		if op == "" {
			return nil, fmt.Errorf("csg node missing op")
		}
		a, ok := payload["A"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("csg node missing A")
		}
		b, ok := payload["B"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("csg node missing B")
		}
		left, err := FromMap(a)
		if err != nil {
			return nil, err
		}
		right, err := FromMap(b)
		if err != nil {
			return nil, err
		}
		return Node{Op: Op(op), A: left, B: right}, nil
	default:
		return nil, fmt.Errorf("invalid csg payload type %q", payload["type"])
	}
}

// NewExtrusionNode builds an extrusion leaf from a profile, base Z, and
// height.
func NewExtrusionNode(profile []geom.Point2, z0, height float64) SolidNode {
	return SolidNode{
		Kind: SolidExtrusion,
		Params: map[string]any{
			"profile": append([]geom.Point2(nil), profile...),
			"z0":      z0,
			"z1":      z0 + height,
		},
	}
}

// paramFloat reads a numeric param that may be float64 or int after decode.
func paramFloat(params map[string]any, key string, fallback float64) (float64, bool) {
	v, ok := params[key]
	if !ok {
		return fallback, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return fallback, false
	}
}

// paramProfile reads a profile param in any of its representations: the
// native []geom.Point2, or the []any nesting JSON decoding produces.
func paramProfile(params map[string]any) []geom.Point2 {
	v, ok := params["profile"]
	if !ok {
		return nil
	}
	switch pts := v.(type) {
	case []geom.Point2:
		return pts
	case [][2]float64:
		out := make([]geom.Point2, len(pts))
		for i, p := range pts {
			out[i] = geom.Point2{X: p[0], Y: p[1]}
		}
		return out
	case []any:
		out := make([]geom.Point2, 0, len(pts))
		for _, raw := range pts {
			pair, ok := raw.([]any)
			if !ok || len(pair) != 2 {
				return nil
			}
			x, xok := pair[0].(float64)
			y, yok := pair[1].(float64)
			if !xok || !yok {
				return nil
			}
			out = append(out, geom.Point2{X: x, Y: y})
		}
		return out
	default:
		return nil
	}
}
