package surface

import (
	"fmt"
	"math"

	"github.com/lumenworks/lumengeo/pkg/geom"
	"github.com/lumenworks/lumengeo/pkg/tol"
)

// maxLoopWalk bounds the boundary walk so a corrupt edge soup cannot spin
// forever.
const maxLoopWalk = 10000

// planeKey quantizes a surface's plane (Newell normal plus signed offset)
// so coplanar surfaces within the angular and distance tolerances land in
// the same bucket.
func planeKey(s SurfaceSpec, angleTolDeg, distTol float64) [4]int64 {
	n := geom.NewellNormal(s.Vertices)
	if n.Length() < tol.EpsPos {
		n = geom.Vector3{Z: 1}
	}
	var p0 geom.Point3
	if len(s.Vertices) > 0 {
		p0 = s.Vertices[0]
	}
	d := -n.Dot(p0)
	sin := math.Max(tol.EpsAng, math.Sin(angleTolDeg*math.Pi/180))
	return [4]int64{
		int64(math.Round(n.X / sin)),
		int64(math.Round(n.Y / sin)),
		int64(math.Round(n.Z / sin)),
		int64(math.Round(d / math.Max(distTol, tol.EpsAng))),
	}
}

type quantKey [2]int64

func quant2(p geom.Point2, eps float64) quantKey {
	inv := 1.0 / math.Max(eps, tol.EpsPos)
	return quantKey{int64(math.Round(p.X * inv)), int64(math.Round(p.Y * inv))}
}

func lessQuant(a, b quantKey) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

type directedEdge struct{ a, b quantKey }

// extractBoundaryLoops cancels interior edges shared by two polygons and
// walks the remaining directed boundary edges into closed loops. Multiple
// loops mean openings or holes; they are preserved as separate loops, not
// discarded. Loops below the area tolerance are dropped.
func extractBoundaryLoops(polygons [][]geom.Point2, eps float64) ([][]geom.Point2, []string) {
	var warnings []string
	rep := make(map[quantKey]geom.Point2)
	edgeCount := make(map[directedEdge]int)
	var directed []directedEdge

	for _, poly := range polygons {
		if len(poly) < 3 {
			continue
		}
		qpoly := make([]quantKey, len(poly))
		for i, p := range poly {
			qpoly[i] = quant2(p, eps)
			if _, ok := rep[qpoly[i]]; !ok {
				rep[qpoly[i]] = p
			}
		}
		for i := range qpoly {
			a, b := qpoly[i], qpoly[(i+1)%len(qpoly)]
			if a == b {
				continue
			}
			edgeCount[undirected(a, b)]++
			directed = append(directed, directedEdge{a, b})
		}
	}

	var boundary []directedEdge
	outgoing := make(map[quantKey][]quantKey)
	for _, e := range directed {
		if edgeCount[undirected(e.a, e.b)] == 1 {
			boundary = append(boundary, e)
			outgoing[e.a] = append(outgoing[e.a], e.b)
		}
	}

	used := make(map[directedEdge]bool)
	var loops [][]geom.Point2
	for _, start := range boundary {
		if used[start] {
			continue
		}
		loopq := []quantKey{start.a}
		cur := start
		used[cur] = true
		for safety := 0; safety < maxLoopWalk; safety++ {
			loopq = append(loopq, cur.b)
			if cur.b == loopq[0] {
				break
			}
			next, ok := nextUnused(outgoing[cur.b], cur.b, used)
			if !ok {
				break
			}
			used[directedEdge{cur.b, next}] = true
			cur = directedEdge{cur.b, next}
		}
		if len(loopq) >= 4 && loopq[0] == loopq[len(loopq)-1] {
			loop := make([]geom.Point2, 0, len(loopq)-1)
			for _, q := range loopq[:len(loopq)-1] {
				loop = append(loop, rep[q])
			}
			loops = append(loops, loop)
		}
	}

	if len(loops) > 1 {
		warnings = append(warnings, "multiple boundary loops detected; openings preserved as separate loops")
	}
	kept := loops[:0]
	for _, lp := range loops {
		if math.Abs(geom.SignedArea(lp)) > tol.EpsArea {
			kept = append(kept, lp)
		}
	}
	return kept, warnings
}

func undirected(a, b quantKey) directedEdge {
	if lessQuant(a, b) {
		return directedEdge{a, b}
	}
	return directedEdge{b, a}
}

// nextUnused picks the lexicographically first unvisited outgoing edge so
// the walk is deterministic regardless of insertion order.
func nextUnused(candidates []quantKey, from quantKey, used map[directedEdge]bool) (quantKey, bool) {
	var best quantKey
	found := false
	for _, n := range candidates {
		if used[directedEdge{from, n}] {
			continue
		}
		if !found || lessQuant(n, best) {
			best = n
			found = true
		}
	}
	return best, found
}

// MergeCoplanarSurfaces merges surfaces that share a room tag, a material
// tag, and a quantized plane. Shared interior edges cancel, so cutouts come
// back as separate surfaces instead of being swallowed. The first surface of
// each group keeps its identity; extra loops get derived ids.
func MergeCoplanarSurfaces(surfaces []SurfaceSpec, angleTolDeg, distTol float64) []SurfaceSpec {
	type groupKey struct {
		room, material string
		plane          [4]int64
	}
	groups := make(map[groupKey][]SurfaceSpec)
	var order []groupKey
	for _, s := range surfaces {
		if len(s.Vertices) < 3 {
			continue
		}
		key := groupKey{room: s.RoomID, material: s.MaterialID, plane: planeKey(s, angleTolDeg, distTol)}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}

	var merged []SurfaceSpec
	consumed := make(map[string]bool)
	for _, key := range order {
		grp := groups[key]
		if len(grp) == 1 {
			merged = append(merged, grp[0])
			consumed[grp[0].ID] = true
			continue
		}
		n := geom.NewellNormal(grp[0].Vertices)
		origin := grp[0].Vertices[0]
		u, v := geom.PlaneBasis(n)
		var polys2D [][]geom.Point2
		for _, s := range grp {
			consumed[s.ID] = true
			poly := make([]geom.Point2, 0, len(s.Vertices))
			for _, p := range s.Vertices {
				rel := p.Sub(origin)
				poly = append(poly, geom.Point2{X: rel.Dot(u), Y: rel.Dot(v)})
			}
			if len(poly) >= 3 {
				polys2D = append(polys2D, poly)
			}
		}
		loops, _ := extractBoundaryLoops(polys2D, math.Max(distTol*0.5, tol.EpsWeld))
		if len(loops) == 0 {
			merged = append(merged, grp...)
			continue
		}
		first := grp[0]
		for li, loop := range loops {
			verts := make([]geom.Point3, 0, len(loop))
			for _, xy := range loop {
				verts = append(verts, origin.Add(u.Scale(xy.X)).Add(v.Scale(xy.Y)))
			}
			id := first.ID
			name := first.Name
			if li > 0 {
				id = DerivedID(first.ID, "merged_loop", map[string]any{
					"loop_index":   li,
					"vertex_count": len(verts),
					"vertices":     verts,
				})
				name = fmt.Sprintf("%s (Loop %d)", first.Name, li+1)
			}
			nc := n
			merged = append(merged, SurfaceSpec{
				ID:         id,
				Name:       name,
				Kind:       first.Kind,
				Vertices:   verts,
				Normal:     &nc,
				RoomID:     first.RoomID,
				MaterialID: first.MaterialID,
			})
		}
	}

	for _, s := range surfaces {
		if !consumed[s.ID] {
			merged = append(merged, s)
		}
	}
	return merged
}
