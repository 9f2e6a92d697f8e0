package doctor

import (
	"sort"

	"github.com/lumenworks/lumengeo"
	"github.com/lumenworks/lumengeo/pkg/mesh"
)

// maxLoopWalk caps every boundary-loop walk so malformed topology cannot
// spin the walk forever.
const maxLoopWalk = 10000

// BoundaryLoops extracts closed vertex loops from the open edges of the
// triangle set. Each walk starts at the first unused boundary edge and
// repeatedly follows the lexicographically smallest neighbor reachable over
// an unvisited boundary edge; a walk that returns to its start vertex yields
// a loop, a walk that dead-ends is discarded.
func BoundaryLoops(triangles []mesh.Triangle) [][]uint32 {
	boundary := mesh.DetectOpenEdges(triangles)
	if len(boundary) == 0 {
		return nil
	}
	neighbors := make(map[uint32][]uint32)
	for _, e := range boundary {
		neighbors[e.A] = append(neighbors[e.A], e.B)
		neighbors[e.B] = append(neighbors[e.B], e.A)
	}
	for _, ns := range neighbors {
		sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
	}

	visited := make(map[mesh.Edge]struct{}, len(boundary))
	var loops [][]uint32
	for _, start := range boundary {
		if _, ok := visited[start]; ok {
			continue
		}
		loop := []uint32{start.A, start.B}
		visited[start] = struct{}{}
		cur := start.B
		for steps := 0; ; steps++ {
			if steps >= maxLoopWalk {
				lumengeo.Logger().Warn("boundary loop walk hit safety cap",
					"cap", maxLoopWalk, "loop_len", len(loop))
				break
			}
			next, ok := nextUnvisited(neighbors[cur], cur, visited)
			if !ok {
				break
			}
			visited[mesh.NewEdge(cur, next)] = struct{}{}
			if next == loop[0] {
				loops = append(loops, loop)
				break
			}
			loop = append(loop, next)
			cur = next
		}
	}
	return loops
}

// nextUnvisited returns the smallest neighbor of cur whose connecting
// boundary edge has not been walked yet. Neighbor lists are pre-sorted.
func nextUnvisited(candidates []uint32, cur uint32, visited map[mesh.Edge]struct{}) (uint32, bool) {
	for _, n := range candidates {
		if _, seen := visited[mesh.NewEdge(cur, n)]; !seen {
			return n, true
		}
	}
	return 0, false
}

// fillSmallHoles closes boundary loops of at most maxLoopLen vertices with a
// triangle fan from the loop's first vertex. Only triangular holes qualify
// at the default; larger holes are left for explicit remeshing.
func fillSmallHoles(triangles []mesh.Triangle, maxLoopLen int) []mesh.Triangle {
	out := append([]mesh.Triangle(nil), triangles...)
	for _, loop := range BoundaryLoops(triangles) {
		if len(loop) < 3 || len(loop) > maxLoopLen {
			continue
		}
		for i := 1; i < len(loop)-1; i++ {
			out = append(out, mesh.Triangle{loop[0], loop[i], loop[i+1]})
		}
	}
	return out
}
