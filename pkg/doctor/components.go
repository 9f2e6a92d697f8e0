package doctor

import "github.com/lumenworks/lumengeo/pkg/mesh"

// countVertexComponents counts connected components of the vertex adjacency
// graph induced by triangle edges. Isolated vertices referenced by no
// triangle do not participate.
func countVertexComponents(triangles []mesh.Triangle) int {
	if len(triangles) == 0 {
		return 0
	}
	adj := make(map[uint32][]uint32)
	addEdge := func(u, v uint32) {
		adj[u] = append(adj[u], v)
		adj[v] = append(adj[v], u)
	}
	order := make([]uint32, 0, len(triangles))
	seenVert := make(map[uint32]struct{})
	note := func(v uint32) {
		if _, ok := seenVert[v]; !ok {
			seenVert[v] = struct{}{}
			order = append(order, v)
		}
	}
	for _, t := range triangles {
		addEdge(t[0], t[1])
		addEdge(t[1], t[2])
		addEdge(t[2], t[0])
		note(t[0])
		note(t[1])
		note(t[2])
	}

	visited := make(map[uint32]struct{}, len(adj))
	comps := 0
	for _, start := range order {
		if _, ok := visited[start]; ok {
			continue
		}
		comps++
		stack := []uint32{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := visited[cur]; ok {
				continue
			}
			visited[cur] = struct{}{}
			stack = append(stack, adj[cur]...)
		}
	}
	return comps
}

// SplitConnectedComponents groups triangles into edge-connected components.
// Triangle order within a component follows depth-first discovery, so the
// grouping is deterministic for identical input order.
func SplitConnectedComponents(triangles []mesh.Triangle) [][]mesh.Triangle {
	if len(triangles) == 0 {
		return nil
	}
	triEdges := make([][3]mesh.Edge, len(triangles))
	edgeToTris := make(map[mesh.Edge][]int)
	for i, t := range triangles {
		triEdges[i] = [3]mesh.Edge{
			mesh.NewEdge(t[0], t[1]),
			mesh.NewEdge(t[1], t[2]),
			mesh.NewEdge(t[2], t[0]),
		}
		for _, e := range triEdges[i] {
			edgeToTris[e] = append(edgeToTris[e], i)
		}
	}

	visited := make([]bool, len(triangles))
	var out [][]mesh.Triangle
	for i := range triangles {
		if visited[i] {
			continue
		}
		stack := []int{i}
		var comp []mesh.Triangle
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			comp = append(comp, triangles[cur])
			for _, e := range triEdges[cur] {
				for _, other := range edgeToTris[e] {
					if !visited[other] {
						stack = append(stack, other)
					}
				}
			}
		}
		out = append(out, comp)
	}
	return out
}
