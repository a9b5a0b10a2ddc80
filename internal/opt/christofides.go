package opt

import (
	"math"
	"sort"
)

// constructChristofides builds a single tour over depot and stops with the
// Christofides steps (minimum spanning tree, greedy matching of odd-degree
// vertices, Euler circuit, shortcutting) and splits it into vehicle routes.
// Asymmetric matrices are symmetrized by averaging both directions.
func constructChristofides(p *Problem) (*builder, []int) {
	b := newBuilder(p)
	n := p.Size()
	if n < 2 {
		return b, nil
	}
	w := func(i, j int) float64 { return (p.matrix[i][j] + p.matrix[j][i]) / 2 }

	edges := minimumSpanningTree(n, p.depot, w)
	degree := make([]int, n)
	for _, e := range edges {
		degree[e[0]]++
		degree[e[1]]++
	}
	var odd []int
	for v, d := range degree {
		if d%2 == 1 {
			odd = append(odd, v)
		}
	}
	edges = append(edges, greedyMatching(odd, w)...)

	circuit := eulerCircuit(n, p.depot, edges)
	seen := make([]bool, n)
	seen[p.depot] = true
	order := make([]int, 0, n-1)
	for _, v := range circuit {
		if !seen[v] {
			seen[v] = true
			order = append(order, v)
		}
	}
	return b, b.fillInOrder(order)
}

// minimumSpanningTree runs Prim's algorithm on the complete graph over n vertices.
func minimumSpanningTree(n, root int, w func(i, j int) float64) [][2]int {
	inTree := make([]bool, n)
	best := make([]float64, n)
	parent := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
		parent[i] = -1
	}
	best[root] = 0
	edges := make([][2]int, 0, n-1)
	for k := 0; k < n; k++ {
		u := -1
		for v := 0; v < n; v++ {
			if !inTree[v] && (u < 0 || best[v] < best[u]) {
				u = v
			}
		}
		inTree[u] = true
		if parent[u] >= 0 {
			edges = append(edges, [2]int{parent[u], u})
		}
		for v := 0; v < n; v++ {
			if !inTree[v] {
				if d := w(u, v); d < best[v] {
					best[v], parent[v] = d, u
				}
			}
		}
	}
	return edges
}

// greedyMatching pairs odd vertices by ascending edge weight.
func greedyMatching(odd []int, w func(i, j int) float64) [][2]int {
	type pair struct {
		a, b int
		d    float64
	}
	var pairs []pair
	for i := 0; i < len(odd); i++ {
		for j := i + 1; j < len(odd); j++ {
			pairs = append(pairs, pair{odd[i], odd[j], w(odd[i], odd[j])})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].d < pairs[j].d })
	matched := map[int]bool{}
	var out [][2]int
	for _, pr := range pairs {
		if matched[pr.a] || matched[pr.b] {
			continue
		}
		matched[pr.a], matched[pr.b] = true, true
		out = append(out, [2]int{pr.a, pr.b})
	}
	return out
}

// eulerCircuit walks every edge of the connected even-degree multigraph once
// (Hierholzer) starting at start.
func eulerCircuit(n, start int, edges [][2]int) []int {
	adj := make([][]int, n)
	for id, e := range edges {
		adj[e[0]] = append(adj[e[0]], id)
		adj[e[1]] = append(adj[e[1]], id)
	}
	used := make([]bool, len(edges))
	next := make([]int, n)
	stack := []int{start}
	var circuit []int
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		for next[u] < len(adj[u]) && used[adj[u][next[u]]] {
			next[u]++
		}
		if next[u] == len(adj[u]) {
			circuit = append(circuit, u)
			stack = stack[:len(stack)-1]
			continue
		}
		id := adj[u][next[u]]
		used[id] = true
		e := edges[id]
		v := e[0]
		if v == u {
			v = e[1]
		}
		stack = append(stack, v)
	}
	for i, j := 0, len(circuit)-1; i < j; i, j = i+1, j-1 {
		circuit[i], circuit[j] = circuit[j], circuit[i]
	}
	return circuit
}
