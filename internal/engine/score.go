package engine

import "math"

// mstMeters approximates a minimum spanning tree over the depot plus the
// visited nodes with an O(n²) Prim construction: repeatedly attach the
// cheapest unvisited node to the growing tree. The MST weight is a loose
// lower bound on any tour that must touch every node.
func mstMeters(dist [][]int, visited []int) int {
	nodes := append([]int{0}, visited...)
	n := len(nodes)
	if n < 2 {
		return 0
	}
	inTree := make([]bool, n)
	best := make([]int, n)
	for i := range best {
		best[i] = math.MaxInt
	}
	inTree[0] = true
	for i := 1; i < n; i++ {
		best[i] = dist[nodes[0]][nodes[i]]
	}

	total := 0
	for added := 1; added < n; added++ {
		next, nextCost := -1, math.MaxInt
		for i := 1; i < n; i++ {
			if !inTree[i] && best[i] < nextCost {
				next, nextCost = i, best[i]
			}
		}
		if next < 0 {
			break
		}
		inTree[next] = true
		total += nextCost
		for i := 1; i < n; i++ {
			if !inTree[i] && dist[nodes[next]][nodes[i]] < best[i] {
				best[i] = dist[nodes[next]][nodes[i]]
			}
		}
	}
	return total
}

// Score rates total route distance against the MST lower bound on a 0-100
// scale. A route set close to the bound scores near 100; zero distance (no
// deliveries) scores 0. The formula is a policy choice carried over from the
// dispatch dashboards, not a true optimality gap.
func Score(mst, totalMeters int) float64 {
	if totalMeters == 0 {
		return 0
	}
	s := float64(mst) / float64(totalMeters) * 100
	if s > 100 {
		s = 100
	}
	return round2(s)
}
