package solver

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// LocalSearch is the default Router: a cheapest-insertion first solution
// improved by a bounded removal/reinsertion local search with
// simulated-annealing acceptance. The time budget is a hard cutoff; the best
// solution found so far is returned when it expires.
type LocalSearch struct{}

const (
	unassignedPenaltyM = 5_000_000 // meters-equivalent penalty per unplaced node
	defaultBudget      = 30 * time.Second
	initialTemp        = 1000.0
	cooling            = 0.995
	progressEvery      = 25
)

type state struct {
	routes     [][]int // per vehicle, node indices
	unassigned []int
	cost       float64
}

func (LocalSearch) Solve(ctx context.Context, p Problem) (Solution, error) {
	if err := p.validate(); err != nil {
		return Solution{}, err
	}
	nodes := len(p.Dist) - 1
	if nodes == 0 {
		return finalize(&p, state{routes: make([][]int, len(p.Capacity))}, 0), nil
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	budget := p.TimeBudget
	if budget <= 0 {
		budget = defaultBudget
	}
	deadline := time.Now().Add(budget)

	curr := cheapestInsertionSeed(&p)
	curr.cost = cost(&p, curr)
	best := cloneState(curr)

	remW := []float64{1, 1} // random, related
	insW := []float64{1, 1} // greedy, regret-2
	temp := initialTemp
	iterations := 0

	for time.Now().Before(deadline) && ctx.Err() == nil {
		iterations++
		if p.MaxIterations > 0 && iterations > p.MaxIterations {
			break
		}

		cand := cloneState(curr)
		k := 1 + rng.Intn(3)
		op := selectOp(remW, rng)
		var removed []int
		switch op {
		case 0:
			removed = randomRemoval(cand.routes, k, rng)
		case 1:
			removed = relatedRemoval(&p, cand.routes, k, rng)
		}
		dropNodes(cand.routes, removed)

		// every iteration retries the currently unassigned nodes too
		pool := append(removed, cand.unassigned...)
		cand.unassigned = nil
		ip := selectOp(insW, rng)
		switch ip {
		case 0:
			cand.unassigned = greedyReinsert(&p, cand.routes, pool)
		case 1:
			cand.unassigned = regretReinsert(&p, cand.routes, pool)
		}

		twoOptRoutes(&p, cand.routes)
		relocateImprove(&p, cand.routes)
		swapImprove(&p, cand.routes)
		cand.cost = cost(&p, cand)

		delta := cand.cost - best.cost
		if delta < 0 || rng.Float64() < math.Exp(-delta/(temp+1e-9)) {
			curr = cand
			if cand.cost < best.cost {
				best = cloneState(cand)
				remW[op] += 0.1
				insW[ip] += 0.1
			} else {
				remW[op] += 0.01
				insW[ip] += 0.01
			}
		} else {
			remW[op] = math.Max(0.01, remW[op]*0.999)
			insW[ip] = math.Max(0.01, insW[ip]*0.999)
		}
		temp *= cooling

		if p.Progress != nil && iterations%progressEvery == 0 {
			p.Progress(iterations, best.cost)
		}
	}
	if p.Progress != nil {
		p.Progress(iterations, best.cost)
	}
	return finalize(&p, best, iterations), nil
}

func finalize(p *Problem, s state, iterations int) Solution {
	sol := Solution{Cost: s.cost, Iterations: iterations}
	for v := range p.Capacity {
		var nodes []int
		if v < len(s.routes) {
			nodes = s.routes[v]
		}
		sol.Routes = append(sol.Routes, Route{
			Vehicle: v,
			Nodes:   append([]int(nil), nodes...),
			Meters:  routeMeters(p, nodes),
			Minutes: routeMinutes(p, nodes),
			Load:    routeLoad(p, nodes),
		})
	}
	sol.Unassigned = append([]int(nil), s.unassigned...)
	return sol
}

func cloneState(s state) state {
	out := state{
		routes:     make([][]int, len(s.routes)),
		unassigned: append([]int(nil), s.unassigned...),
		cost:       s.cost,
	}
	for i, r := range s.routes {
		out.routes[i] = append([]int(nil), r...)
	}
	return out
}

// cost is total meters plus the span penalty and a heavy per-node penalty for
// anything left unassigned, so the search always prefers placing orders.
func cost(p *Problem, s state) float64 {
	total := 0
	minM, maxM := math.MaxInt, 0
	loaded := 0
	for _, r := range s.routes {
		m := routeMeters(p, r)
		total += m
		if len(r) > 0 {
			loaded++
			if m < minM {
				minM = m
			}
			if m > maxM {
				maxM = m
			}
		}
	}
	c := float64(total)
	if loaded > 1 {
		c += p.SpanPenalty * float64(maxM-minM)
	}
	c += float64(len(s.unassigned)) * unassignedPenaltyM
	return c
}

// insertDelta is the added meters of placing node at pos in nodes, with the
// depot as the implicit neighbor at both ends.
func insertDelta(p *Problem, nodes []int, node, pos int) int {
	prev, next := 0, 0
	if pos > 0 {
		prev = nodes[pos-1]
	}
	if pos < len(nodes) {
		next = nodes[pos]
	}
	return p.Dist[prev][node] + p.Dist[node][next] - p.Dist[prev][next]
}

func insertAt(nodes []int, node, pos int) []int {
	nodes = append(nodes, 0)
	copy(nodes[pos+1:], nodes[pos:])
	nodes[pos] = node
	return nodes
}

// bestInsertion finds the cheapest feasible (vehicle, position) for node.
// Returns ok=false when no feasible slot exists anywhere.
func bestInsertion(p *Problem, routes [][]int, node int) (veh, pos, delta int, ok bool) {
	delta = math.MaxInt
	for v := range routes {
		for i := 0; i <= len(routes[v]); i++ {
			d := insertDelta(p, routes[v], node, i)
			if d >= delta {
				continue
			}
			cand := insertAt(append([]int(nil), routes[v]...), node, i)
			if !feasibleRoute(p, v, cand) {
				continue
			}
			veh, pos, delta, ok = v, i, d, true
		}
	}
	return
}

// cheapestInsertionSeed builds the first solution by repeatedly inserting the
// globally cheapest feasible node until nothing else fits.
func cheapestInsertionSeed(p *Problem) state {
	s := state{routes: make([][]int, len(p.Capacity))}
	pending := make([]int, 0, len(p.Dist)-1)
	for i := 1; i < len(p.Dist); i++ {
		pending = append(pending, i)
	}
	for len(pending) > 0 {
		bestIdx, bestVeh, bestPos := -1, 0, 0
		bestDelta := math.MaxInt
		for pi, node := range pending {
			v, pos, d, ok := bestInsertion(p, s.routes, node)
			if ok && d < bestDelta {
				bestIdx, bestVeh, bestPos, bestDelta = pi, v, pos, d
			}
		}
		if bestIdx < 0 {
			break
		}
		s.routes[bestVeh] = insertAt(s.routes[bestVeh], pending[bestIdx], bestPos)
		pending = append(pending[:bestIdx], pending[bestIdx+1:]...)
	}
	s.unassigned = pending
	return s
}

func assignedNodes(routes [][]int) []int {
	var all []int
	for _, r := range routes {
		all = append(all, r...)
	}
	return all
}

func randomRemoval(routes [][]int, k int, rng *rand.Rand) []int {
	all := assignedNodes(routes)
	var removed []int
	for i := 0; i < k && len(all) > 0; i++ {
		j := rng.Intn(len(all))
		removed = append(removed, all[j])
		all = append(all[:j], all[j+1:]...)
	}
	return removed
}

// relatedRemoval removes a random node plus its geographically closest
// assigned neighbors, freeing a coherent region for reinsertion.
func relatedRemoval(p *Problem, routes [][]int, k int, rng *rand.Rand) []int {
	all := assignedNodes(routes)
	if len(all) == 0 {
		return nil
	}
	seed := all[rng.Intn(len(all))]
	type scored struct {
		node int
		dist int
	}
	rel := make([]scored, 0, len(all))
	for _, n := range all {
		if n != seed {
			rel = append(rel, scored{node: n, dist: p.Dist[seed][n]})
		}
	}
	for i := 0; i < len(rel); i++ {
		for j := i + 1; j < len(rel); j++ {
			if rel[j].dist < rel[i].dist {
				rel[i], rel[j] = rel[j], rel[i]
			}
		}
	}
	removed := []int{seed}
	for i := 0; i < len(rel) && len(removed) < k; i++ {
		removed = append(removed, rel[i].node)
	}
	return removed
}

func dropNodes(routes [][]int, removed []int) {
	if len(removed) == 0 {
		return
	}
	rm := make(map[int]bool, len(removed))
	for _, n := range removed {
		rm[n] = true
	}
	for v := range routes {
		keep := routes[v][:0]
		for _, n := range routes[v] {
			if !rm[n] {
				keep = append(keep, n)
			}
		}
		routes[v] = keep
	}
}

// greedyReinsert places nodes cheapest-first; nodes with no feasible slot are
// returned as unassigned.
func greedyReinsert(p *Problem, routes [][]int, pool []int) []int {
	var unassigned []int
	for len(pool) > 0 {
		bestIdx, bestVeh, bestPos := -1, 0, 0
		bestDelta := math.MaxInt
		for pi, node := range pool {
			v, pos, d, ok := bestInsertion(p, routes, node)
			if ok && d < bestDelta {
				bestIdx, bestVeh, bestPos, bestDelta = pi, v, pos, d
			}
		}
		if bestIdx < 0 {
			unassigned = append(unassigned, pool...)
			break
		}
		routes[bestVeh] = insertAt(routes[bestVeh], pool[bestIdx], bestPos)
		pool = append(pool[:bestIdx], pool[bestIdx+1:]...)
	}
	return unassigned
}

// regretReinsert prefers the node whose second-best slot is much worse than
// its best slot (regret-2), deferring flexible nodes.
func regretReinsert(p *Problem, routes [][]int, pool []int) []int {
	var unassigned []int
	for len(pool) > 0 {
		bestIdx, bestVeh, bestPos := -1, 0, 0
		bestRegret := -1
		for pi, node := range pool {
			first, second := math.MaxInt, math.MaxInt
			fv, fp := 0, 0
			for v := range routes {
				for i := 0; i <= len(routes[v]); i++ {
					cand := insertAt(append([]int(nil), routes[v]...), node, i)
					if !feasibleRoute(p, v, cand) {
						continue
					}
					d := insertDelta(p, routes[v], node, i)
					if d < first {
						second = first
						first, fv, fp = d, v, i
					} else if d < second {
						second = d
					}
				}
			}
			if first == math.MaxInt {
				continue
			}
			regret := 0
			if second != math.MaxInt {
				regret = second - first
			} else {
				regret = unassignedPenaltyM // only one slot left; place it now
			}
			if regret > bestRegret {
				bestIdx, bestVeh, bestPos, bestRegret = pi, fv, fp, regret
			}
		}
		if bestIdx < 0 {
			unassigned = append(unassigned, pool...)
			break
		}
		routes[bestVeh] = insertAt(routes[bestVeh], pool[bestIdx], bestPos)
		pool = append(pool[:bestIdx], pool[bestIdx+1:]...)
	}
	return unassigned
}

// twoOptRoutes applies intra-route 2-opt segment reversals while they shorten
// the route and stay feasible.
func twoOptRoutes(p *Problem, routes [][]int) {
	for v := range routes {
		r := routes[v]
		n := len(r)
		if n < 3 {
			continue
		}
		improved := true
		for improved {
			improved = false
			for i := 0; i < n-1; i++ {
				for k := i + 1; k < n; k++ {
					cand := append([]int(nil), r...)
					for a, b := i, k; a < b; a, b = a+1, b-1 {
						cand[a], cand[b] = cand[b], cand[a]
					}
					if routeMeters(p, cand) < routeMeters(p, r) && feasibleRoute(p, v, cand) {
						r = cand
						improved = true
					}
				}
			}
		}
		routes[v] = r
	}
}

// relocateImprove moves single nodes between vehicles when that lowers total
// distance and both routes stay feasible.
func relocateImprove(p *Problem, routes [][]int) {
	improved := true
	for improved {
		improved = false
		for a := range routes {
			for i := 0; i < len(routes[a]); i++ {
				node := routes[a][i]
				src := append([]int(nil), routes[a][:i]...)
				src = append(src, routes[a][i+1:]...)
				gain := routeMeters(p, routes[a]) - routeMeters(p, src)
				for b := range routes {
					if b == a {
						continue
					}
					pos, d, ok := bestInsertionOne(p, routes[b], b, node)
					if !ok || d >= gain {
						continue
					}
					routes[a] = src
					routes[b] = insertAt(routes[b], node, pos)
					improved = true
					break
				}
				if improved {
					break
				}
			}
			if improved {
				break
			}
		}
	}
}

// bestInsertionOne is bestInsertion restricted to a single vehicle.
func bestInsertionOne(p *Problem, nodes []int, vehicle, node int) (pos, delta int, ok bool) {
	delta = math.MaxInt
	for i := 0; i <= len(nodes); i++ {
		d := insertDelta(p, nodes, node, i)
		if d >= delta {
			continue
		}
		cand := insertAt(append([]int(nil), nodes...), node, i)
		if !feasibleRoute(p, vehicle, cand) {
			continue
		}
		pos, delta, ok = i, d, true
	}
	return
}

// swapImprove exchanges node pairs between vehicles when the exchange lowers
// combined distance and both routes stay feasible.
func swapImprove(p *Problem, routes [][]int) {
	improved := true
	for improved {
		improved = false
		for a := 0; a < len(routes); a++ {
			for b := a + 1; b < len(routes); b++ {
				for i := 0; i < len(routes[a]); i++ {
					for j := 0; j < len(routes[b]); j++ {
						ca := append([]int(nil), routes[a]...)
						cb := append([]int(nil), routes[b]...)
						ca[i], cb[j] = cb[j], ca[i]
						if !feasibleRoute(p, a, ca) || !feasibleRoute(p, b, cb) {
							continue
						}
						before := routeMeters(p, routes[a]) + routeMeters(p, routes[b])
						after := routeMeters(p, ca) + routeMeters(p, cb)
						if after < before {
							routes[a], routes[b] = ca, cb
							improved = true
						}
					}
				}
			}
		}
	}
}

func selectOp(weights []float64, rng *rand.Rand) int {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return 0
	}
	r := rng.Float64() * sum
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(weights) - 1
}
