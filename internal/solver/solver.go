package solver

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Problem is a matrix-based CVRP instance. Index 0 of both matrices is the
// depot; indices 1..N are delivery stops. Every route starts and ends at the
// depot. Dist is meters, Time is minutes, and both must be (N+1)x(N+1).
type Problem struct {
	Dist     [][]int
	Time     [][]int
	Demand   []int // Demand[0] must be 0
	Capacity []int // one entry per vehicle

	MaxRouteMin int     // per-vehicle time ceiling, travel + service
	MaxStops    int     // per-vehicle stop ceiling
	ServiceMin  int     // minutes spent at each stop
	SpanPenalty float64 // weight on (max-min) route meters across vehicles

	Seed          int64
	TimeBudget    time.Duration
	MaxIterations int

	// Progress, when set, receives periodic snapshots of the search.
	Progress func(iterations int, bestCost float64)
}

// Route is one vehicle's visiting sequence, depot excluded.
type Route struct {
	Vehicle int
	Nodes   []int
	Meters  int
	Minutes int
	Load    int
}

// Solution is the raw solver output. Unassigned lists node indices that could
// not be placed within capacity/time limits; an infeasible instance is a
// normal Solution with everything unassigned, never an error.
type Solution struct {
	Routes     []Route
	Unassigned []int
	Cost       float64
	Iterations int
}

// Router is the single entry point to the constraint search, so the search
// implementation can be swapped without touching the rest of the pipeline.
type Router interface {
	Solve(ctx context.Context, p Problem) (Solution, error)
}

var ErrNoVehicles = errors.New("solver: no vehicles")

func (p *Problem) validate() error {
	n := len(p.Dist)
	if n == 0 {
		return errors.New("solver: empty distance matrix")
	}
	for i, row := range p.Dist {
		if len(row) != n {
			return fmt.Errorf("solver: distance matrix row %d has %d columns, want %d", i, len(row), n)
		}
	}
	if len(p.Time) != n {
		return fmt.Errorf("solver: time matrix is %dx, distance matrix is %dx", len(p.Time), n)
	}
	if len(p.Demand) != n {
		return fmt.Errorf("solver: demand vector has %d entries, want %d", len(p.Demand), n)
	}
	if p.Demand[0] != 0 {
		return errors.New("solver: depot demand must be zero")
	}
	for i, d := range p.Demand {
		if d < 0 {
			return fmt.Errorf("solver: negative demand at node %d", i)
		}
	}
	if len(p.Capacity) == 0 {
		return ErrNoVehicles
	}
	for v, c := range p.Capacity {
		if c < 0 {
			return fmt.Errorf("solver: negative capacity for vehicle %d", v)
		}
	}
	return nil
}

// routeMeters is the total traveled distance depot -> nodes... -> depot.
func routeMeters(p *Problem, nodes []int) int {
	if len(nodes) == 0 {
		return 0
	}
	total := p.Dist[0][nodes[0]]
	for i := 0; i < len(nodes)-1; i++ {
		total += p.Dist[nodes[i]][nodes[i+1]]
	}
	total += p.Dist[nodes[len(nodes)-1]][0]
	return total
}

// routeMinutes is travel time for the full loop plus per-stop service time.
func routeMinutes(p *Problem, nodes []int) int {
	if len(nodes) == 0 {
		return 0
	}
	total := p.Time[0][nodes[0]]
	for i := 0; i < len(nodes)-1; i++ {
		total += p.Time[nodes[i]][nodes[i+1]]
	}
	total += p.Time[nodes[len(nodes)-1]][0]
	total += len(nodes) * p.ServiceMin
	return total
}

func routeLoad(p *Problem, nodes []int) int {
	load := 0
	for _, n := range nodes {
		load += p.Demand[n]
	}
	return load
}

// feasibleRoute checks capacity, stop count and the time ceiling for one vehicle.
func feasibleRoute(p *Problem, vehicle int, nodes []int) bool {
	if p.MaxStops > 0 && len(nodes) > p.MaxStops {
		return false
	}
	if routeLoad(p, nodes) > p.Capacity[vehicle] {
		return false
	}
	if p.MaxRouteMin > 0 && routeMinutes(p, nodes) > p.MaxRouteMin {
		return false
	}
	return true
}
