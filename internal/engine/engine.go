package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lpgroute/internal/geo"
	"lpgroute/internal/metrics"
	"lpgroute/internal/model"
	"lpgroute/internal/solver"
)

// Recognized constraint defaults.
const (
	DefaultMaxDistancePerRouteKm = 100.0
	DefaultMaxStopsPerRoute      = 20
	DefaultTimeWindowStart       = "08:00"
	DefaultTimeWindowEnd         = "18:00"
	DefaultServiceTimeMin        = 10
	DefaultMaxRouteMin           = 480
	DefaultTimeBudget            = 30 * time.Second
	defaultSpanPenalty           = 0.1
)

// DefaultDepot is the reference depot used when the caller supplies none.
var DefaultDepot = model.GeoPoint{Lat: 25.0330, Lng: 121.5654}

// ValidationError marks caller-input failures that must surface as such
// rather than being downgraded to a fallback plan.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Engine runs the optimization pipeline: validate, build matrices, solve,
// extract, score — degrading to the greedy assigner when the solver faults.
type Engine struct {
	Router solver.Router
	Matrix *geo.MatrixBuilder

	Depot       model.GeoPoint // used when the request constraints omit one
	SpeedKmh    float64        // average speed for the time matrix; 0 means default
	TimeBudget  time.Duration  // solver budget; 0 means DefaultTimeBudget
	SpanPenalty float64
}

func New() *Engine {
	return &Engine{
		Router:      solver.LocalSearch{},
		Matrix:      &geo.MatrixBuilder{},
		Depot:       DefaultDepot,
		SpeedKmh:    geo.DefaultSpeedKmh,
		TimeBudget:  DefaultTimeBudget,
		SpanPenalty: defaultSpanPenalty,
	}
}

// Optimize produces delivery routes for the given request.
func (e *Engine) Optimize(ctx context.Context, req model.OptimizeRequest) (model.OptimizeResponse, error) {
	return e.OptimizeWithProgress(ctx, req, nil)
}

// OptimizeWithProgress additionally streams solver progress snapshots to the
// given hook. The hook may be nil.
func (e *Engine) OptimizeWithProgress(ctx context.Context, req model.OptimizeRequest, progress func(model.ProgressEvent)) (model.OptimizeResponse, error) {
	if err := validateRequest(req); err != nil {
		return model.OptimizeResponse{}, err
	}
	cons := resolveConstraints(req.Constraints, e.Depot)

	if len(req.Orders) == 0 {
		return model.OptimizeResponse{
			Success:          true,
			Routes:           []model.RoutePlan{},
			UnassignedOrders: []string{},
		}, nil
	}

	if req.Algorithm == "greedy" {
		return GreedyAssign(req.Orders, req.Drivers), nil
	}

	stops := make([]geo.Point, len(req.Orders))
	for i, o := range req.Orders {
		stops[i] = geo.Point{Lat: o.Lat, Lng: o.Lng}
	}
	depot := geo.Point{Lat: cons.DepotLocation.Lat, Lng: cons.DepotLocation.Lng}
	dist := e.Matrix.BuildDistanceMatrix(ctx, depot, stops)
	times := geo.TravelTimeMatrix(dist, e.SpeedKmh)

	p := solver.Problem{
		Dist:        dist,
		Time:        times,
		Demand:      demandVector(req.Orders),
		Capacity:    capacityVector(req.Drivers),
		MaxRouteMin: DefaultMaxRouteMin,
		MaxStops:    cons.MaxStopsPerRoute,
		ServiceMin:  cons.ServiceTimeMin,
		SpanPenalty: e.SpanPenalty,
		Seed:        req.Seed,
		TimeBudget:  e.budget(req),
	}
	if progress != nil {
		started := time.Now()
		p.Progress = func(iter int, best float64) {
			progress(model.ProgressEvent{
				Iterations: iter,
				BestCost:   best,
				ElapsedMs:  time.Since(started).Milliseconds(),
			})
		}
	}

	started := time.Now()
	sol, err := e.Router.Solve(ctx, p)
	if err != nil {
		// Solver fault: degrade to the greedy plan rather than failing the call.
		log.Printf("solver fault, using greedy fallback: %v", err)
		metrics.FallbackRuns.Inc()
		return GreedyAssign(req.Orders, req.Drivers), nil
	}
	if progress != nil {
		progress(model.ProgressEvent{
			Iterations: sol.Iterations,
			BestCost:   sol.Cost,
			ElapsedMs:  time.Since(started).Milliseconds(),
			Done:       true,
		})
	}

	plans := buildPlans(sol, dist, times, req.Orders, req.Drivers, cons)
	resp := assembleResponse(plans, sol, dist, req.Orders)
	return resp, nil
}

func (e *Engine) budget(req model.OptimizeRequest) time.Duration {
	if req.TimeBudgetMs > 0 {
		return time.Duration(req.TimeBudgetMs) * time.Millisecond
	}
	if e.TimeBudget > 0 {
		return e.TimeBudget
	}
	return DefaultTimeBudget
}

func validateRequest(req model.OptimizeRequest) error {
	if len(req.Orders) > 0 && len(req.Drivers) == 0 {
		return validationf("no drivers available for %d pending orders", len(req.Orders))
	}
	if req.Algorithm != "" && req.Algorithm != "solver" && req.Algorithm != "greedy" {
		return validationf("unknown algorithm %q", req.Algorithm)
	}
	if req.TimeBudgetMs < 0 {
		return validationf("timeBudgetMs must be >= 0")
	}
	seen := make(map[string]bool, len(req.Orders))
	for _, o := range req.Orders {
		if o.ID == "" {
			return validationf("order with empty id")
		}
		if seen[o.ID] {
			return validationf("duplicate order id %q", o.ID)
		}
		seen[o.ID] = true
		if o.Lat < -90 || o.Lat > 90 || o.Lng < -180 || o.Lng > 180 {
			return validationf("order %s has malformed coordinates (%f, %f)", o.ID, o.Lat, o.Lng)
		}
		if o.Quantity < 0 {
			return validationf("order %s has negative quantity", o.ID)
		}
	}
	for _, d := range req.Drivers {
		if d.ID == "" {
			return validationf("driver with empty id")
		}
		if d.MaxCapacity < 0 {
			return validationf("driver %s has negative capacity", d.ID)
		}
	}
	return nil
}

// resolveConstraints fills every omitted option with its documented default.
func resolveConstraints(c *model.Constraints, depot model.GeoPoint) model.Constraints {
	out := model.Constraints{}
	if c != nil {
		out = *c
	}
	if out.MaxDistancePerRouteKm <= 0 {
		out.MaxDistancePerRouteKm = DefaultMaxDistancePerRouteKm
	}
	if out.MaxStopsPerRoute <= 0 {
		out.MaxStopsPerRoute = DefaultMaxStopsPerRoute
	}
	if out.TimeWindowStart == "" {
		out.TimeWindowStart = DefaultTimeWindowStart
	}
	if out.TimeWindowEnd == "" {
		out.TimeWindowEnd = DefaultTimeWindowEnd
	}
	if out.ServiceTimeMin <= 0 {
		out.ServiceTimeMin = DefaultServiceTimeMin
	}
	if out.DepotLocation == nil {
		d := depot
		if d == (model.GeoPoint{}) {
			d = DefaultDepot
		}
		out.DepotLocation = &d
	}
	return out
}

func demandVector(orders []model.OrderInput) []int {
	demand := make([]int, len(orders)+1)
	for i, o := range orders {
		demand[i+1] = o.Quantity
	}
	return demand
}

func capacityVector(drivers []model.DriverInput) []int {
	caps := make([]int, len(drivers))
	for i, d := range drivers {
		caps[i] = d.MaxCapacity
	}
	return caps
}

func assembleResponse(plans []model.RoutePlan, sol solver.Solution, dist [][]int, orders []model.OrderInput) model.OptimizeResponse {
	unassigned := make([]string, 0, len(sol.Unassigned))
	for _, n := range sol.Unassigned {
		unassigned = append(unassigned, orders[n-1].ID)
	}

	var visited []int
	totalMeters := 0
	totalStops := 0
	for _, r := range sol.Routes {
		visited = append(visited, r.Nodes...)
		totalMeters += r.Meters
		totalStops += len(r.Nodes)
	}
	score := Score(mstMeters(dist, visited), totalMeters)
	for i := range plans {
		plans[i].OptimizationScore = score
	}

	m := model.Metrics{
		TotalDistanceKm:   round2(float64(totalMeters) / 1000),
		TotalStops:        totalStops,
		TotalRoutes:       len(plans),
		OptimizationScore: score,
	}
	if len(plans) > 0 {
		m.AvgStopsPerRoute = round2(float64(totalStops) / float64(len(plans)))
		m.AvgDistancePerRouteKm = round2(m.TotalDistanceKm / float64(len(plans)))
	}
	return model.OptimizeResponse{
		Success:           true,
		Routes:            plans,
		UnassignedOrders:  unassigned,
		Metrics:           m,
		OptimizationScore: score,
	}
}
