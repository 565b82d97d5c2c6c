package engine

import (
	"github.com/google/uuid"

	"lpgroute/internal/model"
)

const (
	// FallbackScore marks plans produced without the solver so dashboards can
	// tell them apart from optimized ones.
	FallbackScore = 70.0

	fallbackKmPerStop = 10.0
)

// GreedyAssign is the non-optimizing fallback: orders are split into
// contiguous chunks, one per driver, preserving input order. It never fails;
// with no drivers it returns every order as unassigned.
func GreedyAssign(orders []model.OrderInput, drivers []model.DriverInput) model.OptimizeResponse {
	if len(drivers) == 0 {
		ids := make([]string, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}
		return model.OptimizeResponse{
			Success:          true,
			Routes:           []model.RoutePlan{},
			UnassignedOrders: ids,
		}
	}

	chunk := (len(orders) + len(drivers) - 1) / len(drivers)
	plans := []model.RoutePlan{}
	totalStops := 0
	for di, d := range drivers {
		lo := di * chunk
		if lo >= len(orders) {
			break
		}
		hi := lo + chunk
		if hi > len(orders) {
			hi = len(orders)
		}
		plan := model.RoutePlan{
			RouteID:           uuid.NewString(),
			DriverID:          d.ID,
			DriverName:        d.Name,
			VehicleNumber:     d.VehicleNumber,
			Stops:             make([]model.Stop, 0, hi-lo),
			OptimizationScore: FallbackScore,
		}
		for seq, o := range orders[lo:hi] {
			plan.Stops = append(plan.Stops, model.Stop{
				Sequence:     seq + 1,
				OrderID:      o.ID,
				CustomerName: o.CustomerName,
				Address:      o.Address,
				Lat:          o.Lat,
				Lng:          o.Lng,
				Quantity:     o.Quantity,
			})
			plan.TotalLoad += o.Quantity
		}
		plan.TotalDistanceKm = fallbackKmPerStop * float64(len(plan.Stops))
		totalStops += len(plan.Stops)
		plans = append(plans, plan)
	}

	m := model.Metrics{
		TotalStops:        totalStops,
		TotalRoutes:       len(plans),
		OptimizationScore: FallbackScore,
	}
	for _, p := range plans {
		m.TotalDistanceKm += p.TotalDistanceKm
	}
	if len(plans) > 0 {
		m.AvgStopsPerRoute = round2(float64(totalStops) / float64(len(plans)))
		m.AvgDistancePerRouteKm = round2(m.TotalDistanceKm / float64(len(plans)))
	}
	return model.OptimizeResponse{
		Success:           true,
		Routes:            plans,
		UnassignedOrders:  []string{},
		Metrics:           m,
		OptimizationScore: FallbackScore,
	}
}
