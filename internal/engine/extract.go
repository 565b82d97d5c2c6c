package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"lpgroute/internal/model"
	"lpgroute/internal/solver"
)

// buildPlans turns raw per-vehicle node sequences into formatted route plans.
// Vehicles with no assigned stops produce no plan. Arrival clocks start at the
// operating window start; each stop adds its travel leg plus service time. The
// return leg to the depot counts toward distance but yields no stop.
func buildPlans(sol solver.Solution, dist, times [][]int, orders []model.OrderInput, drivers []model.DriverInput, cons model.Constraints) []model.RoutePlan {
	shiftStart := parseClock(cons.TimeWindowStart)
	plans := make([]model.RoutePlan, 0, len(sol.Routes))

	for _, r := range sol.Routes {
		if len(r.Nodes) == 0 {
			continue
		}
		d := drivers[r.Vehicle]
		plan := model.RoutePlan{
			RouteID:       uuid.NewString(),
			DriverID:      d.ID,
			DriverName:    d.Name,
			VehicleNumber: d.VehicleNumber,
			Stops:         make([]model.Stop, 0, len(r.Nodes)),
		}

		clock := shiftStart
		prev := 0
		for seq, node := range r.Nodes {
			clock += times[prev][node]
			o := orders[node-1]
			plan.Stops = append(plan.Stops, model.Stop{
				Sequence:           seq + 1,
				OrderID:            o.ID,
				CustomerName:       o.CustomerName,
				Address:            o.Address,
				Lat:                o.Lat,
				Lng:                o.Lng,
				Quantity:           o.Quantity,
				ArrivalTime:        clockString(clock),
				DistanceFromPrevKm: round2(float64(dist[prev][node]) / 1000),
			})
			clock += cons.ServiceTimeMin
			prev = node
		}

		plan.TotalDistanceKm = round2(float64(r.Meters) / 1000)
		plan.TotalTimeMin = r.Minutes
		plan.TotalLoad = r.Load
		plans = append(plans, plan)
	}
	return plans
}

// parseClock converts "HH:MM" to minutes since midnight; bad input falls back
// to the default window start.
func parseClock(s string) int {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 8 * 60
	}
	return h*60 + m
}

func clockString(minutes int) string {
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
