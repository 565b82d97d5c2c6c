package geo

import (
	"context"
	"math"
)

// MatrixBuilder computes point-to-point road-distance matrices. Provider is
// optional; when set it is preferred per pair, with the haversine estimate as
// a per-pair fallback so a flaky provider never aborts a matrix build.
type MatrixBuilder struct {
	Provider DistanceProvider
}

// BuildDistanceMatrix returns an (N+1)x(N+1) symmetric integer meter matrix
// over depot (index 0) and the given stops (indices 1..N), zero diagonal.
func (b *MatrixBuilder) BuildDistanceMatrix(ctx context.Context, depot Point, stops []Point) [][]int {
	pts := make([]Point, 0, len(stops)+1)
	pts = append(pts, depot)
	pts = append(pts, stops...)

	n := len(pts)
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := b.pairMeters(ctx, pts[i], pts[j])
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

func (b *MatrixBuilder) pairMeters(ctx context.Context, from, to Point) int {
	if b.Provider != nil {
		if d, err := b.Provider.RoadDistanceMeters(ctx, from, to); err == nil && d > 0 {
			return d
		}
	}
	return EstimateRoadMeters(from, to)
}

// TravelTimeMatrix derives a whole-minute travel time matrix from a meter
// distance matrix at the given average speed.
func TravelTimeMatrix(dist [][]int, speedKmh float64) [][]int {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	t := make([][]int, len(dist))
	for i, row := range dist {
		t[i] = make([]int, len(row))
		for j, d := range row {
			t[i][j] = int(math.Round(float64(d) / 1000 / speedKmh * 60))
		}
	}
	return t
}
