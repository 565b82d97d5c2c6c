package geo

import (
	"context"
	"errors"
	"math"
	"testing"
)

var testStops = []Point{
	{Lat: 25.0400, Lng: 121.5600},
	{Lat: 25.0478, Lng: 121.5319},
	{Lat: 25.0210, Lng: 121.5854},
}

var testDepot = Point{Lat: 25.0330, Lng: 121.5654}

func TestDistanceMatrixSymmetry(t *testing.T) {
	b := &MatrixBuilder{}
	m := b.BuildDistanceMatrix(context.Background(), testDepot, testStops)
	if len(m) != len(testStops)+1 {
		t.Fatalf("matrix size: got %d", len(m))
	}
	for i := range m {
		if m[i][i] != 0 {
			t.Fatalf("diagonal [%d][%d] = %d", i, i, m[i][i])
		}
		for j := range m {
			if m[i][j] != m[j][i] {
				t.Fatalf("asymmetric at [%d][%d]: %d vs %d", i, j, m[i][j], m[j][i])
			}
			if i != j && m[i][j] <= 0 {
				t.Fatalf("non-positive distance at [%d][%d]: %d", i, j, m[i][j])
			}
		}
	}
}

func TestDistanceMatrixEmptyAndSingle(t *testing.T) {
	b := &MatrixBuilder{}
	m := b.BuildDistanceMatrix(context.Background(), testDepot, nil)
	if len(m) != 1 || m[0][0] != 0 {
		t.Fatalf("empty input: got %v", m)
	}
	m = b.BuildDistanceMatrix(context.Background(), testDepot, testStops[:1])
	if len(m) != 2 || m[0][1] == 0 {
		t.Fatalf("single stop: got %v", m)
	}
}

func TestDistanceMatrixIdempotent(t *testing.T) {
	b := &MatrixBuilder{}
	m1 := b.BuildDistanceMatrix(context.Background(), testDepot, testStops)
	m2 := b.BuildDistanceMatrix(context.Background(), testDepot, testStops)
	for i := range m1 {
		for j := range m1[i] {
			if m1[i][j] != m2[i][j] {
				t.Fatalf("matrices differ at [%d][%d]", i, j)
			}
		}
	}
}

func TestTravelTimeMatrixDerivation(t *testing.T) {
	b := &MatrixBuilder{}
	dist := b.BuildDistanceMatrix(context.Background(), testDepot, testStops)
	tm := TravelTimeMatrix(dist, DefaultSpeedKmh)
	for i := range dist {
		for j := range dist[i] {
			want := int(math.Round(float64(dist[i][j]) / 1000 / DefaultSpeedKmh * 60))
			if tm[i][j] != want {
				t.Fatalf("time[%d][%d] = %d, want %d", i, j, tm[i][j], want)
			}
		}
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Taipei Main Station to Taipei 101 is roughly 4 km great-circle.
	a := Point{Lat: 25.0478, Lng: 121.5170}
	b := Point{Lat: 25.0330, Lng: 121.5654}
	d := HaversineMeters(a, b)
	if d < 3500 || d > 5500 {
		t.Fatalf("haversine out of expected range: %f", d)
	}
}

type stubProvider struct {
	meters int
	err    error
	calls  int
}

func (s *stubProvider) RoadDistanceMeters(_ context.Context, _, _ Point) (int, error) {
	s.calls++
	return s.meters, s.err
}

func TestMatrixPrefersProvider(t *testing.T) {
	p := &stubProvider{meters: 12345}
	b := &MatrixBuilder{Provider: p}
	m := b.BuildDistanceMatrix(context.Background(), testDepot, testStops[:1])
	if m[0][1] != 12345 {
		t.Fatalf("expected provider distance, got %d", m[0][1])
	}
	if p.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", p.calls)
	}
}

func TestMatrixFallsBackPerPair(t *testing.T) {
	p := &stubProvider{err: errors.New("upstream down")}
	b := &MatrixBuilder{Provider: p}
	m := b.BuildDistanceMatrix(context.Background(), testDepot, testStops)
	est := EstimateRoadMeters(testDepot, testStops[0])
	if m[0][1] != est {
		t.Fatalf("expected haversine fallback %d, got %d", est, m[0][1])
	}
}
