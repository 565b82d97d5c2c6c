package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"lpgroute/internal/config"
	"lpgroute/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{SolverBudgetMs: 150, AvgSpeedKmh: 30}
	cfg.Depot.Lat = 25.0330
	cfg.Depot.Lng = 121.5654
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func optimizeBody(t *testing.T) []byte {
	t.Helper()
	req := model.OptimizeRequest{
		Orders: []model.OrderInput{
			{ID: "o1", Lat: 25.05, Lng: 121.55, Quantity: 2},
			{ID: "o2", Lat: 25.04, Lng: 121.57, Quantity: 3},
			{ID: "o3", Lat: 25.02, Lng: 121.53, Quantity: 1},
		},
		Drivers: []model.DriverInput{
			{ID: "d1", Name: "Chen", VehicleNumber: "ABC-123", MaxCapacity: 10},
		},
		Seed: 1,
	}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestOptimizePersistsPlan(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader(optimizeBody(t)))
	req.Header.Set("Content-Type", "application/json")
	s.OptimizeHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("optimize: %d body=%s", rr.Code, rr.Body.String())
	}
	var resp model.OptimizeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.BatchID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Routes) == 0 {
		t.Fatal("expected at least one route")
	}

	// plan is retrievable by the returned batch id
	rr = httptest.NewRecorder()
	s.PlanByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/plans/"+resp.BatchID, nil))
	if rr.Code != 200 {
		t.Fatalf("get plan: %d", rr.Code)
	}

	// and shows up in the index
	rr = httptest.NewRecorder()
	s.PlansIndexHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/plans?limit=10", nil))
	if rr.Code != 200 {
		t.Fatalf("list plans: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), resp.BatchID) {
		t.Fatalf("index missing batch %s: %s", resp.BatchID, rr.Body.String())
	}
}

func TestOptimizeValidationRejected(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"orders":[{"id":"o1","lat":25,"lng":121,"quantity":1},{"id":"o1","lat":25,"lng":121,"quantity":1}],"drivers":[{"id":"d1","maxCapacity":5}]}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.OptimizeHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate order ids: got %d, want 400", rr.Code)
	}
	var p Problem
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if p.Status != http.StatusBadRequest || p.Detail == "" {
		t.Fatalf("bad problem body: %+v", p)
	}
}

func TestOptimizeInvalidJSON(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/optimize", strings.NewReader("{not json"))
	s.OptimizeHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestOptimizeMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.OptimizeHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/optimize", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("got %d, want 405", rr.Code)
	}
}

func TestPlanNotFound(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.PlanByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/plans/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
}

func TestProgressBrokerFanout(t *testing.T) {
	b := NewProgressBroker()
	ch := b.Subscribe("job1")
	b.Publish("job1", model.ProgressEvent{Iterations: 3, BestCost: 42})
	select {
	case evt := <-ch:
		if evt.Iterations != 3 || evt.BestCost != 42 {
			t.Fatalf("wrong event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	// unrelated job must not leak in
	b.Publish("job2", model.ProgressEvent{Iterations: 9})
	select {
	case evt := <-ch:
		t.Fatalf("leaked event: %+v", evt)
	default:
	}
	b.Unsubscribe("job1", ch)
}

func TestOptimizeStream(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(http.HandlerFunc(s.OptimizeStreamHandler))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, optimizeBody(t)); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	sawAccepted := false
	for time.Now().Before(deadline) {
		var f wsFrame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		switch f.Type {
		case "accepted":
			sawAccepted = true
			if f.JobID == "" {
				t.Fatal("accepted frame without job id")
			}
		case "progress":
			// optional, depends on solver timing
		case "result":
			if !sawAccepted {
				t.Fatal("result before accepted")
			}
			if f.Result == nil || !f.Result.Success || f.Result.BatchID == "" {
				t.Fatalf("bad result frame: %+v", f)
			}
			return
		default:
			t.Fatalf("unexpected frame %q: %+v", f.Type, f)
		}
	}
	t.Fatal("no result frame before deadline")
}
