package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lpgroute/internal/buildinfo"
	"lpgroute/internal/engine"
	"lpgroute/internal/metrics"
	"lpgroute/internal/model"
	"lpgroute/internal/store"
)

// OptimizeHandler handles POST /v1/optimize
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}

	start := time.Now()
	resp, err := s.Engine.Optimize(r.Context(), req)
	metrics.SolverDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if engine.IsValidation(err) {
			metrics.OptimizeRequests.WithLabelValues("validation_error").Inc()
			writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
			return
		}
		metrics.OptimizeRequests.WithLabelValues("error").Inc()
		writeProblem(w, http.StatusInternalServerError, "Optimize failed", err.Error(), r.URL.Path)
		return
	}
	metrics.OptimizeRequests.WithLabelValues("ok").Inc()
	metrics.OptimizationScore.Observe(resp.OptimizationScore)
	metrics.UnassignedOrders.Observe(float64(len(resp.UnassignedOrders)))

	id, err := s.Store.SavePlan(r.Context(), store.PlanBatch{Request: req, Response: resp})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Persist plan failed", err.Error(), r.URL.Path)
		return
	}
	resp.BatchID = id
	writeJSON(w, http.StatusOK, resp)
}

// PlansIndexHandler handles GET /v1/plans
func (s *Server) PlansIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListPlans(r.Context(), cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List plans failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// PlanByIDHandler handles GET /v1/plans/{id}
func (s *Server) PlanByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/plans/")
	if id == "" || id == r.URL.Path {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	batch, err := s.Store.GetPlan(r.Context(), id)
	if err == store.ErrNotFound {
		writeProblem(w, http.StatusNotFound, "Not Found", "no plan "+id, r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get plan failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// HealthHandler handles GET /healthz
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	body := buildinfo.Info()
	body["status"] = "ok"
	writeJSON(w, http.StatusOK, body)
}

// ReadyHandler handles GET /readyz
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not ready", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
