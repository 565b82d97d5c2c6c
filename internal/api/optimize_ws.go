package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"lpgroute/internal/engine"
	"lpgroute/internal/model"
	"lpgroute/internal/store"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsFrame struct {
	Type     string                  `json:"type"`
	JobID    string                  `json:"jobId,omitempty"`
	Progress *model.ProgressEvent    `json:"progress,omitempty"`
	Result   *model.OptimizeResponse `json:"result,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// OptimizeStreamHandler handles GET /v1/optimize/stream. The client upgrades,
// sends one OptimizeRequest frame, and receives progress frames followed by a
// final result frame.
func (s *Server) OptimizeStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	var req model.OptimizeRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(wsFrame{Type: "error", Error: "invalid request: " + err.Error()})
		return
	}

	jobID := uuid.NewString()
	_ = conn.WriteJSON(wsFrame{Type: "accepted", JobID: jobID})

	ch := s.Broker.Subscribe(jobID)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for evt := range ch {
			e := evt
			if err := conn.WriteJSON(wsFrame{Type: "progress", JobID: jobID, Progress: &e}); err != nil {
				return
			}
		}
	}()

	resp, err := s.Engine.OptimizeWithProgress(r.Context(), req, func(evt model.ProgressEvent) {
		s.Broker.Publish(jobID, evt)
	})
	s.Broker.Unsubscribe(jobID, ch)
	<-done

	if err != nil {
		frame := wsFrame{Type: "error", JobID: jobID, Error: err.Error()}
		if engine.IsValidation(err) {
			frame.Type = "validation_error"
		}
		_ = conn.WriteJSON(frame)
		return
	}
	if id, err := s.Store.SavePlan(r.Context(), store.PlanBatch{Request: req, Response: resp}); err == nil {
		resp.BatchID = id
	}
	_ = conn.WriteJSON(wsFrame{Type: "result", JobID: jobID, Result: &resp})
}
