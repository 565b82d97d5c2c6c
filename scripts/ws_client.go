// Package main runs a demo WebSocket client for the optimize stream.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
)

type wsFrame struct {
	Type     string          `json:"type"`
	JobID    string          `json:"jobId,omitempty"`
	Progress json.RawMessage `json:"progress,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/optimize/stream"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	req := map[string]any{
		"orders": []map[string]any{
			{"id": "o1", "lat": 25.05, "lng": 121.55, "quantity": 2},
			{"id": "o2", "lat": 25.04, "lng": 121.57, "quantity": 3},
			{"id": "o3", "lat": 25.02, "lng": 121.53, "quantity": 1},
			{"id": "o4", "lat": 25.06, "lng": 121.52, "quantity": 4},
		},
		"drivers": []map[string]any{
			{"id": "d1", "name": "Chen", "vehicleNumber": "ABC-123", "maxCapacity": 6},
			{"id": "d2", "name": "Lin", "vehicleNumber": "DEF-456", "maxCapacity": 6},
		},
		"timeBudgetMs": 2000,
	}
	if err := c.WriteJSON(req); err != nil {
		log.Fatal(err)
	}

	for {
		var f wsFrame
		if err := c.ReadJSON(&f); err != nil {
			log.Fatalf("read: %v", err)
		}
		switch f.Type {
		case "accepted":
			log.Printf("job %s accepted", f.JobID)
		case "progress":
			log.Printf("progress: %s", string(f.Progress))
		case "result":
			fmt.Println(string(f.Result))
			return
		default:
			log.Fatalf("%s: %s", f.Type, f.Error)
		}
	}
}
