package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OSRMProvider queries an OSRM-compatible routing service for per-pair road
// distances. It is the optional high-fidelity alternative to the haversine
// estimate; any failure is reported to the caller, which falls back per pair.
type OSRMProvider struct {
	baseURL string
	client  *http.Client
}

func NewOSRMProvider(baseURL string) *OSRMProvider {
	return &OSRMProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *OSRMProvider) RoadDistanceMeters(ctx context.Context, from, to Point) (int, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		p.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("osrm: status %d", resp.StatusCode)
	}

	var out struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	if out.Code != "Ok" || len(out.Routes) == 0 {
		return 0, fmt.Errorf("osrm: no route (%s)", out.Code)
	}
	return int(out.Routes[0].Distance), nil
}
