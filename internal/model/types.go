package model

// Core domain types shared by the optimization engine and the API layer.

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OrderInput is a pending cylinder delivery as received from order intake.
type OrderInput struct {
	ID           string  `json:"id"`
	CustomerName string  `json:"customerName,omitempty"`
	Address      string  `json:"address,omitempty"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Quantity     int     `json:"quantity"`
}

// DriverInput is an available driver/vehicle pair.
type DriverInput struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	VehicleNumber string `json:"vehicleNumber,omitempty"`
	MaxCapacity   int    `json:"maxCapacity"`
}

// Constraints carries the caller-tunable routing knobs. Zero values mean "use default".
type Constraints struct {
	MaxDistancePerRouteKm float64   `json:"maxDistancePerRouteKm,omitempty"`
	MaxStopsPerRoute      int       `json:"maxStopsPerRoute,omitempty"`
	TimeWindowStart       string    `json:"timeWindowStart,omitempty"` // HH:MM
	TimeWindowEnd         string    `json:"timeWindowEnd,omitempty"`   // HH:MM
	ServiceTimeMin        int       `json:"serviceTimeMin,omitempty"`
	DepotLocation         *GeoPoint `json:"depotLocation,omitempty"`
}

type OptimizeRequest struct {
	Orders       []OrderInput  `json:"orders"`
	Drivers      []DriverInput `json:"drivers"`
	Constraints  *Constraints  `json:"constraints,omitempty"`
	Algorithm    string        `json:"algorithm,omitempty"` // "solver" (default) or "greedy"
	TimeBudgetMs int           `json:"timeBudgetMs,omitempty"`
	Seed         int64         `json:"seed,omitempty"`
}

// Stop is one visit on a produced route, in driving order.
type Stop struct {
	Sequence           int     `json:"sequence"`
	OrderID            string  `json:"orderId"`
	CustomerName       string  `json:"customerName,omitempty"`
	Address            string  `json:"address,omitempty"`
	Lat                float64 `json:"lat"`
	Lng                float64 `json:"lng"`
	Quantity           int     `json:"quantity"`
	ArrivalTime        string  `json:"arrivalTime,omitempty"` // HH:MM wall clock
	DistanceFromPrevKm float64 `json:"distanceFromPrevKm"`
}

type RoutePlan struct {
	RouteID           string  `json:"routeId"`
	DriverID          string  `json:"driverId"`
	DriverName        string  `json:"driverName,omitempty"`
	VehicleNumber     string  `json:"vehicleNumber,omitempty"`
	Stops             []Stop  `json:"stops"`
	TotalDistanceKm   float64 `json:"totalDistanceKm"`
	TotalTimeMin      int     `json:"totalTimeMin"`
	TotalLoad         int     `json:"totalLoad"`
	OptimizationScore float64 `json:"optimizationScore"`
}

type Metrics struct {
	TotalDistanceKm       float64 `json:"totalDistanceKm"`
	TotalStops            int     `json:"totalStops"`
	TotalRoutes           int     `json:"totalRoutes"`
	AvgStopsPerRoute      float64 `json:"avgStopsPerRoute"`
	AvgDistancePerRouteKm float64 `json:"avgDistancePerRouteKm"`
	OptimizationScore     float64 `json:"optimizationScore"`
}

type OptimizeResponse struct {
	Success           bool        `json:"success"`
	BatchID           string      `json:"batchId,omitempty"`
	Routes            []RoutePlan `json:"routes"`
	UnassignedOrders  []string    `json:"unassignedOrders"`
	Metrics           Metrics     `json:"metrics"`
	OptimizationScore float64     `json:"optimizationScore"`
}

// ProgressEvent is one solver progress snapshot streamed to websocket clients.
type ProgressEvent struct {
	Iterations int     `json:"iterations"`
	BestCost   float64 `json:"bestCost"`
	ElapsedMs  int64   `json:"elapsedMs"`
	Done       bool    `json:"done"`
}
