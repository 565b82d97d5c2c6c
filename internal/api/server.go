package api

import (
	"context"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"lpgroute/internal/config"
	"lpgroute/internal/engine"
	"lpgroute/internal/geo"
	"lpgroute/internal/model"
	"lpgroute/internal/store"
)

type Server struct {
	Store  store.Store
	Engine *engine.Engine
	Broker *ProgressBroker
}

// NewServer wires the optimization engine and its collaborators from config.
// Without DATABASE_URL plans are kept in memory; without a provider URL the
// matrix builder uses the haversine estimate only.
func NewServer(cfg config.Config) (*Server, error) {
	var s store.Store
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := sp.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		s = sp
	}

	e := engine.New()
	e.Depot = model.GeoPoint{Lat: cfg.Depot.Lat, Lng: cfg.Depot.Lng}
	if cfg.AvgSpeedKmh > 0 {
		e.SpeedKmh = cfg.AvgSpeedKmh
	}
	if cfg.SolverBudgetMs > 0 {
		e.TimeBudget = time.Duration(cfg.SolverBudgetMs) * time.Millisecond
	}

	if cfg.ProviderURL != "" {
		var provider geo.DistanceProvider = geo.NewOSRMProvider(cfg.ProviderURL)
		provider = geo.NewRateLimitedProvider(provider, cfg.ProviderRPS, cfg.ProviderBurst)
		if cfg.RedisURL != "" {
			if opt, err := redis.ParseURL(cfg.RedisURL); err == nil {
				provider = geo.NewCachedProvider(provider, redis.NewClient(opt), 24*time.Hour)
			}
		}
		e.Matrix = &geo.MatrixBuilder{Provider: provider}
	}

	return &Server{Store: s, Engine: e, Broker: NewProgressBroker()}, nil
}
