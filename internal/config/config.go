package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// Config is the service configuration, read from an optional YAML file with
// environment overrides for the deployment-specific values.
type Config struct {
	ListenAddr  string `yaml:"listenAddr"`
	DatabaseURL string `yaml:"databaseUrl"`
	RedisURL    string `yaml:"redisUrl"`

	Depot struct {
		Lat float64 `yaml:"lat"`
		Lng float64 `yaml:"lng"`
	} `yaml:"depot"`

	AvgSpeedKmh    float64 `yaml:"avgSpeedKmh"`
	SolverBudgetMs int     `yaml:"solverBudgetMs"`

	// Optional external distance service (OSRM-compatible) and its throttling.
	ProviderURL   string  `yaml:"providerUrl"`
	ProviderRPS   float64 `yaml:"providerRps"`
	ProviderBurst int     `yaml:"providerBurst"`
}

func defaults() Config {
	c := Config{
		ListenAddr:     ":8080",
		AvgSpeedKmh:    30,
		SolverBudgetMs: 30000,
		ProviderRPS:    10,
		ProviderBurst:  5,
	}
	c.Depot.Lat = 25.0330
	c.Depot.Lng = 121.5654
	return c
}

// Load reads path when it exists, then applies env overrides. A missing file
// is not an error; a malformed one is.
func Load(path string) (Config, error) {
	c := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &c); err != nil {
				return c, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return c, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		c.ListenAddr = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("DISTANCE_PROVIDER_URL"); v != "" {
		c.ProviderURL = v
	}
	return c, nil
}
