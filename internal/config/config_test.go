package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.ListenAddr != ":8080" || c.AvgSpeedKmh != 30 || c.SolverBudgetMs != 30000 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Depot.Lat == 0 || c.Depot.Lng == 0 {
		t.Fatal("depot default missing")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "listenAddr: \":9999\"\navgSpeedKmh: 25\ndepot:\n  lat: 24.1\n  lng: 120.6\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7777")
	t.Setenv("DATABASE_URL", "postgres://test")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.AvgSpeedKmh != 25 || c.Depot.Lat != 24.1 {
		t.Fatalf("file not applied: %+v", c)
	}
	if c.ListenAddr != ":7777" {
		t.Fatalf("env override lost: %s", c.ListenAddr)
	}
	if c.DatabaseURL != "postgres://test" {
		t.Fatalf("database url: %s", c.DatabaseURL)
	}
}

func TestLoadMissingFileOK(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("listenAddr: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
