package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := applyDefaults(Config{})

	if cfg.Server.Addr() != "127.0.0.1:8000" {
		t.Errorf("expected 127.0.0.1:8000, got %s", cfg.Server.Addr())
	}
	if cfg.Pipeline.MinConfirmedOpt == nil || *cfg.Pipeline.MinConfirmedOpt != 500 {
		t.Errorf("expected 500, got %v", cfg.Pipeline.MinConfirmedOpt)
	}
	if cfg.Pipeline.UnmatchedStates != UnmatchedSkip {
		t.Errorf("expected skip policy, got %s", cfg.Pipeline.UnmatchedStates)
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TESTING_URL", "http://localhost/data.json")

	cfg := applyEnv(Config{})

	if cfg.Server.Port != "9090" {
		t.Errorf("expected 9090, got %s", cfg.Server.Port)
	}
	if cfg.Source.TestingURL != "http://localhost/data.json" {
		t.Errorf("unexpected testing url %s", cfg.Source.TestingURL)
	}
}

func TestLoad_FileAndCutoff(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	content := "server:\n  port: \"8123\"\npipeline:\n  cutoff_date: \"2020-05-01\"\n  unmatched_states: render\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8123" {
		t.Errorf("expected 8123, got %s", cfg.Server.Port)
	}
	want := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.Pipeline.CutoffDate.Equal(want) {
		t.Errorf("expected cutoff %v, got %v", want, cfg.Pipeline.CutoffDate)
	}
	if cfg.Pipeline.UnmatchedStates != UnmatchedRender {
		t.Errorf("expected render policy, got %s", cfg.Pipeline.UnmatchedStates)
	}
}

func TestLoad_ZeroMinConfirmed(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("pipeline:\n  min_confirmed: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Pipeline.MinConfirmed != 0 {
		t.Errorf("expected explicit zero threshold to be kept, got %d", cfg.Pipeline.MinConfirmed)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Pipeline.CutoffDateStr != "2020-04-09" {
		t.Errorf("expected default cutoff, got %s", cfg.Pipeline.CutoffDateStr)
	}
	if cfg.Pipeline.MinConfirmed != 500 {
		t.Errorf("expected default threshold 500, got %d", cfg.Pipeline.MinConfirmed)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Config){
		"bad cutoff":         func(c *Config) { c.Pipeline.CutoffDateStr = "09/04/2020" },
		"bad port":           func(c *Config) { c.Server.Port = "http" },
		"bad policy":         func(c *Config) { c.Pipeline.UnmatchedStates = "drop" },
		"negative threshold": func(c *Config) { c.Pipeline.MinConfirmedOpt = int64Ptr(-1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := applyDefaults(Config{})
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func int64Ptr(v int64) *int64 { return &v }
