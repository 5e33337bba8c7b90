// config/config.go
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	UnmatchedSkip   = "skip"
	UnmatchedRender = "render"

	defaultMinConfirmed = 500
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Addr joins host and port for net/http.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

type SourceConfig struct {
	TestingURL   string `yaml:"testing_url"`
	AuxiliaryCSV string `yaml:"auxiliary_csv"`
}

type PipelineConfig struct {
	CutoffDateStr   string    `yaml:"cutoff_date"`
	MinConfirmedOpt *int64    `yaml:"min_confirmed"`    // nil when unset; 0 is a valid threshold
	UnmatchedStates string    `yaml:"unmatched_states"` // "skip" or "render"
	CutoffDate      time.Time `yaml:"-"`                // Parsed from CutoffDateStr
	MinConfirmed    int64     `yaml:"-"`                // Resolved from MinConfirmedOpt
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Source   SourceConfig   `yaml:"source"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
}

// Load reads the YAML file at path, then applies defaults and environment overrides.
// A missing file is not an error; every setting has a default.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg = applyDefaults(cfg)
	cfg = applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg Config) Config {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8000"
	}
	if cfg.Source.TestingURL == "" {
		cfg.Source.TestingURL = "https://api.covid19india.org/state_test_data.json"
	}
	if cfg.Source.AuxiliaryCSV == "" {
		cfg.Source.AuxiliaryCSV = "data/auxiliary.csv"
	}
	if cfg.Pipeline.CutoffDateStr == "" {
		cfg.Pipeline.CutoffDateStr = "2020-04-09"
	}
	if cfg.Pipeline.MinConfirmedOpt == nil {
		minConfirmed := int64(defaultMinConfirmed)
		cfg.Pipeline.MinConfirmedOpt = &minConfirmed
	}
	if cfg.Pipeline.UnmatchedStates == "" {
		cfg.Pipeline.UnmatchedStates = UnmatchedSkip
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		cfg.Server.Port = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.Server.Port = val
	}
	if val := os.Getenv("TESTING_URL"); val != "" {
		cfg.Source.TestingURL = val
	}
	if val := os.Getenv("AUXILIARY_CSV"); val != "" {
		cfg.Source.AuxiliaryCSV = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	return cfg
}

// Validate parses derived fields and rejects values the pipeline cannot use.
func (c *Config) Validate() error {
	cutoff, err := time.Parse("2006-01-02", c.Pipeline.CutoffDateStr)
	if err != nil {
		return fmt.Errorf("failed to parse cutoff_date: %w", err)
	}
	c.Pipeline.CutoffDate = cutoff

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	if c.Pipeline.MinConfirmedOpt != nil {
		c.Pipeline.MinConfirmed = *c.Pipeline.MinConfirmedOpt
	}
	if c.Pipeline.MinConfirmed < 0 {
		return fmt.Errorf("min_confirmed must be >= 0, got %d", c.Pipeline.MinConfirmed)
	}
	switch c.Pipeline.UnmatchedStates {
	case UnmatchedSkip, UnmatchedRender:
	default:
		return fmt.Errorf("unmatched_states must be %q or %q, got %q", UnmatchedSkip, UnmatchedRender, c.Pipeline.UnmatchedStates)
	}
	return nil
}
