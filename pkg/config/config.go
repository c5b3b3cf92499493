// Package config loads server settings from an optional YAML file with
// environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-pathfinder/pkg/logging"
	"github.com/dd0wney/cluso-pathfinder/pkg/validation"
)

// Config is the full server configuration.
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
	Search SearchConfig `yaml:"search"`
	NNG    NNGConfig    `yaml:"nng"`
	CORS   CORSConfig   `yaml:"cors"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SearchConfig bounds every A* search. Reloadable.
type SearchConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	MaxExpansions int           `yaml:"max_expansions"` // 0 = unlimited
	MaxGridCells  int           `yaml:"max_grid_cells"`
	Diagonal      bool          `yaml:"diagonal"` // default connectivity for grids
}

// NNGConfig controls the optional request/reply listener.
type NNGConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Listen      string        `yaml:"listen"`
	Compress    bool          `yaml:"compress"`
	RecvTimeout time.Duration `yaml:"recv_timeout"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    10 << 20,
		},
		Log: LogConfig{Level: "info"},
		Search: SearchConfig{
			Timeout:       5 * time.Second,
			MaxExpansions: 1_000_000,
			MaxGridCells:  1 << 20,
		},
		NNG: NNGConfig{
			Listen:      "tcp://127.0.0.1:40899",
			RecvTimeout: time.Second,
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode rejects unknown keys so typos do not silently fall back to defaults.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overlays PORT, HOST, LOG_LEVEL, CORS_* and PATHFINDER_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}

	env.stringVar("HOST", &c.HTTP.Host)
	env.intVar("PORT", &c.HTTP.Port)
	env.stringVar("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}
	env.boolVar("CORS_ALLOW_CREDENTIALS", &c.CORS.AllowCredentials)

	env.durationVar("PATHFINDER_SEARCH_TIMEOUT", &c.Search.Timeout)
	env.intVar("PATHFINDER_MAX_EXPANSIONS", &c.Search.MaxExpansions)
	env.intVar("PATHFINDER_MAX_GRID_CELLS", &c.Search.MaxGridCells)
	env.boolVar("PATHFINDER_DIAGONAL", &c.Search.Diagonal)

	if v, ok := lookup("PATHFINDER_NNG_LISTEN"); ok && v != "" {
		c.NNG.Listen = v
		c.NNG.Enabled = true
	}
	env.boolVar("PATHFINDER_NNG_COMPRESS", &c.NNG.Compress)

	return errors.Join(env.errs...)
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	httpV := validation.NewConfigValidator("http").
		Port("port", c.HTTP.Port).
		MinDuration("read_timeout", c.HTTP.ReadTimeout, time.Millisecond).
		MinDuration("write_timeout", c.HTTP.WriteTimeout, time.Millisecond).
		RangeDuration("shutdown_timeout", c.HTTP.ShutdownTimeout, time.Second, 10*time.Minute).
		Custom("max_body_bytes", func() error {
			if c.HTTP.MaxBodyBytes <= 0 {
				return fmt.Errorf("value %d must be positive", c.HTTP.MaxBodyBytes)
			}
			return nil
		})

	logV := validation.NewConfigValidator("log").
		Custom("level", func() error {
			_, err := logging.ParseLevel(c.Log.Level)
			return err
		})

	searchV := validation.NewConfigValidator("search").
		RangeDuration("timeout", c.Search.Timeout, time.Millisecond, 10*time.Minute).
		NonNegative("max_expansions", c.Search.MaxExpansions).
		Positive("max_grid_cells", c.Search.MaxGridCells)

	nngV := validation.NewConfigValidator("nng").
		When(c.NNG.Enabled, func(cv *validation.ConfigValidator) {
			cv.Required("listen", c.NNG.Listen).
				Custom("listen", func() error { return checkNNGAddr(c.NNG.Listen) }).
				MinDuration("recv_timeout", c.NNG.RecvTimeout, time.Millisecond)
		})

	return errors.Join(httpV.Validate(), logV.Validate(), searchV.Validate(), nngV.Validate())
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}

// LogLevel returns the parsed log level. Validate has already rejected
// unknown names.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

func checkNNGAddr(addr string) error {
	scheme, rest, ok := strings.Cut(addr, "://")
	if !ok || rest == "" {
		return fmt.Errorf("address %q must look like scheme://endpoint", addr)
	}
	switch scheme {
	case "tcp", "ipc", "inproc", "ws":
		return nil
	default:
		return fmt.Errorf("unsupported transport %q", scheme)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envReader parses typed variables and collects malformed values.
type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) stringVar(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) intVar(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("env %s: %q is not an integer", key, v))
			return
		}
		*dst = n
	}
}

func (e *envReader) boolVar(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("env %s: %q is not a boolean", key, v))
			return
		}
		*dst = b
	}
}

func (e *envReader) durationVar(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("env %s: %w", key, err))
			return
		}
		*dst = d
	}
}
