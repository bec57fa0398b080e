package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// PostgresConfig holds the bet-record database connection
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// StreamConfig names the Redis streams the scanner reads and writes
type StreamConfig struct {
	// Raw frames from camera devices (fields: session_id, data)
	RawFrames string `yaml:"raw_frames"`

	// Accepted tickets for downstream consumers
	Accepted string `yaml:"accepted"`

	// Consumer group and ID
	ConsumerGroup string `yaml:"consumer_group"`
	ConsumerID    string `yaml:"consumer_id"`
}

// SessionConfig controls scan session behaviour
type SessionConfig struct {
	DebounceMS    int           `yaml:"debounce_ms"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Debounce returns the acceptance debounce window
func (s SessionConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Stream   StreamConfig   `yaml:"stream"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Redis: RedisConfig{
			URL: "localhost:6380",
		},
		Stream: StreamConfig{
			RawFrames:     "scans.raw",
			Accepted:      "tickets.accepted",
			ConsumerGroup: "ticket-scanner",
			ConsumerID:    "scanner-1",
		},
		Session: SessionConfig{
			DebounceMS:    2000,
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig builds the configuration from defaults, the YAML file named by
// CONFIG_PATH (if any), and environment variables, in that order
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Server.Addr = getEnv("SERVER_ADDR", c.Server.Addr)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Postgres.DSN = getEnv("POSTGRES_DSN", c.Postgres.DSN)

	c.Stream.RawFrames = getEnv("RAW_FRAMES_STREAM", c.Stream.RawFrames)
	c.Stream.Accepted = getEnv("ACCEPTED_STREAM", c.Stream.Accepted)
	c.Stream.ConsumerGroup = getEnv("CONSUMER_GROUP", c.Stream.ConsumerGroup)
	c.Stream.ConsumerID = getEnv("CONSUMER_ID", c.Stream.ConsumerID)

	if v := os.Getenv("SCAN_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCAN_DEBOUNCE_MS %q: %w", v, err)
		}
		c.Session.DebounceMS = ms
	}
	if v := os.Getenv("SESSION_IDLE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_IDLE_TTL %q: %w", v, err)
		}
		c.Session.IdleTTL = ttl
	}

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	return nil
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Addr == "" {
		problems = append(problems, "server addr is empty")
	}
	if c.Session.DebounceMS <= 0 {
		problems = append(problems, "debounce must be positive")
	}
	if c.Session.IdleTTL <= 0 {
		problems = append(problems, "session idle ttl must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		problems = append(problems, "session sweep interval must be positive")
	}
	if c.Stream.RawFrames == "" || c.Stream.ConsumerGroup == "" {
		problems = append(problems, "raw frames stream and consumer group are required")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
