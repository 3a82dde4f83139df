package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Map       MapConfig       `yaml:"map"`
	Location  LocationConfig  `yaml:"location"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	// Driver is sqlite, postgres or memory.
	Driver     string         `yaml:"driver"`
	Key        string         `yaml:"key"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   DatabaseConfig `yaml:"postgres"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type MapConfig struct {
	Zoom          int `yaml:"zoom"`
	FormRestoreMS int `yaml:"form_restore_ms"`
}

// LocationConfig is an optional fixed position used instead of the
// browser's geolocation.
type LocationConfig struct {
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// DSN returns the connection string for the configured driver.
func (s StorageConfig) DSN() string {
	switch s.Driver {
	case "postgres":
		return s.Postgres.DSN()
	case "sqlite":
		return s.SQLitePath
	default:
		return ""
	}
}

// FormRestoreDelay returns the delay before a hidden form's layout is restored.
func (m MapConfig) FormRestoreDelay() time.Duration {
	return time.Duration(m.FormRestoreMS) * time.Millisecond
}

// Fixed reports whether a fixed location is configured.
func (l LocationConfig) Fixed() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaults() *Config {
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{Driver: "sqlite", Key: "workout", SQLitePath: "data/trailbook.db"},
		Map:     MapConfig{Zoom: 13, FormRestoreMS: 1000},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads config from a YAML file over built-in defaults, then applies
// environment variable overrides. Env vars use the prefix TRAILBOOK_:
//
//	TRAILBOOK_SERVER_HOST, TRAILBOOK_SERVER_PORT,
//	TRAILBOOK_STORAGE_DRIVER, TRAILBOOK_STORAGE_KEY, TRAILBOOK_SQLITE_PATH,
//	TRAILBOOK_DB_HOST, TRAILBOOK_DB_PORT, TRAILBOOK_DB_NAME,
//	TRAILBOOK_DB_USER, TRAILBOOK_DB_PASSWORD, TRAILBOOK_DB_SSLMODE,
//	TRAILBOOK_AUTH_API_KEY, TRAILBOOK_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRAILBOOK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("TRAILBOOK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TRAILBOOK_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("TRAILBOOK_STORAGE_KEY"); v != "" {
		cfg.Storage.Key = v
	}
	if v := os.Getenv("TRAILBOOK_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("TRAILBOOK_DB_HOST"); v != "" {
		cfg.Storage.Postgres.Host = v
	}
	if v := os.Getenv("TRAILBOOK_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.Port = port
		}
	}
	if v := os.Getenv("TRAILBOOK_DB_NAME"); v != "" {
		cfg.Storage.Postgres.Name = v
	}
	if v := os.Getenv("TRAILBOOK_DB_USER"); v != "" {
		cfg.Storage.Postgres.User = v
	}
	if v := os.Getenv("TRAILBOOK_DB_PASSWORD"); v != "" {
		cfg.Storage.Postgres.Password = v
	}
	if v := os.Getenv("TRAILBOOK_DB_SSLMODE"); v != "" {
		cfg.Storage.Postgres.SSLMode = v
	}
	if v := os.Getenv("TRAILBOOK_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("TRAILBOOK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key is required")
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		pg := c.Storage.Postgres
		if pg.Host == "" || pg.Port == 0 || pg.Name == "" || pg.User == "" {
			return fmt.Errorf("storage.postgres host, port, name and user are required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.driver %q is not one of sqlite, postgres, memory", c.Storage.Driver)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 19 {
		return fmt.Errorf("map.zoom must be between 0 and 19")
	}
	if c.Map.FormRestoreMS < 0 {
		return fmt.Errorf("map.form_restore_ms must not be negative")
	}
	if (c.Location.Latitude == nil) != (c.Location.Longitude == nil) {
		return fmt.Errorf("location.latitude and location.longitude must be set together")
	}
	if c.Location.Fixed() {
		if lat := *c.Location.Latitude; lat < -90 || lat > 90 {
			return fmt.Errorf("location.latitude must be between -90 and 90")
		}
		if lng := *c.Location.Longitude; lng < -180 || lng > 180 {
			return fmt.Errorf("location.longitude must be between -180 and 180")
		}
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
