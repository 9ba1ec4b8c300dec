package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/mocktrade/broker/rest"
	"github.com/rustyeddy/mocktrade/screen"
)

// Config is everything the desks and the stand-in server read at startup.
type Config struct {
	Backend BackendConfig    `json:"backend" yaml:"backend"`
	Display DisplayConfig    `json:"display" yaml:"display"`
	Export  ExportConfig     `json:"export" yaml:"export"`
	Log     LogConfig        `json:"log" yaml:"log"`
	Server  ServerConfig     `json:"server" yaml:"server"`
	Orders  screen.OrderForm `json:"orders" yaml:"orders"`
	Trades  screen.TradeForm `json:"trades" yaml:"trades"`
}

// BackendConfig points the desks at the order/trade REST API.
type BackendConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"` // e.g. "10s"; empty means none
}

// TimeoutDuration parses Timeout.
func (b BackendConfig) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(b.Timeout)
}

type DisplayConfig struct {
	Timezone string `json:"timezone" yaml:"timezone"` // IANA name, "Local" or "UTC"
}

// Location resolves Timezone. Empty means the machine's zone.
func (d DisplayConfig) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(d.Timezone)
}

type ExportConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// ServerConfig is for `mocktrade serve`.
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	DBPath         string   `json:"db_path,omitempty" yaml:"db_path,omitempty"` // empty means in-memory
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the fields that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if _, err := rest.NewClient(c.Backend.BaseURL, 0); err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if d, err := c.Backend.TimeoutDuration(); err != nil {
		return fmt.Errorf("backend.timeout: %w", err)
	} else if d < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}
	if _, err := c.Display.Location(); err != nil {
		return fmt.Errorf("display.timezone: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: rest.DefaultBaseURL,
		},
		Display: DisplayConfig{
			Timezone: "Local",
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Log: LogConfig{
			Level: "warn",
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Orders: screen.DefaultOrderForm(),
		Trades: screen.DefaultTradeForm(),
	}
}

// ApplyEnv loads envPath (or ./.env when empty) if present, then applies
// MOCKTRADE_* variables over the file settings. Variables already set in the
// process environment win over the .env file.
func (c *Config) ApplyEnv(envPath string) {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	setString(&c.Backend.BaseURL, "MOCKTRADE_BASE_URL")
	setString(&c.Backend.Timeout, "MOCKTRADE_TIMEOUT")
	setString(&c.Display.Timezone, "MOCKTRADE_TIMEZONE")
	setString(&c.Export.Dir, "MOCKTRADE_EXPORT_DIR")
	setString(&c.Log.Level, "MOCKTRADE_LOG_LEVEL")
	setString(&c.Log.File, "MOCKTRADE_LOG_FILE")
	setString(&c.Server.Addr, "MOCKTRADE_ADDR")
	setString(&c.Server.DBPath, "MOCKTRADE_DB_PATH")
	setString(&c.Orders.Trader, "MOCKTRADE_TRADER")
	setString(&c.Orders.Account, "MOCKTRADE_ACCOUNT")
	setString(&c.Trades.Account, "MOCKTRADE_ACCOUNT")
	setString(&c.Trades.Broker, "MOCKTRADE_BROKER")

	if origins := os.Getenv("MOCKTRADE_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
