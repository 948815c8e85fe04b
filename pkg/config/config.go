package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/homeline-hub/homeline-go/pkg/climacloud"
)

// ErrInvalidConfig indicates the configuration failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Storage backends.
const (
	// BackendFile stores entries in a JSON state file.
	BackendFile = "file"

	// BackendSQLite stores entries and notices in an encrypted SQLite
	// database.
	BackendSQLite = "sqlite"

	// BackendMemory keeps everything in memory. Nothing survives a
	// restart; intended for trying the wizard out.
	BackendMemory = "memory"
)

// Duration is a time.Duration that unmarshals from YAML strings such
// as "10s" or "1m30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("%w: duration must be a string like \"10s\"", ErrInvalidConfig)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: bad duration %q", ErrInvalidConfig, s)
	}
	*d = Duration(parsed)
	return nil
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// CloudConfig configures the ClimaCloud API client.
type CloudConfig struct {
	// BaseURL is the API root.
	BaseURL string `yaml:"base_url"`

	// AppVersion is reported to the API on login.
	AppVersion string `yaml:"app_version"`

	// Timeout bounds one authentication attempt. Zero uses the linking
	// service default.
	Timeout Duration `yaml:"timeout"`
}

// StorageConfig selects and configures the entry storage backend.
type StorageConfig struct {
	// Backend is one of BackendFile, BackendSQLite or BackendMemory.
	Backend string `yaml:"backend"`

	// DataDir holds the state file or database.
	DataDir string `yaml:"data_dir"`

	// KeyFile is the master encryption key location for the sqlite
	// backend. Empty places it inside DataDir.
	KeyFile string `yaml:"key_file"`
}

// LogConfig configures operational and flow event logging.
type LogConfig struct {
	// Level is the slog level: debug, info, warn or error.
	Level string `yaml:"level"`

	// EventLog is the flow event log path. Empty disables the file
	// event log.
	EventLog string `yaml:"event_log"`
}

// SlogLevel maps the configured level name to a slog.Level.
func (c *LogConfig) SlogLevel() (slog.Level, error) {
	switch c.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Level)
	}
}

// LegacyAccount is one statically configured ClimaCloud account.
//
// Deprecated: static account configuration is replaced by the
// interactive setup flow and stops working in release 1.2.0. Accounts
// listed here are imported once at startup, which raises the
// deprecation notices.
type LegacyAccount struct {
	// Identifier is the account identifier (email address).
	Identifier string `yaml:"identifier"`

	// Credential is an already-issued API token for the account.
	Credential string `yaml:"credential"`
}

// Config is the hub configuration.
type Config struct {
	Cloud   CloudConfig   `yaml:"cloud"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`

	// Accounts is the deprecated static account block.
	Accounts []LegacyAccount `yaml:"accounts"`
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Cloud: CloudConfig{
			BaseURL:    climacloud.DefaultBaseURL,
			AppVersion: climacloud.DefaultAppVersion,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			DataDir: "data",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration file at path on top of the defaults.
// An empty file yields the defaults unchanged.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	cloud := climacloud.Config{BaseURL: c.Cloud.BaseURL, AppVersion: c.Cloud.AppVersion}
	if err := cloud.Validate(); err != nil {
		return fmt.Errorf("%w: cloud.base_url %q", ErrInvalidConfig, c.Cloud.BaseURL)
	}
	if c.Cloud.Timeout < 0 {
		return fmt.Errorf("%w: cloud.timeout must not be negative", ErrInvalidConfig)
	}

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("%w: storage.data_dir is required for the %s backend", ErrInvalidConfig, c.Storage.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown storage.backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	for i, account := range c.Accounts {
		if account.Identifier == "" {
			return fmt.Errorf("%w: accounts[%d] is missing its identifier", ErrInvalidConfig, i)
		}
		if account.Credential == "" {
			return fmt.Errorf("%w: account %q is missing its credential", ErrInvalidConfig, account.Identifier)
		}
	}

	return nil
}
