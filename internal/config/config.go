// Package config assembles runtime settings for the reckon commands
// from defaults, an optional YAML file, and environment variables, in
// rising precedence. A .env file in the working directory is honored
// when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the process and serve commands.
type Config struct {
	// ListenAddr is the HTTP server bind address.
	ListenAddr string

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration

	// QueueSize bounds the decode queue of a settlement run. Zero keeps
	// the pipeline default.
	QueueSize int

	// AuditFile receives the hash-chained outcome journal when set.
	AuditFile string

	// SQLiteReport is the path of the SQLite report database when set.
	SQLiteReport string

	// ReportDatabaseURL is the PostgreSQL report DSN when set.
	ReportDatabaseURL string

	// Debug switches logging to a console encoder at debug level.
	Debug bool
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ListenAddr:      ":8080",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the configuration from defaults, the YAML file at path
// (when non-empty), and environment variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// fileConfig mirrors Config with optional keys so an absent key leaves
// the lower-precedence value in place.
type fileConfig struct {
	ListenAddr        *string `yaml:"listen_addr"`
	ShutdownTimeout   *string `yaml:"shutdown_timeout"`
	QueueSize         *int    `yaml:"queue_size"`
	AuditFile         *string `yaml:"audit_file"`
	SQLiteReport      *string `yaml:"sqlite_report"`
	ReportDatabaseURL *string `yaml:"report_database_url"`
	Debug             *bool   `yaml:"debug"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.ListenAddr != nil {
		c.ListenAddr = *fc.ListenAddr
	}
	if fc.ShutdownTimeout != nil {
		d, err := time.ParseDuration(*fc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown_timeout in config file: %w", err)
		}
		c.ShutdownTimeout = d
	}
	if fc.QueueSize != nil {
		c.QueueSize = *fc.QueueSize
	}
	if fc.AuditFile != nil {
		c.AuditFile = *fc.AuditFile
	}
	if fc.SQLiteReport != nil {
		c.SQLiteReport = *fc.SQLiteReport
	}
	if fc.ReportDatabaseURL != nil {
		c.ReportDatabaseURL = *fc.ReportDatabaseURL
	}
	if fc.Debug != nil {
		c.Debug = *fc.Debug
	}

	return nil
}

func (c *Config) applyEnv() error {
	var invalid []string

	if v := os.Getenv("RECKON_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("RECKON_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			invalid = append(invalid, "RECKON_SHUTDOWN_TIMEOUT")
		} else {
			c.ShutdownTimeout = d
		}
	}
	if v := os.Getenv("RECKON_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			invalid = append(invalid, "RECKON_QUEUE_SIZE")
		} else {
			c.QueueSize = n
		}
	}
	if v := os.Getenv("RECKON_AUDIT_FILE"); v != "" {
		c.AuditFile = v
	}
	if v := os.Getenv("RECKON_SQLITE_REPORT"); v != "" {
		c.SQLiteReport = v
	}
	if v := os.Getenv("RECKON_REPORT_DATABASE_URL"); v != "" {
		c.ReportDatabaseURL = v
	}
	if v := os.Getenv("RECKON_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, "RECKON_DEBUG")
		} else {
			c.Debug = b
		}
	}

	if len(invalid) > 0 {
		return errors.New("invalid environment values: " + strings.Join(invalid, ", "))
	}

	return nil
}

// Validate checks the assembled configuration and reports every problem
// at once.
func (c *Config) Validate() error {
	var problems []string

	if c.ListenAddr == "" {
		problems = append(problems, "listen address must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		problems = append(problems, "shutdown timeout must be positive")
	}
	if c.QueueSize < 0 {
		problems = append(problems, "queue size must not be negative")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}

	return nil
}
