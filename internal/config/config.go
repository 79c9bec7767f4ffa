package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"makeros/internal/core"
)

type Config struct {
	// HTTP Server
	Port string `yaml:"port"`

	// Database
	SQLiteDBPath string `yaml:"sqlite_db_path"`

	// Gateway latency simulation. Zero disables the artificial delay.
	LoadLatency time.Duration `yaml:"load_latency"`
	SaveLatency time.Duration `yaml:"save_latency"`

	// Budget ceiling as a decimal amount, e.g. "2500.00".
	TotalBudget string `yaml:"total_budget"`

	// Sync pipeline
	SyncRetries int           `yaml:"sync_retries"`
	SyncBackoff time.Duration `yaml:"sync_backoff"`

	// AMQP; an empty URL disables the backup pipeline.
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Gemini; an empty API key disables the suggestion provider.
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	// Backup worker
	ExportDir string `yaml:"export_dir"`
}

// Load reads configuration from the environment, with an optional YAML file
// (MAKEROS_CONFIG_FILE) layered underneath: environment variables win over
// file values, file values win over defaults.
func Load() *Config {
	cfg := defaults()

	if path := os.Getenv("MAKEROS_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "config file %s: %v\n", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.LoadLatency = getEnvDuration("LOAD_LATENCY", cfg.LoadLatency)
	cfg.SaveLatency = getEnvDuration("SAVE_LATENCY", cfg.SaveLatency)
	cfg.TotalBudget = getEnv("TOTAL_BUDGET", cfg.TotalBudget)
	cfg.SyncRetries = getEnvInt("SYNC_RETRIES", cfg.SyncRetries)
	cfg.SyncBackoff = getEnvDuration("SYNC_BACKOFF", cfg.SyncBackoff)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.ExportDir = getEnv("EXPORT_DIR", cfg.ExportDir)

	return cfg
}

func defaults() *Config {
	return &Config{
		Port:         "8081",
		SQLiteDBPath: "./data/makeros.db",
		LoadLatency:  1200 * time.Millisecond,
		SaveLatency:  600 * time.Millisecond,
		TotalBudget:  "2500.00",
		SyncRetries:  3,
		SyncBackoff:  2 * time.Second,
		AMQPExchange: "makeros",
		AMQPQueue:    "snapshot_saved",
		GeminiModel:  "gemini-3-flash-preview",
		ExportDir:    "./exports",
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Budget parses the configured ceiling into cents.
func (c *Config) Budget() (core.Money, error) {
	cents, err := core.ParseDecimalToCents(c.TotalBudget)
	if err != nil {
		return core.Money{}, fmt.Errorf("invalid total budget %q: %w", c.TotalBudget, err)
	}
	return core.Money{Cents: cents}, nil
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.LoadLatency < 0 {
		errors = append(errors, fmt.Sprintf("invalid load latency %v: must not be negative", c.LoadLatency))
	}
	if c.SaveLatency < 0 {
		errors = append(errors, fmt.Sprintf("invalid save latency %v: must not be negative", c.SaveLatency))
	}

	if _, err := c.Budget(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.SyncRetries < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync retries %d: must be at least 1", c.SyncRetries))
	} else if c.SyncRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid sync retries %d: must be at most 10", c.SyncRetries))
	}
	if c.SyncBackoff < 0 {
		errors = append(errors, fmt.Sprintf("invalid sync backoff %v: must not be negative", c.SyncBackoff))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GeminiAPIKey != "" && c.GeminiModel == "" {
		errors = append(errors, "Gemini model cannot be empty when an API key is provided")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
