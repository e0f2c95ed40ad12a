package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// Masters persistence
	MastersBackend string
	MastersDir     string
	SQLiteDBPath   string

	// Reference data
	CentersPath  string
	ZipIndexPath string

	// Outputs
	OutputDir string

	// AMQP (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Matcher
	ZipCacheSize int
}

func Load() *Config {
	cfg := &Config{
		MastersBackend: getEnv("MASTERS_BACKEND", "csv"),
		MastersDir:     getEnv("MASTERS_DIR", "./data/masters"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/masters.db"),

		CentersPath:  getEnv("CENTERS_PATH", "./reference/centers.csv"),
		ZipIndexPath: getEnv("ZIP_INDEX_PATH", "./reference/zip_coordinates.csv"),

		OutputDir: getEnv("OUTPUT_DIR", "./data/reports"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "sbtalks"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "run_completed"),

		ZipCacheSize: getEnvInt("ZIP_CACHE_SIZE", 4096),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"csv", "sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.MastersBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid masters backend '%s': must be one of %v", c.MastersBackend, validBackends))
	}

	if c.MastersBackend == "csv" && c.MastersDir == "" {
		errors = append(errors, "masters directory cannot be empty when using csv backend")
	}

	if c.MastersBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
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
	}

	if c.CentersPath == "" {
		errors = append(errors, "centers reference path cannot be empty")
	}
	if c.ZipIndexPath == "" {
		errors = append(errors, "zip index reference path cannot be empty")
	}
	if c.OutputDir == "" {
		errors = append(errors, "output directory cannot be empty")
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

	if c.ZipCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid zip cache size %d: must be at least 1", c.ZipCacheSize))
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
