// Package cli provides common initialization shared by cmd/sbtalks and
// cmd/sbtalks-report: env loading, logging, config validation and the
// reference-data and store bootstrap.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"sbtalks/internal/backend"
	"sbtalks/internal/config"
	"sbtalks/internal/geo"
	"sbtalks/internal/log"
	"sbtalks/internal/tabular"
)

// SetupLogger initializes structured logging with default settings and
// sets it as the process default.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// LoadReferenceData loads the center and ZIP references. Missing or empty
// reference data is fatal: nothing downstream can run without it.
func LoadReferenceData(ctx context.Context, logger *log.Logger, cfg *config.Config) (geo.CenterSet, geo.ZipIndex) {
	centers, err := geo.LoadCenters(ctx, tabular.CSVFile{Path: cfg.CentersPath}, geo.DefaultCenterColumns())
	if err != nil {
		logger.Error("Failed to load center reference", log.FieldError, err, log.FieldPath, cfg.CentersPath)
		os.Exit(1)
	}

	zips, err := geo.LoadZipIndex(ctx, tabular.CSVFile{Path: cfg.ZipIndexPath}, geo.DefaultZipColumns())
	if err != nil {
		logger.Error("Failed to load zip index", log.FieldError, err, log.FieldPath, cfg.ZipIndexPath)
		os.Exit(1)
	}

	logger.Info("Loaded reference data",
		log.FieldOperation, log.OpStartup,
		"centers", centers.Len(),
		"zips", zips.Len())
	return centers, zips
}

// InitStore creates the configured masters backend.
// Returns the store result or exits the process on failure.
func InitStore(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.Result {
	factory := backend.NewFactory(logger)
	result, err := factory.CreateStore(ctx, backend.Config{
		Type:       backend.Type(cfg.MastersBackend),
		MastersDir: cfg.MastersDir,
		SQLitePath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize masters store", log.FieldError, err, log.FieldBackend, cfg.MastersBackend)
		os.Exit(1)
	}
	return result
}
