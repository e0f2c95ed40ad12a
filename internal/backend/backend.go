// Package backend selects and constructs the master-store persistence
// backend from configuration.
package backend

import (
	"context"
	"fmt"

	"sbtalks/internal/log"
	"sbtalks/internal/storage"
)

// Type identifies a persistence backend.
type Type string

const (
	CSVBackend    Type = "csv"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// IsValid reports whether the type is a known backend.
func (t Type) IsValid() bool {
	switch t {
	case CSVBackend, SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

// Config holds configuration for backend creation.
type Config struct {
	Type       Type
	MastersDir string // csv backend
	SQLitePath string // sqlite backend
}

// Result contains the store and an optional cleanup function.
type Result struct {
	Store   storage.Store
	Cleanup func() error
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a backend factory.
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateStore implements Factory.CreateStore.
func (f *DefaultFactory) CreateStore(_ context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Initialized sqlite master store", log.FieldPath, config.SQLitePath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory master store")
		return &Result{Store: storage.NewMemoryStore()}, nil

	default:
		store := storage.NewCSVStore(config.MastersDir)
		f.logger.Info("Initialized csv master store", log.FieldPath, config.MastersDir)
		return &Result{Store: store}, nil
	}
}
