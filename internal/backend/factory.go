package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"payslip/internal/adapters"
	"payslip/internal/catalog/memory"
	"payslip/internal/storage"
)

// suggestionTTL bounds how stale SQLite suggestions shown in the editor may be.
const suggestionTTL = 30 * time.Second

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite catalog", "db_path", config.SQLiteDBPath, "suggestion_ttl", suggestionTTL)

	cached := adapters.NewCachedCatalog(repo, suggestionTTL)
	return &BackendResult{
		Catalog: cached,
		Cleanup: repo.Close,
		Ping:    repo.Ping,
		Cache:   cached,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog seed: %w", err)
	}

	f.logger.Info("Initialized memory catalog", "catalog_path", config.CatalogPath)

	return &BackendResult{Catalog: store}, nil
}
