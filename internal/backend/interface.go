package backend

import (
	"context"

	"payslip/internal/cache"
	"payslip/internal/catalog"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// PingFunc reports whether the backend can serve requests.
type PingFunc func(ctx context.Context) error

// BackendResult contains the catalog instance and optional hooks
type BackendResult struct {
	Catalog catalog.Catalog
	Cleanup CleanupFunc
	Ping    PingFunc
	// Cache is set when Catalog keeps expiring entries that need sweeping.
	Cache cache.Cleaner
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates catalog backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// memory
	CatalogPath string

	// sqlite
	SQLiteDBPath string
}

// BackendType represents the type of catalog backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
