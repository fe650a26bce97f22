package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"payslip/internal/core"

	_ "modernc.org/sqlite"
)

// MaxSuggestions caps how many titles a suggestion list returns.
const MaxSuggestions = 50

// SQLiteRepository is the persistent title catalog.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable; used by /readyz.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Seed implements catalog.SeedReader
func (r *SQLiteRepository) Seed(ctx context.Context) (core.Seed, error) {
	earnings, err := r.queries.ListSeedTitles(ctx, string(core.Earning))
	if err != nil {
		return core.Seed{}, fmt.Errorf("list seed earnings: %w", err)
	}
	deductions, err := r.queries.ListSeedTitles(ctx, string(core.Deduction))
	if err != nil {
		return core.Seed{}, fmt.Errorf("list seed deductions: %w", err)
	}
	return core.Seed{Earnings: earnings, Deductions: deductions}, nil
}

// Suggestions implements catalog.SuggestionReader
func (r *SQLiteRepository) Suggestions(ctx context.Context, kind core.Kind) ([]string, error) {
	if !kind.IsValid() {
		return nil, core.ErrInvalidKind
	}
	titles, err := r.queries.ListSuggestions(ctx, string(kind), MaxSuggestions)
	if err != nil {
		return nil, fmt.Errorf("list %s suggestions: %w", kind, err)
	}
	return titles, nil
}

// Record implements catalog.TitleRecorder
func (r *SQLiteRepository) Record(ctx context.Context, kind core.Kind, title string) error {
	if !kind.IsValid() {
		return core.ErrInvalidKind
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	if err := r.queries.RecordTitle(ctx, RecordTitleParams{Kind: string(kind), Title: title}); err != nil {
		return fmt.Errorf("record %s title: %w", kind, err)
	}
	slog.DebugContext(ctx, "Title recorded", "kind", kind, "title", title)
	return nil
}

// Uses returns how often title was recorded, zero when unknown.
func (r *SQLiteRepository) Uses(ctx context.Context, kind core.Kind, title string) (int64, error) {
	n, err := r.queries.CountTitleUses(ctx, string(kind), title)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count title uses: %w", err)
	}
	return n, nil
}
