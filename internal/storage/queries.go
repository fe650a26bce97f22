package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const listSeedTitles = `-- name: ListSeedTitles :many
SELECT title FROM catalog_titles
WHERE kind = ? AND position IS NOT NULL
ORDER BY position, id
`

func (q *Queries) ListSeedTitles(ctx context.Context, kind string) ([]string, error) {
	return q.titles(ctx, listSeedTitles, kind)
}

const listSuggestions = `-- name: ListSuggestions :many
SELECT title FROM catalog_titles
WHERE kind = ?
ORDER BY uses DESC, COALESCE(position, 1000000), id
LIMIT ?
`

func (q *Queries) ListSuggestions(ctx context.Context, kind string, limit int64) ([]string, error) {
	return q.titles(ctx, listSuggestions, kind, limit)
}

const recordTitle = `-- name: RecordTitle :exec
INSERT INTO catalog_titles (kind, title, uses, last_used_at)
VALUES (?, ?, 1, CURRENT_TIMESTAMP)
ON CONFLICT (kind, title) DO UPDATE
SET uses = uses + 1, last_used_at = CURRENT_TIMESTAMP
`

type RecordTitleParams struct {
	Kind  string
	Title string
}

func (q *Queries) RecordTitle(ctx context.Context, arg RecordTitleParams) error {
	_, err := q.db.ExecContext(ctx, recordTitle, arg.Kind, arg.Title)
	return err
}

const countTitleUses = `-- name: CountTitleUses :one
SELECT uses FROM catalog_titles WHERE kind = ? AND title = ?
`

func (q *Queries) CountTitleUses(ctx context.Context, kind, title string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTitleUses, kind, title)
	var uses int64
	err := row.Scan(&uses)
	return uses, err
}

func (q *Queries) titles(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		items = append(items, title)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
