// Package catalog stores harvested publication records in PostgreSQL. The
// catalog is the durable input of the index builder: records are appended in
// harvest order as they arrive from the collector, and a rebuild reads them
// back in that same order so document IDs stay stable for identical input.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"pubsearch/internal/index"
	apperrors "pubsearch/pkg/errors"
	"pubsearch/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS publications (
	pos      BIGSERIAL PRIMARY KEY,
	title    TEXT NOT NULL DEFAULT '',
	url      TEXT NOT NULL DEFAULT '',
	date     TEXT NOT NULL DEFAULT '',
	abstract TEXT NOT NULL DEFAULT '',
	authors  JSONB NOT NULL DEFAULT '[]'
)`

// Store provides append and scan access to the publication catalog.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// New creates a Store backed by the given PostgreSQL client.
func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "catalog"),
	}
}

// EnsureSchema creates the publications table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating publications table: %w", err)
	}
	return nil
}

// Append stores one harvested record at the end of the catalog.
func (s *Store) Append(ctx context.Context, rec index.Record) error {
	authors, err := json.Marshal(rec.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO publications (title, url, date, abstract, authors)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.Title, rec.URL, rec.Date, rec.Abstract, authors,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting publication: %v", apperrors.ErrCatalogUnavailable, err)
	}
	return nil
}

// AppendBatch stores multiple records in a single transaction, preserving
// their order.
func (s *Store) AppendBatch(ctx context.Context, recs []index.Record) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO publications (title, url, date, abstract, authors)
			 VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for _, rec := range recs {
			authors, err := json.Marshal(rec.Authors)
			if err != nil {
				return fmt.Errorf("marshaling authors: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, rec.Title, rec.URL, rec.Date, rec.Abstract, authors); err != nil {
				return fmt.Errorf("inserting publication: %w", err)
			}
		}
		return nil
	})
}

// ListAll returns every record in harvest order. This is the exact input
// sequence the index builder consumes.
func (s *Store) ListAll(ctx context.Context) ([]index.Record, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT title, url, date, abstract, authors FROM publications ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying publications: %v", apperrors.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var recs []index.Record
	for rows.Next() {
		var rec index.Record
		var authors []byte
		if err := rows.Scan(&rec.Title, &rec.URL, &rec.Date, &rec.Abstract, &authors); err != nil {
			return nil, fmt.Errorf("scanning publication row: %w", err)
		}
		if err := json.Unmarshal(authors, &rec.Authors); err != nil {
			return nil, fmt.Errorf("parsing authors: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating publications: %w", err)
	}
	s.logger.Debug("catalog scan complete", "records", len(recs))
	return recs, nil
}

// Count returns the number of records in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM publications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting publications: %v", apperrors.ErrCatalogUnavailable, err)
	}
	return n, nil
}

// Truncate removes every record, for a full re-harvest.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, `TRUNCATE publications RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncating publications: %w", err)
	}
	return nil
}
