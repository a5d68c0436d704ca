// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/storage"
)

// CatalogRepository implements storage.CatalogRepository using pgx and pgvector.
type CatalogRepository struct {
	pool       *pgxpool.Pool
	dimensions int
	logger     *slog.Logger
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository connects to connString, verifies the connection and
// ensures the schema for vectors of the given dimensionality.
// Returns storage.CatalogRepository interface to enforce abstraction.
func NewCatalogRepository(ctx context.Context, connString string, dimensions int) (storage.CatalogRepository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := EnsureSchema(ctx, pool, dimensions); err != nil {
		pool.Close()
		return nil, err
	}

	return &CatalogRepository{
		pool:       pool,
		dimensions: dimensions,
		logger:     slog.Default().With("component", "postgres-catalog"),
	}, nil
}

// Close closes the connection pool.
func (r *CatalogRepository) Close() error {
	r.pool.Close()
	return nil
}

const upsertEntrySQL = `
INSERT INTO catalog_entries (datapoint_id, name, long_name, embedding, inserted_at, updated_at)
VALUES ($1, $2, $3, $4::vector, $5, $5)
ON CONFLICT (datapoint_id) DO UPDATE
SET name = EXCLUDED.name,
    long_name = EXCLUDED.long_name,
    embedding = EXCLUDED.embedding,
    updated_at = EXCLUDED.updated_at
RETURNING inserted_at, updated_at`

// AddEntries upserts entries in a single transaction.
func (r *CatalogRepository) AddEntries(ctx context.Context, entries ...*core.CatalogEntry) ([]*core.CatalogEntry, error) {
	for _, entry := range entries {
		if err := core.ValidateCatalogEntry(entry); err != nil {
			return nil, err
		}
		if len(entry.Vector) != r.dimensions {
			return nil, fmt.Errorf("%w: entry %s has %d dimensions, table has %d",
				storage.ErrDimensionMismatch, entry.ID, len(entry.Vector), r.dimensions)
		}
	}
	if len(entries) == 0 {
		return entries, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC().Truncate(time.Microsecond)
	batch := &pgx.Batch{}
	for _, entry := range entries {
		entry.Vector = storage.NormalizeVector(entry.Vector)
		batch.Queue(upsertEntrySQL, entry.ID, entry.Name, entry.LongName, pgvector.NewVector(entry.Vector), now)
	}

	results := tx.SendBatch(ctx, batch)
	for _, entry := range entries {
		if err := results.QueryRow().Scan(&entry.InsertedAt, &entry.UpdatedAt); err != nil {
			results.Close()
			return nil, fmt.Errorf("failed to upsert entry %s: %w", entry.ID, err)
		}
		entry.InsertedAt = entry.InsertedAt.UTC()
		entry.UpdatedAt = entry.UpdatedAt.UTC()
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("failed to upsert entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Debug("stored catalog entries", "count", len(entries))
	return entries, nil
}

const selectEntryColumns = `datapoint_id, name, long_name, embedding, inserted_at, updated_at`

func scanEntry(row pgx.Row) (*core.CatalogEntry, error) {
	var (
		entry core.CatalogEntry
		vec   pgvector.Vector
	)
	if err := row.Scan(&entry.ID, &entry.Name, &entry.LongName, &vec, &entry.InsertedAt, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	entry.Vector = vec.Slice()
	entry.InsertedAt = entry.InsertedAt.UTC()
	entry.UpdatedAt = entry.UpdatedAt.UTC()
	return &entry, nil
}

// GetEntry retrieves a single entry by datapoint identifier.
func (r *CatalogRepository) GetEntry(ctx context.Context, datapointID string) (*core.CatalogEntry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectEntryColumns+` FROM catalog_entries WHERE datapoint_id = $1`, datapointID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entry %s: %w", datapointID, err)
	}
	return entry, nil
}

// LongName returns the display name for a datapoint.
func (r *CatalogRepository) LongName(ctx context.Context, datapointID string) (string, error) {
	var longName string
	err := r.pool.QueryRow(ctx, `SELECT long_name FROM catalog_entries WHERE datapoint_id = $1`, datapointID).Scan(&longName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("failed to get long name for %s: %w", datapointID, err)
	}
	return longName, nil
}

// DeleteEntries removes entries in a single transaction. Nothing is removed
// when any identifier is missing.
func (r *CatalogRepository) DeleteEntries(ctx context.Context, datapointIDs ...string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, id := range datapointIDs {
		tag, err := tx.Exec(ctx, `DELETE FROM catalog_entries WHERE datapoint_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete entry %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
	}
	return tx.Commit(ctx)
}

// ForEach calls fn for every entry ordered by datapoint identifier.
func (r *CatalogRepository) ForEach(ctx context.Context, fn func(entry *core.CatalogEntry) error) error {
	rows, err := r.pool.Query(ctx, `SELECT `+selectEntryColumns+` FROM catalog_entries ORDER BY datapoint_id`)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return fmt.Errorf("failed to scan entry: %w", err)
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the number of catalog entries.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM catalog_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return int(count), nil
}

// FindNearest returns the k entries closest to vector by cosine distance.
func (r *CatalogRepository) FindNearest(ctx context.Context, vector []float32, k int) ([]core.Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", storage.ErrInvalidQuery, k)
	}
	if len(vector) != r.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, table has %d",
			storage.ErrDimensionMismatch, len(vector), r.dimensions)
	}

	rows, err := r.pool.Query(ctx, `
SELECT datapoint_id, embedding <=> $1::vector AS distance
FROM catalog_entries
ORDER BY distance, datapoint_id
LIMIT $2`, pgvector.NewVector(storage.NormalizeVector(vector)), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighbors: %w", err)
	}
	defer rows.Close()

	results := make([]core.Neighbor, 0, k)
	for rows.Next() {
		var (
			id       string
			distance float64
		)
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan neighbor: %w", err)
		}
		results = append(results, core.Neighbor{DatapointID: id, Score: float32(distance)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query neighbors: %w", err)
	}
	return results, nil
}
