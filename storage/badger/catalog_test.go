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

package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalog(t *testing.T) storage.CatalogRepository {
	t.Helper()
	repo, backend, err := NewMemoryCatalog()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func entry(id, longName string, vector ...float32) *core.CatalogEntry {
	return &core.CatalogEntry{ID: id, Name: id, LongName: longName, Vector: vector}
}

func TestAddEntries(t *testing.T) {
	repo := setupCatalog(t)
	ctx := context.Background()

	added, err := repo.AddEntries(ctx,
		entry("X1", "Lipton Diet Green Tea (20oz)", 3, 4),
		entry("X2", "Lipton Green Tea (20oz)", 1, 0),
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.False(t, added[0].InsertedAt.IsZero())
	assert.Equal(t, added[0].InsertedAt, added[0].UpdatedAt)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, added[0].Vector, 1e-6, "vectors are normalized on insert")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAddEntries_ReplaceKeepsInsertedAt(t *testing.T) {
	repo := setupCatalog(t)
	ctx := context.Background()

	first, err := repo.AddEntries(ctx, entry("X1", "Old Name", 1, 0))
	require.NoError(t, err)
	inserted := first[0].InsertedAt

	_, err = repo.AddEntries(ctx, entry("X1", "New Name", 0, 1))
	require.NoError(t, err)

	got, err := repo.GetEntry(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.LongName)
	assert.True(t, inserted.Equal(got.InsertedAt))
	assert.False(t, got.UpdatedAt.Before(got.InsertedAt))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddEntries_Invalid(t *testing.T) {
	repo := setupCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry *core.CatalogEntry
		want  error
	}{
		{"missing id", entry("", "Name", 1), core.ErrEmptyDatapointID},
		{"missing long name", entry("X1", " ", 1), core.ErrEmptyLongName},
		{"missing vector", entry("X1", "Name"), core.ErrEmptyVector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.AddEntries(ctx, tt.entry)
			assert.ErrorIs(t, err, core.ErrInvalidCatalogEntry)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "nothing is written when validation fails")
}

func TestGetEntryAndLongName(t *testing.T) {
	repo := setupCatalog(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx, entry("X1", "Lipton Diet Green Tea (20oz)", 1, 0))
	require.NoError(t, err)

	got, err := repo.GetEntry(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, "X1", got.ID)

	name, err := repo.LongName(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, "Lipton Diet Green Tea (20oz)", name)

	_, err = repo.GetEntry(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.LongName(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteEntries(t *testing.T) {
	repo := setupCatalog(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx, entry("X1", "One", 1, 0), entry("X2", "Two", 0, 1))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteEntries(ctx, "X1"))
	_, err = repo.GetEntry(ctx, "X1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = repo.DeleteEntries(ctx, "X2", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.GetEntry(ctx, "X2")
	assert.NoError(t, err, "failed delete must not remove other entries")
}

func TestForEach(t *testing.T) {
	repo := setupCatalog(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx, entry("B", "Bee", 1), entry("A", "Ay", 1), entry("C", "See", 1))
	require.NoError(t, err)

	var ids []string
	err = repo.ForEach(ctx, func(e *core.CatalogEntry) error {
		ids = append(ids, e.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ids)

	stop := errors.New("stop")
	calls := 0
	err = repo.ForEach(ctx, func(*core.CatalogEntry) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestFindNearest_NoEntries(t *testing.T) {
	repo := setupCatalog(t)

	results, err := repo.FindNearest(context.Background(), []float32{0.1, 0.2, 0.3}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindNearest_RankedByDistance(t *testing.T) {
	repo := setupCatalog(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx,
		entry("far", "Far", 0, 0, 1),
		entry("exact", "Exact", 1, 0, 0),
		entry("near", "Near", 0.9, 0.1, 0),
		entry("mid", "Mid", 0.7, 0.7, 0),
	)
	require.NoError(t, err)

	results, err := repo.FindNearest(ctx, []float32{2, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "exact", results[0].DatapointID)
	assert.InDelta(t, 0, results[0].Score, 1e-6)
	assert.Equal(t, "near", results[1].DatapointID)
	assert.Equal(t, "mid", results[2].DatapointID)
	for i := 0; i < len(results)-1; i++ {
		assert.LessOrEqual(t, results[i].Score, results[i+1].Score)
	}
}

func TestFindNearest_LimitAndTies(t *testing.T) {
	repo := setupCatalog(t)
	ctx := context.Background()

	for i := 9; i >= 0; i-- {
		_, err := repo.AddEntries(ctx, entry(fmt.Sprintf("P%d", i), "Same", 1, 1))
		require.NoError(t, err)
	}

	results, err := repo.FindNearest(ctx, []float32{1, 1}, 4)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, []string{"P0", "P1", "P2", "P3"}, []string{
		results[0].DatapointID, results[1].DatapointID, results[2].DatapointID, results[3].DatapointID,
	})
}

func TestFindNearest_InvalidQuery(t *testing.T) {
	repo := setupCatalog(t)
	ctx := context.Background()

	_, err := repo.FindNearest(ctx, []float32{1}, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = repo.FindNearest(ctx, nil, 5)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestFindNearest_DimensionMismatch(t *testing.T) {
	repo := setupCatalog(t)
	ctx := context.Background()

	_, err := repo.AddEntries(ctx, entry("X1", "Three dims", 1, 0, 0))
	require.NoError(t, err)

	_, err = repo.FindNearest(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestClosedBackend(t *testing.T) {
	repo, backend, err := NewMemoryCatalog()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = repo.GetEntry(context.Background(), "X1")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
