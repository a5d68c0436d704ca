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

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/prodmatch/ai"
	"github.com/poiesic/prodmatch/ai/mock"
	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/match"
	"github.com/poiesic/prodmatch/retry"
	"github.com/poiesic/prodmatch/storage"
	"github.com/poiesic/prodmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) storage.CatalogRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryCatalog()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

// noWait skips the inter-batch throttle.
func noWait() match.DispatcherOption {
	return match.WithClock(time.Now, func(context.Context, time.Duration) error { return nil })
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestImporter_ImportFile(t *testing.T) {
	repo := setupRepo(t)
	embedder := mock.NewMockEmbedder()
	var progressOut bytes.Buffer

	importer, err := NewImporter(repo, embedder,
		WithBatchSize(2), WithDispatcherOptions(noWait()), WithProgress(&progressOut))
	require.NoError(t, err)

	stats, err := importer.ImportFile(context.Background(), "catalog.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Rows: 4, Skipped: 1, Imported: 3}, stats)
	assert.Equal(t, 2, embedder.CallCount(), "three rows in batches of two")

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	name, err := repo.LongName(context.Background(), "X1")
	require.NoError(t, err)
	assert.Equal(t, "Lipton Diet Green Tea (20oz)", name)

	entry, err := repo.GetEntry(context.Background(), core.IDFromContent("Sprite Lemon-Lime 2L").String())
	require.NoError(t, err)
	assert.Empty(t, entry.Name)

	// The imported vector finds its own entry at distance zero.
	neighbors, err := repo.FindNearest(context.Background(),
		mock.DeterministicVector("Coca-Cola Classic 12oz Can", mock.DefaultDimensions), 1)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "X2", neighbors[0].DatapointID)
	assert.InDelta(t, 0, neighbors[0].Score, 1e-5)

	assert.Contains(t, progressOut.String(), "Importing: 3/3")
}

func TestImporter_FailedBatchContinues(t *testing.T) {
	repo := setupRepo(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		if texts[0] == "bad" {
			return nil, &ai.ServiceError{Service: "embedding", Op: "test", Kind: ai.Transient, Err: errors.New("unavailable")}
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.DeterministicVector(text, 8)
		}
		return out, nil
	}

	importer, err := NewImporter(repo, embedder,
		WithBatchSize(1), WithRetryPolicy(fastPolicy()), WithDispatcherOptions(noWait()))
	require.NoError(t, err)

	stats, err := importer.Import(context.Background(), []Row{
		{Name: "A", LongName: "good one"},
		{Name: "B", LongName: "bad"},
		{Name: "C", LongName: "good two"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1+2+1, embedder.CallCount())

	_, err = repo.GetEntry(context.Background(), "B")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestImporter_StoreFailureStops(t *testing.T) {
	repo, backend, err := badger.NewMemoryCatalog()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	importer, err := NewImporter(repo, mock.NewMockEmbedder(), WithBatchSize(1), WithDispatcherOptions(noWait()))
	require.NoError(t, err)

	stats, err := importer.Import(context.Background(), []Row{
		{Name: "A", LongName: "one"},
		{Name: "B", LongName: "two"},
	})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.Zero(t, stats.Imported)
}

func TestImporter_Cancelled(t *testing.T) {
	repo := setupRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	importer, err := NewImporter(repo, mock.NewMockEmbedder(), WithDispatcherOptions(noWait()))
	require.NoError(t, err)

	_, err = importer.Import(ctx, []Row{{Name: "A", LongName: "one"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewImporter_Validation(t *testing.T) {
	repo := setupRepo(t)

	_, err := NewImporter(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewImporter(repo, nil)
	assert.ErrorIs(t, err, match.ErrEmbedderRequired)

	_, err = NewImporter(repo, mock.NewMockEmbedder(), WithBatchSize(0))
	assert.ErrorIs(t, err, match.ErrInvalidBatchSize)

	_, err = NewImporter(repo, mock.NewMockEmbedder(), WithRate(-1))
	assert.ErrorIs(t, err, match.ErrInvalidRate)

	_, err = NewImporter(repo, mock.NewMockEmbedder(), WithRetryPolicy(retry.Policy{}))
	assert.Error(t, err)
}

func TestExportJSONL(t *testing.T) {
	repo := setupRepo(t)
	_, err := repo.AddEntries(context.Background(),
		&core.CatalogEntry{ID: "X2", Name: "X2", LongName: "Coca-Cola <Classic> & Co", Vector: []float32{0, 2}},
		&core.CatalogEntry{ID: "X1", Name: "X1", LongName: "Lipton Diet Green Tea (20oz)", Vector: []float32{3, 4}},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := ExportJSONL(context.Background(), repo, &buf, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"id":"X1","embedding":"Lipton Diet Green Tea (20oz)"}`, lines[0])
	assert.Equal(t, `{"id":"X2","embedding":"Coca-Cola <Classic> & Co"}`, lines[1])
}

func TestExportJSONL_WithVectors(t *testing.T) {
	repo := setupRepo(t)
	_, err := repo.AddEntries(context.Background(),
		&core.CatalogEntry{ID: "X1", LongName: "Lipton", Vector: []float32{3, 4}})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = ExportJSONL(context.Background(), repo, &buf, true)
	require.NoError(t, err)

	var line ExportLine
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "X1", line.ID)
	require.Len(t, line.Vector, 2)
	assert.InDelta(t, 0.6, line.Vector[0], 1e-6, "vectors are exported normalized")
	assert.InDelta(t, 0.8, line.Vector[1], 1e-6)
}

func TestExportImportRoundTrip(t *testing.T) {
	source := setupRepo(t)
	embedder := mock.NewMockEmbedder()
	importer, err := NewImporter(source, embedder, WithDispatcherOptions(noWait()))
	require.NoError(t, err)
	_, err = importer.ImportFile(context.Background(), "catalog.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = ExportJSONL(context.Background(), source, &buf, false)
	require.NoError(t, err)

	target := setupRepo(t)
	importer, err = NewImporter(target, embedder, WithDispatcherOptions(noWait()))
	require.NoError(t, err)
	stats, err := importer.ImportFile(context.Background(), "catalog.jsonl", &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Imported)

	name, err := target.LongName(context.Background(), "X2")
	require.NoError(t, err)
	assert.Equal(t, "Coca-Cola Classic 12oz Can", name)
}
