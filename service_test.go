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

package prodmatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/prodmatch/ai/mock"
	"github.com/poiesic/prodmatch/catalog"
	"github.com/poiesic/prodmatch/config"
	"github.com/poiesic/prodmatch/match"
	"github.com/poiesic/prodmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.File {
	cfg := config.Default()
	cfg.Storage.Path = ""
	cfg.Storage.InMemory = true
	return cfg
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), testConfig(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func seedCatalog(t *testing.T, svc *Service) {
	t.Helper()
	importer, err := svc.NewImporter()
	require.NoError(t, err)
	stats, err := importer.Import(context.Background(), []catalog.Row{
		{Name: "p1", LongName: "coca-cola classic 20oz"},
		{Name: "p2", LongName: "sprite lemon-lime 12oz"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, stats.Imported)
}

func TestNewService(t *testing.T) {
	t.Run("in-memory badger with injected provider", func(t *testing.T) {
		svc := newTestService(t)
		assert.NotNil(t, svc.Catalog())
		assert.NotNil(t, svc.Provider())
		assert.NotNil(t, svc.Matcher())
		assert.NotNil(t, svc.backend)
		assert.Equal(t, config.DriverBadger, svc.Config().Storage.Driver)
	})

	t.Run("on-disk badger", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Path = filepath.Join(t.TempDir(), "catalog")
		svc, err := NewService(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		assert.NoError(t, svc.Close())
	})

	t.Run("path is a file", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		cfg := config.Default()
		cfg.Storage.Path = tmpFile
		svc, err := NewService(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("injected catalog", func(t *testing.T) {
		repo, backend, err := badger.NewMemoryCatalog()
		require.NoError(t, err)
		defer backend.Close()

		svc, err := NewService(context.Background(), testConfig(), WithProvider(mock.NewMockProvider()), WithCatalog(repo))
		require.NoError(t, err)
		assert.Same(t, repo, svc.Catalog())
		assert.Nil(t, svc.backend)
		assert.NoError(t, svc.Close())
	})

	t.Run("invalid match config", func(t *testing.T) {
		cfg := testConfig()
		cfg.Match.ConfidentThreshold = 0.5
		cfg.Match.UncertainThreshold = 0.2
		_, err := NewService(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
		assert.ErrorIs(t, err, match.ErrInvalidThresholds)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := testConfig()
		cfg.Storage.Driver = "sqlite"
		_, err := NewService(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestService_MatchAndLookup(t *testing.T) {
	svc := newTestService(t)
	seedCatalog(t, svc)
	ctx := context.Background()

	result, err := svc.Match(ctx, []string{"coca-cola classic 20oz", "mystery soda"})
	require.NoError(t, err)
	require.Len(t, result.MatchedProducts, 1)
	assert.Equal(t, "p1", result.MatchedProducts[0].MatchedWith.DatapointID)
	require.NotNil(t, result.MatchedProducts[0].MatchedWith.LongName)
	assert.Equal(t, "coca-cola classic 20oz", *result.MatchedProducts[0].MatchedWith.LongName)
	require.Len(t, result.NoMatches, 1)
	assert.Equal(t, "mystery soda", result.NoMatches[0].Uploaded)

	lookup, err := svc.Lookup(ctx, "sprite lemon-lime 12oz")
	require.NoError(t, err)
	assert.Equal(t, match.TierConfident, lookup.Tier)
	require.NotEmpty(t, lookup.Neighbors)
	assert.Equal(t, "p2", lookup.Neighbors[0].DatapointID)

	_, err = svc.Lookup(ctx, "  ")
	assert.Error(t, err)
}

func TestService_NewServer(t *testing.T) {
	svc := newTestService(t)

	handler, err := svc.NewServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewProvider(t *testing.T) {
	cfg := config.Default().AIConfig()
	provider, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, provider.Close())

	cfg.Provider = "unknown"
	_, err = NewProvider(context.Background(), cfg)
	assert.Error(t, err)
}
