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

package neighbors

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	results map[float32][]core.Neighbor
	err     error
	calls   int
}

func (s *stubIndex) FindNearest(ctx context.Context, vector []float32, k int) ([]core.Neighbor, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results[vector[0]], nil
}

func TestNewClient_RequiresIndex(t *testing.T) {
	_, err := NewClient(nil)
	assert.ErrorIs(t, err, ErrIndexRequired)
}

func TestQuery_AlignedWithInput(t *testing.T) {
	idx := &stubIndex{results: map[float32][]core.Neighbor{
		1: {{DatapointID: "A", Score: 0.01}, {DatapointID: "B", Score: 0.2}},
		3: {{DatapointID: "C", Score: 0.05}},
	}}
	c, err := NewClient(idx)
	require.NoError(t, err)

	got, err := c.Query(context.Background(), [][]float32{{1}, {2}, {3}}, 5)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0][0].DatapointID)
	assert.Empty(t, got[1], "vector without neighbors keeps its slot")
	assert.Equal(t, "C", got[2][0].DatapointID)
}

func TestQuery_TruncatesToK(t *testing.T) {
	idx := &stubIndex{results: map[float32][]core.Neighbor{
		1: {{DatapointID: "A"}, {DatapointID: "B"}, {DatapointID: "C"}},
	}}
	c, err := NewClient(idx)
	require.NoError(t, err)

	got, err := c.Query(context.Background(), [][]float32{{1}}, 2)
	require.NoError(t, err)
	assert.Len(t, got[0], 2)
}

func TestQuery_FailureFailsBatch(t *testing.T) {
	boom := errors.New("index unavailable")
	idx := &stubIndex{err: boom}
	c, err := NewClient(idx)
	require.NoError(t, err)

	got, err := c.Query(context.Background(), [][]float32{{1}, {2}}, 5)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
	assert.Equal(t, 1, idx.calls)
}

func TestQuery_InvalidK(t *testing.T) {
	c, err := NewClient(&stubIndex{})
	require.NoError(t, err)

	_, err = c.Query(context.Background(), [][]float32{{1}}, 0)
	assert.ErrorIs(t, err, ErrInvalidNeighborCount)
}

func TestQuery_Cancelled(t *testing.T) {
	idx := &stubIndex{}
	c, err := NewClient(idx)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Query(ctx, [][]float32{{1}}, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, idx.calls)
}

func TestQuery_EmptyInput(t *testing.T) {
	c, err := NewClient(&stubIndex{})
	require.NoError(t, err)

	got, err := c.Query(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuery_BadgerIndex(t *testing.T) {
	repo, backend, err := badger.NewMemoryCatalog()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	_, err = repo.AddEntries(ctx,
		&core.CatalogEntry{ID: "X1", LongName: "Lipton Diet Green Tea (20oz)", Vector: []float32{1, 0}},
		&core.CatalogEntry{ID: "X2", LongName: "Coca-Cola (330ml)", Vector: []float32{0, 1}},
	)
	require.NoError(t, err)

	c, err := NewClient(repo)
	require.NoError(t, err)

	got, err := c.Query(ctx, [][]float32{{0, 1}, {1, 0.01}}, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "X2", got[0][0].DatapointID)
	assert.Equal(t, "X1", got[1][0].DatapointID)
	assert.Less(t, got[1][0].Score, float32(0.01))
}
