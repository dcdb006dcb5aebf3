package vectordb

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdulmalikDS/Farqad/internal/config"
)

func newTestChromem(t *testing.T) *Chromem {
	t.Helper()
	c, err := NewChromem(config.ChromemConfig{InMemory: true}, DistanceCosine)
	require.NoError(t, err)
	return c
}

func seedCollection(t *testing.T, c *Chromem, name string, vectors [][]float32, metadata []map[string]any) {
	t.Helper()
	ctx := context.Background()

	created, err := c.CreateCollection(ctx, name, len(vectors[0]), false)
	require.NoError(t, err)
	require.True(t, created)

	texts := make([]string, len(vectors))
	ids := make([]string, len(vectors))
	for i := range vectors {
		texts[i] = fmt.Sprintf("document %d", i)
		ids[i] = fmt.Sprintf("id-%d", i)
	}
	require.NoError(t, c.InsertMany(ctx, name, texts, vectors, metadata, ids, 2))
}

func TestChromemCreateCollectionIdempotent(t *testing.T) {
	c := newTestChromem(t)
	ctx := context.Background()

	created, err := c.CreateCollection(ctx, "proj", 3, false)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = c.CreateCollection(ctx, "proj", 3, false)
	require.NoError(t, err)
	assert.False(t, created, "existing collection is kept")

	exists, err := c.CollectionExists(ctx, "proj")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestChromemResetRecreatesCollection(t *testing.T) {
	c := newTestChromem(t)
	ctx := context.Background()

	seedCollection(t, c, "proj", [][]float32{{1, 0, 0}}, nil)

	created, err := c.CreateCollection(ctx, "proj", 3, true)
	require.NoError(t, err)
	assert.True(t, created)

	docs, err := c.SearchByVector(ctx, "proj", []float32{1, 0, 0}, 5, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, docs, "reset drops previously inserted points")
}

func TestChromemSearchRoundTrip(t *testing.T) {
	c := newTestChromem(t)
	ctx := context.Background()

	seedCollection(t, c, "proj", [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}, nil)

	docs, err := c.SearchByVector(ctx, "proj", []float32{1, 0, 0}, 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "document 0", docs[0].Text)
	assert.InDelta(t, 1.0, float64(docs[0].Score), 1e-4)
}

func TestChromemSearchClampsLimit(t *testing.T) {
	c := newTestChromem(t)
	ctx := context.Background()

	seedCollection(t, c, "proj", [][]float32{{1, 0, 0}, {0, 1, 0}}, nil)

	// Asking for more hits than stored documents must not error.
	docs, err := c.SearchByVector(ctx, "proj", []float32{1, 0, 0}, 50, nil, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestChromemSearchEmptyCollection(t *testing.T) {
	c := newTestChromem(t)
	ctx := context.Background()

	_, err := c.CreateCollection(ctx, "proj", 3, false)
	require.NoError(t, err)

	docs, err := c.SearchByVector(ctx, "proj", []float32{1, 0, 0}, 5, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestChromemSearchMissingCollection(t *testing.T) {
	c := newTestChromem(t)

	_, err := c.SearchByVector(context.Background(), "absent", []float32{1, 0, 0}, 5, nil, nil)
	require.Error(t, err)
}

func TestChromemInsertDimensionMismatch(t *testing.T) {
	c := newTestChromem(t)
	ctx := context.Background()

	_, err := c.CreateCollection(ctx, "proj", 3, false)
	require.NoError(t, err)

	err = c.InsertMany(ctx, "proj", []string{"x"}, [][]float32{{1, 0}}, nil, []string{"id-0"}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")
}

func TestChromemSearchWithAssetFilter(t *testing.T) {
	c := newTestChromem(t)
	ctx := context.Background()

	seedCollection(t, c, "proj", [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
	}, []map[string]any{
		{"asset_id": "1"},
		{"asset_id": "2"},
	})

	docs, err := c.SearchByVector(ctx, "proj", []float32{1, 0, 0}, 5, FilterByAsset("2"), nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "document 1", docs[0].Text)
}

func TestChromemSearchScoreThreshold(t *testing.T) {
	c := newTestChromem(t)
	ctx := context.Background()

	seedCollection(t, c, "proj", [][]float32{
		{1, 0, 0},
		{0, 1, 0},
	}, nil)

	threshold := float32(0.9)
	docs, err := c.SearchByVector(ctx, "proj", []float32{1, 0, 0}, 5, nil, &threshold)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "document 0", docs[0].Text)
}
