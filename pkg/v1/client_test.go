package v1

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineEmbedder places each known query on a line, so distances between
// queries are the differences of their positions.
type lineEmbedder struct {
	positions map[string]float32
	closed    bool
}

func (e *lineEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	p, ok := e.positions[text]
	if !ok {
		return nil, fmt.Errorf("unknown text %q", text)
	}
	return []float32{p, 0}, nil
}

func (e *lineEmbedder) Dimension() int { return 2 }

func (e *lineEmbedder) Close() error {
	e.closed = true
	return nil
}

func setupClientTest(t *testing.T, opts ...Option) (*Client, *lineEmbedder, string) {
	t.Helper()
	dir := t.TempDir()

	emb := &lineEmbedder{positions: map[string]float32{
		"needle": 0,
		"one":   1,
		"two":   2,
		"five":  5,
	}}

	client, err := New(context.Background(), append([]Option{WithDir(dir), WithEmbedder(emb)}, opts...)...)
	require.NoError(t, err)

	return client, emb, dir
}

func TestClientAddAndSimilar(t *testing.T) {
	client, _, _ := setupClientTest(t)
	defer client.Close()
	ctx := context.Background()

	require.NoError(t, client.Add(ctx, "five", "r5"))
	require.NoError(t, client.Add(ctx, "one", "r1", "A"))
	require.NoError(t, client.Add(ctx, "two", "r2", "B", "A"))

	got, err := client.Similar(ctx, "needle", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Query)
	assert.InDelta(t, 1.0, got[0].Distance, 1e-6)
	assert.Equal(t, "two", got[1].Query)
	assert.InDelta(t, 2.0, got[1].Distance, 1e-6)

	entities, err := client.Entities(ctx, "needle")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, entities)
}

func TestClientPersistsAcrossReopen(t *testing.T) {
	client, _, dir := setupClientTest(t)
	ctx := context.Background()

	require.NoError(t, client.Add(ctx, "one", "r1", "A"))
	require.NoError(t, client.Close())

	emb := &lineEmbedder{positions: map[string]float32{"needle": 0}}
	reopened, err := New(ctx, WithDir(dir), WithEmbedder(emb))
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get("one")
	require.True(t, ok)
	assert.Equal(t, "r1", got.Response)
	assert.Equal(t, []string{"A"}, got.Entities)
}

func TestClientMaxHistory(t *testing.T) {
	client, _, _ := setupClientTest(t, WithMaxHistory(2))
	defer client.Close()
	ctx := context.Background()

	for _, q := range []string{"one", "two", "five"} {
		require.NoError(t, client.Add(ctx, q, "r"))
	}

	assert.Equal(t, 2, client.Len())
	_, ok := client.Get("one")
	assert.False(t, ok)

	list := client.List()
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Query)
	assert.Equal(t, "five", list[1].Query)
}

func TestClientRemove(t *testing.T) {
	client, _, _ := setupClientTest(t)
	defer client.Close()
	ctx := context.Background()

	require.NoError(t, client.Add(ctx, "one", "r1"))
	require.NoError(t, client.Remove(ctx, "one"))
	assert.Equal(t, 0, client.Len())

	err := client.Remove(ctx, "one")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClientEmbeddingFailure(t *testing.T) {
	client, _, _ := setupClientTest(t)
	defer client.Close()

	err := client.Add(context.Background(), "unknown", "r")
	assert.True(t, errors.Is(err, ErrEmbeddingUnavailable))
	assert.Equal(t, 0, client.Len())
}

func TestClientCloseClosesEmbedder(t *testing.T) {
	client, emb, _ := setupClientTest(t)
	require.NoError(t, client.Close())
	assert.True(t, emb.closed)
}
