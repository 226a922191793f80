package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoEmbedderRemembers(t *testing.T) {
	inner := newLineEmbedder(map[string]float32{"a": 1, "b": 2, "c": 3})
	memo := NewMemoEmbedder(inner, 2)
	ctx := context.Background()

	for range 3 {
		_, err := memo.Embed(ctx, "a")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, memo.Len())
}

func TestMemoEmbedderBounded(t *testing.T) {
	inner := newLineEmbedder(map[string]float32{"a": 1, "b": 2, "c": 3})
	memo := NewMemoEmbedder(inner, 2)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c"} {
		_, err := memo.Embed(ctx, text)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, memo.Len())

	// "a" was memoized first and dropped
	_, _ = memo.Embed(ctx, "a")
	assert.Equal(t, 4, inner.calls)
	_, _ = memo.Embed(ctx, "c")
	assert.Equal(t, 4, inner.calls)
}

func TestMemoEmbedderSkipsErrors(t *testing.T) {
	inner := newLineEmbedder(map[string]float32{"a": 1})
	memo := NewMemoEmbedder(inner, 4)
	ctx := context.Background()

	inner.err = errors.New("down")
	_, err := memo.Embed(ctx, "a")
	require.Error(t, err)
	assert.Equal(t, 0, memo.Len())

	inner.err = nil
	vec, err := memo.Embed(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
}

func TestMemoEmbedderReturnsCopies(t *testing.T) {
	inner := newLineEmbedder(map[string]float32{"a": 1})
	memo := NewMemoEmbedder(inner, 4)
	ctx := context.Background()

	_, _ = memo.Embed(ctx, "a")
	vec, _ := memo.Embed(ctx, "a")
	vec[0] = 42

	again, _ := memo.Embed(ctx, "a")
	assert.Equal(t, float32(1), again[0])
}

func TestMemoEmbedderDisabled(t *testing.T) {
	inner := newLineEmbedder(map[string]float32{"a": 1})
	memo := NewMemoEmbedder(inner, 0)

	_, _ = memo.Embed(context.Background(), "a")
	_, _ = memo.Embed(context.Background(), "a")
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, inner.Dimension(), memo.Dimension())
}
