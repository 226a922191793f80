package internal

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotEntriesSortedByTimestamp(t *testing.T) {
	snap := &Snapshot{
		Embeddings: map[string][]float32{"new": {1, 0}, "old": {0, 1}},
		Contexts: map[string]ContextRecord{
			"new": {Query: "new", Response: "r", Timestamp: 200.5},
			"old": {Query: "old", Response: "r", Entities: []string{"x"}, Timestamp: 100.25},
		},
	}

	entries, err := snap.Entries(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "old", entries[0].Query)
	assert.Equal(t, []string{"x"}, entries[0].Entities)
	assert.Equal(t, time.UnixMicro(100_250_000).UTC(), entries[0].CreatedAt)
	assert.Equal(t, "new", entries[1].Query)
}

func TestSnapshotRejectsNonFinite(t *testing.T) {
	snap := &Snapshot{
		Embeddings: map[string][]float32{"q": {float32(math.NaN()), 0}},
		Contexts:   map[string]ContextRecord{"q": {Query: "q", Timestamp: 1}},
	}
	_, err := snap.Entries(2)
	assert.True(t, errors.Is(err, ErrPersistFormat))
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 14, 15, 9, 26, 535897000, time.UTC)
	assert.True(t, fromTimestamp(toTimestamp(ts)).Equal(ts))
}

func TestNewSnapshotMatchesSchema(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 1, 500000000, time.UTC)
	snap := NewSnapshot([]*Entry{NewEntry("q", "r", []string{"e"}, []float32{1, 2}, created)})

	data, err := encodeSnapshot(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"embeddings": {"q": [1, 2]},
		"contexts": {"q": {"query": "q", "response": "r", "entities": ["e"], "timestamp": 1704067201.5}}
	}`, string(data))
}

func TestDecodeSnapshotErrors(t *testing.T) {
	for _, data := range []string{``, `[]`, `{"contexts":{}}`, `{"embeddings":{"q":"x"},"contexts":{}}`} {
		_, err := decodeSnapshot([]byte(data))
		assert.ErrorIs(t, err, ErrPersistFormat, "input %q", data)
	}
}
