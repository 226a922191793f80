package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Persister stores the full cache state as one artifact.
type Persister interface {
	// Save replaces any previously stored snapshot.
	Save(ctx context.Context, snap *Snapshot) error
	// Load returns an empty snapshot when nothing has been stored yet and
	// ErrPersistFormat when the stored artifact cannot be understood.
	Load(ctx context.Context) (*Snapshot, error)
	Close() error
}

// ContextRecord is the persisted metadata of one entry.
type ContextRecord struct {
	Query     string   `json:"query"`
	Response  string   `json:"response"`
	Entities  []string `json:"entities"`
	Timestamp float64  `json:"timestamp"`
}

// Snapshot is the persisted form of the cache. Both maps are keyed by query
// and must carry identical key sets.
type Snapshot struct {
	Embeddings map[string][]float32     `json:"embeddings"`
	Contexts   map[string]ContextRecord `json:"contexts"`
}

func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Embeddings: make(map[string][]float32),
		Contexts:   make(map[string]ContextRecord),
	}
}

func NewSnapshot(entries []*Entry) *Snapshot {
	snap := &Snapshot{
		Embeddings: make(map[string][]float32, len(entries)),
		Contexts:   make(map[string]ContextRecord, len(entries)),
	}
	for _, e := range entries {
		snap.Embeddings[e.Query] = e.Embedding
		snap.Contexts[e.Query] = ContextRecord{
			Query:     e.Query,
			Response:  e.Response,
			Entities:  e.Entities,
			Timestamp: toTimestamp(e.CreatedAt),
		}
	}
	return snap
}

func (s *Snapshot) Len() int {
	return len(s.Contexts)
}

// Entries validates the snapshot against dim and returns its entries ordered
// by ascending creation time, ready for an index rebuild.
func (s *Snapshot) Entries(dim int) ([]*Entry, error) {
	if s.Embeddings == nil || s.Contexts == nil {
		return nil, fmt.Errorf("%w: missing embeddings or contexts section", ErrPersistFormat)
	}
	if len(s.Embeddings) != len(s.Contexts) {
		return nil, fmt.Errorf("%w: %d embeddings for %d contexts", ErrPersistFormat, len(s.Embeddings), len(s.Contexts))
	}

	entries := make([]*Entry, 0, len(s.Contexts))
	for query, rec := range s.Contexts {
		vec, ok := s.Embeddings[query]
		if !ok {
			return nil, fmt.Errorf("%w: context %q has no embedding", ErrPersistFormat, query)
		}
		if rec.Query != query {
			return nil, fmt.Errorf("%w: context keyed %q holds query %q", ErrPersistFormat, query, rec.Query)
		}
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: embedding for %q has %d components, expected %d", ErrPersistFormat, query, len(vec), dim)
		}
		if !finite(vec) {
			return nil, fmt.Errorf("%w: embedding for %q is not finite", ErrPersistFormat, query)
		}
		if math.IsNaN(rec.Timestamp) || math.IsInf(rec.Timestamp, 0) {
			return nil, fmt.Errorf("%w: bad timestamp for %q", ErrPersistFormat, query)
		}

		entries = append(entries, NewEntry(rec.Query, rec.Response, rec.Entities, vec, fromTimestamp(rec.Timestamp)))
	}

	sortByCreation(entries)
	return entries, nil
}

func encodeSnapshot(snap *Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistFormat, err)
	}
	if snap.Embeddings == nil || snap.Contexts == nil {
		return nil, fmt.Errorf("%w: missing embeddings or contexts section", ErrPersistFormat)
	}
	return &snap, nil
}

// Timestamps are float seconds since the epoch. Entries carry microsecond
// precision, which float64 represents exactly enough to round-trip.
func toTimestamp(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

func fromTimestamp(ts float64) time.Time {
	return time.UnixMicro(int64(math.Round(ts * 1e6))).UTC()
}

func finite(vec []float32) bool {
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
