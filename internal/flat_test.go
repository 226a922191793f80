package internal

import (
	"errors"
	"testing"
)

func TestFlatIndexAppendAndSearch(t *testing.T) {
	idx, err := NewFlatIndex(2)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	for i, v := range [][]float32{{5, 0}, {1, 0}, {2, 0}} {
		pos, err := idx.Append(v)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if pos != i {
			t.Errorf("append %d returned position %d", i, pos)
		}
	}

	hits, err := idx.Search([]float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Position != 1 || hits[0].Distance != 1 {
		t.Errorf("first hit = %+v, want position 1 at distance 1", hits[0])
	}
	if hits[1].Position != 2 || hits[1].Distance != 2 {
		t.Errorf("second hit = %+v, want position 2 at distance 2", hits[1])
	}
}

func TestFlatIndexSearchFewerThanK(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	_, _ = idx.Append([]float32{1, 1})

	hits, err := idx.Search([]float32{0, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit, got %d", len(hits))
	}

	hits, err = idx.Search([]float32{0, 0}, 0)
	if err != nil || len(hits) != 0 {
		t.Errorf("k=0: hits=%v err=%v", hits, err)
	}
}

func TestFlatIndexEmpty(t *testing.T) {
	idx, _ := NewFlatIndex(3)
	hits, err := idx.Search([]float32{1, 2, 3}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %v", hits)
	}
}

func TestFlatIndexDimensionMismatch(t *testing.T) {
	idx, _ := NewFlatIndex(3)

	if _, err := idx.Append([]float32{1, 2}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("append: expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := idx.Search([]float32{1}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("search: expected ErrDimensionMismatch, got %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("len = %d after rejected append", idx.Len())
	}
}

func TestFlatIndexInvalidDimension(t *testing.T) {
	if _, err := NewFlatIndex(0); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestFlatIndexRebuild(t *testing.T) {
	idx, _ := NewFlatIndex(1)
	for _, v := range []float32{1, 2, 3} {
		_, _ = idx.Append([]float32{v})
	}

	if err := idx.Rebuild([][]float32{{3}, {1}}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("len = %d, want 2", idx.Len())
	}

	hits, _ := idx.Search([]float32{3}, 1)
	if hits[0].Position != 0 {
		t.Errorf("rebuilt order lost: %+v", hits)
	}

	pos, _ := idx.Append([]float32{9})
	if pos != 2 {
		t.Errorf("append after rebuild returned %d, want 2", pos)
	}
}

func TestFlatIndexRebuildFailureKeepsContent(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	_, _ = idx.Append([]float32{1, 1})

	err := idx.Rebuild([][]float32{{0, 0}, {1}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("len = %d after failed rebuild, want 1", idx.Len())
	}
}
