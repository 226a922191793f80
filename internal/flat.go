package internal

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

var _ VectorIndex = (*FlatIndex)(nil)

// FlatIndex is a brute-force L2 index. Vectors are stored contiguously, so
// position i occupies data[i*dim : (i+1)*dim].
type FlatIndex struct {
	dimension int
	data      []float32
	count     int
}

func NewFlatIndex(dimension int) (*FlatIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrDimensionMismatch, dimension)
	}
	return &FlatIndex{dimension: dimension}, nil
}

func (f *FlatIndex) Append(vec []float32) (int, error) {
	if len(vec) != f.dimension {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, f.dimension, len(vec))
	}

	f.data = append(f.data, vec...)
	pos := f.count
	f.count++
	return pos, nil
}

// Search returns up to k hits in ascending distance. Equal distances keep
// insertion order.
func (f *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, f.dimension, len(query))
	}
	if k <= 0 || f.count == 0 {
		return nil, nil
	}

	hits := make([]Hit, f.count)
	for i := range f.count {
		hits[i] = Hit{Position: i, Distance: l2(query, f.vector(i))}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(a.Distance, b.Distance)
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Rebuild replaces the whole content. On error the index is left as it was.
func (f *FlatIndex) Rebuild(vecs [][]float32) error {
	data := make([]float32, 0, len(vecs)*f.dimension)
	for i, v := range vecs {
		if len(v) != f.dimension {
			return fmt.Errorf("%w: vector %d has %d components, expected %d", ErrDimensionMismatch, i, len(v), f.dimension)
		}
		data = append(data, v...)
	}

	f.data = data
	f.count = len(vecs)
	return nil
}

func (f *FlatIndex) Len() int {
	return f.count
}

func (f *FlatIndex) Dimension() int {
	return f.dimension
}

func (f *FlatIndex) vector(i int) []float32 {
	return f.data[i*f.dimension : (i+1)*f.dimension]
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
