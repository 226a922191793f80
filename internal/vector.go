package internal

// Hit is one search result: a position in the index and its Euclidean
// distance to the query vector.
type Hit struct {
	Position int
	Distance float64
}

// VectorIndex is an exact nearest-neighbour structure without deletion.
// Removing a vector means rebuilding from the survivors.
type VectorIndex interface {
	Append(vec []float32) (int, error)
	Search(query []float32, k int) ([]Hit, error)
	Rebuild(vecs [][]float32) error
	Len() int
	Dimension() int
}
