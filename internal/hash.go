package internal

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math"
)

var _ Embedder = (*HashEmbedder)(nil)

// HashEmbedder derives a deterministic unit vector from the MD5 digest of the
// text. It needs no model and no network, which makes it useful offline and
// in tests; similarity between vectors carries no semantic meaning.
type HashEmbedder struct {
	dimension int
}

func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &HashEmbedder{dimension: dimension}
}

func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := md5.Sum([]byte(text))
	seed := append(sum[:], sum[:4]...)

	vec := make([]float32, e.dimension)
	for i := range vec {
		off := (i * 4) % len(sum)
		word := binary.LittleEndian.Uint32(seed[off : off+4])
		// mix in the position so the pattern does not repeat every 4 components
		word ^= uint32(i) * 2654435761
		vec[i] = float32(word%1000)/500.0 - 1.0
	}

	return l2Normalize(vec), nil
}

func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashEmbedder) Close() error {
	return nil
}

func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	result := make([]float32, len(vec))
	for i, v := range vec {
		result[i] = float32(float64(v) / norm)
	}

	return result
}
