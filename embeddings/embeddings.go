// Package embeddings maps text to fixed-length vectors for similarity search.
package embeddings

import (
	"math"
	"unicode/utf16"
)

// Dimension is the fixed output width of every embedding vector.
const Dimension = 384

// Embedder maps text to a fixed-length vector usable for similarity
// comparison.
type Embedder interface {
	Embed(text string) []float32
}

// HashEmbedder derives pseudo-embeddings from a polynomial rolling hash. The
// same text always yields the same vector with no network call. Similarity
// reflects hash proximity, not meaning; callers wanting semantic retrieval
// need a real embedding backend.
type HashEmbedder struct{}

func NewHashEmbedder() HashEmbedder { return HashEmbedder{} }

// Embed returns a Dimension-length vector for any input, including the empty
// string.
func (HashEmbedder) Embed(text string) []float32 {
	h := textHash(text)

	vec := make([]float32, Dimension)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(h)+float64(i)) * 0.1)
	}
	return vec
}

// textHash folds text into a 32-bit signed hash (h = h*31 + code, wrapping).
// Iterates UTF-16 code units, so characters outside the BMP contribute a
// surrogate pair rather than one code point.
func textHash(text string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(text)) {
		h = h*31 + int32(u)
	}
	return h
}
