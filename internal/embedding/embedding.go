// Package embedding turns text into fixed-length vectors and compares them.
//
// Embedder is what the rest of the module consumes. Provider wraps a remote
// Client with chunking, retries and rate limiting; HashEmbedder is the offline
// fallback used when no remote service is configured.
package embedding

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrProviderFailure is returned once every retry for a request has failed.
	ErrProviderFailure = errors.New("embedding provider failure")
	// ErrDimensionMismatch is returned when two vectors that must be compared have different lengths.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrMixedModels is returned when vectors produced by different models meet in one comparison.
	ErrMixedModels = errors.New("embeddings produced by different models")
)

// Embedder produces vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	// Model identifies the vector space. Vectors from different models must never be compared.
	Model() string
}

// Client is a single round-trip to an external embedding service.
type Client interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
	Model() string
}

// Cosine returns the cosine similarity of a and b. It is 0 when either vector
// has zero norm or when the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// guard against rounding pushing the value out of range
	return math.Max(-1, math.Min(1, sim))
}
