// Package embedding turns entry transcripts into vectors for similarity search.
// It is never used by the analysis package.
package embedding

import (
	"context"
	"math"
)

// Embedder generates a fixed-length vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	// Model names the vectors so stored embeddings from different models are not mixed.
	Model() string
}

// Config selects and configures the embedder.
type Config struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// HasRemoteKey reports whether cfg carries an API key for the remote service.
func HasRemoteKey(cfg Config) bool {
	return cfg.APIKey != ""
}

// New returns the Voyage client when an API key is configured and the local
// deterministic embedder otherwise.
func New(cfg Config) Embedder {
	if HasRemoteKey(cfg) {
		return NewVoyage(cfg)
	}
	return Local{}
}

// CosineSimilarity computes similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
