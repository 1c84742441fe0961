package embedding

import (
	"context"
	"math"
)

// Dimensions is the vector width stored in knowledge_chunks.
const Dimensions = 768

// Task hints how the text will be used. Providers that do not distinguish
// documents from queries ignore it.
type Task string

const (
	TaskDocument Task = "search_document"
	TaskQuery    Task = "search_query"
)

// EmbeddingProvider turns text into a unit-length vector.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, task Task) ([]float32, error)
}

// normalizeVector scales vec to unit length; pgvector cosine distance
// assumes normalized inputs.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
