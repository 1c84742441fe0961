package knowledge

import (
	"context"
	"fmt"

	"nexora-campus-be/pkg/embedding"
)

// EmbeddedChunk is a chunk together with its vector.
type EmbeddedChunk struct {
	Chunk
	Vector []float32
}

// ScoredChunk is a stored chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk
	Similarity float64
}

// VectorStore persists embedded chunks and answers nearest-neighbour queries.
type VectorStore interface {
	ReplaceAll(ctx context.Context, chunks []EmbeddedChunk) error
	Nearest(ctx context.Context, vector []float32, limit int) ([]ScoredChunk, error)
	Count(ctx context.Context) (int64, error)
}

// VectorIndex searches a pgvector-backed store by embedding similarity.
type VectorIndex struct {
	provider embedding.EmbeddingProvider
	store    VectorStore
	count    int
}

// BuildVectorIndex embeds chunks and replaces the store contents with them.
func BuildVectorIndex(ctx context.Context, provider embedding.EmbeddingProvider, store VectorStore, chunks []Chunk) (*VectorIndex, error) {
	embedded := make([]EmbeddedChunk, 0, len(chunks))
	for _, c := range chunks {
		vec, err := provider.Generate(ctx, c.Text, embedding.TaskDocument)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %s: %w", c.ID, err)
		}
		embedded = append(embedded, EmbeddedChunk{Chunk: c, Vector: vec})
	}
	if err := store.ReplaceAll(ctx, embedded); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	return &VectorIndex{provider: provider, store: store, count: len(embedded)}, nil
}

// OpenVectorIndex wraps an already populated store.
func OpenVectorIndex(ctx context.Context, provider embedding.EmbeddingProvider, store VectorStore) (*VectorIndex, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	return &VectorIndex{provider: provider, store: store, count: int(n)}, nil
}

func (v *VectorIndex) Search(ctx context.Context, query string, topK int) ([]Snippet, error) {
	vec, err := v.provider.Generate(ctx, query, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := v.store.Nearest(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	out := make([]Snippet, 0, len(hits))
	for _, h := range hits {
		out = append(out, Snippet{Source: h.Source, Excerpt: h.Text, Score: h.Similarity})
	}
	return out, nil
}

func (v *VectorIndex) ChunkCount() int { return v.count }

func (v *VectorIndex) Close() error { return nil }
