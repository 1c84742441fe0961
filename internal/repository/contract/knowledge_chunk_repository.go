package contract

import "nexora-campus-be/pkg/knowledge"

// KnowledgeChunkRepository is the pgvector-backed knowledge store.
type KnowledgeChunkRepository interface {
	knowledge.VectorStore
}
