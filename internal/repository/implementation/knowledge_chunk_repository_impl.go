package implementation

import (
	"context"

	"nexora-campus-be/internal/model"
	"nexora-campus-be/internal/repository/contract"
	"nexora-campus-be/pkg/knowledge"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewKnowledgeChunkRepository(db *gorm.DB) contract.KnowledgeChunkRepository {
	return &KnowledgeChunkRepositoryImpl{db: db}
}

// ReplaceAll swaps the table contents inside one transaction so concurrent
// searches see either the old set or the new one.
func (r *KnowledgeChunkRepositoryImpl) ReplaceAll(ctx context.Context, chunks []knowledge.EmbeddedChunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.KnowledgeChunk{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}

		rows := make([]model.KnowledgeChunk, len(chunks))
		for i, c := range chunks {
			rows[i] = model.KnowledgeChunk{
				Id:         c.ID,
				Source:     c.Source,
				ChunkIndex: c.Index,
				Content:    c.Text,
				Embedding:  pgvector.NewVector(c.Vector),
			}
		}
		return tx.CreateInBatches(rows, 100).Error
	})
}

type scoredChunkRow struct {
	Id         string
	Source     string
	ChunkIndex int
	Content    string
	Similarity float64
}

func (r *KnowledgeChunkRepositoryImpl) Nearest(ctx context.Context, vector []float32, limit int) ([]knowledge.ScoredChunk, error) {
	// pgvector cosine distance is 1 - cosine similarity.
	queryVector := pgvector.NewVector(vector)

	var rows []scoredChunkRow
	err := r.db.WithContext(ctx).
		Model(&model.KnowledgeChunk{}).
		Select("id, source, chunk_index, content, 1 - (embedding <=> ?) AS similarity", queryVector).
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]knowledge.ScoredChunk, len(rows))
	for i, row := range rows {
		out[i] = knowledge.ScoredChunk{
			Chunk:      knowledge.Chunk{ID: row.Id, Source: row.Source, Index: row.ChunkIndex, Text: row.Content},
			Similarity: row.Similarity,
		}
	}
	return out, nil
}

func (r *KnowledgeChunkRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.KnowledgeChunk{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
