package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// KnowledgeChunk is one embedded knowledge-base chunk. Only the pgvector
// backend uses this table.
type KnowledgeChunk struct {
	Id         string          `gorm:"type:varchar(255);primaryKey"`
	Source     string          `gorm:"type:varchar(500);not null;index"`
	ChunkIndex int             `gorm:"not null;default:0"`
	Content    string          `gorm:"type:text;not null"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}
