package model

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates the conversation tables, and knowledge_chunks when
// the pgvector knowledge backend is used.
func AutoMigrate(db *gorm.DB, withVectors bool) error {
	models := []interface{}{&Conversation{}, &Message{}}
	if withVectors {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector;").Error; err != nil {
			return fmt.Errorf("enable pgvector: %w", err)
		}
		models = append(models, &KnowledgeChunk{})
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}
