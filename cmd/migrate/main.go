package main

import (
	"log"
	"strings"

	"nexora-campus-be/internal/config"
	"nexora-campus-be/internal/model"
	"nexora-campus-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	withVectors := strings.EqualFold(cfg.Knowledge.Backend, "pgvector")
	if withVectors && database.IsSQLite(cfg.Database.Connection) {
		log.Fatal("Error: the pgvector knowledge backend needs Postgres")
	}

	log.Printf("Starting GORM migration (knowledge_chunks: %t)...", withVectors)
	if err := model.AutoMigrate(db, withVectors); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}
	log.Println("✅ Migration completed")
}
