package unitofwork

import (
	"context"

	"nexora-campus-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
}
