package contract

import (
	"context"
	"time"

	"nexora-campus-be/internal/entity"
	"nexora-campus-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	Update(ctx context.Context, conversation *entity.Conversation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// RecordMessage bumps total_messages and last_activity and returns the new total.
	RecordMessage(ctx context.Context, id uuid.UUID, at time.Time) (int, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
