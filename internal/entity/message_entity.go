package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string
	Content        string
	Sequence       int
	CreatedAt      time.Time
	AgentName      *string
	AgentUsed      *string
	Intent         *string
	Success        *bool
	ErrorMessage   *string
	Usage          map[string]interface{}
	ResponseTimeMs *int
}
