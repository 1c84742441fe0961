package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id            uuid.UUID
	SessionId     string
	UserId        *string
	Title         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	IsActive      bool
	TotalMessages int
	LastActivity  time.Time
}
