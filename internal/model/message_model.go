package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Message struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ConversationId uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_conversation_seq,priority:1"`
	Role           string         `gorm:"type:varchar(20);not null"`
	Content        string         `gorm:"type:text;not null"`
	Sequence       int            `gorm:"not null;default:0;index:idx_messages_conversation_seq,priority:2"`
	CreatedAt      time.Time      `gorm:"not null"`
	AgentName      *string        `gorm:"type:varchar(100)"`
	AgentUsed      *string        `gorm:"type:varchar(100)"`
	Intent         *string        `gorm:"type:varchar(50)"`
	Success        *bool          `gorm:"type:boolean"`
	ErrorMessage   *string        `gorm:"type:text"`
	UsageData      datatypes.JSON `gorm:"type:jsonb"`
	ResponseTimeMs *int
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}
