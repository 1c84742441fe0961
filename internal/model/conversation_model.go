package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId     string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	UserId        *string   `gorm:"type:varchar(255);index"`
	Title         *string   `gorm:"type:varchar(500)"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
	IsActive      bool      `gorm:"not null;default:true"`
	TotalMessages int       `gorm:"not null;default:0"`
	LastActivity  time.Time `gorm:"not null;index"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate assigns the id in Go so the table works on sqlite as well.
func (c *Conversation) BeforeCreate(*gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	if c.LastActivity.IsZero() {
		c.LastActivity = time.Now().UTC()
	}
	return nil
}
