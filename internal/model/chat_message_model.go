package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage keeps the original "chats" table name. The FK to chat_sessions
// is what turns an insert against a vanished session into a 23503.
type ChatMessage struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Message       string         `gorm:"type:text;not null"`
	IsBot         bool           `gorm:"not null;default:false"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ChatMessage) TableName() string {
	return "chats"
}
