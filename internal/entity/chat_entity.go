package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// ChatMessage is one turn within a session. Rows are immutable once created;
// deletion is the only other mutation path.
type ChatMessage struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	ChatSessionId uuid.UUID
	Message       string
	IsBot         bool
	CreatedAt     time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
