package contract

import (
	"context"

	"perry-be/internal/entity"
	"perry-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	// FindAllBySession returns every message of a session ordered by
	// creation time ascending.
	FindAllBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
