package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title" validate:"omitempty,max=120"`
}

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Message       string    `json:"message" validate:"required"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SendChatResponse mirrors the conversation view after one exchange.
// Notices carry user-facing degradation messages, e.g. when the session
// was replaced or a persist step failed; the exchange itself may still
// have succeeded.
type SendChatResponse struct {
	ChatSessionId    uuid.UUID             `json:"chat_session_id"`
	ChatSessionTitle string                `json:"title"`
	Sent             *SendChatResponseChat `json:"sent"`
	Reply            *SendChatResponseChat `json:"reply"`
	Notices          []string              `json:"notices,omitempty"`
}

// PublishSessionTitleMessage is the async payload that triggers title
// derivation for a session after its first user message.
type PublishSessionTitleMessage struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	UserId        uuid.UUID `json:"user_id"`
	Message       string    `json:"message"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
}

// DeleteSessionResponse reports which session became active after the
// deleted one, when the deleted session was the active one.
type DeleteSessionResponse struct {
	ActiveSessionId *uuid.UUID `json:"active_session_id,omitempty"`
}
