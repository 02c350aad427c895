package service

import (
	"context"
	"strings"
	"time"

	"perry-be/internal/apperr"
	"perry-be/internal/constant"
	"perry-be/internal/dto"
	"perry-be/internal/entity"
	"perry-be/internal/repository/specification"
	"perry-be/internal/repository/unitofwork"
	"perry-be/pkg/prompt"

	"github.com/google/uuid"
)

type IMessageStoreService interface {
	// GetChatHistory returns the session's messages oldest first,
	// seeding the welcome greeting when the session is still empty.
	GetChatHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SaveMessage(ctx context.Context, userId, sessionId uuid.UUID, text string, isBot bool) (*entity.ChatMessage, error)
}

type messageStoreService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMessageStoreService(uowFactory unitofwork.RepositoryFactory) IMessageStoreService {
	return &messageStoreService{
		uowFactory: uowFactory,
	}
}

func (s *messageStoreService) GetChatHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperr.FromStore("find session", sessionId, err)
	}
	if session == nil {
		return nil, &apperr.InvalidSessionError{SessionId: sessionId}
	}

	messages, err := uow.ChatMessageRepository().FindAllBySession(ctx, sessionId)
	if err != nil {
		return nil, apperr.FromStore("load messages", sessionId, err)
	}

	// An empty session gets its greeting exactly once, on first load.
	if len(messages) == 0 {
		welcome, err := s.seedWelcome(ctx, uow, userId, sessionId)
		if err != nil {
			return nil, err
		}
		messages = append(messages, welcome)
	}

	res := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		role := constant.ChatRoleUser
		if msg.IsBot {
			role = constant.ChatRoleBot
		}
		res = append(res, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      role,
			Message:   msg.Message,
			CreatedAt: msg.CreatedAt,
		})
	}
	return res, nil
}

func (s *messageStoreService) seedWelcome(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatMessage, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperr.FromStore("find user", sessionId, err)
	}

	displayName := ""
	if user != nil {
		displayName = user.DisplayName
	}

	welcome := &entity.ChatMessage{
		Id:            uuid.New(),
		UserId:        userId,
		ChatSessionId: sessionId,
		Message:       prompt.Welcome(displayName),
		IsBot:         true,
		CreatedAt:     time.Now(),
	}

	if err := uow.ChatMessageRepository().Create(ctx, welcome); err != nil {
		return nil, apperr.FromStore("save welcome", sessionId, err)
	}
	return welcome, nil
}

// SaveMessage validates, verifies session ownership, then inserts.
// The session check runs before the insert so a stale session id
// surfaces as an invalid-session error rather than a raw FK violation.
func (s *messageStoreService) SaveMessage(ctx context.Context, userId, sessionId uuid.UUID, text string, isBot bool) (*entity.ChatMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &apperr.ValidationError{Field: "message"}
	}
	if userId == uuid.Nil {
		return nil, &apperr.ValidationError{Field: "user_id"}
	}
	if sessionId == uuid.Nil {
		return nil, &apperr.ValidationError{Field: "chat_session_id"}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperr.FromStore("find session", sessionId, err)
	}
	if session == nil {
		return nil, &apperr.InvalidSessionError{SessionId: sessionId}
	}

	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		UserId:        userId,
		ChatSessionId: sessionId,
		Message:       trimmed,
		IsBot:         isBot,
		CreatedAt:     time.Now(),
	}

	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, apperr.FromStore("save message", sessionId, err)
	}
	return msg, nil
}
