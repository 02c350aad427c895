package service

import (
	"context"
	"strings"
	"time"

	"perry-be/internal/apperr"
	"perry-be/internal/constant"
	"perry-be/internal/dto"
	"perry-be/internal/entity"
	"perry-be/internal/pkg/logger"
	"perry-be/internal/repository/memory"
	"perry-be/internal/repository/specification"
	"perry-be/internal/repository/unitofwork"

	"perry-be/pkg/events"
	pktNats "perry-be/pkg/nats"
	"perry-be/pkg/store"

	"github.com/google/uuid"
)

type ISessionService interface {
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	// CreateSession starts a session; a blank title gets the default.
	CreateSession(ctx context.Context, userId uuid.UUID, title string) (*dto.CreateSessionResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.DeleteSessionResponse, error)
	// EnsureActiveSession returns the newest live session, creating one
	// when the user has none.
	EnsureActiveSession(ctx context.Context, userId uuid.UUID) (*entity.ChatSession, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	conversations  *memory.ConversationRepository
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	conversations *memory.ConversationRepository,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		conversations:  conversations,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *sessionService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperr.FromStore("list sessions", uuid.Nil, err)
	}

	res := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return res, nil
}

func (s *sessionService) CreateSession(ctx context.Context, userId uuid.UUID, title string) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.createSession(ctx, uow, userId, title)
	if err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id, Title: session.Title}, nil
}

func (s *sessionService) createSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, title string) (*entity.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = constant.DefaultSessionTitle
	}

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
	}

	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, apperr.FromStore("create session", uuid.Nil, err)
	}

	if s.eventPublisher != nil {
		evt := events.NewSessionCreated(session.Id.String(), userId.String())
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("session", "failed to publish SESSION_CREATED event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return session, nil
}

// DeleteSession removes a session and its messages. Messages go first so
// a partial failure never leaves orphaned rows pointing at a dead
// session. When the user's newest session was the one deleted, the next
// newest is promoted; with nothing left a fresh session takes its place.
func (s *sessionService) DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.DeleteSessionResponse, error) {
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

	// A session cannot be deleted out from under an in-flight send.
	if s.conversations != nil {
		if conv, found := s.conversations.Get(sessionId.String()); found && conv.Phase != store.PhaseIdle {
			return nil, apperr.ErrSendInFlight
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperr.FromStore("delete session", sessionId, err)
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return nil, apperr.FromStore("delete messages", sessionId, err)
	}

	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return nil, apperr.FromStore("delete session", sessionId, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperr.FromStore("delete session", sessionId, err)
	}

	if s.conversations != nil {
		s.conversations.Delete(sessionId.String())
	}

	if s.eventPublisher != nil {
		evt := events.NewSessionDeleted(sessionId.String(), userId.String())
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("session", "failed to publish SESSION_DELETED event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Promote the next newest session, or start over with a fresh one.
	next, err := uow.ChatSessionRepository().FindNewestByUser(ctx, userId)
	if err != nil {
		return nil, apperr.FromStore("find session", uuid.Nil, err)
	}
	if next == nil {
		next, err = s.createSession(ctx, uow, userId, "")
		if err != nil {
			return nil, err
		}
	}

	return &dto.DeleteSessionResponse{ActiveSessionId: &next.Id}, nil
}

func (s *sessionService) EnsureActiveSession(ctx context.Context, userId uuid.UUID) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindNewestByUser(ctx, userId)
	if err != nil {
		return nil, apperr.FromStore("find session", uuid.Nil, err)
	}
	if session != nil {
		return session, nil
	}

	return s.createSession(ctx, uow, userId, "")
}
