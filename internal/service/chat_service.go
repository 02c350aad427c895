package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
	"perry-be/pkg/llm"
	pktNats "perry-be/pkg/nats"
	"perry-be/pkg/prompt"
	"perry-be/pkg/store"

	"github.com/google/uuid"
)

type IChatService interface {
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	messageStore     IMessageStoreService
	sessionService   ISessionService
	llmProvider      llm.LLMProvider
	conversations    *memory.ConversationRepository
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	messageStore IMessageStoreService,
	sessionService ISessionService,
	llmProvider llm.LLMProvider,
	conversations *memory.ConversationRepository,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		messageStore:     messageStore,
		sessionService:   sessionService,
		llmProvider:      llmProvider,
		conversations:    conversations,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
	}
}

// SendChat runs one full exchange: persist the user message, call the
// model, persist the reply. Storage failures degrade the exchange with
// a notice instead of aborting it; only validation and a concurrent
// send reject the request outright. The busy flag is released on every
// path, panics included.
func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (res *dto.SendChatResponse, err error) {
	// 1. Validate before touching storage or the network.
	trimmed := strings.TrimSpace(req.Message)
	if trimmed == "" {
		return nil, &apperr.ValidationError{Field: "message"}
	}
	if req.ChatSessionId == uuid.Nil {
		return nil, &apperr.ValidationError{Field: "chat_session_id"}
	}

	// 2. One send in flight per session.
	if !s.conversations.TryAcquire(req.ChatSessionId.String(), userId.String(), trimmed) {
		return nil, apperr.ErrSendInFlight
	}

	acquiredId := req.ChatSessionId.String()
	defer func() {
		s.conversations.Release(acquiredId)
		if r := recover(); r != nil {
			s.log.Error("chat", "send pipeline panicked", map[string]interface{}{
				"session_id": req.ChatSessionId,
				"panic":      fmt.Sprintf("%v", r),
			})
			res = nil
			err = &apperr.UnexpectedError{Err: fmt.Errorf("send pipeline: %v", r)}
		}
	}()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperr.FromStore("find user", req.ChatSessionId, err)
	}
	displayName := ""
	if user != nil {
		displayName = user.DisplayName
	}

	var notices []string
	degraded := false
	sessionId := req.ChatSessionId

	// 3. Resolve the session, replacing it when the id is stale.
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperr.FromStore("find session", sessionId, err)
	}
	if session == nil {
		session, notices, err = s.replaceSession(ctx, userId, notices)
		if err != nil {
			return nil, err
		}
		sessionId = session.Id
	}

	// 4. Persist the user message.
	s.conversations.SetPhase(acquiredId, store.PhasePersistingUser)

	userMsg, saveErr := s.messageStore.SaveMessage(ctx, userId, sessionId, trimmed, false)
	if saveErr != nil {
		var invalidSession *apperr.InvalidSessionError
		if errors.As(saveErr, &invalidSession) {
			// Session vanished between lookup and insert. Replace it
			// and try once more.
			session, notices, err = s.replaceSession(ctx, userId, notices)
			if err != nil {
				return nil, err
			}
			sessionId = session.Id
			userMsg, saveErr = s.messageStore.SaveMessage(ctx, userId, sessionId, trimmed, false)
		}
	}
	if saveErr != nil {
		// Degraded mode: the exchange continues, the message is only
		// lost from history.
		degraded = true
		notices = append(notices, constant.NoticeSaveFailure)
		s.log.Error("chat", "failed to persist user message", map[string]interface{}{
			"session_id": sessionId,
			"error":      saveErr.Error(),
		})
	}

	// 5. First persisted message of a fresh session names it, async.
	if userMsg != nil && session.Title == constant.DefaultSessionTitle {
		s.publishTitleDerivation(sessionId, userId, trimmed)
	}

	// 6. Call the model.
	s.conversations.SetPhase(acquiredId, store.PhaseAwaitingModel)

	replyText, modelErr := s.llmProvider.Generate(ctx, prompt.Compose(displayName, trimmed))
	if modelErr != nil {
		s.conversations.SetPhase(acquiredId, store.PhaseErrorRecovery)
		if errors.Is(modelErr, llm.ErrAuth) {
			notices = append(notices, constant.NoticeModelConfig)
		} else {
			notices = append(notices, constant.NoticeModelFailure)
		}
		s.log.Error("chat", "model call failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      modelErr.Error(),
		})
	}

	// 7. Persist the reply. A failure here keeps the reply in the view.
	var botMsg *entity.ChatMessage
	if replyText != "" {
		s.conversations.SetPhase(acquiredId, store.PhasePersistingReply)

		var botErr error
		botMsg, botErr = s.messageStore.SaveMessage(ctx, userId, sessionId, replyText, true)
		if botErr != nil {
			// Logged only; the user already has the reply on screen.
			degraded = true
			s.log.Error("chat", "failed to persist assistant reply", map[string]interface{}{
				"session_id": sessionId,
				"error":      botErr.Error(),
			})
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewMessageExchanged(sessionId.String(), userId.String(), degraded)
		if pubErr := s.eventPublisher.Publish(ctx, evt); pubErr != nil {
			s.log.Warn("chat", "failed to publish MESSAGE_EXCHANGED event", map[string]interface{}{
				"session_id": sessionId,
				"error":      pubErr.Error(),
			})
		}
	}

	return s.buildResponse(session, trimmed, userMsg, replyText, botMsg, notices), nil
}

func (s *chatService) replaceSession(ctx context.Context, userId uuid.UUID, notices []string) (*entity.ChatSession, []string, error) {
	replacement, err := s.sessionService.EnsureActiveSession(ctx, userId)
	if err != nil {
		return nil, notices, err
	}
	return replacement, append(notices, constant.NoticeSessionReset), nil
}

func (s *chatService) publishTitleDerivation(sessionId, userId uuid.UUID, message string) {
	payload := dto.PublishSessionTitleMessage{
		ChatSessionId: sessionId,
		UserId:        userId,
		Message:       message,
	}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(context.Background(), msgJson); err != nil {
		s.log.Warn("chat", "failed to publish title derivation", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

// buildResponse mirrors what the user should see: the sent message is
// always echoed back even when persisting it failed.
func (s *chatService) buildResponse(
	session *entity.ChatSession,
	sentText string,
	userMsg *entity.ChatMessage,
	replyText string,
	botMsg *entity.ChatMessage,
	notices []string,
) *dto.SendChatResponse {
	sent := &dto.SendChatResponseChat{
		Id:        uuid.New(),
		Message:   sentText,
		Role:      constant.ChatRoleUser,
		CreatedAt: time.Now(),
	}
	if userMsg != nil {
		sent.Id = userMsg.Id
		sent.CreatedAt = userMsg.CreatedAt
	}

	var reply *dto.SendChatResponseChat
	if replyText != "" {
		reply = &dto.SendChatResponseChat{
			Id:        uuid.New(),
			Message:   replyText,
			Role:      constant.ChatRoleBot,
			CreatedAt: time.Now(),
		}
		if botMsg != nil {
			reply.Id = botMsg.Id
			reply.CreatedAt = botMsg.CreatedAt
		}
	}

	return &dto.SendChatResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Sent:             sent,
		Reply:            reply,
		Notices:          notices,
	}
}
