package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"perry-be/internal/apperr"
	"perry-be/internal/constant"
	"perry-be/internal/dto"
	"perry-be/internal/entity"
	"perry-be/internal/repository/memory"
	"perry-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	svc       IChatService
	userId    uuid.UUID
	sessionId uuid.UUID
	sessions  *fakeSessionRepo
	messages  *fakeMessageRepo
	llm       *fakeLLM
	published *fakePublisher
	convs     *memory.ConversationRepository
}

func newChatFixture() *chatFixture {
	userId := uuid.New()
	sessionId := uuid.New()

	uow := &fakeUoW{
		users: &fakeUserRepo{users: map[uuid.UUID]*entity.User{
			userId: {Id: userId, Email: "alice@example.com", DisplayName: "Alice"},
		}},
		sessions: &fakeSessionRepo{sessions: map[uuid.UUID]*entity.ChatSession{
			sessionId: {Id: sessionId, UserId: userId, Title: constant.DefaultSessionTitle, CreatedAt: time.Now()},
		}},
		messages: &fakeMessageRepo{},
	}
	factory := &fakeFactory{uow: uow}

	provider := &fakeLLM{reply: "I hear you."}
	published := &fakePublisher{}
	convs := memory.NewConversationRepository()

	messageStore := NewMessageStoreService(factory)
	sessionService := NewSessionService(factory, convs, nil, noopLogger{})

	svc := NewChatService(
		factory,
		messageStore,
		sessionService,
		provider,
		convs,
		published,
		nil,
		noopLogger{},
	)

	return &chatFixture{
		svc:       svc,
		userId:    userId,
		sessionId: sessionId,
		sessions:  uow.sessions,
		messages:  uow.messages,
		llm:       provider,
		published: published,
		convs:     convs,
	}
}

func TestSendChatSuccess(t *testing.T) {
	f := newChatFixture()

	res, err := f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: f.sessionId,
		Message:       "  I feel anxious  ",
	})
	require.NoError(t, err)

	// Both sides of the exchange are persisted.
	assert.Len(t, f.messages.messages, 2)
	assert.Equal(t, "I feel anxious", f.messages.messages[0].Message, "user message is trimmed before persisting")
	assert.False(t, f.messages.messages[0].IsBot)
	assert.Equal(t, "I hear you.", f.messages.messages[1].Message)
	assert.True(t, f.messages.messages[1].IsBot)

	require.NotNil(t, res.Sent)
	require.NotNil(t, res.Reply)
	assert.Equal(t, "I hear you.", res.Reply.Message)
	assert.Empty(t, res.Notices)
	assert.Equal(t, f.sessionId, res.ChatSessionId)

	// First message of a default-titled session schedules title derivation.
	assert.Equal(t, 1, f.published.count())
}

func TestSendChatValidatesBeforeModelCall(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: f.sessionId,
		Message:       "   ",
	})

	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 0, f.llm.callCount(), "validation failures must not reach the model")
	assert.Empty(t, f.messages.messages)
}

func TestSendChatRejectsConcurrentSend(t *testing.T) {
	f := newChatFixture()

	require.True(t, f.convs.TryAcquire(f.sessionId.String(), f.userId.String(), "busy"))

	_, err := f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: f.sessionId,
		Message:       "hello",
	})
	assert.ErrorIs(t, err, apperr.ErrSendInFlight)

	// Releasing unblocks the session.
	f.convs.Release(f.sessionId.String())
	_, err = f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: f.sessionId,
		Message:       "hello",
	})
	assert.NoError(t, err)
}

func TestSendChatModelFailure(t *testing.T) {
	f := newChatFixture()
	f.llm.err = errors.New("model overloaded")

	res, err := f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: f.sessionId,
		Message:       "hello",
	})
	require.NoError(t, err)

	// The user message survives, no reply is fabricated.
	assert.Len(t, f.messages.messages, 1)
	assert.Nil(t, res.Reply)
	assert.Contains(t, res.Notices, constant.NoticeModelFailure)
}

func TestSendChatModelConfigFailure(t *testing.T) {
	f := newChatFixture()
	f.llm.err = fmt.Errorf("key rejected: %w", llm.ErrAuth)

	res, err := f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: f.sessionId,
		Message:       "hello",
	})
	require.NoError(t, err)

	assert.Nil(t, res.Reply)
	assert.Contains(t, res.Notices, constant.NoticeModelConfig)
	assert.NotContains(t, res.Notices, constant.NoticeModelFailure)
}

func TestSendChatInvalidSessionRecovers(t *testing.T) {
	f := newChatFixture()
	staleId := uuid.New() // references no stored session

	res, err := f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: staleId,
		Message:       "hello",
	})
	require.NoError(t, err)

	assert.Contains(t, res.Notices, constant.NoticeSessionReset)
	assert.NotEqual(t, staleId, res.ChatSessionId, "a replacement session takes over")

	// The exchange landed in the replacement session.
	require.Len(t, f.messages.messages, 2)
	assert.Equal(t, res.ChatSessionId, f.messages.messages[0].ChatSessionId)
}

func TestSendChatDegradedContinuation(t *testing.T) {
	f := newChatFixture()
	f.messages.createErr = errStoreDown

	res, err := f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: f.sessionId,
		Message:       "hello",
	})
	require.NoError(t, err)

	// Storage is down but the conversation continues.
	assert.Equal(t, 1, f.llm.callCount(), "store failure must not block the model call")
	require.NotNil(t, res.Sent)
	assert.Equal(t, "hello", res.Sent.Message, "unsaved message is still echoed")
	require.NotNil(t, res.Reply)
	assert.Contains(t, res.Notices, constant.NoticeSaveFailure)
}

func TestSendChatReplyPersistFailureKeepsReply(t *testing.T) {
	f := newChatFixture()
	f.messages.createErr = errStoreDown
	f.messages.botOnlyErr = true

	res, err := f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: f.sessionId,
		Message:       "hello",
	})
	require.NoError(t, err)

	// User message persisted, reply did not, but the user still sees it
	// and is not bothered with a notice.
	assert.Len(t, f.messages.messages, 1)
	require.NotNil(t, res.Reply)
	assert.Equal(t, "I hear you.", res.Reply.Message)
	assert.NotContains(t, res.Notices, constant.NoticeSaveFailure)
}

func TestSendChatPanicReleasesBusyFlag(t *testing.T) {
	f := newChatFixture()
	f.llm.panic = true

	_, err := f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: f.sessionId,
		Message:       "hello",
	})

	var unexpected *apperr.UnexpectedError
	assert.True(t, errors.As(err, &unexpected))

	// The busy flag must not leak; the next send goes through.
	f.llm.panic = false
	_, err = f.svc.SendChat(context.Background(), f.userId, &dto.SendChatRequest{
		ChatSessionId: f.sessionId,
		Message:       "hello again",
	})
	assert.NoError(t, err)
}
