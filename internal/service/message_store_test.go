package service

import (
	"context"
	"testing"
	"time"

	"perry-be/internal/apperr"
	"perry-be/internal/constant"
	"perry-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFixture struct {
	svc       IMessageStoreService
	userId    uuid.UUID
	sessionId uuid.UUID
	messages  *fakeMessageRepo
}

func newStoreFixture() *storeFixture {
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

	return &storeFixture{
		svc:       NewMessageStoreService(&fakeFactory{uow: uow}),
		userId:    userId,
		sessionId: sessionId,
		messages:  uow.messages,
	}
}

func TestGetChatHistorySeedsWelcomeOnce(t *testing.T) {
	f := newStoreFixture()

	first, err := f.svc.GetChatHistory(context.Background(), f.userId, f.sessionId)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, constant.ChatRoleBot, first[0].Role)
	assert.Contains(t, first[0].Message, "Alice")

	// The greeting was persisted, so a second load must not add another.
	second, err := f.svc.GetChatHistory(context.Background(), f.userId, f.sessionId)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Id, second[0].Id)
	assert.Len(t, f.messages.messages, 1)
}

func TestGetChatHistoryRejectsForeignSession(t *testing.T) {
	f := newStoreFixture()

	_, err := f.svc.GetChatHistory(context.Background(), uuid.New(), f.sessionId)

	require.Error(t, err)
	assert.True(t, apperr.IsInvalidSession(err))
	assert.Empty(t, f.messages.messages, "no welcome may be seeded for a rejected load")
}

func TestGetChatHistoryMapsRoles(t *testing.T) {
	f := newStoreFixture()
	f.messages.messages = []*entity.ChatMessage{
		{Id: uuid.New(), UserId: f.userId, ChatSessionId: f.sessionId, Message: "hi", IsBot: false, CreatedAt: time.Now()},
		{Id: uuid.New(), UserId: f.userId, ChatSessionId: f.sessionId, Message: "hello", IsBot: true, CreatedAt: time.Now()},
	}

	res, err := f.svc.GetChatHistory(context.Background(), f.userId, f.sessionId)

	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, constant.ChatRoleUser, res[0].Role)
	assert.Equal(t, constant.ChatRoleBot, res[1].Role)
}

func TestSaveMessageTrimsWhitespace(t *testing.T) {
	f := newStoreFixture()

	msg, err := f.svc.SaveMessage(context.Background(), f.userId, f.sessionId, "  hello there  ", false)

	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Message)
	assert.False(t, msg.IsBot)
	require.Len(t, f.messages.messages, 1)
}

func TestSaveMessageRejectsBlankMessage(t *testing.T) {
	f := newStoreFixture()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := f.svc.SaveMessage(context.Background(), f.userId, f.sessionId, text, false)
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
	}
	assert.Empty(t, f.messages.messages)
}

func TestSaveMessageRejectsNilSessionId(t *testing.T) {
	f := newStoreFixture()

	_, err := f.svc.SaveMessage(context.Background(), f.userId, uuid.Nil, "hello", false)

	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestSaveMessageRejectsNilUserId(t *testing.T) {
	f := newStoreFixture()

	_, err := f.svc.SaveMessage(context.Background(), uuid.Nil, f.sessionId, "hello", false)

	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err), "a missing user id is a validation failure, not a session miss")
	assert.False(t, apperr.IsInvalidSession(err))
	assert.Empty(t, f.messages.messages)
}

func TestSaveMessageRejectsUnknownSession(t *testing.T) {
	f := newStoreFixture()

	_, err := f.svc.SaveMessage(context.Background(), f.userId, uuid.New(), "hello", false)

	require.Error(t, err)
	assert.True(t, apperr.IsInvalidSession(err))
	assert.Empty(t, f.messages.messages)
}
