package service

import (
	"context"
	"errors"
	"sync"

	"perry-be/internal/entity"
	"perry-be/internal/repository/contract"
	"perry-be/internal/repository/specification"
	"perry-be/internal/repository/unitofwork"
	"perry-be/pkg/llm"

	"github.com/google/uuid"
)

// In-memory fakes matching the repository contracts. FindOne honors the
// specification types the services actually use.

type fakeUserRepo struct {
	contract.UserRepository
	users         map[uuid.UUID]*entity.User
	refreshTokens map[string]*entity.UserRefreshToken // keyed by token hash
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			return r.users[s.ID], nil
		case specification.ByEmail:
			for _, u := range r.users {
				if u.Email == s.Email {
					return u, nil
				}
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error {
	if r.refreshTokens == nil {
		r.refreshTokens = map[string]*entity.UserRefreshToken{}
	}
	r.refreshTokens[token.TokenHash] = token
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(ctx context.Context, specs ...specification.Specification) (*entity.UserRefreshToken, error) {
	for _, spec := range specs {
		if s, ok := spec.(specification.ByTokenHash); ok {
			return r.refreshTokens[s.Hash], nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	for _, token := range r.refreshTokens {
		if token.Id == id {
			token.Revoked = true
		}
	}
	return nil
}

type fakeSessionRepo struct {
	contract.ChatSessionRepository
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.ChatSession
	created  []*entity.ChatSession
	deleted  []uuid.UUID
	findErr  error
}

func matchSession(session *entity.ChatSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if session.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if session.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, session := range r.sessions {
		if matchSession(session, specs) {
			return session, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*entity.ChatSession
	for _, session := range r.sessions {
		if matchSession(session, specs) {
			res = append(res, session)
		}
	}
	return res, nil
}

func (r *fakeSessionRepo) FindNewestByUser(ctx context.Context, userId uuid.UUID) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *entity.ChatSession
	for _, session := range r.sessions {
		if session.UserId != userId {
			continue
		}
		if newest == nil || session.CreatedAt.After(newest.CreatedAt) {
			newest = session
		}
	}
	return newest, nil
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = session
	r.created = append(r.created, session)
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = session
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeMessageRepo struct {
	contract.ChatMessageRepository
	mu         sync.Mutex
	messages   []*entity.ChatMessage
	createErr  error
	botOnlyErr bool // when set, createErr applies only to bot messages
	deletedFor []uuid.UUID
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil && (!r.botOnlyErr || msg.IsBot) {
		return r.createErr
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeMessageRepo) FindAllBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*entity.ChatMessage
	for _, msg := range r.messages {
		if msg.ChatSessionId == sessionId {
			res = append(res, msg)
		}
	}
	return res, nil
}

func (r *fakeMessageRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletedFor = append(r.deletedFor, sessionId)
	kept := r.messages[:0]
	for _, msg := range r.messages {
		if msg.ChatSessionId != sessionId {
			kept = append(kept, msg)
		}
	}
	r.messages = kept
	return nil
}

type fakeUoW struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
}

func (u *fakeUoW) Begin(ctx context.Context) error { return nil }
func (u *fakeUoW) Commit() error                   { return nil }
func (u *fakeUoW) Rollback() error                 { return nil }

func (u *fakeUoW) UserRepository() contract.UserRepository               { return u.users }
func (u *fakeUoW) ChatSessionRepository() contract.ChatSessionRepository { return u.sessions }
func (u *fakeUoW) ChatMessageRepository() contract.ChatMessageRepository { return u.messages }

type fakeFactory struct {
	uow *fakeUoW
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

// fakeLLM counts calls and replays a scripted reply or error.

type fakeLLM struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
	panic bool
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panic {
		panic("model exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

var errStoreDown = errors.New("store down")
