package memory

import (
	"sync"
	"time"

	"perry-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type ConversationRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewConversationRepository() *ConversationRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationRepository{
		cache: c,
	}
}

func (r *ConversationRepository) Save(conversation *store.Conversation) {
	r.cache.Set(conversation.ID, conversation, cache.DefaultExpiration)
}

func (r *ConversationRepository) Get(sessionID string) (*store.Conversation, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Conversation), true
	}
	return nil, false
}

func (r *ConversationRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// TryAcquire marks the session's pipeline busy and records the message
// being processed. It returns false when a send is already in flight
// for that session.
func (r *ConversationRepository) TryAcquire(sessionID, userID, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, found := r.Get(sessionID); found && conv.Phase != store.PhaseIdle {
		return false
	}
	r.Save(&store.Conversation{
		ID:          sessionID,
		UserID:      userID,
		Phase:       store.PhasePersistingUser,
		LastMessage: message,
	})
	return true
}

// Release returns the session's pipeline to idle regardless of the phase
// it was in.
func (r *ConversationRepository) Release(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, found := r.Get(sessionID); found {
		conv.Phase = store.PhaseIdle
		r.Save(conv)
	}
}

// SetPhase records the pipeline phase for observability. The phase is
// advisory once the pipeline is acquired; only TryAcquire gates entry.
func (r *ConversationRepository) SetPhase(sessionID, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, found := r.Get(sessionID); found {
		conv.Phase = phase
		r.Save(conv)
	}
}
