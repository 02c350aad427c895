package memory

import (
	"sync"
	"testing"

	"perry-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func TestTryAcquireRelease(t *testing.T) {
	repo := NewConversationRepository()

	assert.True(t, repo.TryAcquire("session-1", "user-1", "hello"))
	assert.False(t, repo.TryAcquire("session-1", "user-1", "hello"), "second acquire must fail while busy")

	// A different session is unaffected.
	assert.True(t, repo.TryAcquire("session-2", "user-1", "hello"))

	repo.Release("session-1")
	assert.True(t, repo.TryAcquire("session-1", "user-1", "hello"), "released session can be acquired again")
}

func TestTryAcquireConcurrent(t *testing.T) {
	repo := NewConversationRepository()

	const goroutines = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.TryAcquire("session-1", "user-1", "hello") {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, acquired, "exactly one concurrent acquire must win")
}

func TestTryAcquireRecordsMessage(t *testing.T) {
	repo := NewConversationRepository()

	repo.TryAcquire("session-1", "user-1", "I had a rough day")

	conv, found := repo.Get("session-1")
	assert.True(t, found)
	assert.Equal(t, "I had a rough day", conv.LastMessage)
	assert.Equal(t, "user-1", conv.UserID)

	// Release keeps the record; only the phase resets.
	repo.Release("session-1")
	conv, found = repo.Get("session-1")
	assert.True(t, found)
	assert.Equal(t, store.PhaseIdle, conv.Phase)
	assert.Equal(t, "I had a rough day", conv.LastMessage)
}

func TestSetPhase(t *testing.T) {
	repo := NewConversationRepository()

	repo.TryAcquire("session-1", "user-1", "hello")
	repo.SetPhase("session-1", store.PhaseAwaitingModel)

	conv, found := repo.Get("session-1")
	assert.True(t, found)
	assert.Equal(t, store.PhaseAwaitingModel, conv.Phase)

	// SetPhase on an unknown session is a no-op.
	repo.SetPhase("missing", store.PhaseIdle)
	_, found = repo.Get("missing")
	assert.False(t, found)
}
