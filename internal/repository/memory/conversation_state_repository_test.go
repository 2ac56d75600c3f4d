package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryBeginSubmit_SecondCallerBlocked(t *testing.T) {
	repo := NewConversationStateRepository()

	assert.True(t, repo.TryBeginSubmit("s1"))
	assert.False(t, repo.TryBeginSubmit("s1"))

	// Other sessions are unaffected.
	assert.True(t, repo.TryBeginSubmit("s2"))
}

func TestMarkAwaiting_KeepsGuardClosed(t *testing.T) {
	repo := NewConversationStateRepository()

	require.True(t, repo.TryBeginSubmit("s1"))
	repo.MarkAwaiting("s1")

	state, found := repo.Get("s1")
	require.True(t, found)
	assert.False(t, state.CreatingUserMessage)
	assert.True(t, state.AwaitingGeneration)

	assert.False(t, repo.TryBeginSubmit("s1"))
}

func TestRelease_ReopensGuard(t *testing.T) {
	repo := NewConversationStateRepository()

	require.True(t, repo.TryBeginSubmit("s1"))
	repo.MarkAwaiting("s1")
	repo.Release("s1")

	assert.True(t, repo.TryBeginSubmit("s1"))
}

func TestTryBeginSubmit_ConcurrentSingleWinner(t *testing.T) {
	repo := NewConversationStateRepository()

	const attempts = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.TryBeginSubmit("s1") {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestDelete_ClearsStateAndLock(t *testing.T) {
	repo := NewConversationStateRepository()

	require.True(t, repo.TryBeginSubmit("s1"))
	repo.Delete("s1")

	_, found := repo.Get("s1")
	assert.False(t, found)
	assert.True(t, repo.TryBeginSubmit("s1"))
}

func TestGenerationLock_StablePerSession(t *testing.T) {
	repo := NewConversationStateRepository()

	l1 := repo.GenerationLock("s1")
	l2 := repo.GenerationLock("s1")
	other := repo.GenerationLock("s2")

	assert.Same(t, l1, l2)
	assert.NotSame(t, l1, other)
}
