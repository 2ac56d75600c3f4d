package memory

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// InteractionState tracks the per-session submission guard flags.
type InteractionState struct {
	CreatingUserMessage bool
	AwaitingGeneration  bool
}

// ConversationStateRepository holds transient per-session interaction
// state. Flag transitions are atomic under mu so two near-simultaneous
// submissions cannot both pass the guard.
type ConversationStateRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewConversationStateRepository() *ConversationStateRepository {
	// Default expiration of 1 hour, purging expired items every 10 minutes.
	// Abandoned interactions age out instead of pinning memory.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationStateRepository{
		cache: c,
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *ConversationStateRepository) Get(sessionID string) (*InteractionState, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*InteractionState), true
	}
	return nil, false
}

// TryBeginSubmit sets CreatingUserMessage if and only if neither guard
// flag is set. Returns false when a submission is already in flight.
func (r *ConversationStateRepository) TryBeginSubmit(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, found := r.Get(sessionID)
	if !found {
		st = &InteractionState{}
	}
	if st.CreatingUserMessage || st.AwaitingGeneration {
		return false
	}
	st.CreatingUserMessage = true
	r.cache.Set(sessionID, st, cache.DefaultExpiration)
	return true
}

// MarkAwaiting clears the user-message flag and raises the generation
// flag, keeping the submit guard closed across the hand-off.
func (r *ConversationStateRepository) MarkAwaiting(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, found := r.Get(sessionID)
	if !found {
		st = &InteractionState{}
	}
	st.CreatingUserMessage = false
	st.AwaitingGeneration = true
	r.cache.Set(sessionID, st, cache.DefaultExpiration)
}

// Release clears both flags. Called on every exit path so a failed
// generation never leaves the session permanently locked.
func (r *ConversationStateRepository) Release(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(sessionID, &InteractionState{}, cache.DefaultExpiration)
}

func (r *ConversationStateRepository) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(sessionID)
	delete(r.locks, sessionID)
}

// GenerationLock returns the serialization mutex for a session.
// Holding it while generating keeps the persisted transcript in
// submission order when generations on one session overlap.
func (r *ConversationStateRepository) GenerationLock(sessionID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locks[sessionID]; ok {
		return l
	}
	l := &sync.Mutex{}
	r.locks[sessionID] = l
	return l
}
