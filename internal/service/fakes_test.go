package service

import (
	"context"
	"sort"
	"sync"

	"midgpt-be/internal/entity"
	"midgpt-be/internal/repository/contract"
	"midgpt-be/internal/repository/specification"
	"midgpt-be/internal/repository/unitofwork"
	"midgpt-be/pkg/events"
	"midgpt-be/pkg/llm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeStore backs the in-memory repository fakes. Specifications are
// interpreted by type instead of being applied to a gorm query.
type fakeStore struct {
	mu       sync.Mutex
	users    []*entity.User
	sessions []*entity.ChatSession
	messages []*entity.Message

	userCreateErr    error
	messageCreateErr error
	missUserOnce     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

func newFakeFactory(store *fakeStore) unitofwork.RepositoryFactory {
	return &fakeFactory{store: store}
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return &fakeUserRepository{store: u.store}
}

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeChatSessionRepository{store: u.store}
}

func (u *fakeUnitOfWork) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepository{store: u.store}
}

// User repository fake

type fakeUserRepository struct {
	store *fakeStore
}

func (r *fakeUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.userCreateErr != nil {
		return r.store.userCreateErr
	}
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	copied := *user
	r.store.users = append(r.store.users, &copied)
	return nil
}

func (r *fakeUserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.missUserOnce {
		r.store.missUserOnce = false
		return nil, nil
	}
	for _, user := range r.store.users {
		if matchUser(user, specs) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]*entity.User, 0, len(r.store.users))
	for _, user := range r.store.users {
		if matchUser(user, specs) {
			copied := *user
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeUserRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchUser(user *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByEmail:
			if user.Email != s.Email {
				return false
			}
		case specification.ByID:
			if user.Id != s.ID {
				return false
			}
		}
	}
	return true
}

// Chat session repository fake

type fakeChatSessionRepository struct {
	store *fakeStore
}

func (r *fakeChatSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *session
	r.store.sessions = append(r.store.sessions, &copied)
	return nil
}

func (r *fakeChatSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.sessions[:0]
	for _, session := range r.store.sessions {
		if session.Id != id {
			kept = append(kept, session)
		}
	}
	r.store.sessions = kept
	return nil
}

func (r *fakeChatSessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, session := range r.store.sessions {
		if matchSession(session, specs) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeChatSessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]*entity.ChatSession, 0, len(r.store.sessions))
	for _, session := range r.store.sessions {
		if matchSession(session, specs) {
			copied := *session
			result = append(result, &copied)
		}
	}
	applySessionOrder(result, specs)
	return result, nil
}

func (r *fakeChatSessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
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

func applySessionOrder(sessions []*entity.ChatSession, specs []specification.Specification) {
	for _, spec := range specs {
		if order, ok := spec.(specification.OrderBy); ok && order.Field == "created_at" {
			sort.SliceStable(sessions, func(i, j int) bool {
				if order.Desc {
					return sessions[j].CreatedAt.Before(sessions[i].CreatedAt)
				}
				return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
			})
		}
	}
}

// Message repository fake

type fakeMessageRepository struct {
	store *fakeStore
}

func (r *fakeMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.messageCreateErr != nil {
		return r.store.messageCreateErr
	}
	copied := *message
	r.store.messages = append(r.store.messages, &copied)
	return nil
}

func (r *fakeMessageRepository) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.messages[:0]
	for _, message := range r.store.messages {
		if message.ChatSessionId != sessionId {
			kept = append(kept, message)
		}
	}
	r.store.messages = kept
	return nil
}

func (r *fakeMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]*entity.Message, 0, len(r.store.messages))
	for _, message := range r.store.messages {
		if matchMessage(message, specs) {
			copied := *message
			result = append(result, &copied)
		}
	}
	applyMessageOrder(result, specs)
	return result, nil
}

func (r *fakeMessageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchMessage(message *entity.Message, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if message.Id != s.ID {
				return false
			}
		case specification.ByChatSessionID:
			if message.ChatSessionId != s.ChatSessionID {
				return false
			}
		}
	}
	return true
}

func applyMessageOrder(messages []*entity.Message, specs []specification.Specification) {
	for _, spec := range specs {
		if order, ok := spec.(specification.OrderBy); ok && order.Field == "created_at" {
			sort.SliceStable(messages, func(i, j int) bool {
				if order.Desc {
					return messages[j].CreatedAt.Before(messages[i].CreatedAt)
				}
				return messages[i].CreatedAt.Before(messages[j].CreatedAt)
			})
		}
	}
}

// Model and storage fakes

type fakeTextModel struct {
	reply  string
	err    error
	calls  int
	lastIn []llm.Message
}

func (m *fakeTextModel) Chat(ctx context.Context, history []llm.Message) (string, error) {
	m.calls++
	m.lastIn = history
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type fakeImageModel struct {
	parts []llm.ResponsePart
	err   error
	calls int
}

func (m *fakeImageModel) Generate(ctx context.Context, prompt string) ([]llm.ResponsePart, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.parts, nil
}

type fakeArtifactStore struct {
	url      string
	err      error
	uploaded []byte
	mimeType string
}

func (s *fakeArtifactStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	s.uploaded = data
	s.mimeType = contentType
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func (s *fakeArtifactStore) PublicURL(name string) string {
	return s.url
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturingPublisher) Publish(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]string, 0, len(p.events))
	for _, e := range p.events {
		result = append(result, e.EventType())
	}
	return result
}
