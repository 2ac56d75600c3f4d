package service

import (
	"context"
	"testing"
	"time"

	"midgpt-be/internal/apperror"
	"midgpt-be/internal/constant"
	"midgpt-be/internal/dto"
	"midgpt-be/internal/entity"
	"midgpt-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrCreateUser_FirstContact(t *testing.T) {
	store := newFakeStore()
	publisher := &capturingPublisher{}
	svc := NewOnboardingService(newFakeFactory(store), publisher)

	res, err := svc.ResolveOrCreateUser(context.Background(), &dto.ResolveUserRequest{
		Email: "a@x.com",
		Name:  "Alice",
	})
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, "a@x.com", res.User.Email)
	assert.Equal(t, "Alice", res.User.Username)

	require.Len(t, res.Sessions, 1)
	assert.Equal(t, constant.WelcomeSessionTitle, res.Sessions[0].Title)
	require.Len(t, res.Sessions[0].Messages, 1)
	assert.Equal(t, constant.ChatMessageRoleAssistant, res.Sessions[0].Messages[0].Role)
	assert.Equal(t, constant.WelcomeGreeting, res.Sessions[0].Messages[0].Content)

	assert.Contains(t, publisher.types(), events.TypeUserOnboarded)
}

func TestResolveOrCreateUser_Idempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewOnboardingService(newFakeFactory(store), nil)

	first, err := svc.ResolveOrCreateUser(context.Background(), &dto.ResolveUserRequest{
		Email: "a@x.com",
		Name:  "Alice",
	})
	require.NoError(t, err)

	second, err := svc.ResolveOrCreateUser(context.Background(), &dto.ResolveUserRequest{
		Email: "a@x.com",
		Name:  "Alice Again",
	})
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.Id, second.User.Id)
	// The original profile wins; resolve never mutates an existing user.
	assert.Equal(t, "Alice", second.User.Username)
	assert.Len(t, second.Sessions, 1)
	assert.Len(t, store.users, 1)
	assert.Len(t, store.sessions, 1)
}

func TestResolveOrCreateUser_DuplicateInsertFallsBackToReturningUser(t *testing.T) {
	store := newFakeStore()
	existing := &entity.User{
		Id:        uuid.New(),
		Email:     "a@x.com",
		Username:  "Alice",
		CreatedAt: time.Now(),
	}
	store.users = append(store.users, existing)
	store.sessions = append(store.sessions, &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    existing.Id,
		Title:     constant.WelcomeSessionTitle,
		CreatedAt: time.Now(),
	})
	// First lookup misses, emulating a concurrent insert that committed
	// between the read and the write.
	store.missUserOnce = true

	svc := NewOnboardingService(newFakeFactory(store), nil)
	res, err := svc.ResolveOrCreateUser(context.Background(), &dto.ResolveUserRequest{
		Email: "a@x.com",
		Name:  "Alice",
	})
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Equal(t, existing.Id, res.User.Id)
	assert.Len(t, store.users, 1)
}

func TestResolveOrCreateUser_ZeroSessionRecovery(t *testing.T) {
	store := newFakeStore()
	existing := &entity.User{
		Id:        uuid.New(),
		Email:     "a@x.com",
		Username:  "Alice",
		CreatedAt: time.Now(),
	}
	store.users = append(store.users, existing)

	svc := NewOnboardingService(newFakeFactory(store), nil)
	res, err := svc.ResolveOrCreateUser(context.Background(), &dto.ResolveUserRequest{
		Email: "a@x.com",
		Name:  "Alice",
	})
	require.NoError(t, err)

	// The user existed but had no sessions: bootstrap completes late.
	assert.False(t, res.Created)
	require.Len(t, res.Sessions, 1)
	assert.Equal(t, constant.WelcomeSessionTitle, res.Sessions[0].Title)
}

func TestResolveOrCreateUser_CreateFailure(t *testing.T) {
	store := newFakeStore()
	store.userCreateErr = assert.AnError

	svc := NewOnboardingService(newFakeFactory(store), nil)
	_, err := svc.ResolveOrCreateUser(context.Background(), &dto.ResolveUserRequest{
		Email: "a@x.com",
		Name:  "Alice",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))
}

func TestListUsers(t *testing.T) {
	store := newFakeStore()
	store.users = append(store.users,
		&entity.User{Id: uuid.New(), Email: "a@x.com", CreatedAt: time.Now().Add(-time.Hour)},
		&entity.User{Id: uuid.New(), Email: "b@x.com", CreatedAt: time.Now()},
	)

	svc := NewOnboardingService(newFakeFactory(store), nil)
	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)

	require.Len(t, users, 2)
	assert.Equal(t, "a@x.com", users[0].Email)
	assert.Equal(t, "b@x.com", users[1].Email)
}
