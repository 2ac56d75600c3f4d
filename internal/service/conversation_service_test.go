package service

import (
	"context"
	"errors"
	"testing"

	"midgpt-be/internal/apperror"
	"midgpt-be/internal/constant"
	"midgpt-be/internal/dto"
	"midgpt-be/internal/repository/memory"
	"midgpt-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversationFixture struct {
	store     *fakeStore
	stateRepo *memory.ConversationStateRepository
	text      *fakeTextModel
	image     *fakeImageModel
	artifacts *fakeArtifactStore
	svc       IConversationService
}

func newConversationFixture() *conversationFixture {
	store := newFakeStore()
	stateRepo := memory.NewConversationStateRepository()
	text := &fakeTextModel{reply: "model reply"}
	image := &fakeImageModel{parts: []llm.ResponsePart{{Data: []byte{0x1}, MIMEType: "image/png"}}}
	artifacts := &fakeArtifactStore{url: "https://cdn.example.com/Image_1.png"}

	factory := newFakeFactory(store)
	generation := NewGenerationService(factory, stateRepo, text, image, artifacts, nil)
	svc := NewConversationService(factory, stateRepo, generation, nil)

	return &conversationFixture{
		store:     store,
		stateRepo: stateRepo,
		text:      text,
		image:     image,
		artifacts: artifacts,
		svc:       svc,
	}
}

func TestSendMessage_TextMode(t *testing.T) {
	f := newConversationFixture()
	userId := uuid.New()
	sessionId := seedSession(f.store, userId, "chat")

	res, err := f.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ChatSessionId: sessionId,
		Content:       "  hello there  ",
	})
	require.NoError(t, err)

	assert.Equal(t, constant.ChatMessageRoleUser, res.Sent.Role)
	assert.Equal(t, "hello there", res.Sent.Content)
	assert.Equal(t, constant.ChatMessageRoleAssistant, res.Reply.Role)
	assert.Equal(t, "model reply", res.Reply.Content)
	assert.Len(t, f.store.messages, 2)

	// The history handed to the model includes the just-sent turn.
	require.NotEmpty(t, f.text.lastIn)
	assert.Equal(t, "hello there", f.text.lastIn[len(f.text.lastIn)-1].Content)

	// Both guard flags are reopened after a successful round trip.
	state, found := f.stateRepo.Get(sessionId.String())
	if found {
		assert.False(t, state.CreatingUserMessage)
		assert.False(t, state.AwaitingGeneration)
	}
}

func TestSendMessage_ImageMode(t *testing.T) {
	f := newConversationFixture()
	userId := uuid.New()
	sessionId := seedSession(f.store, userId, "chat")

	res, err := f.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ChatSessionId: sessionId,
		Content:       "a red fox",
		ImageMode:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/Image_1.png", res.Reply.FileURL)
	assert.Equal(t, 1, f.image.calls)
	assert.Zero(t, f.text.calls)
}

func TestSendMessage_EmptyContent(t *testing.T) {
	f := newConversationFixture()

	_, err := f.svc.SendMessage(context.Background(), uuid.New(), &dto.SendMessageRequest{
		ChatSessionId: uuid.New(),
		Content:       "   ",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestSendMessage_ShortImagePrompt(t *testing.T) {
	f := newConversationFixture()
	userId := uuid.New()
	sessionId := seedSession(f.store, userId, "chat")

	_, err := f.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ChatSessionId: sessionId,
		Content:       "ab",
		ImageMode:     true,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	// The minimum applies in text mode as well.
	_, err = f.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ChatSessionId: sessionId,
		Content:       "ab",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Empty(t, f.store.messages)
}

func TestSendMessage_DoubleSubmitConflict(t *testing.T) {
	f := newConversationFixture()
	userId := uuid.New()
	sessionId := seedSession(f.store, userId, "chat")

	// A submission is already in flight for this session.
	require.True(t, f.stateRepo.TryBeginSubmit(sessionId.String()))

	_, err := f.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ChatSessionId: sessionId,
		Content:       "hello",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	assert.Empty(t, f.store.messages)
}

func TestSendMessage_GenerationFailureKeepsUserMessageAndReleasesGuard(t *testing.T) {
	f := newConversationFixture()
	f.text.err = errors.New("model down")
	userId := uuid.New()
	sessionId := seedSession(f.store, userId, "chat")

	_, err := f.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ChatSessionId: sessionId,
		Content:       "hello",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))

	// The user's turn survives the failed generation.
	require.Len(t, f.store.messages, 1)
	assert.Equal(t, constant.ChatMessageRoleUser, f.store.messages[0].Role)

	// And the session accepts the next submission.
	assert.True(t, f.stateRepo.TryBeginSubmit(sessionId.String()))
}

func TestSendMessage_UnknownSessionReleasesGuard(t *testing.T) {
	f := newConversationFixture()
	sessionId := uuid.New()

	_, err := f.svc.SendMessage(context.Background(), uuid.New(), &dto.SendMessageRequest{
		ChatSessionId: sessionId,
		Content:       "hello",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.True(t, f.stateRepo.TryBeginSubmit(sessionId.String()))
}

func TestSendMessage_HistorySkipsEmptyContentTurns(t *testing.T) {
	f := newConversationFixture()
	userId := uuid.New()
	sessionId := seedSession(f.store, userId, "chat")

	// Seed a file-only assistant turn; it must not reach the text model.
	_, err := f.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ChatSessionId: sessionId,
		Content:       "draw a fox",
		ImageMode:     true,
	})
	require.NoError(t, err)

	_, err = f.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		ChatSessionId: sessionId,
		Content:       "describe it",
	})
	require.NoError(t, err)

	for _, turn := range f.text.lastIn {
		assert.NotEmpty(t, turn.Content)
	}
}
