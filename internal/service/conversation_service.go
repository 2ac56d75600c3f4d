package service

import (
	"context"
	"strings"
	"time"

	"midgpt-be/internal/apperror"
	"midgpt-be/internal/constant"
	"midgpt-be/internal/dto"
	"midgpt-be/internal/entity"
	"midgpt-be/internal/repository/memory"
	"midgpt-be/internal/repository/specification"
	"midgpt-be/internal/repository/unitofwork"
	"midgpt-be/pkg/events"

	"github.com/google/uuid"
)

// IConversationService is the full send flow: guard the session, store
// the user's turn, run generation and hand back both messages.
type IConversationService interface {
	SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	stateRepo  *memory.ConversationStateRepository
	generation IGenerationService
	publisher  IPublisherService
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	stateRepo *memory.ConversationStateRepository,
	generation IGenerationService,
	publisher IPublisherService,
) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		stateRepo:  stateRepo,
		generation: generation,
		publisher:  publisher,
	}
}

func (s *conversationService) SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	content := strings.TrimSpace(request.Content)
	if content == "" {
		return nil, apperror.NewValidation("Message content must not be empty.", nil)
	}
	if len(content) < 3 {
		return nil, apperror.NewValidation("Prompt must be at least 3 characters long.", nil)
	}

	sessionKey := request.ChatSessionId.String()
	if !s.stateRepo.TryBeginSubmit(sessionKey) {
		return nil, apperror.NewConflict("a submission is already in progress for this session", nil)
	}
	// Every exit path reopens the guard, including generation failures.
	defer s.stateRepo.Release(sessionKey)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: request.ChatSessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperror.NewPersistence("failed to look up session", err)
	}
	if session == nil {
		return nil, apperror.NewNotFound("session not found", nil)
	}

	sent := entity.Message{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleUser,
		Content:       content,
		CreatedAt:     time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &sent); err != nil {
		return nil, apperror.NewPersistence("failed to store user message", err)
	}
	s.stateRepo.MarkAwaiting(sessionKey)

	if s.publisher != nil {
		s.publisher.Publish(events.NewMessageCreated(session.Id.String(), sent.Id.String(), sent.Role))
	}

	var reply *dto.MessageDTO
	if request.ImageMode {
		reply, err = s.generation.GenerateImage(ctx, userId, &dto.GenerateImageRequest{
			ChatSessionId: session.Id,
			Prompt:        content,
		})
	} else {
		var history []dto.ChatTurn
		history, err = s.loadHistory(ctx, uow, session.Id)
		if err == nil {
			reply, err = s.generation.GenerateText(ctx, userId, &dto.GenerateTextRequest{
				ChatSessionId: session.Id,
				History:       history,
			})
		}
	}
	if err != nil {
		// The user message stays persisted. The caller sees the turn in
		// the transcript plus the generation error.
		return nil, err
	}

	return &dto.SendMessageResponse{
		Sent:  messageToDTO(&sent),
		Reply: reply,
	}, nil
}

// loadHistory replays the full transcript in creation order, skipping
// turns with empty content such as pure image replies.
func (s *conversationService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]dto.ChatTurn, error) {
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.NewPersistence("failed to load history", err)
	}

	history := make([]dto.ChatTurn, 0, len(messages))
	for _, msg := range messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		history = append(history, dto.ChatTurn{Role: msg.Role, Content: msg.Content})
	}
	return history, nil
}
