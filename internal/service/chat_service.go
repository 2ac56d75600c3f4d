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

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.ChatSessionDTO, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionDTO, error)
	CreateMessage(ctx context.Context, userId uuid.UUID, request *dto.CreateMessageRequest) (*dto.MessageDTO, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	stateRepo  *memory.ConversationStateRepository
	chatLoader *sessionLoader
	publisher  IPublisherService
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	stateRepo *memory.ConversationStateRepository,
	publisher IPublisherService,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		stateRepo:  stateRepo,
		chatLoader: newSessionLoader(),
		publisher:  publisher,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.ChatSessionDTO, error) {
	title := strings.TrimSpace(request.Title)
	if title == "" {
		return nil, apperror.NewValidation("Session title must not be empty.", nil)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, apperror.NewPersistence("failed to create session", err)
	}

	return &dto.ChatSessionDTO{
		Id:        session.Id,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		Messages:  []*dto.MessageDTO{},
	}, nil
}

// DeleteSession removes a session together with its messages. The
// ownership check doubles as the existence check, so foreign sessions
// are indistinguishable from missing ones.
func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return apperror.NewPersistence("failed to look up session", err)
	}
	if session == nil {
		return apperror.NewNotFound("session not found", nil)
	}

	if err := uow.Begin(ctx); err != nil {
		return apperror.NewPersistence("failed to begin delete transaction", err)
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return apperror.NewPersistence("failed to delete session messages", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return apperror.NewPersistence("failed to delete session", err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.NewPersistence("failed to commit delete transaction", err)
	}

	// Transient guard flags for a deleted session are meaningless.
	s.stateRepo.Delete(sessionId.String())

	if s.publisher != nil {
		s.publisher.Publish(events.NewSessionDeleted(sessionId.String()))
	}
	return nil
}

func (s *chatService) ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.chatLoader.LoadSessions(ctx, uow, userId)
}

// CreateMessage appends a turn to a session the caller owns. Assistant
// turns must carry content or a file reference; an assistant row with
// neither would be an empty reply and is rejected up front.
func (s *chatService) CreateMessage(ctx context.Context, userId uuid.UUID, request *dto.CreateMessageRequest) (*dto.MessageDTO, error) {
	if request.Role == constant.ChatMessageRoleAssistant && request.Content == "" && request.FileURL == "" {
		return nil, apperror.NewValidation("Assistant messages require content or a file URL.", nil)
	}

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

	message := entity.Message{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          request.Role,
		Content:       request.Content,
		FileURL:       request.FileURL,
		CreatedAt:     time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &message); err != nil {
		return nil, apperror.NewPersistence("failed to create message", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(events.NewMessageCreated(session.Id.String(), message.Id.String(), message.Role))
	}
	return messageToDTO(&message), nil
}
