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
	"midgpt-be/pkg/llm"
	"midgpt-be/pkg/storage"

	"github.com/google/uuid"
)

// IGenerationService runs a model call and persists the normalized
// result as an assistant message on the session.
type IGenerationService interface {
	GenerateText(ctx context.Context, userId uuid.UUID, request *dto.GenerateTextRequest) (*dto.MessageDTO, error)
	GenerateImage(ctx context.Context, userId uuid.UUID, request *dto.GenerateImageRequest) (*dto.MessageDTO, error)
}

type generationService struct {
	uowFactory unitofwork.RepositoryFactory
	stateRepo  *memory.ConversationStateRepository
	textModel  llm.TextModel
	imageModel llm.ImageModel
	artifacts  storage.ArtifactStore
	publisher  IPublisherService
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	stateRepo *memory.ConversationStateRepository,
	textModel llm.TextModel,
	imageModel llm.ImageModel,
	artifacts storage.ArtifactStore,
	publisher IPublisherService,
) IGenerationService {
	return &generationService{
		uowFactory: uowFactory,
		stateRepo:  stateRepo,
		textModel:  textModel,
		imageModel: imageModel,
		artifacts:  artifacts,
		publisher:  publisher,
	}
}

// GenerateText turns the supplied history into one assistant reply.
// The session is verified before the model is called so a bad session
// id never costs a model invocation.
func (s *generationService) GenerateText(ctx context.Context, userId uuid.UUID, request *dto.GenerateTextRequest) (*dto.MessageDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(request.History))
	for _, turn := range request.History {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	if len(history) == 0 {
		return nil, apperror.NewValidation("History must contain at least one non-empty turn.", nil)
	}

	// One generation at a time per session, so replies land in the
	// transcript in submission order.
	lock := s.stateRepo.GenerationLock(request.ChatSessionId.String())
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	reply, err := s.textModel.Chat(ctx, history)
	if err != nil {
		return nil, apperror.NewUpstream(apperror.SourceModel, "text generation failed", err)
	}

	message, err := s.persistAssistantMessage(ctx, uow, request.ChatSessionId, reply, "")
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(events.NewGenerationCompleted(
			request.ChatSessionId.String(), message.Id.String(), constant.GenerationModeText, time.Since(started)))
	}
	return messageToDTO(message), nil
}

// GenerateImage produces an image from a prompt, uploads the binary to
// the artifact store and persists the public URL alongside whatever
// commentary the model emitted. A generation that yields no binary part
// is a hard failure even if it yielded text.
func (s *generationService) GenerateImage(ctx context.Context, userId uuid.UUID, request *dto.GenerateImageRequest) (*dto.MessageDTO, error) {
	if len(strings.TrimSpace(request.Prompt)) < 3 {
		return nil, apperror.NewValidation("Prompt must be at least 3 characters long.", nil)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return nil, err
	}

	lock := s.stateRepo.GenerationLock(request.ChatSessionId.String())
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	parts, err := s.imageModel.Generate(ctx, request.Prompt)
	if err != nil {
		return nil, apperror.NewUpstream(apperror.SourceModel, "image generation failed", err)
	}

	// Single pass: accumulate every text part, keep only the first
	// binary part. Extra binaries are discarded.
	var commentary strings.Builder
	var binary []byte
	var mimeType string
	for _, part := range parts {
		if part.IsBinary() {
			if binary == nil {
				binary = part.Data
				mimeType = part.MIMEType
			}
			continue
		}
		commentary.WriteString(part.Text)
	}
	if binary == nil {
		return nil, apperror.NewUpstream(apperror.SourceModel, "image model returned no image data", nil)
	}

	fileURL, err := s.artifacts.Upload(ctx, binary, mimeType)
	if err != nil {
		return nil, apperror.NewUpstream(apperror.SourceArtifactStore, "artifact upload failed", err)
	}

	message, err := s.persistAssistantMessage(ctx, uow, request.ChatSessionId, commentary.String(), fileURL)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(events.NewGenerationCompleted(
			request.ChatSessionId.String(), message.Id.String(), constant.GenerationModeImage, time.Since(started)))
	}
	return messageToDTO(message), nil
}

func (s *generationService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) error {
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
	return nil
}

// persistAssistantMessage stores a generated reply. A store failure
// here surfaces as persistence, not upstream: the model already
// produced output and the caller must be able to tell the two apart.
func (s *generationService) persistAssistantMessage(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, content, fileURL string) (*entity.Message, error) {
	message := entity.Message{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       content,
		FileURL:       fileURL,
		CreatedAt:     time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &message); err != nil {
		return nil, apperror.NewPersistence("failed to store generated message", err)
	}
	return &message, nil
}
