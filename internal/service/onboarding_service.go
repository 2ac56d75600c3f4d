package service

import (
	"context"
	"errors"
	"time"

	"midgpt-be/internal/apperror"
	"midgpt-be/internal/constant"
	"midgpt-be/internal/dto"
	"midgpt-be/internal/entity"
	"midgpt-be/internal/repository/specification"
	"midgpt-be/internal/repository/unitofwork"
	"midgpt-be/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IOnboardingService maps an external identity to a local user and
// bootstraps the first session plus greeting.
type IOnboardingService interface {
	ResolveOrCreateUser(ctx context.Context, request *dto.ResolveUserRequest) (*dto.ResolveUserResponse, error)
	ListUsers(ctx context.Context) ([]*dto.UserDTO, error)
}

type onboardingService struct {
	uowFactory unitofwork.RepositoryFactory
	chatLoader *sessionLoader
	publisher  IPublisherService
}

func NewOnboardingService(uowFactory unitofwork.RepositoryFactory, publisher IPublisherService) IOnboardingService {
	return &onboardingService{
		uowFactory: uowFactory,
		chatLoader: newSessionLoader(),
		publisher:  publisher,
	}
}

// ResolveOrCreateUser is idempotent per email. The unique email index is
// the only concurrency guard: when two first-time calls race, the insert
// loser falls back to the returning-user path instead of failing.
func (s *onboardingService) ResolveOrCreateUser(ctx context.Context, request *dto.ResolveUserRequest) (*dto.ResolveUserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: request.Email})
	if err != nil {
		return nil, apperror.NewPersistence("failed to look up user", err)
	}

	created := false
	if user == nil {
		user = &entity.User{
			Id:        uuid.New(),
			Email:     request.Email,
			Username:  request.Name,
			AvatarURL: request.Picture,
			CreatedAt: time.Now(),
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperror.NewPersistence("failed to create user", err)
			}
			// Lost the onboarding race: another call inserted this email
			// first. Continue as a returning user.
			user, err = uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: request.Email})
			if err != nil {
				return nil, apperror.NewPersistence("failed to look up user after duplicate insert", err)
			}
			if user == nil {
				return nil, apperror.NewConflict("duplicate email detected but user not readable", nil)
			}
		} else {
			created = true
		}
	}

	// A user with zero sessions means an earlier bootstrap failed after
	// the user row committed. Complete it now instead of treating the
	// user as fully onboarded.
	sessionCount, err := uow.ChatSessionRepository().Count(ctx, specification.UserOwnedBy{UserID: user.Id})
	if err != nil {
		return nil, apperror.NewPersistence("failed to count sessions", err)
	}
	if sessionCount == 0 {
		if err := s.bootstrapWelcome(ctx, uow, user.Id); err != nil {
			return nil, err
		}
	}

	sessions, err := s.chatLoader.LoadSessions(ctx, uow, user.Id)
	if err != nil {
		return nil, err
	}

	if created && s.publisher != nil {
		s.publisher.Publish(events.NewUserOnboarded(user.Id.String(), user.Email))
	}

	return &dto.ResolveUserResponse{
		User: dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
			CreatedAt: user.CreatedAt,
		},
		Sessions: sessions,
		Created:  created,
	}, nil
}

// bootstrapWelcome creates the default session and its greeting as a
// single logical unit.
func (s *onboardingService) bootstrapWelcome(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	now := time.Now()

	session := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.WelcomeSessionTitle,
		CreatedAt: now,
	}
	greeting := entity.Message{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       constant.WelcomeGreeting,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return apperror.NewPersistence("failed to begin bootstrap transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return apperror.NewPersistence("failed to create welcome session", err)
	}
	if err := uow.MessageRepository().Create(ctx, &greeting); err != nil {
		return apperror.NewPersistence("failed to create welcome message", err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.NewPersistence("failed to commit bootstrap transaction", err)
	}
	return nil
}

func (s *onboardingService) ListUsers(ctx context.Context) ([]*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	users, err := uow.UserRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: false})
	if err != nil {
		return nil, apperror.NewPersistence("failed to list users", err)
	}

	result := make([]*dto.UserDTO, 0, len(users))
	for _, u := range users {
		result = append(result, &dto.UserDTO{
			Id:        u.Id,
			Email:     u.Email,
			Username:  u.Username,
			AvatarURL: u.AvatarURL,
			CreatedAt: u.CreatedAt,
		})
	}
	return result, nil
}
