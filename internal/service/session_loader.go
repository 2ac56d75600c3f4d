package service

import (
	"context"

	"midgpt-be/internal/apperror"
	"midgpt-be/internal/dto"
	"midgpt-be/internal/entity"
	"midgpt-be/internal/repository/specification"
	"midgpt-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// sessionLoader assembles sessions with their messages pre-sorted
// ascending by creation time, so callers never re-sort persisted turns.
type sessionLoader struct{}

func newSessionLoader() *sessionLoader {
	return &sessionLoader{}
}

func (l *sessionLoader) LoadSessions(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) ([]*dto.ChatSessionDTO, error) {
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.NewPersistence("failed to list sessions", err)
	}

	result := make([]*dto.ChatSessionDTO, 0, len(sessions))
	for _, sess := range sessions {
		messages, err := uow.MessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: sess.Id},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		if err != nil {
			return nil, apperror.NewPersistence("failed to list messages", err)
		}
		result = append(result, &dto.ChatSessionDTO{
			Id:        sess.Id,
			Title:     sess.Title,
			CreatedAt: sess.CreatedAt,
			Messages:  messagesToDTO(messages),
		})
	}
	return result, nil
}

func messagesToDTO(messages []*entity.Message) []*dto.MessageDTO {
	result := make([]*dto.MessageDTO, 0, len(messages))
	for _, msg := range messages {
		result = append(result, messageToDTO(msg))
	}
	return result
}

func messageToDTO(msg *entity.Message) *dto.MessageDTO {
	return &dto.MessageDTO{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		FileURL:       msg.FileURL,
		CreatedAt:     msg.CreatedAt,
	}
}
