package service

import (
	"context"
	"time"

	"emojify-be/internal/dto"
	"emojify-be/internal/entity"
	"emojify-be/internal/repository/specification"
	"emojify-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IEmojiService interface {
	Save(ctx context.Context, userId uuid.UUID, req *dto.SaveEmojiRequest) (*dto.EmojiResponse, error)
	List(ctx context.Context, userId uuid.UUID, page, pageSize int) ([]dto.EmojiResponse, int64, error)
	Delete(ctx context.Context, userId, emojiId uuid.UUID) error
}

type emojiService struct {
	uowFactory        unitofwork.RepositoryFactory
	activityPublisher IActivityPublisher
}

func NewEmojiService(uowFactory unitofwork.RepositoryFactory, activityPublisher IActivityPublisher) IEmojiService {
	return &emojiService{
		uowFactory:        uowFactory,
		activityPublisher: activityPublisher,
	}
}

func (s *emojiService) Save(ctx context.Context, userId uuid.UUID, req *dto.SaveEmojiRequest) (*dto.EmojiResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	emoji := &entity.SavedEmoji{
		Id:        uuid.New(),
		UserId:    userId,
		Prompt:    req.Prompt,
		ImageURL:  req.ImageURL,
		JobId:     req.JobId,
		Params:    req.Params,
		CreatedAt: time.Now(),
	}

	if err := uow.EmojiRepository().Create(ctx, emoji); err != nil {
		return nil, err
	}

	if s.activityPublisher != nil {
		s.activityPublisher.PublishActivity(userId, entity.ActivityEmojiSaved, map[string]interface{}{
			"emoji_id":  emoji.Id.String(),
			"prompt":    emoji.Prompt,
			"image_url": emoji.ImageURL,
		})
	}

	return presentEmoji(emoji), nil
}

func (s *emojiService) List(ctx context.Context, userId uuid.UUID, page, pageSize int) ([]dto.EmojiResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.EmojiRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, 0, err
	}

	emojis, err := uow.EmojiRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.EmojiResponse, 0, len(emojis))
	for _, e := range emojis {
		responses = append(responses, *presentEmoji(e))
	}

	return responses, total, nil
}

func (s *emojiService) Delete(ctx context.Context, userId, emojiId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EmojiRepository().Delete(ctx, emojiId, userId)
}

func presentEmoji(e *entity.SavedEmoji) *dto.EmojiResponse {
	return &dto.EmojiResponse{
		Id:        e.Id.String(),
		Prompt:    e.Prompt,
		ImageURL:  e.ImageURL,
		JobId:     e.JobId,
		Params:    e.Params,
		CreatedAt: e.CreatedAt,
	}
}
