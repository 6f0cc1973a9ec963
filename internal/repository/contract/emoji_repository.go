package contract

import (
	"context"

	"emojify-be/internal/entity"
	"emojify-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EmojiRepository interface {
	Create(ctx context.Context, emoji *entity.SavedEmoji) error
	Delete(ctx context.Context, id uuid.UUID, userId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SavedEmoji, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SavedEmoji, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
