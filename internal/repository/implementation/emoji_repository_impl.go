package implementation

import (
	"context"
	"errors"

	"emojify-be/internal/entity"
	"emojify-be/internal/mapper"
	"emojify-be/internal/model"
	"emojify-be/internal/repository/contract"
	"emojify-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmojiRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EmojiMapper
}

func NewEmojiRepository(db *gorm.DB) contract.EmojiRepository {
	return &EmojiRepositoryImpl{
		db:     db,
		mapper: mapper.NewEmojiMapper(),
	}
}

func (r *EmojiRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EmojiRepositoryImpl) Create(ctx context.Context, emoji *entity.SavedEmoji) error {
	m := r.mapper.ToModel(emoji)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*emoji = *r.mapper.ToEntity(m)
	return nil
}

// Delete is scoped to the owning user so one user cannot remove another's emoji.
func (r *EmojiRepositoryImpl) Delete(ctx context.Context, id uuid.UUID, userId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userId).
		Delete(&model.SavedEmoji{}).Error
}

func (r *EmojiRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SavedEmoji, error) {
	var m model.SavedEmoji
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EmojiRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SavedEmoji, error) {
	var models []*model.SavedEmoji
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EmojiRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.SavedEmoji{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
