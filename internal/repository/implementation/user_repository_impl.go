package implementation

import (
	"context"
	"errors"
	"time"

	"emojify-be/internal/entity"
	"emojify-be/internal/mapper"
	"emojify-be/internal/model"
	"emojify-be/internal/repository/contract"
	"emojify-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	modelUser := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(modelUser).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(modelUser)
	return nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, user *entity.User) error {
	modelUser := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Save(modelUser).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(modelUser)
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{}).Error
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var modelUser model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&modelUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&modelUser), nil
}

func (r *UserRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var modelUsers []*model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&modelUsers).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(modelUsers), nil
}

func (r *UserRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.User{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepositoryImpl) UpdateProfile(ctx context.Context, id uuid.UUID, displayName string, bio, avatarURL *string) error {
	updates := map[string]interface{}{
		"display_name": displayName,
	}
	if bio != nil {
		updates["bio"] = *bio
	}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateSubscription overwrites the embedded sub-document in place. Every
// column is written; there is no partial transition and no history kept.
func (r *UserRepositoryImpl) UpdateSubscription(ctx context.Context, userId uuid.UUID, sub *entity.Subscription) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userId).
		Updates(r.mapper.SubscriptionToColumns(sub)).Error
}

// RecordGeneration admits and counts a generation in one conditional
// UPDATE. Two concurrent requests at usage_limit-1 cannot both pass: the
// row condition is re-evaluated under the row lock, so exactly one
// increment lands and the other returns not-admitted. Usage is counted on
// every plan; only non-premium rows are gated on the limit.
func (r *UserRepositoryImpl) RecordGeneration(ctx context.Context, userId uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userId).
		Where("subscription_plan_type = ? OR subscription_usage_count < subscription_usage_limit", string(entity.PlanPremium)).
		Updates(map[string]interface{}{
			"subscription_usage_count": gorm.Expr("subscription_usage_count + 1"),
			"subscription_updated_at":  time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseGeneration is the compensating decrement when the provider call
// fails after admission. GREATEST keeps the counter non-negative.
func (r *UserRepositoryImpl) ReleaseGeneration(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userId).
		Updates(map[string]interface{}{
			"subscription_usage_count": gorm.Expr("GREATEST(subscription_usage_count - 1, 0)"),
			"subscription_updated_at":  time.Now(),
		}).Error
}

// ResetUsageIfDue is the lazy request-path form of the monthly reset.
// Same predicate as the bulk job (specification.FreePlanResetDue), scoped
// to one user.
func (r *UserRepositoryImpl) ResetUsageIfDue(ctx context.Context, userId uuid.UUID, periodStart time.Time) error {
	query := specification.FreePlanResetDue{PeriodStart: periodStart}.
		Apply(r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userId))
	return query.Updates(map[string]interface{}{
		"subscription_usage_count": 0,
		"subscription_last_reset":  time.Now(),
		"subscription_updated_at":  time.Now(),
	}).Error
}

// BulkResetFreeUsage is the cron-path form: one statement across all FREE
// users whose reset is due.
func (r *UserRepositoryImpl) BulkResetFreeUsage(ctx context.Context, periodStart time.Time) (int64, error) {
	query := specification.FreePlanResetDue{PeriodStart: periodStart}.
		Apply(r.db.WithContext(ctx).Model(&model.User{}))
	res := query.Updates(map[string]interface{}{
		"subscription_usage_count": 0,
		"subscription_last_reset":  time.Now(),
		"subscription_updated_at":  time.Now(),
	})
	return res.RowsAffected, res.Error
}

func (r *UserRepositoryImpl) CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error {
	m := r.mapper.UserRefreshTokenToModel(token)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *UserRepositoryImpl) FindRefreshToken(ctx context.Context, tokenHash string) (*entity.UserRefreshToken, error) {
	var m model.UserRefreshToken
	err := r.db.WithContext(ctx).Where("token_hash = ? AND revoked = false", tokenHash).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserRefreshTokenToEntity(&m), nil
}

func (r *UserRepositoryImpl) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Model(&model.UserRefreshToken{}).Where("token_hash = ?", tokenHash).Update("revoked", true).Error
}

func (r *UserRepositoryImpl) SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error {
	m := r.mapper.UserProviderToModel(provider)
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO user_providers (id, user_id, provider_name, provider_user_id, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider_name, provider_user_id)
		DO UPDATE SET avatar_url = EXCLUDED.avatar_url
	`, m.Id, m.UserId, m.ProviderName, m.ProviderUserId, m.AvatarURL, m.CreatedAt).Error
}
