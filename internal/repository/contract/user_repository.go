package contract

import (
	"context"
	"time"

	"emojify-be/internal/entity"
	"emojify-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Profile
	UpdateProfile(ctx context.Context, id uuid.UUID, displayName string, bio, avatarURL *string) error

	// Subscription sub-document (overwritten in place; one per user)
	UpdateSubscription(ctx context.Context, userId uuid.UUID, sub *entity.Subscription) error

	// Usage quota. RecordGeneration is a single conditional UPDATE:
	// increment iff premium or below the limit. Returns false when the
	// limit gate rejected the request.
	RecordGeneration(ctx context.Context, userId uuid.UUID) (bool, error)
	ReleaseGeneration(ctx context.Context, userId uuid.UUID) error
	ResetUsageIfDue(ctx context.Context, userId uuid.UUID, periodStart time.Time) error
	BulkResetFreeUsage(ctx context.Context, periodStart time.Time) (int64, error)

	// Refresh tokens
	CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error
	FindRefreshToken(ctx context.Context, tokenHash string) (*entity.UserRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error

	// OAuth provider linkage
	SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error
}
