package unitofwork

import (
	"context"

	"emojify-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	EmojiRepository() contract.EmojiRepository
	ActivityRepository() contract.ActivityRepository
	WebhookEventRepository() contract.WebhookEventRepository
}
