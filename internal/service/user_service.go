package service

import (
	"context"
	"time"

	"emojify-be/internal/dto"
	"emojify-be/internal/pkg/serverutils"
	"emojify-be/internal/repository/specification"
	"emojify-be/internal/repository/unitofwork"
	"emojify-be/pkg/quota"

	"github.com/google/uuid"
)

type IUserService interface {
	GetMe(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	GetUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageResponse, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) GetMe(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.UserNotFound()
	}

	resp := presentUser(user, time.Now())
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.UserNotFound()
	}

	displayName := user.DisplayName
	if req.DisplayName != nil {
		displayName = *req.DisplayName
	}
	bio := user.Bio
	if req.Bio != nil {
		bio = req.Bio
	}
	avatarURL := user.AvatarURL
	if req.AvatarURL != nil {
		avatarURL = req.AvatarURL
	}

	if err := uow.UserRepository().UpdateProfile(ctx, userId, displayName, bio, avatarURL); err != nil {
		return nil, err
	}

	user.DisplayName = displayName
	user.Bio = bio
	user.AvatarURL = avatarURL

	resp := presentUser(user, time.Now())
	return &resp, nil
}

func (s *userService) GetUsage(ctx context.Context, userId uuid.UUID) (*dto.UsageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.UserNotFound()
	}

	now := time.Now()

	// Apply the lazy monthly reset on read so a stale counter never leaks
	// into the response. Same predicate the generation path uses.
	eff := quota.Effective(user.Subscription, now)
	if quota.ResetDue(eff.LastReset, now) {
		if err := uow.UserRepository().ResetUsageIfDue(ctx, userId, quota.FirstOfMonth(now)); err != nil {
			return nil, err
		}
		user, err = uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, serverutils.UserNotFound()
		}
	}

	resp := presentUsage(user.Subscription, now)
	return &resp, nil
}

func (s *userService) DeleteByEmail(ctx context.Context, email string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return err
	}
	if user == nil {
		return serverutils.UserNotFound()
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Delete(ctx, user.Id); err != nil {
		return err
	}

	return uow.Commit()
}
