package service

import (
	"context"
	"fmt"
	"time"

	"emojify-be/internal/dto"
	"emojify-be/internal/entity"
	"emojify-be/internal/pkg/logger"
	"emojify-be/internal/pkg/serverutils"
	"emojify-be/internal/repository/specification"
	"emojify-be/internal/repository/unitofwork"
	"emojify-be/pkg/events"
	"emojify-be/pkg/generation"
	pktNats "emojify-be/pkg/nats"
	"emojify-be/pkg/quota"

	"github.com/google/uuid"
)

type IGenerationService interface {
	Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateRequest) (*dto.GenerateResponse, error)
}

type generationService struct {
	uowFactory        unitofwork.RepositoryFactory
	provider          generation.Provider
	providerReady     bool
	timeout           time.Duration
	pollInterval      time.Duration
	eventPublisher    *pktNats.Publisher
	activityPublisher IActivityPublisher
	logger            logger.ILogger
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	provider generation.Provider,
	providerReady bool,
	timeout time.Duration,
	pollInterval time.Duration,
	eventPublisher *pktNats.Publisher,
	activityPublisher IActivityPublisher,
	log logger.ILogger,
) IGenerationService {
	return &generationService{
		uowFactory:        uowFactory,
		provider:          provider,
		providerReady:     providerReady,
		timeout:           timeout,
		pollInterval:      pollInterval,
		eventPublisher:    eventPublisher,
		activityPublisher: activityPublisher,
		logger:            log,
	}
}

func (s *generationService) Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	if !s.providerReady {
		return nil, serverutils.ConfigurationError("image generation credentials are not set")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.UserNotFound()
	}

	now := time.Now()

	// Lazy monthly reset. Runs before admission so a user whose counter is
	// stale from last month gets a fresh allowance on this request.
	eff := quota.Effective(user.Subscription, now)
	if eff.PlanType != entity.PlanPremium && quota.ResetDue(eff.LastReset, now) {
		if err := uow.UserRepository().ResetUsageIfDue(ctx, userId, quota.FirstOfMonth(now)); err != nil {
			return nil, err
		}
	}

	// Admission and increment are one conditional UPDATE, so two concurrent
	// requests at count 4 of 5 cannot both pass the gate.
	admitted, err := uow.UserRepository().RecordGeneration(ctx, userId)
	if err != nil {
		return nil, err
	}
	if !admitted {
		user, ferr := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
		used, limit := quota.FreeUsageLimit, quota.FreeUsageLimit
		if ferr == nil && user != nil {
			effNow := quota.Effective(user.Subscription, now)
			used, limit = effNow.UsageCount, effNow.UsageLimit
		}
		if s.eventPublisher != nil {
			if perr := s.eventPublisher.Publish(ctx, events.NewUsageLimitHit(userId.String(), used, limit)); perr != nil {
				s.logger.Warn("GenerationService", "Failed to publish usage limit event", map[string]interface{}{"error": perr.Error()})
			}
		}
		return nil, serverutils.UsageLimitReached(used, limit)
	}

	job, err := s.provider.CreateJob(ctx, req.Prompt, req.Params)
	if err != nil {
		s.refund(ctx, userId)
		s.logger.Error("GenerationService", "Provider rejected generation job", map[string]interface{}{"error": err.Error()})
		return nil, serverutils.GenerationFailed(err.Error())
	}

	job, err = s.waitForJob(ctx, job)
	if err != nil {
		s.refund(ctx, userId)
		s.publishFailed(ctx, userId, req.Prompt, err.Error())
		return nil, err
	}

	if len(job.Output) == 0 {
		s.refund(ctx, userId)
		s.publishFailed(ctx, userId, req.Prompt, "empty output")
		return nil, serverutils.NoOutput()
	}

	imageURL := job.Output[0]

	if s.eventPublisher != nil {
		if perr := s.eventPublisher.Publish(ctx, events.NewGenerationCompleted(userId.String(), req.Prompt, imageURL)); perr != nil {
			s.logger.Warn("GenerationService", "Failed to publish completion event", map[string]interface{}{"error": perr.Error()})
		}
	}
	if s.activityPublisher != nil {
		s.activityPublisher.PublishActivity(userId, entity.ActivityGenerationCompleted, map[string]interface{}{
			"prompt":    req.Prompt,
			"image_url": imageURL,
			"job_id":    job.Id,
		})
	}

	user, err = uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil {
		return nil, fmt.Errorf("failed to reload user after generation: %v", err)
	}

	return &dto.GenerateResponse{
		JobId:    job.Id,
		ImageURL: imageURL,
		Prompt:   req.Prompt,
		Usage:    presentUsage(user.Subscription, time.Now()),
	}, nil
}

// waitForJob polls until the job reaches a terminal state or the timeout
// elapses. The timeout exists because the HTTP request is held open for the
// whole generation.
func (s *generationService) waitForJob(ctx context.Context, job *generation.Job) (*generation.Job, error) {
	deadline := time.NewTimer(s.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	current := job
	for {
		if current.Done() {
			break
		}
		select {
		case <-ctx.Done():
			return nil, serverutils.GenerationTimeout()
		case <-deadline.C:
			return nil, serverutils.GenerationTimeout()
		case <-ticker.C:
		}

		next, err := s.provider.GetJob(ctx, current.Id)
		if err != nil {
			s.logger.Warn("GenerationService", "Poll failed, retrying", map[string]interface{}{"job_id": current.Id, "error": err.Error()})
			continue
		}
		current = next
	}

	if current.Status != generation.JobSucceeded {
		detail := current.Error
		if detail == "" {
			detail = string(current.Status)
		}
		return nil, serverutils.GenerationFailed(detail)
	}
	return current, nil
}

// refund compensates the optimistic increment when the provider gave the
// user nothing for it.
func (s *generationService) refund(ctx context.Context, userId uuid.UUID) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().ReleaseGeneration(ctx, userId); err != nil {
		s.logger.Error("GenerationService", "Failed to release usage slot", map[string]interface{}{"user_id": userId.String(), "error": err.Error()})
	}
}

func (s *generationService) publishFailed(ctx context.Context, userId uuid.UUID, prompt, reason string) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewGenerationFailed(userId.String(), prompt, reason)); err != nil {
		s.logger.Warn("GenerationService", "Failed to publish failure event", map[string]interface{}{"error": err.Error()})
	}
}
