package service

import (
	"context"
	"encoding/json"
	"time"

	"emojify-be/internal/dto"
	"emojify-be/internal/entity"
	"emojify-be/internal/pkg/logger"
	"emojify-be/internal/repository/specification"
	"emojify-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IActivityService interface {
	List(ctx context.Context, userId uuid.UUID, limit, offset int) ([]dto.ActivityResponse, int64, error)
	Consume(ctx context.Context) error
}

type activityService struct {
	uowFactory unitofwork.RepositoryFactory
	pubSub     *gochannel.GoChannel
	logger     logger.ILogger
}

func NewActivityService(uowFactory unitofwork.RepositoryFactory, pubSub *gochannel.GoChannel, log logger.ILogger) IActivityService {
	return &activityService{
		uowFactory: uowFactory,
		pubSub:     pubSub,
		logger:     log,
	}
}

func (s *activityService) List(ctx context.Context, userId uuid.UUID, limit, offset int) ([]dto.ActivityResponse, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.ActivityRepository().Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, 0, err
	}

	activities, err := uow.ActivityRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		responses = append(responses, dto.ActivityResponse{
			Id:        a.Id.String(),
			Type:      string(a.Type),
			Metadata:  a.Metadata,
			CreatedAt: a.CreatedAt,
		})
	}

	return responses, total, nil
}

// Consume drains the in-process activity topic and persists entries.
func (s *activityService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, ActivityTopicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *activityService) processMessage(ctx context.Context, msg *message.Message) {
	var payload ActivityMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("ActivityService", "Failed to unmarshal activity message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	activity := &entity.Activity{
		Id:        uuid.New(),
		UserId:    payload.UserId,
		Type:      payload.Type,
		Metadata:  payload.Metadata,
		CreatedAt: time.Now(),
	}

	if err := uow.ActivityRepository().Create(ctx, activity); err != nil {
		s.logger.Error("ActivityService", "Failed to persist activity", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	msg.Ack()
}
