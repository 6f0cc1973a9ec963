package service

import (
	"encoding/json"

	"emojify-be/internal/entity"
	"emojify-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const ActivityTopicName = "ACTIVITY_FEED"

// ActivityMessage is the in-process envelope between the request path and
// the activity consumer.
type ActivityMessage struct {
	UserId   uuid.UUID              `json:"user_id"`
	Type     entity.ActivityType    `json:"type"`
	Metadata map[string]interface{} `json:"metadata"`
}

// IActivityPublisher decouples request handling from activity persistence.
// Publishing is fire-and-forget; a lost activity entry never fails a request.
type IActivityPublisher interface {
	PublishActivity(userId uuid.UUID, activityType entity.ActivityType, metadata map[string]interface{})
}

type activityPublisher struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewActivityPublisher(pubSub *gochannel.GoChannel, log logger.ILogger) IActivityPublisher {
	return &activityPublisher{
		pubSub: pubSub,
		logger: log,
	}
}

func (p *activityPublisher) PublishActivity(userId uuid.UUID, activityType entity.ActivityType, metadata map[string]interface{}) {
	payload, err := json.Marshal(ActivityMessage{
		UserId:   userId,
		Type:     activityType,
		Metadata: metadata,
	})
	if err != nil {
		p.logger.Error("ActivityPublisher", "Failed to marshal activity message", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(ActivityTopicName, msg); err != nil {
		p.logger.Error("ActivityPublisher", "Failed to publish activity message", map[string]interface{}{"error": err.Error()})
	}
}
