package service

import (
	"context"
	"strings"

	"emojify-be/internal/pkg/logger"
	"emojify-be/pkg/events"
	pktNats "emojify-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, messageType string, payload map[string]interface{})
	Broadcast(messageType string, payload map[string]interface{})
}

// NotificationService bridges the durable event bus to live websocket
// connections. Delivery is push only; clients that are offline simply miss
// the push and see the state on next fetch.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// NATS subjects carry the "events." prefix; strip it back to the code.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	payload := event.Payload()

	uidStr, _ := payload["user_id"].(string)
	if uidStr == "" {
		s.logger.Warn("NotificationService", "Event without user_id, dropping", map[string]interface{}{"type": typeCode})
		return nil
	}

	uid, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event with malformed user_id, dropping", map[string]interface{}{"type": typeCode, "user_id": uidStr})
		return nil
	}

	if s.delivery != nil {
		s.delivery.Send(uid, strings.ToLower(typeCode), payload)
	}
	return nil
}
