package implementation

import (
	"context"
	"errors"

	"emojify-be/internal/model"
	"emojify-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) contract.WebhookEventRepository {
	return &WebhookEventRepositoryImpl{db: db}
}

// MarkProcessed inserts the event id, relying on the unique index to
// detect redelivery: a conflicting insert affects zero rows and reports
// the event as already applied.
func (r *WebhookEventRepositoryImpl) MarkProcessed(ctx context.Context, eventId, eventType string) (bool, error) {
	m := &model.ProcessedWebhookEvent{
		Id:        uuid.New(),
		EventId:   eventId,
		EventType: eventType,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *WebhookEventRepositoryImpl) IsProcessed(ctx context.Context, eventId string) (bool, error) {
	var m model.ProcessedWebhookEvent
	err := r.db.WithContext(ctx).Where("event_id = ?", eventId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
