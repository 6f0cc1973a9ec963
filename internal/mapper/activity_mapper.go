package mapper

import (
	"encoding/json"

	"emojify-be/internal/entity"
	"emojify-be/internal/model"

	"gorm.io/datatypes"
)

type ActivityMapper struct{}

func NewActivityMapper() *ActivityMapper {
	return &ActivityMapper{}
}

func (m *ActivityMapper) ToEntity(a *model.Activity) *entity.Activity {
	if a == nil {
		return nil
	}
	var meta map[string]interface{}
	if len(a.Metadata) > 0 {
		_ = json.Unmarshal(a.Metadata, &meta)
	}
	return &entity.Activity{
		Id:        a.Id,
		UserId:    a.UserId,
		Type:      entity.ActivityType(a.Type),
		Metadata:  meta,
		CreatedAt: a.CreatedAt,
	}
}

func (m *ActivityMapper) ToModel(a *entity.Activity) *model.Activity {
	if a == nil {
		return nil
	}
	var meta datatypes.JSON
	if a.Metadata != nil {
		if raw, err := json.Marshal(a.Metadata); err == nil {
			meta = raw
		}
	}
	return &model.Activity{
		Id:        a.Id,
		UserId:    a.UserId,
		Type:      string(a.Type),
		Metadata:  meta,
		CreatedAt: a.CreatedAt,
	}
}

func (m *ActivityMapper) ToEntities(models []*model.Activity) []*entity.Activity {
	entities := make([]*entity.Activity, len(models))
	for i, mdl := range models {
		entities[i] = m.ToEntity(mdl)
	}
	return entities
}
