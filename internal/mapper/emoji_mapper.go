package mapper

import (
	"encoding/json"

	"emojify-be/internal/entity"
	"emojify-be/internal/model"

	"gorm.io/datatypes"
)

type EmojiMapper struct{}

func NewEmojiMapper() *EmojiMapper {
	return &EmojiMapper{}
}

func (m *EmojiMapper) ToEntity(e *model.SavedEmoji) *entity.SavedEmoji {
	if e == nil {
		return nil
	}
	var params map[string]interface{}
	if len(e.Params) > 0 {
		_ = json.Unmarshal(e.Params, &params)
	}
	return &entity.SavedEmoji{
		Id:        e.Id,
		UserId:    e.UserId,
		Prompt:    e.Prompt,
		ImageURL:  e.ImageURL,
		JobId:     e.JobId,
		Params:    params,
		CreatedAt: e.CreatedAt,
	}
}

func (m *EmojiMapper) ToModel(e *entity.SavedEmoji) *model.SavedEmoji {
	if e == nil {
		return nil
	}
	var params datatypes.JSON
	if e.Params != nil {
		if raw, err := json.Marshal(e.Params); err == nil {
			params = raw
		}
	}
	return &model.SavedEmoji{
		Id:        e.Id,
		UserId:    e.UserId,
		Prompt:    e.Prompt,
		ImageURL:  e.ImageURL,
		JobId:     e.JobId,
		Params:    params,
		CreatedAt: e.CreatedAt,
	}
}

func (m *EmojiMapper) ToEntities(models []*model.SavedEmoji) []*entity.SavedEmoji {
	entities := make([]*entity.SavedEmoji, len(models))
	for i, mdl := range models {
		entities[i] = m.ToEntity(mdl)
	}
	return entities
}
