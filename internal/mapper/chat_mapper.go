package mapper

import (
	"time"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}

	var deletedAt *time.Time
	if t.DeletedAt.Valid {
		d := t.DeletedAt.Time
		deletedAt = &d
	}

	return &entity.ChatTurn{
		Id:         t.Id,
		SessionKey: t.SessionKey,
		Speaker:    t.Speaker,
		Text:       t.Text,
		Position:   t.Position,
		CreatedAt:  t.CreatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *ChatMapper) ToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}

	return &model.ChatTurn{
		Id:         t.Id,
		SessionKey: t.SessionKey,
		Speaker:    t.Speaker,
		Text:       t.Text,
		Position:   t.Position,
		CreatedAt:  t.CreatedAt,
	}
}
