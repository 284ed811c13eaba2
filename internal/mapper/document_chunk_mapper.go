package mapper

import (
	"encoding/json"
	"time"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		d := c.DeletedAt.Time
		deletedAt = &d
	}

	var metadata map[string]interface{}
	if len(c.Metadata) > 0 {
		// A malformed metadata document degrades to nil rather than failing
		// the read; the chunk text column is still usable.
		_ = json.Unmarshal(c.Metadata, &metadata)
	}

	return &entity.DocumentChunk{
		Id:         c.Id,
		Scope:      c.Scope,
		SessionKey: c.SessionKey,
		ChunkText:  c.ChunkText,
		Metadata:   metadata,
		CreatedAt:  c.CreatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) (*model.DocumentChunk, error) {
	if c == nil {
		return nil, nil
	}

	var metadata datatypes.JSON
	if c.Metadata != nil {
		raw, err := json.Marshal(c.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = datatypes.JSON(raw)
	}

	return &model.DocumentChunk{
		Id:         c.Id,
		Scope:      c.Scope,
		SessionKey: c.SessionKey,
		ChunkText:  c.ChunkText,
		Metadata:   metadata,
		CreatedAt:  c.CreatedAt,
	}, nil
}
