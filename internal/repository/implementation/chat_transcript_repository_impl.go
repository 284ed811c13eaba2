package implementation

import (
	"context"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/mapper"
	"rag-assistant-be/internal/model"
	"rag-assistant-be/internal/repository/contract"
	"rag-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChatTranscriptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatTranscriptRepository(db *gorm.DB) contract.ChatTranscriptRepository {
	return &ChatTranscriptRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatTranscriptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatTranscriptRepositoryImpl) FindBySessionKey(ctx context.Context, sessionKey string) ([]*entity.ChatTurn, error) {
	var models []*model.ChatTurn
	err := r.db.WithContext(ctx).
		Where("session_key = ?", sessionKey).
		Order("position ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.ChatTurn, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// ReplaceForSession swaps the whole persisted transcript in one statement
// pair. Doing the delete and insert together keeps the "load, mutate, store"
// round trip atomic even if a caller ever overlaps turns for one session.
func (r *ChatTranscriptRepositoryImpl) ReplaceForSession(ctx context.Context, sessionKey string, turns []*entity.ChatTurn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("session_key = ?", sessionKey).Delete(&model.ChatTurn{}).Error; err != nil {
			return err
		}

		if len(turns) == 0 {
			return nil
		}

		models := make([]*model.ChatTurn, len(turns))
		for i, t := range turns {
			m := r.mapper.ToModel(t)
			m.Position = i
			models[i] = m
		}
		if err := tx.Create(models).Error; err != nil {
			return err
		}

		for i, m := range models {
			*turns[i] = *r.mapper.ToEntity(m)
		}
		return nil
	})
}

func (r *ChatTranscriptRepositoryImpl) DeleteBySessionKey(ctx context.Context, sessionKey string) error {
	return r.db.WithContext(ctx).Where("session_key = ?", sessionKey).Delete(&model.ChatTurn{}).Error
}

func (r *ChatTranscriptRepositoryImpl) FindWithSpecifications(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error) {
	var models []*model.ChatTurn
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.ChatTurn, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ChatTranscriptRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ChatTurn{}).Count(&count).Error
	return count, err
}
