package implementation

import (
	"context"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/mapper"
	"rag-assistant-be/internal/model"
	"rag-assistant-be/internal/repository/contract"
	"rag-assistant-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentIndexRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentIndexRepository(db *gorm.DB) contract.DocumentIndexRepository {
	return &DocumentIndexRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentIndexRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentIndexRepositoryImpl) SearchPersonal(ctx context.Context, sessionKey string, embedding []float32, limit int) ([]*contract.PersonalIndexHit, error) {
	if limit <= 0 {
		limit = 3
	}

	models, err := r.searchChunks(ctx, embedding, limit,
		specification.ByScope{Scope: entity.ChunkScopePersonal},
		specification.BySessionKey{SessionKey: sessionKey},
	)
	if err != nil {
		return nil, err
	}

	hits := make([]*contract.PersonalIndexHit, len(models))
	for i, m := range models {
		e := r.mapper.ToEntity(m)
		metadata := e.Metadata
		if metadata == nil {
			// Older personal chunks were written before metadata existed;
			// synthesize the nested shape from the flat column.
			metadata = map[string]interface{}{"chunk_text": e.ChunkText}
		}
		hits[i] = &contract.PersonalIndexHit{Metadata: metadata}
	}
	return hits, nil
}

func (r *DocumentIndexRepositoryImpl) SearchSystem(ctx context.Context, embedding []float32, limit int) ([]*contract.SystemIndexHit, error) {
	if limit <= 0 {
		limit = 5
	}

	models, err := r.searchChunks(ctx, embedding, limit,
		specification.ByScope{Scope: entity.ChunkScopeSystem},
	)
	if err != nil {
		return nil, err
	}

	hits := make([]*contract.SystemIndexHit, len(models))
	for i, m := range models {
		hits[i] = &contract.SystemIndexHit{ChunkText: m.ChunkText}
	}
	return hits, nil
}

func (r *DocumentIndexRepositoryImpl) searchChunks(
	ctx context.Context,
	embedding []float32,
	limit int,
	specs ...specification.Specification,
) ([]*model.DocumentChunk, error) {
	var models []*model.DocumentChunk

	// pgvector cosine distance: embedding <=> query vector
	err := r.applySpecifications(r.db.WithContext(ctx), specs...).
		Where("document_chunks.deleted_at IS NULL").
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return models, nil
}

func (r *DocumentIndexRepositoryImpl) Create(ctx context.Context, chunk *entity.DocumentChunk, embedding []float32) error {
	m, err := r.mapper.ToModel(chunk)
	if err != nil {
		return err
	}
	m.Embedding = pgvector.NewVector(embedding)

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentIndexRepositoryImpl) DeletePersonalBySessionKey(ctx context.Context, sessionKey string) error {
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByScope{Scope: entity.ChunkScopePersonal},
		specification.BySessionKey{SessionKey: sessionKey},
	)
	return query.Delete(&model.DocumentChunk{}).Error
}
