package contract

import (
	"context"

	"rag-assistant-be/internal/entity"
)

// PersonalIndexHit is a raw result record from the per-session personal
// index. The passage text is nested inside the chunk's metadata document
// under the "chunk_text" key; callers are expected to normalize it before
// shared logic runs.
type PersonalIndexHit struct {
	Metadata map[string]interface{}
}

// SystemIndexHit is a raw result record from the shared system index. The
// passage text is exposed directly.
type SystemIndexHit struct {
	ChunkText string
}

type DocumentIndexRepository interface {
	// SearchPersonal runs a nearest-neighbor search over one session's
	// uploaded-document chunks, ordered by cosine distance.
	SearchPersonal(ctx context.Context, sessionKey string, embedding []float32, limit int) ([]*PersonalIndexHit, error)

	// SearchSystem runs a nearest-neighbor search over the shared
	// organization-wide chunks, ordered by cosine distance.
	SearchSystem(ctx context.Context, embedding []float32, limit int) ([]*SystemIndexHit, error)

	// Create inserts a chunk. Index construction itself is owned by the
	// ingestion pipeline; this exists for seeding and tests.
	Create(ctx context.Context, chunk *entity.DocumentChunk, embedding []float32) error

	// DeletePersonalBySessionKey drops a session's personal chunks when the
	// session is discarded.
	DeletePersonalBySessionKey(ctx context.Context, sessionKey string) error
}
