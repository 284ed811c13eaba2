package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChunkScopePersonal = "personal"
	ChunkScopeSystem   = "system"
)

// DocumentChunk is one embedded passage of an indexed document. Personal
// chunks belong to a single session's uploads; system chunks are shared by
// every session.
type DocumentChunk struct {
	Id         uuid.UUID
	Scope      string
	SessionKey string // set only for personal chunks
	ChunkText  string
	Metadata   map[string]interface{}
	CreatedAt  time.Time
	DeletedAt  *time.Time
}
