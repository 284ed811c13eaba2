package contract

import (
	"context"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/repository/specification"
)

type ChatTranscriptRepository interface {
	// FindBySessionKey returns the durable transcript in conversation order.
	FindBySessionKey(ctx context.Context, sessionKey string) ([]*entity.ChatTurn, error)

	// ReplaceForSession atomically replaces the persisted transcript of one
	// session with the given turns. Positions are assigned from slice order.
	ReplaceForSession(ctx context.Context, sessionKey string, turns []*entity.ChatTurn) error

	// DeleteBySessionKey removes every turn of a session (clear-chat).
	DeleteBySessionKey(ctx context.Context, sessionKey string) error

	// FindWithSpecifications runs a filtered query, used for paginated
	// history reads.
	FindWithSpecifications(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)

	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
