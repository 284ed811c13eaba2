package unitofwork

import (
	"context"

	"rag-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatTranscriptRepository() contract.ChatTranscriptRepository
	DocumentIndexRepository() contract.DocumentIndexRepository
}
