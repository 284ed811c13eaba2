package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatTurn struct {
	Id         uuid.UUID
	SessionKey string
	Speaker    string
	Text       string
	Position   int
	CreatedAt  time.Time
	DeletedAt  *time.Time
}
