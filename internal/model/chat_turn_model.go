package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatTurn struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionKey string         `gorm:"type:varchar(255);not null;index"`
	Speaker    string         `gorm:"type:varchar(10);not null"`
	Text       string         `gorm:"type:text;not null"`
	Position   int            `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
