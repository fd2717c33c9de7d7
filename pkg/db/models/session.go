package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session maps an opaque bearer token to a user and an absolute expiry.
// Rows are never updated in place: they are created on login and deleted on
// logout or expiry.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Token     string    `gorm:"column:token;type:text;not null;uniqueIndex"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	User      User      `gorm:"foreignKey:UserID"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (s *Session) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
