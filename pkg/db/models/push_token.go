package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PushToken is a device registration for Expo push notifications. The token is
// globally unique; re-registering it from another account transfers ownership.
type PushToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Token     string    `gorm:"column:token;type:text;not null;uniqueIndex"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Platform  *string   `gorm:"column:platform;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PushToken) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
