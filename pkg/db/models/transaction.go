package models

import (
	"time"

	"github.com/gastosapp/gastos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a single income or expense event. Every read and write is
// scoped to the owning user; cross-user visibility is never allowed.
type Transaction struct {
	ID          uuid.UUID             `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Description string                `gorm:"column:description;type:text;not null"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(18,2);not null"`
	Currency    enums.Currency        `gorm:"column:currency;type:text;not null"`
	Type        enums.TransactionType `gorm:"column:type;type:text;not null"`
	Frequency   *enums.Frequency      `gorm:"column:frequency;type:text"`
	IncomeType  *enums.IncomeType     `gorm:"column:income_type;type:text"`
	IsPaid      bool                  `gorm:"column:is_paid;not null;default:false"`
	IsSavings   bool                  `gorm:"column:is_savings;not null;default:false"`
	Category    *string               `gorm:"column:category;type:text"`
	Date        time.Time             `gorm:"column:date;not null;index"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
