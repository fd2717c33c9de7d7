package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/gastosapp/gastos-backend/pkg/enums"
)

// TransactionDTO is the transport shape of a movement.
type TransactionDTO struct {
	ID          uuid.UUID              `json:"id"`
	UserID      uuid.UUID              `json:"userId"`
	Description string                 `json:"description"`
	Amount      decimal.Decimal        `json:"amount"`
	Currency    enums.Currency         `json:"currency"`
	Type        enums.TransactionType  `json:"type"`
	Frequency   *enums.Frequency       `json:"frequency,omitempty"`
	IncomeType  *enums.IncomeType      `json:"incomeType,omitempty"`
	IsPaid      bool                   `json:"isPaid"`
	IsSavings   bool                   `json:"isSavings"`
	Category    *string                `json:"category,omitempty"`
	Date        time.Time              `json:"date"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// CreateTransactionRequest is the payload for registering a movement. The
// amount comes in however the client typed it and is normalized server side.
type CreateTransactionRequest struct {
	Description string      `json:"description" validate:"required,max=255"`
	Amount      AmountInput `json:"amount" validate:"required"`
	Currency    string      `json:"currency" validate:"required"`
	Type        string      `json:"type" validate:"required"`
	Frequency   *string     `json:"frequency"`
	IncomeType  *string     `json:"incomeType"`
	IsPaid      *bool       `json:"isPaid"`
	IsSavings   *bool       `json:"isSavings"`
	Category    *string     `json:"category" validate:"omitempty,max=120"`
	Date        *time.Time  `json:"date"`
}

// PatchTransactionRequest flips the paid or savings flags. Absent fields are
// left untouched.
type PatchTransactionRequest struct {
	IsPaid    *bool `json:"isPaid"`
	IsSavings *bool `json:"isSavings"`
}

func FromModel(tx *models.Transaction) *TransactionDTO {
	if tx == nil {
		return nil
	}
	return &TransactionDTO{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		Type:        tx.Type,
		Frequency:   tx.Frequency,
		IncomeType:  tx.IncomeType,
		IsPaid:      tx.IsPaid,
		IsSavings:   tx.IsSavings,
		Category:    tx.Category,
		Date:        tx.Date,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func FromModels(txs []models.Transaction) []*TransactionDTO {
	out := make([]*TransactionDTO, 0, len(txs))
	for i := range txs {
		out = append(out, FromModel(&txs[i]))
	}
	return out
}
