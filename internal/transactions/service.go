package transactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gastosapp/gastos-backend/pkg/db"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/gastosapp/gastos-backend/pkg/enums"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/google/uuid"
)

// EventChanged is broadcast to realtime clients after every mutation.
const EventChanged = "transactions.changed"

// Service defines the transaction behavior needed by the controllers.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateTransactionRequest) (*TransactionDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]*TransactionDTO, error)
	Patch(ctx context.Context, userID, id uuid.UUID, req PatchTransactionRequest) (*TransactionDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo      transactionRepository
	broadcast broadcaster
}

type transactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	UpdateFlags(ctx context.Context, userID, id uuid.UUID, fields map[string]any) (*models.Transaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type broadcaster interface {
	Broadcast(event string, data any)
}

// ServiceParams bundles the dependencies required to build a transactions
// service.
type ServiceParams struct {
	Repo        transactionRepository
	Broadcaster broadcaster
}

// NewService constructs a transactions service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("transaction repository is required")
	}
	if params.Broadcaster == nil {
		return nil, fmt.Errorf("broadcaster is required")
	}
	return &service{repo: params.Repo, broadcast: params.Broadcaster}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateTransactionRequest) (*TransactionDTO, error) {
	amount, err := NormalizeAmount(string(req.Amount))
	if err != nil {
		return nil, err
	}

	currency, err := enums.ParseCurrency(strings.ToUpper(req.Currency))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "moneda inválida")
	}
	txType, err := enums.ParseTransactionType(strings.ToUpper(req.Type))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tipo de transacción inválido")
	}

	tx := &models.Transaction{
		UserID:      userID,
		Description: strings.TrimSpace(req.Description),
		Amount:      amount,
		Currency:    currency,
		Type:        txType,
		Category:    req.Category,
		Date:        time.Now().UTC(),
	}
	if req.Date != nil {
		tx.Date = req.Date.UTC()
	}

	if req.Frequency != nil {
		freq := enums.Frequency(strings.ToUpper(*req.Frequency))
		if !freq.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "frecuencia inválida")
		}
		tx.Frequency = &freq
	}

	switch txType {
	case enums.TransactionTypeIncome:
		// Income is always settled; the paid flag only tracks expenses.
		tx.IsPaid = true
		if req.IncomeType != nil {
			incomeType := enums.IncomeType(strings.ToUpper(*req.IncomeType))
			if !incomeType.IsValid() {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "tipo de ingreso inválido")
			}
			tx.IncomeType = &incomeType
		}
	case enums.TransactionTypeExpense:
		if req.IsPaid != nil {
			tx.IsPaid = *req.IsPaid
		}
	}
	if req.IsSavings != nil {
		tx.IsSavings = *req.IsSavings
	}

	created, err := s.repo.Create(ctx, tx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create transaction")
	}

	dto := FromModel(created)
	s.broadcast.Broadcast(EventChanged, map[string]any{"action": "created", "transaction": dto})
	return dto, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]*TransactionDTO, error) {
	txs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transactions")
	}
	return FromModels(txs), nil
}

func (s *service) Patch(ctx context.Context, userID, id uuid.UUID, req PatchTransactionRequest) (*TransactionDTO, error) {
	fields := map[string]any{}
	if req.IsPaid != nil {
		fields["is_paid"] = *req.IsPaid
	}
	if req.IsSavings != nil {
		fields["is_savings"] = *req.IsSavings
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	updated, err := s.repo.UpdateFlags(ctx, userID, id, fields)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update transaction")
	}

	dto := FromModel(updated)
	s.broadcast.Broadcast(EventChanged, map[string]any{"action": "updated", "transaction": dto})
	return dto, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete transaction")
	}
	s.broadcast.Broadcast(EventChanged, map[string]any{"action": "deleted", "id": id})
	return nil
}
