package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter narrows ledger movement queries
type Filter struct {
	shared.Filter
	Type         *MovementType
	Status       *MovementStatus
	AccountID    *uuid.UUID
	CostCenterID *uuid.UUID
	ClientID     *uuid.UUID
	FromDate     *time.Time
	ToDate       *time.Time
}

// Summary aggregates live movements over a period
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// Repository is the persistence port for ledger movements.
// Implementations return (nil, nil) when a row is not found.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)
	FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*Movement, error)

	// FindByPaymentID resolves the movement mirroring a budget payment
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*Movement, error)

	// FindByExpenseID resolves the movement mirroring an expense record
	FindByExpenseID(ctx context.Context, expenseID uuid.UUID) (*Movement, error)

	FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter Filter) ([]Movement, error)
	CountForBusiness(ctx context.Context, businessID uuid.UUID, filter Filter) (int64, error)

	// Summarize totals live movements of a business inside a date range
	Summarize(ctx context.Context, businessID uuid.UUID, from, to time.Time) (*Summary, error)

	Create(ctx context.Context, m *Movement) error
	Update(ctx context.Context, m *Movement) error

	// Delete removes a movement row permanently. Use Movement.Void to take
	// a movement off the books while keeping it auditable.
	Delete(ctx context.Context, id uuid.UUID) error
}
