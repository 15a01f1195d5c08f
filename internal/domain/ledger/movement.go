package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/quoteflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementType classifies the direction of a ledger movement
type MovementType string

const (
	MovementTypeIncome  MovementType = "INCOME"
	MovementTypeExpense MovementType = "EXPENSE"
)

// IsValid checks if the type is a valid MovementType
func (t MovementType) IsValid() bool {
	return t == MovementTypeIncome || t == MovementTypeExpense
}

// MovementStatus is the lifecycle state of a ledger movement
type MovementStatus string

const (
	MovementStatusPending MovementStatus = "PENDING"
	MovementStatusPaid    MovementStatus = "PAID"
	MovementStatusVoided  MovementStatus = "VOIDED"
)

// Movement is one row of the business ledger. Every movement mirrors exactly
// one source record: a budget payment or an expense. The mirror is kept in
// the same transaction as the source, so a movement never drifts from what
// produced it.
type Movement struct {
	shared.BaseEntity
	BusinessID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	Type            MovementType         `gorm:"type:varchar(10);not null;index"`
	Status          MovementStatus       `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Date            time.Time            `gorm:"not null;index"`
	Concept         string               `gorm:"type:varchar(300)"`
	AccountID       *uuid.UUID           `gorm:"type:uuid;index"`
	CostCenterID    *uuid.UUID           `gorm:"type:uuid;index"`
	ClientID        *uuid.UUID           `gorm:"type:uuid;index"`
	Currency        valueobject.Currency `gorm:"type:varchar(5)"`
	PaymentMethodID *uuid.UUID           `gorm:"type:uuid"`
	DocumentTypeID  *uuid.UUID           `gorm:"type:uuid"`
	DocumentNumber  string               `gorm:"type:varchar(50)"`
	BudgetPaymentID *uuid.UUID           `gorm:"type:uuid;uniqueIndex"`
	ExpenseID       *uuid.UUID           `gorm:"type:uuid;uniqueIndex"`
	CreatedBy       *uuid.UUID           `gorm:"type:uuid"`
	UpdatedBy       *uuid.UUID           `gorm:"type:uuid"`
	DeletedAt       gorm.DeletedAt       `gorm:"index"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "ledger_movements"
}

// Attributes carries the accounting references of a movement. All of them
// are optional; reports filter on whichever are present.
type Attributes struct {
	AccountID       *uuid.UUID
	CostCenterID    *uuid.UUID
	ClientID        *uuid.UUID
	Currency        valueobject.Currency
	PaymentMethodID *uuid.UUID
	DocumentTypeID  *uuid.UUID
	DocumentNumber  string
}

// NewPaymentMovement creates the income movement mirroring a budget payment.
// An empty status starts the movement pending; voided is not a valid
// starting state.
func NewPaymentMovement(businessID, paymentID, actorID uuid.UUID, amount decimal.Decimal, date time.Time, concept string, status MovementStatus, attrs Attributes) (*Movement, error) {
	m, err := newMovement(businessID, actorID, MovementTypeIncome, amount, date, concept, attrs)
	if err != nil {
		return nil, err
	}
	switch status {
	case "", MovementStatusPending:
	case MovementStatusPaid:
		m.Status = MovementStatusPaid
	default:
		return nil, shared.NewDomainError("INVALID_STATUS", "A movement cannot start in status "+string(status))
	}
	m.BudgetPaymentID = &paymentID
	return m, nil
}

// NewExpenseMovement creates the expense movement mirroring an expense record
func NewExpenseMovement(businessID, expenseID, actorID uuid.UUID, amount decimal.Decimal, date time.Time, concept string, paid bool, attrs Attributes) (*Movement, error) {
	m, err := newMovement(businessID, actorID, MovementTypeExpense, amount, date, concept, attrs)
	if err != nil {
		return nil, err
	}
	if paid {
		m.Status = MovementStatusPaid
	}
	m.ExpenseID = &expenseID
	return m, nil
}

func newMovement(businessID, actorID uuid.UUID, mType MovementType, amount decimal.Decimal, date time.Time, concept string, attrs Attributes) (*Movement, error) {
	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business ID cannot be empty")
	}
	if !mType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Movement type is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	if date.IsZero() {
		date = time.Now()
	}

	return &Movement{
		BaseEntity:      shared.NewBaseEntity(),
		BusinessID:      businessID,
		Type:            mType,
		Status:          MovementStatusPending,
		Amount:          amount,
		Date:            date,
		Concept:         concept,
		AccountID:       attrs.AccountID,
		CostCenterID:    attrs.CostCenterID,
		ClientID:        attrs.ClientID,
		Currency:        attrs.Currency,
		PaymentMethodID: attrs.PaymentMethodID,
		DocumentTypeID:  attrs.DocumentTypeID,
		DocumentNumber:  attrs.DocumentNumber,
		CreatedBy:       &actorID,
		UpdatedBy:       &actorID,
	}, nil
}

// Sync mirrors an amount or date edit of the source record
func (m *Movement) Sync(actorID uuid.UUID, amount decimal.Decimal, date time.Time, concept string) error {
	if m.Status == MovementStatusVoided {
		return shared.NewDomainError("MOVEMENT_VOIDED", "Voided movements cannot be changed")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	m.Amount = amount
	if !date.IsZero() {
		m.Date = date
	}
	if concept != "" {
		m.Concept = concept
	}
	m.UpdatedBy = &actorID
	m.UpdatedAt = time.Now()
	return nil
}

// MarkPaid settles a pending movement
func (m *Movement) MarkPaid(actorID uuid.UUID) error {
	if m.Status == MovementStatusVoided {
		return shared.NewDomainError("MOVEMENT_VOIDED", "Voided movements cannot be settled")
	}
	m.Status = MovementStatusPaid
	m.UpdatedBy = &actorID
	m.UpdatedAt = time.Now()
	return nil
}

// Void mirrors the source record being voided. Voiding twice is a conflict.
func (m *Movement) Void(actorID uuid.UUID) error {
	if m.Status == MovementStatusVoided {
		return shared.NewDomainError("MOVEMENT_VOIDED", "Movement is already voided")
	}
	m.Status = MovementStatusVoided
	m.UpdatedBy = &actorID
	m.UpdatedAt = time.Now()
	return nil
}

// IsLive reports whether the movement counts toward ledger totals
func (m *Movement) IsLive() bool {
	return m.Status != MovementStatusVoided && !m.DeletedAt.Valid
}
