package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is money received against one quote revision. A payment is never
// mutated after the fact except through amount/date edits and the void
// transition; voided payments stay on the row for audit but stop counting
// toward the revision's paid total.
type Payment struct {
	shared.BaseEntity
	BusinessID uuid.UUID       `gorm:"type:uuid;not null;index"`
	BudgetID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Date       time.Time       `gorm:"not null"`
	Reference  string          `gorm:"type:varchar(200)"`
	Voided     bool            `gorm:"not null;default:false;index"`
	VoidedAt   *time.Time      `gorm:""`
	CreatedBy  *uuid.UUID      `gorm:"type:uuid"`
	UpdatedBy  *uuid.UUID      `gorm:"type:uuid"`
	DeletedAt  gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "budget_payments"
}

// NewPayment creates a payment against a quote revision. Reconciliation
// against the revision total happens in the service under a row lock, not
// here.
func NewPayment(businessID, budgetID, actorID uuid.UUID, amount decimal.Decimal, date time.Time, reference string) (*Payment, error) {
	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business ID cannot be empty")
	}
	if budgetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUDGET", "Budget ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if date.IsZero() {
		date = time.Now()
	}

	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		BusinessID: businessID,
		BudgetID:   budgetID,
		Amount:     amount,
		Date:       date,
		Reference:  reference,
		Voided:     false,
		CreatedBy:  &actorID,
		UpdatedBy:  &actorID,
	}, nil
}

// Amend changes the amount and date of a live payment. Reconciliation of the
// new amount is the caller's job.
func (p *Payment) Amend(actorID uuid.UUID, amount decimal.Decimal, date time.Time, reference string) error {
	if p.Voided {
		return shared.NewDomainError("PAYMENT_VOIDED", "Voided payments cannot be amended")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	p.Amount = amount
	if !date.IsZero() {
		p.Date = date
	}
	p.Reference = reference
	p.UpdatedBy = &actorID
	p.UpdatedAt = time.Now()
	return nil
}

// Void marks the payment as voided. Voiding twice is a conflict.
func (p *Payment) Void(actorID uuid.UUID) error {
	if p.Voided {
		return shared.NewDomainError("PAYMENT_VOIDED", "Payment is already voided")
	}
	now := time.Now()
	p.Voided = true
	p.VoidedAt = &now
	p.UpdatedBy = &actorID
	p.UpdatedAt = now
	return nil
}

// IsLive reports whether the payment counts toward the paid total
func (p *Payment) IsLive() bool {
	return !p.Voided && !p.DeletedAt.Valid
}
