package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category classifies an operating expense
type Category string

const (
	CategoryMaterials   Category = "MATERIALS"
	CategorySubcontract Category = "SUBCONTRACT"
	CategorySalary      Category = "SALARY"
	CategoryRent        Category = "RENT"
	CategoryTransport   Category = "TRANSPORT"
	CategoryTax         Category = "TAX"
	CategoryOther       Category = "OTHER"
)

// IsValid checks if the category is a valid Category
func (c Category) IsValid() bool {
	switch c {
	case CategoryMaterials, CategorySubcontract, CategorySalary,
		CategoryRent, CategoryTransport, CategoryTax, CategoryOther:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// Record is an operating expense of a business. Each record mirrors into one
// ledger movement; the mirror is created and kept in sync by the expense
// service inside the record's own transaction.
type Record struct {
	shared.BusinessAggregateRoot
	Category       Category        `gorm:"type:varchar(20);not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description    string          `gorm:"type:varchar(500);not null"`
	DocumentNumber string          `gorm:"type:varchar(50)"`
	CostCenterID   *uuid.UUID      `gorm:"type:uuid;index"`
	IncurredAt     time.Time       `gorm:"not null;index"`
	Paid           bool            `gorm:"not null;default:false"`
	PaidAt         *time.Time      `gorm:""`
	Voided         bool            `gorm:"not null;default:false;index"`
	VoidedAt       *time.Time      `gorm:""`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "expense_records"
}

// NewRecord creates an expense record
func NewRecord(businessID, actorID uuid.UUID, category Category, amount decimal.Decimal, description, documentNumber string, costCenterID *uuid.UUID, incurredAt time.Time, paid bool) (*Record, error) {
	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business ID cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if incurredAt.IsZero() {
		incurredAt = time.Now()
	}

	r := &Record{
		BusinessAggregateRoot: shared.NewBusinessAggregateRootWithActor(businessID, actorID),
		Category:              category,
		Amount:                amount,
		Description:           description,
		DocumentNumber:        documentNumber,
		CostCenterID:          costCenterID,
		IncurredAt:            incurredAt,
		Paid:                  paid,
	}
	if paid {
		now := time.Now()
		r.PaidAt = &now
	}

	r.AddDomainEvent(NewExpenseRecordedEvent(r))

	return r, nil
}

// Amend updates the mutable fields of a live record
func (r *Record) Amend(actorID uuid.UUID, category Category, amount decimal.Decimal, description, documentNumber string, incurredAt time.Time) error {
	if r.Voided {
		return shared.NewDomainError("EXPENSE_VOIDED", "Voided expenses cannot be amended")
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}

	r.Category = category
	r.Amount = amount
	r.Description = description
	r.DocumentNumber = documentNumber
	if !incurredAt.IsZero() {
		r.IncurredAt = incurredAt
	}
	r.UpdatedAt = time.Now()
	r.StampActor(actorID)
	r.IncrementVersion()
	return nil
}

// MarkPaid settles the record
func (r *Record) MarkPaid(actorID uuid.UUID) error {
	if r.Voided {
		return shared.NewDomainError("EXPENSE_VOIDED", "Voided expenses cannot be settled")
	}
	if r.Paid {
		return shared.NewDomainError("ALREADY_PAID", "Expense is already paid")
	}
	now := time.Now()
	r.Paid = true
	r.PaidAt = &now
	r.UpdatedAt = now
	r.StampActor(actorID)
	r.IncrementVersion()
	return nil
}

// Void takes the record out of ledger totals. Voiding twice is a conflict.
func (r *Record) Void(actorID uuid.UUID) error {
	if r.Voided {
		return shared.NewDomainError("EXPENSE_VOIDED", "Expense is already voided")
	}
	now := time.Now()
	r.Voided = true
	r.VoidedAt = &now
	r.UpdatedAt = now
	r.StampActor(actorID)
	r.IncrementVersion()

	r.AddDomainEvent(NewExpenseVoidedEvent(r))

	return nil
}

// IsLive reports whether the record counts toward ledger totals
func (r *Record) IsLive() bool {
	return !r.Voided && !r.DeletedAt.Valid
}
