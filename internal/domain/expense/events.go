package expense

import (
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventExpenseRecorded = "expense.recorded"
	EventExpenseVoided   = "expense.voided"
)

// ExpenseRecordedEvent fires when an expense is recorded
type ExpenseRecordedEvent struct {
	shared.BaseDomainEvent
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewExpenseRecordedEvent creates an expense recorded event
func NewExpenseRecordedEvent(r *Record) *ExpenseRecordedEvent {
	return &ExpenseRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventExpenseRecorded, "ExpenseRecord", r.ID, r.BusinessID),
		Category:        r.Category,
		Amount:          r.Amount,
	}
}

// ExpenseVoidedEvent fires when an expense is voided
type ExpenseVoidedEvent struct {
	shared.BaseDomainEvent
	Amount decimal.Decimal `json:"amount"`
}

// NewExpenseVoidedEvent creates an expense voided event
func NewExpenseVoidedEvent(r *Record) *ExpenseVoidedEvent {
	return &ExpenseVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventExpenseVoided, "ExpenseRecord", r.ID, r.BusinessID),
		Amount:          r.Amount,
	}
}
