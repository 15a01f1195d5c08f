package budget

import (
	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventBudgetCreated    = "budget.created"
	EventBudgetSuperseded = "budget.superseded"
	EventPaymentReceived  = "budget.payment_received"
	EventPaymentAmended   = "budget.payment_amended"
	EventPaymentVoided    = "budget.payment_voided"
)

// BudgetCreatedEvent fires when the first revision of a lineage is created
type BudgetCreatedEvent struct {
	shared.BaseDomainEvent
	Number   int       `json:"number"`
	ClientID uuid.UUID `json:"client_id"`
	Token    string    `json:"token"`
}

// NewBudgetCreatedEvent creates a budget created event
func NewBudgetCreatedEvent(b *Budget) *BudgetCreatedEvent {
	token := ""
	if b.Token != nil {
		token = *b.Token
	}
	return &BudgetCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBudgetCreated, "Budget", b.ID, b.BusinessID),
		Number:          b.Number,
		ClientID:        b.ClientID,
		Token:           token,
	}
}

// BudgetSupersededEvent fires when a new revision replaces the enabled one
type BudgetSupersededEvent struct {
	shared.BaseDomainEvent
	PrevRevisionID uuid.UUID `json:"prev_revision_id"`
	Number         int       `json:"number"`
	Token          string    `json:"token"`
}

// NewBudgetSupersededEvent creates a budget superseded event
func NewBudgetSupersededEvent(next *Budget, prevID uuid.UUID) *BudgetSupersededEvent {
	token := ""
	if next.Token != nil {
		token = *next.Token
	}
	return &BudgetSupersededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBudgetSuperseded, "Budget", next.ID, next.BusinessID),
		PrevRevisionID:  prevID,
		Number:          next.Number,
		Token:           token,
	}
}

// PaymentReceivedEvent fires when a payment is accepted against a revision
type PaymentReceivedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPaymentReceivedEvent creates a payment received event
func NewPaymentReceivedEvent(p *Payment) *PaymentReceivedEvent {
	return &PaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentReceived, "Budget", p.BudgetID, p.BusinessID),
		PaymentID:       p.ID,
		Amount:          p.Amount,
	}
}

// PaymentAmendedEvent fires when a payment's amount or date changes
type PaymentAmendedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPaymentAmendedEvent creates a payment amended event
func NewPaymentAmendedEvent(p *Payment) *PaymentAmendedEvent {
	return &PaymentAmendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentAmended, "Budget", p.BudgetID, p.BusinessID),
		PaymentID:       p.ID,
		Amount:          p.Amount,
	}
}

// PaymentVoidedEvent fires when a payment is voided
type PaymentVoidedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewPaymentVoidedEvent creates a payment voided event
func NewPaymentVoidedEvent(p *Payment) *PaymentVoidedEvent {
	return &PaymentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentVoided, "Budget", p.BudgetID, p.BusinessID),
		PaymentID:       p.ID,
		Amount:          p.Amount,
	}
}
