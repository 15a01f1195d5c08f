package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/ledger"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/quoteflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MovementResponse mirrors a persisted ledger movement
type MovementResponse struct {
	ID              uuid.UUID             `json:"id"`
	Type            ledger.MovementType   `json:"type"`
	Status          ledger.MovementStatus `json:"status"`
	Amount          decimal.Decimal       `json:"amount"`
	Date            time.Time             `json:"date"`
	Concept         string                `json:"concept,omitempty"`
	AccountID       *uuid.UUID            `json:"account_id,omitempty"`
	CostCenterID    *uuid.UUID            `json:"cost_center_id,omitempty"`
	ClientID        *uuid.UUID            `json:"client_id,omitempty"`
	Currency        valueobject.Currency  `json:"currency,omitempty"`
	PaymentMethodID *uuid.UUID            `json:"payment_method_id,omitempty"`
	DocumentTypeID  *uuid.UUID            `json:"document_type_id,omitempty"`
	DocumentNumber  string                `json:"document_number,omitempty"`
	BudgetPaymentID *uuid.UUID            `json:"budget_payment_id,omitempty"`
	ExpenseID       *uuid.UUID            `json:"expense_id,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// SummaryResponse aggregates live movements over a period
type SummaryResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	From    *time.Time      `json:"from,omitempty"`
	To      *time.Time      `json:"to,omitempty"`
}

// ToMovementResponse maps a movement to its API view
func ToMovementResponse(m *ledger.Movement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		Type:            m.Type,
		Status:          m.Status,
		Amount:          m.Amount,
		Date:            m.Date,
		Concept:         m.Concept,
		AccountID:       m.AccountID,
		CostCenterID:    m.CostCenterID,
		ClientID:        m.ClientID,
		Currency:        m.Currency,
		PaymentMethodID: m.PaymentMethodID,
		DocumentTypeID:  m.DocumentTypeID,
		DocumentNumber:  m.DocumentNumber,
		BudgetPaymentID: m.BudgetPaymentID,
		ExpenseID:       m.ExpenseID,
		CreatedAt:       m.CreatedAt,
	}
}

// QueryService serves the read side of the ledger. Movements are written
// exclusively by the payment and expense services; this service only
// lists and totals them.
type QueryService struct {
	ledgerRepo ledger.Repository
}

// NewQueryService creates a new ledger QueryService
func NewQueryService(ledgerRepo ledger.Repository) *QueryService {
	return &QueryService{ledgerRepo: ledgerRepo}
}

// Get loads one movement scoped to a business
func (s *QueryService) Get(ctx context.Context, businessID, movementID uuid.UUID) (*MovementResponse, error) {
	m, err := s.ledgerRepo.FindByIDForBusiness(ctx, businessID, movementID)
	if err != nil {
		return nil, fmt.Errorf("failed to load movement: %w", err)
	}
	if m == nil {
		return nil, shared.ErrNotFound
	}
	resp := ToMovementResponse(m)
	return &resp, nil
}

// List pages through a business's movements
func (s *QueryService) List(ctx context.Context, businessID uuid.UUID, filter ledger.Filter) (*shared.Paginated[MovementResponse], error) {
	movements, err := s.ledgerRepo.FindAllForBusiness(ctx, businessID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	total, err := s.ledgerRepo.CountForBusiness(ctx, businessID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count movements: %w", err)
	}

	items := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, ToMovementResponse(&movements[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Summarize totals a business's live movements inside a date range.
// Zero times mean an open-ended range.
func (s *QueryService) Summarize(ctx context.Context, businessID uuid.UUID, from, to time.Time) (*SummaryResponse, error) {
	sum, err := s.ledgerRepo.Summarize(ctx, businessID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize ledger: %w", err)
	}

	resp := &SummaryResponse{
		Income:  sum.Income,
		Expense: sum.Expense,
		Balance: sum.Balance,
	}
	if !from.IsZero() {
		resp.From = &from
	}
	if !to.IsZero() {
		resp.To = &to
	}
	return resp, nil
}
