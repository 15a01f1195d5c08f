package budget

import (
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/quoteflow/backend/internal/application/ledger"
	"github.com/quoteflow/backend/internal/domain/budget"
	"github.com/quoteflow/backend/internal/domain/ledger"
	"github.com/quoteflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LineProductInput is a caller-supplied priced line
type LineProductInput struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	PeriodID    *uuid.UUID      `json:"period_id"`
	Name        string          `json:"name" binding:"required,max=200"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Count       int             `json:"count" binding:"required,gt=0"`
	CountPerson int             `json:"count_person" binding:"gte=0"`
	Tax         bool            `json:"tax"`
}

// LineItemInput is a caller-supplied extra line
type LineItemInput struct {
	ItemID    *uuid.UUID          `json:"item_id"`
	Kind      budget.LineItemKind `json:"kind" binding:"required,oneof=TEXT AMOUNT"`
	WithTitle bool                `json:"with_title"`
	Title     string              `json:"title" binding:"max=200"`
	Text      string              `json:"text"`
	Value     decimal.Decimal     `json:"value"`
}

// DetailInput is the caller-supplied detail block
type DetailInput struct {
	CostCenterID *uuid.UUID `json:"cost_center_id"`
	Work         string     `json:"work" binding:"max=300"`
	Observation  string     `json:"observation"`
}

// CreateQuoteRequest opens a new quote lineage
type CreateQuoteRequest struct {
	BusinessID     uuid.UUID
	ActorID        uuid.UUID
	ClientID       uuid.UUID
	Currency       valueobject.Currency
	CurrencyValue  decimal.Decimal
	Discount       decimal.Decimal
	Utility        decimal.Decimal
	ExpireDate     *time.Time
	LineProducts   []LineProductInput
	LineItems      []LineItemInput
	BankAccountIDs []uuid.UUID
	Detail         *DetailInput
}

// SupersedeQuoteRequest replaces the enabled revision of a lineage with a new
// one carrying the same token
type SupersedeQuoteRequest struct {
	BudgetID       uuid.UUID
	BusinessID     uuid.UUID
	ActorID        uuid.UUID
	ClientID       uuid.UUID
	Currency       valueobject.Currency
	CurrencyValue  decimal.Decimal
	Discount       decimal.Decimal
	Utility        decimal.Decimal
	ExpireDate     *time.Time
	KeepSameNumber bool
	LineProducts   []LineProductInput
	LineItems      []LineItemInput
	BankAccountIDs []uuid.UUID
	Detail         *DetailInput
}

// RegisterPaymentRequest records money received against a revision. The
// accounting references are optional and flow onto the ledger movement; an
// empty Status starts the movement pending.
type RegisterPaymentRequest struct {
	BusinessID      uuid.UUID
	BudgetID        uuid.UUID
	ActorID         uuid.UUID
	Amount          decimal.Decimal
	Date            time.Time
	Reference       string
	Status          ledger.MovementStatus
	AccountID       *uuid.UUID
	PaymentMethodID *uuid.UUID
	DocumentTypeID  *uuid.UUID
	DocumentNumber  string
}

// AmendPaymentRequest patches a live payment. Nil fields are left untouched.
type AmendPaymentRequest struct {
	BusinessID uuid.UUID
	PaymentID  uuid.UUID
	ActorID    uuid.UUID
	Amount     *decimal.Decimal
	Date       *time.Time
	Reference  *string
}

// LineProductResponse mirrors a persisted line product
type LineProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	PeriodID    *uuid.UUID      `json:"period_id,omitempty"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Count       int             `json:"count"`
	CountPerson int             `json:"count_person"`
	Tax         bool            `json:"tax"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// LineItemResponse mirrors a persisted line item
type LineItemResponse struct {
	ID        uuid.UUID           `json:"id"`
	ItemID    *uuid.UUID          `json:"item_id,omitempty"`
	Kind      budget.LineItemKind `json:"kind"`
	WithTitle bool                `json:"with_title"`
	Title     string              `json:"title,omitempty"`
	Text      string              `json:"text,omitempty"`
	Value     decimal.Decimal     `json:"value"`
}

// DetailResponse mirrors the persisted detail block
type DetailResponse struct {
	CostCenterID *uuid.UUID `json:"cost_center_id,omitempty"`
	Work         string     `json:"work,omitempty"`
	Observation  string     `json:"observation,omitempty"`
}

// PaymentResponse mirrors a persisted payment
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	BudgetID  uuid.UUID       `json:"budget_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference,omitempty"`
	Voided    bool            `json:"voided"`
	VoidedAt  *time.Time      `json:"voided_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// QuoteResponse is the full API view of one quote revision
type QuoteResponse struct {
	ID              uuid.UUID             `json:"id"`
	Token           *string               `json:"token,omitempty"`
	PrevID          *uuid.UUID            `json:"prev_id,omitempty"`
	Number          int                   `json:"number"`
	ClientID        uuid.UUID             `json:"client_id"`
	Currency        valueobject.Currency  `json:"currency"`
	CurrencyValue   decimal.Decimal       `json:"currency_value"`
	Discount        decimal.Decimal       `json:"discount"`
	Utility         decimal.Decimal       `json:"utility"`
	ExpireDate      time.Time             `json:"expire_date"`
	Enabled         bool                  `json:"enabled"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	TotalPaid       decimal.Decimal       `json:"total_paid"`
	RemainingAmount decimal.Decimal       `json:"remaining_amount"`
	LineProducts    []LineProductResponse `json:"line_products"`
	LineItems       []LineItemResponse    `json:"line_items"`
	BankAccountIDs  []uuid.UUID           `json:"bank_account_ids"`
	Detail          *DetailResponse       `json:"detail,omitempty"`
	Payments        []PaymentResponse     `json:"payments"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// PaymentWithMovementResponse pairs a payment with the ledger movement
// mirroring it. Movement is nil only for rows written before mirroring,
// which the write paths do not produce.
type PaymentWithMovementResponse struct {
	PaymentResponse
	Movement *ledgerapp.MovementResponse `json:"movement,omitempty"`
}

// PublicLineProduct is a priced line as shown to an unauthenticated viewer
type PublicLineProduct struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Count       int             `json:"count"`
	CountPerson int             `json:"count_person,omitempty"`
	Tax         bool            `json:"tax"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PublicLineItem is an extra line as shown to an unauthenticated viewer
type PublicLineItem struct {
	Kind      budget.LineItemKind `json:"kind"`
	WithTitle bool                `json:"with_title"`
	Title     string              `json:"title,omitempty"`
	Text      string              `json:"text,omitempty"`
	Value     decimal.Decimal     `json:"value"`
}

// PublicQuoteView is the reduced projection served on the share link.
// It carries what a client needs to read their quote and nothing that
// identifies other parties or internal records: no ids, no payment
// references, no revision chain.
type PublicQuoteView struct {
	Number          int                  `json:"number"`
	Currency        valueobject.Currency `json:"currency"`
	ExpireDate      time.Time            `json:"expire_date"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	TotalPaid       decimal.Decimal      `json:"total_paid"`
	RemainingAmount decimal.Decimal      `json:"remaining_amount"`
	LineProducts    []PublicLineProduct  `json:"line_products"`
	LineItems       []PublicLineItem     `json:"line_items"`
}

// ToPublicQuoteView maps a revision with loaded children to its share-link
// projection
func ToPublicQuoteView(b *budget.Budget, calc budget.TotalCalculator) *PublicQuoteView {
	view := &PublicQuoteView{
		Number:          b.Number,
		Currency:        b.Currency,
		ExpireDate:      b.ExpireDate,
		TotalAmount:     b.TotalAmountWith(calc).Amount(),
		TotalPaid:       b.TotalPaid().Amount(),
		RemainingAmount: b.RemainingAmountWith(calc).Amount(),
		LineProducts:    make([]PublicLineProduct, 0, len(b.LineProducts)),
		LineItems:       make([]PublicLineItem, 0, len(b.LineItems)),
	}
	for i := range b.LineProducts {
		p := &b.LineProducts[i]
		view.LineProducts = append(view.LineProducts, PublicLineProduct{
			Name:        p.Name,
			Amount:      p.Amount,
			Count:       p.Count,
			CountPerson: p.CountPerson,
			Tax:         p.Tax,
			Subtotal:    p.Subtotal(),
		})
	}
	for i := range b.LineItems {
		it := &b.LineItems[i]
		view.LineItems = append(view.LineItems, PublicLineItem{
			Kind:      it.Kind,
			WithTitle: it.WithTitle,
			Title:     it.Title,
			Text:      it.Text,
			Value:     it.Value,
		})
	}
	return view
}

// ValidationResponse reports whether a payment amount reconciles
type ValidationResponse struct {
	Allowed         bool            `json:"allowed"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// ToPaymentResponse maps a payment to its API view
func ToPaymentResponse(p *budget.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		BudgetID:  p.BudgetID,
		Amount:    p.Amount,
		Date:      p.Date,
		Reference: p.Reference,
		Voided:    p.Voided,
		VoidedAt:  p.VoidedAt,
		CreatedAt: p.CreatedAt,
	}
}

// ToQuoteResponse maps a revision with loaded children to its API view.
// Totals are derived with the supplied calculator.
func ToQuoteResponse(b *budget.Budget, calc budget.TotalCalculator) *QuoteResponse {
	resp := &QuoteResponse{
		ID:              b.ID,
		Token:           b.Token,
		PrevID:          b.PrevID,
		Number:          b.Number,
		ClientID:        b.ClientID,
		Currency:        b.Currency,
		CurrencyValue:   b.CurrencyValue,
		Discount:        b.Discount,
		Utility:         b.Utility,
		ExpireDate:      b.ExpireDate,
		Enabled:         b.Enabled,
		TotalAmount:     b.TotalAmountWith(calc).Amount(),
		TotalPaid:       b.TotalPaid().Amount(),
		RemainingAmount: b.RemainingAmountWith(calc).Amount(),
		LineProducts:    make([]LineProductResponse, 0, len(b.LineProducts)),
		LineItems:       make([]LineItemResponse, 0, len(b.LineItems)),
		BankAccountIDs:  make([]uuid.UUID, 0, len(b.BankReferences)),
		Payments:        make([]PaymentResponse, 0, len(b.Payments)),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	for i := range b.LineProducts {
		p := &b.LineProducts[i]
		resp.LineProducts = append(resp.LineProducts, LineProductResponse{
			ID:          p.ID,
			ProductID:   p.ProductID,
			PeriodID:    p.PeriodID,
			Name:        p.Name,
			Amount:      p.Amount,
			Count:       p.Count,
			CountPerson: p.CountPerson,
			Tax:         p.Tax,
			Subtotal:    p.Subtotal(),
		})
	}
	for i := range b.LineItems {
		it := &b.LineItems[i]
		resp.LineItems = append(resp.LineItems, LineItemResponse{
			ID:        it.ID,
			ItemID:    it.ItemID,
			Kind:      it.Kind,
			WithTitle: it.WithTitle,
			Title:     it.Title,
			Text:      it.Text,
			Value:     it.Value,
		})
	}
	for i := range b.BankReferences {
		resp.BankAccountIDs = append(resp.BankAccountIDs, b.BankReferences[i].AccountID)
	}
	if b.Detail != nil {
		resp.Detail = &DetailResponse{
			CostCenterID: b.Detail.CostCenterID,
			Work:         b.Detail.Work,
			Observation:  b.Detail.Observation,
		}
	}
	for i := range b.Payments {
		resp.Payments = append(resp.Payments, ToPaymentResponse(&b.Payments[i]))
	}

	return resp
}
