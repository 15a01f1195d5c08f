package budget

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/quoteflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LineItemKind distinguishes free-text quote lines from monetary ones
type LineItemKind string

const (
	LineItemKindText   LineItemKind = "TEXT"
	LineItemKindAmount LineItemKind = "AMOUNT"
)

// IsValid checks if the kind is a valid LineItemKind
func (k LineItemKind) IsValid() bool {
	return k == LineItemKindText || k == LineItemKindAmount
}

// LineProduct is a priced line of a quote revision. Amount is the per-unit
// price with tax/per-person adjustments already applied by the caller.
type LineProduct struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	BudgetID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	PeriodID    *uuid.UUID      `gorm:"type:uuid"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Count       int             `gorm:"not null;default:1"`
	CountPerson int             `gorm:"not null;default:0"`
	Tax         bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (LineProduct) TableName() string {
	return "budget_line_products"
}

// Subtotal returns amount x count for this line
func (p *LineProduct) Subtotal() decimal.Decimal {
	return p.Amount.Mul(decimal.NewFromInt(int64(p.Count)))
}

// LineItem is a descriptive or monetary extra line of a quote revision
type LineItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	BudgetID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID    *uuid.UUID      `gorm:"type:uuid"`
	Kind      LineItemKind    `gorm:"type:varchar(10);not null;default:'TEXT'"`
	WithTitle bool            `gorm:"not null;default:false"`
	Title     string          `gorm:"type:varchar(200)"`
	Text      string          `gorm:"type:text"`
	Value     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "budget_line_items"
}

// BankReference links a quote revision to a bank account shown on the quote
type BankReference struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	BudgetID  uuid.UUID `gorm:"type:uuid;not null;index"`
	AccountID uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (BankReference) TableName() string {
	return "budget_bank_references"
}

// Detail is the optional free-form block of a quote revision
type Detail struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	BudgetID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	CostCenterID *uuid.UUID `gorm:"type:uuid"`
	Work         string     `gorm:"type:varchar(300)"`
	Observation  string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Detail) TableName() string {
	return "budget_details"
}

// TotalCalculator computes a revision's total from its loaded children.
// The canonical formula is injectable because callers encode tax, discount
// and utility adjustments into the line amounts themselves.
type TotalCalculator func(b *Budget) valueobject.Money

// DefaultTotalCalculator sums line products (amount x count) plus monetary
// line items. This is the formula used everywhere unless a service is
// configured with a different one.
func DefaultTotalCalculator(b *Budget) valueobject.Money {
	total := decimal.Zero
	for i := range b.LineProducts {
		total = total.Add(b.LineProducts[i].Subtotal())
	}
	for i := range b.LineItems {
		if b.LineItems[i].Kind == LineItemKindAmount {
			total = total.Add(b.LineItems[i].Value)
		}
	}
	m, _ := valueobject.NewMoney(total, b.Currency)
	return m
}

// Budget is one revision of a quote. A revision is immutable once superseded:
// the only in-place mutation after creation is the disable transition, which
// clears the token and hands it to the replacing revision.
//
// All revisions that ever shared one token form a lineage; at most one
// revision of a lineage is enabled at any time.
type Budget struct {
	shared.BusinessAggregateRoot
	Token          *string              `gorm:"type:varchar(64);uniqueIndex"`
	PrevID         *uuid.UUID           `gorm:"type:uuid;index"`
	Number         int                  `gorm:"not null;index:idx_budgets_business_number"`
	ClientID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	Currency       valueobject.Currency `gorm:"type:varchar(5);not null;default:'CLP'"`
	CurrencyValue  decimal.Decimal      `gorm:"type:decimal(18,6);not null;default:1"`
	Discount       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Utility        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ExpireDate     time.Time            `gorm:"not null"`
	Enabled        bool                 `gorm:"not null;default:true;index"`
	LineProducts   []LineProduct        `gorm:"foreignKey:BudgetID;references:ID"`
	LineItems      []LineItem           `gorm:"foreignKey:BudgetID;references:ID"`
	BankReferences []BankReference      `gorm:"foreignKey:BudgetID;references:ID"`
	Detail         *Detail              `gorm:"foreignKey:BudgetID;references:ID"`
	Payments       []Payment            `gorm:"foreignKey:BudgetID;references:ID"`
	DeletedAt      gorm.DeletedAt       `gorm:"index"`
}

// TableName returns the table name for GORM
func (Budget) TableName() string {
	return "budgets"
}

// Header carries the caller-supplied fields of a revision
type Header struct {
	ClientID      uuid.UUID
	Currency      valueobject.Currency
	CurrencyValue decimal.Decimal
	Discount      decimal.Decimal
	Utility       decimal.Decimal
}

// NewBudget creates the first revision of a new quote lineage
func NewBudget(businessID, actorID uuid.UUID, number int, header Header, expireDate time.Time) (*Budget, error) {
	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business ID cannot be empty")
	}
	if header.ClientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if number <= 0 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Quote number must be positive")
	}
	if header.Currency == "" {
		header.Currency = valueobject.DefaultCurrency
	}
	if header.CurrencyValue.LessThanOrEqual(decimal.Zero) {
		header.CurrencyValue = decimal.NewFromInt(1)
	}
	if expireDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_EXPIRE_DATE", "Expire date is required")
	}

	token := NewToken()
	b := &Budget{
		BusinessAggregateRoot: shared.NewBusinessAggregateRootWithActor(businessID, actorID),
		Token:                 &token,
		Number:                number,
		ClientID:              header.ClientID,
		Currency:              header.Currency,
		CurrencyValue:         header.CurrencyValue,
		Discount:              header.Discount,
		Utility:               header.Utility,
		ExpireDate:            expireDate,
		Enabled:               true,
		LineProducts:          make([]LineProduct, 0),
		LineItems:             make([]LineItem, 0),
		BankReferences:        make([]BankReference, 0),
	}

	b.AddDomainEvent(NewBudgetCreatedEvent(b))

	return b, nil
}

// NewRevisionOf builds the revision replacing current, carrying the lineage
// token forward and pointing back at the superseded row. The current revision
// must already be disabled; the caller persists both under one transaction.
func NewRevisionOf(current *Budget, actorID uuid.UUID, number int, token string, header Header, expireDate time.Time) (*Budget, error) {
	if token == "" {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Lineage token is required")
	}
	next, err := NewBudget(current.BusinessID, actorID, number, header, expireDate)
	if err != nil {
		return nil, err
	}
	next.Token = &token
	prevID := current.ID
	next.PrevID = &prevID
	next.ClearDomainEvents()
	next.AddDomainEvent(NewBudgetSupersededEvent(next, current.ID))
	return next, nil
}

// AddLineProduct attaches a priced line to the revision
func (b *Budget) AddLineProduct(productID, periodID *uuid.UUID, name string, amount decimal.Decimal, count, countPerson int, tax bool) error {
	if name == "" {
		return shared.NewDomainError("INVALID_LINE", "Line product name cannot be empty")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_LINE", "Line product amount cannot be negative")
	}
	if count <= 0 {
		return shared.NewDomainError("INVALID_LINE", "Line product count must be positive")
	}
	b.LineProducts = append(b.LineProducts, LineProduct{
		ID:          uuid.New(),
		BudgetID:    b.ID,
		ProductID:   productID,
		PeriodID:    periodID,
		Name:        name,
		Amount:      amount,
		Count:       count,
		CountPerson: countPerson,
		Tax:         tax,
	})
	return nil
}

// AddLineItem attaches a descriptive or monetary extra line
func (b *Budget) AddLineItem(itemID *uuid.UUID, kind LineItemKind, withTitle bool, title, text string, value decimal.Decimal) error {
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_LINE", "Line item kind is not valid")
	}
	if kind == LineItemKindAmount && value.IsNegative() {
		return shared.NewDomainError("INVALID_LINE", "Line item value cannot be negative")
	}
	b.LineItems = append(b.LineItems, LineItem{
		ID:        uuid.New(),
		BudgetID:  b.ID,
		ItemID:    itemID,
		Kind:      kind,
		WithTitle: withTitle,
		Title:     title,
		Text:      text,
		Value:     value,
	})
	return nil
}

// AddBankReference attaches a bank account reference
func (b *Budget) AddBankReference(accountID uuid.UUID) error {
	if accountID == uuid.Nil {
		return shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	b.BankReferences = append(b.BankReferences, BankReference{
		ID:        uuid.New(),
		BudgetID:  b.ID,
		AccountID: accountID,
	})
	return nil
}

// SetDetail attaches the optional detail block, replacing any existing one
func (b *Budget) SetDetail(costCenterID *uuid.UUID, work, observation string) {
	b.Detail = &Detail{
		ID:           uuid.New(),
		BudgetID:     b.ID,
		CostCenterID: costCenterID,
		Work:         work,
		Observation:  observation,
	}
}

// Disable takes the revision out of its lineage: enabled flips off and the
// token is cleared so the replacing revision can carry it. Fails with a
// conflict when the revision already lost the race to another supersede.
func (b *Budget) Disable(actorID uuid.UUID) error {
	if !b.Enabled {
		return shared.NewDomainError("REVISION_SUPERSEDED", "Revision is already superseded")
	}
	b.Enabled = false
	b.Token = nil
	b.UpdatedAt = time.Now()
	b.StampActor(actorID)
	b.IncrementVersion()
	return nil
}

// TotalAmount derives the revision total from the currently attached
// children using the default formula. Pure: children must be preloaded.
func (b *Budget) TotalAmount() valueobject.Money {
	return b.TotalAmountWith(DefaultTotalCalculator)
}

// TotalAmountWith derives the total with a caller-supplied formula
func (b *Budget) TotalAmountWith(calc TotalCalculator) valueobject.Money {
	if calc == nil {
		calc = DefaultTotalCalculator
	}
	return calc(b)
}

// TotalPaid sums the attached payments that are neither voided nor deleted.
// Pure: payments must be preloaded.
func (b *Budget) TotalPaid() valueobject.Money {
	total := decimal.Zero
	for i := range b.Payments {
		p := &b.Payments[i]
		if p.Voided || p.DeletedAt.Valid {
			continue
		}
		total = total.Add(p.Amount)
	}
	m, _ := valueobject.NewMoney(total, b.Currency)
	return m
}

// RemainingAmount returns truncate2(total - paid) with the default formula
func (b *Budget) RemainingAmount() valueobject.Money {
	return b.RemainingAmountWith(DefaultTotalCalculator)
}

// RemainingAmountWith returns truncate2(total - paid) with a caller formula
func (b *Budget) RemainingAmountWith(calc TotalCalculator) valueobject.Money {
	remaining := b.TotalAmountWith(calc).MustSubtract(b.TotalPaid())
	return remaining.Truncate2()
}

// TotalPaidExcluding sums live payments while skipping one payment id.
// Used when re-validating an amount edit so the edited payment does not
// count against itself.
func (b *Budget) TotalPaidExcluding(paymentID uuid.UUID) valueobject.Money {
	total := decimal.Zero
	for i := range b.Payments {
		p := &b.Payments[i]
		if p.ID == paymentID || p.Voided || p.DeletedAt.Valid {
			continue
		}
		total = total.Add(p.Amount)
	}
	m, _ := valueobject.NewMoney(total, b.Currency)
	return m
}

// IsExpired reports whether the revision's expire date has passed
func (b *Budget) IsExpired(now time.Time) bool {
	return now.After(b.ExpireDate)
}

// NewToken generates a shareable lineage token
func NewToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a uuid rather than a predictable token.
		return hex.EncodeToString([]byte(uuid.NewString()))[:48]
	}
	return hex.EncodeToString(buf)
}
