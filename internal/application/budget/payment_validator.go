package budget

import (
	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/budget"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentValidator checks payment amounts against a revision's remaining
// headroom. Amounts are compared after truncating to two decimals, so
// sub-cent noise from upstream float arithmetic never rejects an otherwise
// exact payment.
//
// The validator is pure; the service re-runs it under a row lock before any
// write so a concurrent payment cannot slip past a stale read.
type PaymentValidator struct {
	calc budget.TotalCalculator
}

// NewPaymentValidator creates a validator using the given total formula.
// A nil calculator falls back to the default formula.
func NewPaymentValidator(calc budget.TotalCalculator) *PaymentValidator {
	if calc == nil {
		calc = budget.DefaultTotalCalculator
	}
	return &PaymentValidator{calc: calc}
}

// ValidationResult carries the reconciliation figures of one check
type ValidationResult struct {
	Allowed         bool
	TotalAmount     decimal.Decimal
	TotalPaid       decimal.Decimal
	RemainingAmount decimal.Decimal
}

// ValidateCreate checks whether a new payment of the given amount fits the
// revision's remaining headroom. The revision must have children and
// payments loaded.
func (v *PaymentValidator) ValidateCreate(b *budget.Budget, amount decimal.Decimal) (*ValidationResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	total := b.TotalAmountWith(v.calc).Amount()
	paid := b.TotalPaid().Amount()
	return v.check(total, paid, amount), nil
}

// ValidateAmend checks whether changing a payment to the given amount fits.
// The edited payment's current amount does not count against itself.
func (v *PaymentValidator) ValidateAmend(b *budget.Budget, paymentID uuid.UUID, amount decimal.Decimal) (*ValidationResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	total := b.TotalAmountWith(v.calc).Amount()
	paid := b.TotalPaidExcluding(paymentID).Amount()
	return v.check(total, paid, amount), nil
}

func (v *PaymentValidator) check(total, paid, amount decimal.Decimal) *ValidationResult {
	remaining := total.Sub(paid).Truncate(2)
	return &ValidationResult{
		Allowed:         amount.Truncate(2).LessThanOrEqual(remaining),
		TotalAmount:     total,
		TotalPaid:       paid,
		RemainingAmount: remaining,
	}
}
