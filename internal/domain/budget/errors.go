package budget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ReconciliationError is returned when accepting a payment amount would push
// the paid total past the revision total. It carries the figures so the API
// can report them to the caller.
type ReconciliationError struct {
	TotalAmount     decimal.Decimal
	TotalPaid       decimal.Decimal
	RemainingAmount decimal.Decimal
	Requested       decimal.Decimal
}

// NewReconciliationError creates a reconciliation error
func NewReconciliationError(total, paid, remaining, requested decimal.Decimal) *ReconciliationError {
	return &ReconciliationError{
		TotalAmount:     total,
		TotalPaid:       paid,
		RemainingAmount: remaining,
		Requested:       requested,
	}
}

// Error implements the error interface
func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("payment of %s exceeds remaining amount %s (total %s, paid %s)",
		e.Requested.StringFixed(2), e.RemainingAmount.StringFixed(2),
		e.TotalAmount.StringFixed(2), e.TotalPaid.StringFixed(2))
}
