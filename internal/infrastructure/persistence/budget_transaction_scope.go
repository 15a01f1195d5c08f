package persistence

import (
	"context"

	appbudget "github.com/quoteflow/backend/internal/application/budget"
	"github.com/quoteflow/backend/internal/domain/budget"
	"github.com/quoteflow/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormBudgetTransactionScope implements the budget TransactionScope using
// GORM transactions.
type GormBudgetTransactionScope struct {
	db *gorm.DB
}

// NewGormBudgetTransactionScope creates a new GormBudgetTransactionScope
func NewGormBudgetTransactionScope(db *gorm.DB) *GormBudgetTransactionScope {
	return &GormBudgetTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// Lock contention comes back as shared.ErrBusy.
func (s *GormBudgetTransactionScope) Execute(ctx context.Context, fn func(repos appbudget.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBudgetRepositories{tx: tx})
	})
	return translateContention(err)
}

type gormBudgetRepositories struct {
	tx *gorm.DB
}

// BudgetRepo returns the budget repository scoped to the current transaction
func (r *gormBudgetRepositories) BudgetRepo() budget.Repository {
	return NewGormBudgetRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction
func (r *gormBudgetRepositories) PaymentRepo() budget.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// LedgerRepo returns the ledger movement repository scoped to the current transaction
func (r *gormBudgetRepositories) LedgerRepo() ledger.Repository {
	return NewGormLedgerRepository(r.tx)
}

var _ appbudget.TransactionScope = (*GormBudgetTransactionScope)(nil)
var _ appbudget.TransactionalRepositories = (*gormBudgetRepositories)(nil)
