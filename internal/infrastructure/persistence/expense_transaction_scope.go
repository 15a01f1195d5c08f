package persistence

import (
	"context"

	appexpense "github.com/quoteflow/backend/internal/application/expense"
	"github.com/quoteflow/backend/internal/domain/expense"
	"github.com/quoteflow/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormExpenseTransactionScope implements the expense TransactionScope using
// GORM transactions.
type GormExpenseTransactionScope struct {
	db *gorm.DB
}

// NewGormExpenseTransactionScope creates a new GormExpenseTransactionScope
func NewGormExpenseTransactionScope(db *gorm.DB) *GormExpenseTransactionScope {
	return &GormExpenseTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormExpenseTransactionScope) Execute(ctx context.Context, fn func(repos appexpense.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormExpenseRepositories{tx: tx})
	})
	return translateContention(err)
}

type gormExpenseRepositories struct {
	tx *gorm.DB
}

// ExpenseRepo returns the expense repository scoped to the current transaction
func (r *gormExpenseRepositories) ExpenseRepo() expense.Repository {
	return NewGormExpenseRepository(r.tx)
}

// LedgerRepo returns the ledger movement repository scoped to the current transaction
func (r *gormExpenseRepositories) LedgerRepo() ledger.Repository {
	return NewGormLedgerRepository(r.tx)
}

var _ appexpense.TransactionScope = (*GormExpenseTransactionScope)(nil)
var _ appexpense.TransactionalRepositories = (*gormExpenseRepositories)(nil)
