package expense

import (
	"context"

	"github.com/quoteflow/backend/internal/domain/expense"
	"github.com/quoteflow/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to expense repositories.
// All repository operations inside Execute commit or roll back atomically.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories touched by
// an expense write. The ledger movement mirroring a record is written in the
// record's own transaction.
type TransactionalRepositories interface {
	// ExpenseRepo returns the expense repository scoped to the current transaction
	ExpenseRepo() expense.Repository
	// LedgerRepo returns the ledger movement repository scoped to the current transaction
	LedgerRepo() ledger.Repository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	expenseRepo expense.Repository
	ledgerRepo  ledger.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(expenseRepo expense.Repository, ledgerRepo ledger.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{expenseRepo: expenseRepo, ledgerRepo: ledgerRepo}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ExpenseRepo returns the expense repository.
func (s *NoOpTransactionScope) ExpenseRepo() expense.Repository {
	return s.expenseRepo
}

// LedgerRepo returns the ledger movement repository.
func (s *NoOpTransactionScope) LedgerRepo() ledger.Repository {
	return s.ledgerRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
