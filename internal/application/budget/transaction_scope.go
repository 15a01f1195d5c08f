package budget

import (
	"context"

	"github.com/quoteflow/backend/internal/domain/budget"
	"github.com/quoteflow/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to budget repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories touched by a
// budget write. All repositories returned share the same underlying database
// transaction.
//
// Aggregate boundary notes:
//   - BudgetRepo: the quote revision aggregate root. Line children persist
//     through GORM association handling when the root is saved; payments do
//     not, they go through PaymentRepo.
//   - PaymentRepo: payments have their own lifecycle (amend, void, delete)
//     after the revision froze, so they get independent repository access.
//   - LedgerRepo: the movement mirroring a payment is written in the same
//     transaction as the payment itself.
type TransactionalRepositories interface {
	// BudgetRepo returns the budget repository scoped to the current transaction
	BudgetRepo() budget.Repository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() budget.PaymentRepository
	// LedgerRepo returns the ledger movement repository scoped to the current transaction
	LedgerRepo() ledger.Repository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	budgetRepo  budget.Repository
	paymentRepo budget.PaymentRepository
	ledgerRepo  ledger.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	budgetRepo budget.Repository,
	paymentRepo budget.PaymentRepository,
	ledgerRepo ledger.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		budgetRepo:  budgetRepo,
		paymentRepo: paymentRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BudgetRepo returns the budget repository.
func (s *NoOpTransactionScope) BudgetRepo() budget.Repository {
	return s.budgetRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() budget.PaymentRepository {
	return s.paymentRepo
}

// LedgerRepo returns the ledger movement repository.
func (s *NoOpTransactionScope) LedgerRepo() ledger.Repository {
	return s.ledgerRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
