package budget

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/budget"
	"github.com/quoteflow/backend/internal/domain/business"
	"github.com/quoteflow/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// In-memory repositories backing the service tests. They keep real state so
// multi-step flows (create, supersede, pay, void) behave like the database
// would, minus the locking.

type memPaymentRepo struct {
	items map[uuid.UUID]*budget.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{items: make(map[uuid.UUID]*budget.Payment)}
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*budget.Payment, error) {
	p := r.items[id]
	if p == nil || p.DeletedAt.Valid {
		return nil, nil
	}
	return p, nil
}

func (r *memPaymentRepo) FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*budget.Payment, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil || p == nil || p.BusinessID != businessID {
		return nil, err
	}
	return p, nil
}

func (r *memPaymentRepo) FindByBudget(_ context.Context, budgetID uuid.UUID) ([]budget.Payment, error) {
	var out []budget.Payment
	for _, p := range r.items {
		if p.BudgetID == budgetID && !p.DeletedAt.Valid {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memPaymentRepo) Create(_ context.Context, p *budget.Payment) error {
	r.items[p.ID] = p
	return nil
}

func (r *memPaymentRepo) Update(_ context.Context, p *budget.Payment) error {
	r.items[p.ID] = p
	return nil
}

func (r *memPaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

type memBudgetRepo struct {
	items    map[uuid.UUID]*budget.Budget
	payments *memPaymentRepo
	seq      int
}

func newMemBudgetRepo(payments *memPaymentRepo) *memBudgetRepo {
	return &memBudgetRepo{items: make(map[uuid.UUID]*budget.Budget), payments: payments}
}

func (r *memBudgetRepo) load(ctx context.Context, id uuid.UUID) *budget.Budget {
	b := r.items[id]
	if b == nil || b.DeletedAt.Valid {
		return nil
	}
	b.Payments, _ = r.payments.FindByBudget(ctx, id)
	return b
}

func (r *memBudgetRepo) FindByID(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	return r.load(ctx, id), nil
}

func (r *memBudgetRepo) FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*budget.Budget, error) {
	b := r.load(ctx, id)
	if b == nil || b.BusinessID != businessID {
		return nil, nil
	}
	return b, nil
}

func (r *memBudgetRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	return r.load(ctx, id), nil
}

func (r *memBudgetRepo) FindLineage(_ context.Context, token string) (*budget.Lineage, error) {
	for id, b := range r.items {
		if b.Enabled && b.Token != nil && *b.Token == token {
			return &budget.Lineage{Token: token, CurrentRevisionID: id}, nil
		}
	}
	return nil, nil
}

func (r *memBudgetRepo) FindHistory(ctx context.Context, businessID, id uuid.UUID) ([]budget.Budget, error) {
	var out []budget.Budget
	for cur := r.load(ctx, id); cur != nil && cur.BusinessID == businessID; {
		out = append(out, *cur)
		if cur.PrevID == nil {
			break
		}
		cur = r.load(ctx, *cur.PrevID)
	}
	return out, nil
}

func (r *memBudgetRepo) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter budget.Filter) ([]budget.Budget, error) {
	var out []budget.Budget
	for id, b := range r.items {
		if b.BusinessID != businessID || b.DeletedAt.Valid {
			continue
		}
		if filter.Enabled != nil && b.Enabled != *filter.Enabled {
			continue
		}
		if filter.ClientID != nil && b.ClientID != *filter.ClientID {
			continue
		}
		out = append(out, *r.load(ctx, id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memBudgetRepo) CountForBusiness(ctx context.Context, businessID uuid.UUID, filter budget.Filter) (int64, error) {
	items, _ := r.FindAllForBusiness(ctx, businessID, filter)
	return int64(len(items)), nil
}

func (r *memBudgetRepo) NextNumber(_ context.Context, _ uuid.UUID) (int, error) {
	r.seq++
	return r.seq, nil
}

func (r *memBudgetRepo) Create(_ context.Context, b *budget.Budget) error {
	r.items[b.ID] = b
	return nil
}

func (r *memBudgetRepo) Update(_ context.Context, b *budget.Budget) error {
	r.items[b.ID] = b
	return nil
}

type memLedgerRepo struct {
	items map[uuid.UUID]*ledger.Movement
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{items: make(map[uuid.UUID]*ledger.Movement)}
}

func (r *memLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Movement, error) {
	m := r.items[id]
	if m == nil || m.DeletedAt.Valid {
		return nil, nil
	}
	return m, nil
}

func (r *memLedgerRepo) FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*ledger.Movement, error) {
	m, err := r.FindByID(ctx, id)
	if err != nil || m == nil || m.BusinessID != businessID {
		return nil, err
	}
	return m, nil
}

func (r *memLedgerRepo) FindByPaymentID(_ context.Context, paymentID uuid.UUID) (*ledger.Movement, error) {
	for _, m := range r.items {
		if m.BudgetPaymentID != nil && *m.BudgetPaymentID == paymentID && !m.DeletedAt.Valid {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memLedgerRepo) FindByExpenseID(_ context.Context, expenseID uuid.UUID) (*ledger.Movement, error) {
	for _, m := range r.items {
		if m.ExpenseID != nil && *m.ExpenseID == expenseID && !m.DeletedAt.Valid {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memLedgerRepo) FindAllForBusiness(_ context.Context, businessID uuid.UUID, filter ledger.Filter) ([]ledger.Movement, error) {
	var out []ledger.Movement
	for _, m := range r.items {
		if m.BusinessID != businessID || m.DeletedAt.Valid {
			continue
		}
		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.AccountID != nil && (m.AccountID == nil || *m.AccountID != *filter.AccountID) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memLedgerRepo) CountForBusiness(ctx context.Context, businessID uuid.UUID, filter ledger.Filter) (int64, error) {
	items, _ := r.FindAllForBusiness(ctx, businessID, filter)
	return int64(len(items)), nil
}

func (r *memLedgerRepo) Summarize(_ context.Context, businessID uuid.UUID, from, to time.Time) (*ledger.Summary, error) {
	s := &ledger.Summary{Income: decimal.Zero, Expense: decimal.Zero, Balance: decimal.Zero}
	for _, m := range r.items {
		if m.BusinessID != businessID || !m.IsLive() {
			continue
		}
		if (!from.IsZero() && m.Date.Before(from)) || (!to.IsZero() && m.Date.After(to)) {
			continue
		}
		switch m.Type {
		case ledger.MovementTypeIncome:
			s.Income = s.Income.Add(m.Amount)
		case ledger.MovementTypeExpense:
			s.Expense = s.Expense.Add(m.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s, nil
}

func (r *memLedgerRepo) Create(_ context.Context, m *ledger.Movement) error {
	r.items[m.ID] = m
	return nil
}

func (r *memLedgerRepo) Update(_ context.Context, m *ledger.Movement) error {
	r.items[m.ID] = m
	return nil
}

func (r *memLedgerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

type memBusinessRepo struct {
	items map[uuid.UUID]*business.Business
}

func newMemBusinessRepo() *memBusinessRepo {
	return &memBusinessRepo{items: make(map[uuid.UUID]*business.Business)}
}

func (r *memBusinessRepo) FindByID(_ context.Context, id uuid.UUID) (*business.Business, error) {
	return r.items[id], nil
}

func (r *memBusinessRepo) FindByRUT(_ context.Context, rut string) (*business.Business, error) {
	for _, b := range r.items {
		if b.RUT == rut {
			return b, nil
		}
	}
	return nil, nil
}

func (r *memBusinessRepo) Create(_ context.Context, b *business.Business) error {
	r.items[b.ID] = b
	return nil
}

func (r *memBusinessRepo) Update(_ context.Context, b *business.Business) error {
	r.items[b.ID] = b
	return nil
}

var _ budget.Repository = (*memBudgetRepo)(nil)
var _ budget.PaymentRepository = (*memPaymentRepo)(nil)
var _ ledger.Repository = (*memLedgerRepo)(nil)
var _ business.Repository = (*memBusinessRepo)(nil)

type testEnv struct {
	budgetRepo   *memBudgetRepo
	paymentRepo  *memPaymentRepo
	ledgerRepo   *memLedgerRepo
	businessRepo *memBusinessRepo
	scope        TransactionScope
}

func newTestEnv() *testEnv {
	payments := newMemPaymentRepo()
	budgets := newMemBudgetRepo(payments)
	movements := newMemLedgerRepo()
	return &testEnv{
		budgetRepo:   budgets,
		paymentRepo:  payments,
		ledgerRepo:   movements,
		businessRepo: newMemBusinessRepo(),
		scope:        NewNoOpTransactionScope(budgets, payments, movements),
	}
}

func (e *testEnv) versioningService() *VersioningService {
	return NewVersioningService(e.budgetRepo, e.businessRepo, e.scope, nil, nil)
}

func (e *testEnv) paymentService() *PaymentService {
	return NewPaymentService(e.budgetRepo, e.paymentRepo, e.ledgerRepo, e.scope, nil, nil)
}
