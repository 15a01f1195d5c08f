package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerRepository implements ledger.Repository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Movement, error) {
	var m ledger.Movement
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// FindByIDForBusiness finds a movement by ID within a business
func (r *GormLedgerRepository) FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*ledger.Movement, error) {
	var m ledger.Movement
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// FindByPaymentID resolves the movement mirroring a budget payment
func (r *GormLedgerRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*ledger.Movement, error) {
	var m ledger.Movement
	if err := r.db.WithContext(ctx).
		Where("budget_payment_id = ?", paymentID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// FindByExpenseID resolves the movement mirroring an expense record
func (r *GormLedgerRepository) FindByExpenseID(ctx context.Context, expenseID uuid.UUID) (*ledger.Movement, error) {
	var m ledger.Movement
	if err := r.db.WithContext(ctx).
		Where("expense_id = ?", expenseID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// FindAllForBusiness lists movements for a business
func (r *GormLedgerRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter ledger.Filter) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	query := r.applyFilter(r.db.WithContext(ctx).Model(&ledger.Movement{}).Where("business_id = ?", businessID), filter)

	orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// CountForBusiness counts movements matching a filter
func (r *GormLedgerRepository) CountForBusiness(ctx context.Context, businessID uuid.UUID, filter ledger.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&ledger.Movement{}).Where("business_id = ?", businessID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Summarize totals live movements of a business inside a date range.
// Voided movements are excluded; pending ones count.
func (r *GormLedgerRepository) Summarize(ctx context.Context, businessID uuid.UUID, from, to time.Time) (*ledger.Summary, error) {
	type row struct {
		Type  ledger.MovementType
		Total decimal.Decimal
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Model(&ledger.Movement{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("business_id = ? AND status <> ?", businessID, ledger.MovementStatusVoided).
		Group("type")
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date <= ?", to)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	summary := &ledger.Summary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, r := range rows {
		switch r.Type {
		case ledger.MovementTypeIncome:
			summary.Income = r.Total
		case ledger.MovementTypeExpense:
			summary.Expense = r.Total
		}
	}
	summary.Balance = summary.Income.Sub(summary.Expense)
	return summary, nil
}

// Create persists a new movement
func (r *GormLedgerRepository) Create(ctx context.Context, m *ledger.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// Update persists changes to a movement
func (r *GormLedgerRepository) Update(ctx context.Context, m *ledger.Movement) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// Delete removes a movement row permanently
func (r *GormLedgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&ledger.Movement{}, "id = ?", id).Error
}

func (r *GormLedgerRepository) applyFilter(query *gorm.DB, filter ledger.Filter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.CostCenterID != nil {
		query = query.Where("cost_center_id = ?", *filter.CostCenterID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

var _ ledger.Repository = (*GormLedgerRepository)(nil)
