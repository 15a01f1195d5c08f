package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/budget"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBudgetRepository implements budget.Repository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GormBudgetRepository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

func (r *GormBudgetRepository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("LineProducts").
		Preload("LineItems").
		Preload("BankReferences").
		Preload("Detail").
		Preload("Payments")
}

// FindByID loads a revision with its children and payments preloaded
func (r *GormBudgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	var b budget.Budget
	if err := r.withChildren(r.db.WithContext(ctx)).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// FindByIDForBusiness loads a revision scoped to a business
func (r *GormBudgetRepository) FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*budget.Budget, error) {
	var b budget.Budget
	if err := r.withChildren(r.db.WithContext(ctx)).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// FindByIDForUpdate loads a revision holding a row lock until the surrounding
// transaction ends. The lock is taken on the budgets row alone; children and
// payments are loaded afterwards so the locking query stays join-free.
func (r *GormBudgetRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	var b budget.Budget
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadChildren(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBudgetRepository) loadChildren(ctx context.Context, b *budget.Budget) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("budget_id = ?", b.ID).Find(&b.LineProducts).Error; err != nil {
		return err
	}
	if err := db.Where("budget_id = ?", b.ID).Find(&b.LineItems).Error; err != nil {
		return err
	}
	if err := db.Where("budget_id = ?", b.ID).Find(&b.BankReferences).Error; err != nil {
		return err
	}
	var detail budget.Detail
	err := db.Where("budget_id = ?", b.ID).First(&detail).Error
	switch {
	case err == nil:
		b.Detail = &detail
	case errors.Is(err, gorm.ErrRecordNotFound):
		b.Detail = nil
	default:
		return err
	}
	return db.Where("budget_id = ?", b.ID).Find(&b.Payments).Error
}

// FindLineage resolves a share token to its lineage. The unique index on
// token plus the enabled flag make this read the atomic pointer of the
// chain: at most one row ever matches.
func (r *GormBudgetRepository) FindLineage(ctx context.Context, token string) (*budget.Lineage, error) {
	var b budget.Budget
	if err := r.db.WithContext(ctx).
		Select("id").
		Where("token = ? AND enabled = ?", token, true).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &budget.Lineage{Token: token, CurrentRevisionID: b.ID}, nil
}

// FindHistory walks the prev chain starting at a revision, newest first
func (r *GormBudgetRepository) FindHistory(ctx context.Context, businessID, id uuid.UUID) ([]budget.Budget, error) {
	history := make([]budget.Budget, 0)
	next := &id
	for next != nil {
		var b budget.Budget
		if err := r.withChildren(r.db.WithContext(ctx)).
			Where("business_id = ? AND id = ?", businessID, *next).
			First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}
		history = append(history, b)
		next = b.PrevID
	}
	return history, nil
}

// FindAllForBusiness lists revisions for a business
func (r *GormBudgetRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter budget.Filter) ([]budget.Budget, error) {
	var budgets []budget.Budget
	query := r.applyFilter(r.db.WithContext(ctx).Model(&budget.Budget{}).Where("business_id = ?", businessID), filter)

	orderBy := ValidateSortField(filter.OrderBy, BudgetSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := r.withChildren(query).Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// CountForBusiness counts revisions matching a filter
func (r *GormBudgetRepository) CountForBusiness(ctx context.Context, businessID uuid.UUID, filter budget.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&budget.Budget{}).Where("business_id = ?", businessID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextNumber allocates the next quote number for a business. Soft-deleted
// revisions still count so a number is never reissued.
func (r *GormBudgetRepository) NextNumber(ctx context.Context, businessID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&budget.Budget{}).
		Unscoped().
		Where("business_id = ?", businessID).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Create persists a revision with its children in one insert graph
func (r *GormBudgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// Update persists header fields only; children are immutable after create
func (r *GormBudgetRepository) Update(ctx context.Context, b *budget.Budget) error {
	return r.db.WithContext(ctx).
		Omit("LineProducts", "LineItems", "BankReferences", "Detail", "Payments").
		Save(b).Error
}

func (r *GormBudgetRepository) applyFilter(query *gorm.DB, filter budget.Filter) *gorm.DB {
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Enabled != nil {
		query = query.Where("enabled = ?", *filter.Enabled)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	return query
}

var _ budget.Repository = (*GormBudgetRepository)(nil)
