package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/expense"
	"gorm.io/gorm"
)

// GormExpenseRepository implements expense.Repository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense record by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Record, error) {
	var rec expense.Record
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// FindByIDForBusiness finds an expense record by ID within a business
func (r *GormExpenseRepository) FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*expense.Record, error) {
	var rec expense.Record
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// FindAllForBusiness lists expense records for a business
func (r *GormExpenseRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter expense.Filter) ([]expense.Record, error) {
	var records []expense.Record
	query := r.applyFilter(r.db.WithContext(ctx).Model(&expense.Record{}).Where("business_id = ?", businessID), filter)

	orderBy := ValidateSortField(filter.OrderBy, ExpenseSortFields, "incurred_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountForBusiness counts expense records matching a filter
func (r *GormExpenseRepository) CountForBusiness(ctx context.Context, businessID uuid.UUID, filter expense.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&expense.Record{}).Where("business_id = ?", businessID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists a new expense record
func (r *GormExpenseRepository) Create(ctx context.Context, rec *expense.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// Update persists changes to an expense record
func (r *GormExpenseRepository) Update(ctx context.Context, rec *expense.Record) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// Delete soft-deletes an expense record
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&expense.Record{}, "id = ?", id).Error
}

func (r *GormExpenseRepository) applyFilter(query *gorm.DB, filter expense.Filter) *gorm.DB {
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Paid != nil {
		query = query.Where("paid = ?", *filter.Paid)
	}
	if filter.FromDate != nil {
		query = query.Where("incurred_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("incurred_at <= ?", *filter.ToDate)
	}
	return query
}

var _ expense.Repository = (*GormExpenseRepository)(nil)
