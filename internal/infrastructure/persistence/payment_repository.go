package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/budget"
	"gorm.io/gorm"
)

// GormPaymentRepository implements budget.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.Payment, error) {
	var p budget.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDForBusiness finds a payment by ID within a business
func (r *GormPaymentRepository) FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*budget.Payment, error) {
	var p budget.Payment
	if err := r.db.WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindByBudget lists payments of a revision, voided ones included
func (r *GormPaymentRepository) FindByBudget(ctx context.Context, budgetID uuid.UUID) ([]budget.Payment, error) {
	var payments []budget.Payment
	if err := r.db.WithContext(ctx).
		Where("budget_id = ?", budgetID).
		Order("date ASC, created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Create persists a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *budget.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Update persists changes to a payment
func (r *GormPaymentRepository) Update(ctx context.Context, p *budget.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete removes a payment row permanently
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&budget.Payment{}, "id = ?", id).Error
}

var _ budget.PaymentRepository = (*GormPaymentRepository)(nil)
