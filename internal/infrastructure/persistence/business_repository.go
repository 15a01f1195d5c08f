package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/business"
	"gorm.io/gorm"
)

// GormBusinessRepository implements business.Repository using GORM
type GormBusinessRepository struct {
	db *gorm.DB
}

// NewGormBusinessRepository creates a new GormBusinessRepository
func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

// FindByID finds a business by its ID
func (r *GormBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*business.Business, error) {
	var b business.Business
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// FindByRUT finds a business by its RUT
func (r *GormBusinessRepository) FindByRUT(ctx context.Context, rut string) (*business.Business, error) {
	var b business.Business
	if err := r.db.WithContext(ctx).Where("rut = ?", rut).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// Create persists a new business
func (r *GormBusinessRepository) Create(ctx context.Context, b *business.Business) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// Update persists changes to a business
func (r *GormBusinessRepository) Update(ctx context.Context, b *business.Business) error {
	return r.db.WithContext(ctx).Save(b).Error
}

var _ business.Repository = (*GormBusinessRepository)(nil)
