package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/shared"
)

// Filter narrows expense record queries
type Filter struct {
	shared.Filter
	Category *Category
	Paid     *bool
	FromDate *time.Time
	ToDate   *time.Time
}

// Repository is the persistence port for expense records.
// Implementations return (nil, nil) when a row is not found.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
	FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*Record, error)
	FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter Filter) ([]Record, error)
	CountForBusiness(ctx context.Context, businessID uuid.UUID, filter Filter) (int64, error)
	Create(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error

	// Delete soft-deletes a record
	Delete(ctx context.Context, id uuid.UUID) error
}
