package budget

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/shared"
)

// Filter narrows budget list queries
type Filter struct {
	shared.Filter
	ClientID *uuid.UUID
	Enabled  *bool
	FromDate *time.Time
	ToDate   *time.Time
}

// Lineage is the stable identity of a quote chain: the shareable token and
// the one revision currently enabled under it. Superseding a revision moves
// CurrentRevisionID forward atomically; the token never changes.
type Lineage struct {
	Token             string
	CurrentRevisionID uuid.UUID
}

// Repository is the persistence port for quote revisions.
// Implementations return (nil, nil) when a row is not found.
type Repository interface {
	// FindByID loads a revision with its children and payments preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Budget, error)

	// FindByIDForBusiness loads a revision scoped to a business
	FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*Budget, error)

	// FindByIDForUpdate loads a revision holding a row lock until the
	// surrounding transaction ends. Children and payments are loaded after
	// the lock is taken. Must run inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Budget, error)

	// FindLineage resolves a share token to the lineage it names. The
	// enabled revision is the lineage's current pointer; a cleared or
	// unknown token resolves to nothing.
	FindLineage(ctx context.Context, token string) (*Lineage, error)

	// FindHistory walks the prev chain starting at a revision, newest first
	FindHistory(ctx context.Context, businessID, id uuid.UUID) ([]Budget, error)

	// FindAllForBusiness lists revisions for a business
	FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter Filter) ([]Budget, error)

	// CountForBusiness counts revisions matching a filter
	CountForBusiness(ctx context.Context, businessID uuid.UUID, filter Filter) (int64, error)

	// NextNumber allocates the next quote number for a business
	NextNumber(ctx context.Context, businessID uuid.UUID) (int, error)

	Create(ctx context.Context, b *Budget) error

	// Update persists header fields only; children are immutable after create
	Update(ctx context.Context, b *Budget) error
}

// PaymentRepository is the persistence port for budget payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByIDForBusiness(ctx context.Context, businessID, id uuid.UUID) (*Payment, error)

	// FindByBudget lists payments of a revision, voided ones included
	FindByBudget(ctx context.Context, budgetID uuid.UUID) ([]Payment, error)

	Create(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error

	// Delete removes a payment row permanently. Void is the soft path;
	// delete exists for correcting records that should never have been
	// entered.
	Delete(ctx context.Context, id uuid.UUID) error
}
