package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/expense"
	"github.com/quoteflow/backend/internal/domain/ledger"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/quoteflow/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// RecordExpenseRequest records an operating expense
type RecordExpenseRequest struct {
	BusinessID     uuid.UUID
	ActorID        uuid.UUID
	Category       expense.Category
	Amount         decimal.Decimal
	Description    string
	DocumentNumber string
	CostCenterID   *uuid.UUID
	IncurredAt     time.Time
	Paid           bool
}

// AmendExpenseRequest changes a live expense record
type AmendExpenseRequest struct {
	BusinessID     uuid.UUID
	ExpenseID      uuid.UUID
	ActorID        uuid.UUID
	Category       expense.Category
	Amount         decimal.Decimal
	Description    string
	DocumentNumber string
	IncurredAt     time.Time
}

// ExpenseResponse mirrors a persisted expense record
type ExpenseResponse struct {
	ID             uuid.UUID        `json:"id"`
	Category       expense.Category `json:"category"`
	Amount         decimal.Decimal  `json:"amount"`
	Description    string           `json:"description"`
	DocumentNumber string           `json:"document_number,omitempty"`
	CostCenterID   *uuid.UUID       `json:"cost_center_id,omitempty"`
	IncurredAt     time.Time        `json:"incurred_at"`
	Paid           bool             `json:"paid"`
	PaidAt         *time.Time       `json:"paid_at,omitempty"`
	Voided         bool             `json:"voided"`
	VoidedAt       *time.Time       `json:"voided_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ToExpenseResponse maps a record to its API view
func ToExpenseResponse(r *expense.Record) ExpenseResponse {
	return ExpenseResponse{
		ID:             r.ID,
		Category:       r.Category,
		Amount:         r.Amount,
		Description:    r.Description,
		DocumentNumber: r.DocumentNumber,
		CostCenterID:   r.CostCenterID,
		IncurredAt:     r.IncurredAt,
		Paid:           r.Paid,
		PaidAt:         r.PaidAt,
		Voided:         r.Voided,
		VoidedAt:       r.VoidedAt,
		CreatedAt:      r.CreatedAt,
	}
}

// Service records operating expenses and keeps their ledger movements in
// lockstep, the same mirroring discipline payments follow.
type Service struct {
	expenseRepo expense.Repository
	scope       TransactionScope
	publisher   shared.EventPublisher
}

// NewService creates a new expense Service
func NewService(expenseRepo expense.Repository, scope TransactionScope, publisher shared.EventPublisher) *Service {
	return &Service{
		expenseRepo: expenseRepo,
		scope:       scope,
		publisher:   publisher,
	}
}

// Record creates an expense record with its ledger movement
func (s *Service) Record(ctx context.Context, req RecordExpenseRequest) (*ExpenseResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "record")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBusinessID, req.BusinessID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	var created *expense.Record
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := expense.NewRecord(req.BusinessID, req.ActorID, req.Category, req.Amount,
			req.Description, req.DocumentNumber, req.CostCenterID, req.IncurredAt, req.Paid)
		if err != nil {
			return err
		}
		if err := repos.ExpenseRepo().Create(ctx, r); err != nil {
			return fmt.Errorf("failed to save expense: %w", err)
		}

		m, err := ledger.NewExpenseMovement(req.BusinessID, r.ID, req.ActorID, r.Amount, r.IncurredAt, r.Description, r.Paid, ledger.Attributes{
			CostCenterID:   r.CostCenterID,
			DocumentNumber: r.DocumentNumber,
		})
		if err != nil {
			return err
		}
		if err := repos.LedgerRepo().Create(ctx, m); err != nil {
			return fmt.Errorf("failed to save ledger movement: %w", err)
		}

		created = r
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrExpenseID, created.ID.String())
	s.publishEvents(ctx, created.GetDomainEvents())
	created.ClearDomainEvents()

	resp := ToExpenseResponse(created)
	return &resp, nil
}

// Amend changes a live expense record and syncs its ledger movement
func (s *Service) Amend(ctx context.Context, req AmendExpenseRequest) (*ExpenseResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "amend")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrExpenseID, req.ExpenseID.String())

	var amended *expense.Record
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.ExpenseRepo().FindByIDForBusiness(ctx, req.BusinessID, req.ExpenseID)
		if err != nil {
			return fmt.Errorf("failed to load expense: %w", err)
		}
		if r == nil {
			return shared.ErrNotFound
		}

		if err := r.Amend(req.ActorID, req.Category, req.Amount, req.Description, req.DocumentNumber, req.IncurredAt); err != nil {
			return err
		}
		if err := repos.ExpenseRepo().Update(ctx, r); err != nil {
			return fmt.Errorf("failed to save expense: %w", err)
		}

		m, err := repos.LedgerRepo().FindByExpenseID(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("failed to load ledger movement: %w", err)
		}
		if m != nil {
			if err := m.Sync(req.ActorID, r.Amount, r.IncurredAt, r.Description); err != nil {
				return err
			}
			if err := repos.LedgerRepo().Update(ctx, m); err != nil {
				return fmt.Errorf("failed to save ledger movement: %w", err)
			}
		}

		amended = r
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToExpenseResponse(amended)
	return &resp, nil
}

// MarkPaid settles an expense and its ledger movement
func (s *Service) MarkPaid(ctx context.Context, businessID, expenseID, actorID uuid.UUID) (*ExpenseResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "mark_paid")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrExpenseID, expenseID.String())

	var paid *expense.Record
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.ExpenseRepo().FindByIDForBusiness(ctx, businessID, expenseID)
		if err != nil {
			return fmt.Errorf("failed to load expense: %w", err)
		}
		if r == nil {
			return shared.ErrNotFound
		}

		if err := r.MarkPaid(actorID); err != nil {
			return err
		}
		if err := repos.ExpenseRepo().Update(ctx, r); err != nil {
			return fmt.Errorf("failed to save expense: %w", err)
		}

		m, err := repos.LedgerRepo().FindByExpenseID(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("failed to load ledger movement: %w", err)
		}
		if m != nil {
			if err := m.MarkPaid(actorID); err != nil {
				return err
			}
			if err := repos.LedgerRepo().Update(ctx, m); err != nil {
				return fmt.Errorf("failed to save ledger movement: %w", err)
			}
		}

		paid = r
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToExpenseResponse(paid)
	return &resp, nil
}

// Void takes an expense out of the ledger totals
func (s *Service) Void(ctx context.Context, businessID, expenseID, actorID uuid.UUID) (*ExpenseResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "void")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrExpenseID, expenseID.String())

	var voided *expense.Record
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.ExpenseRepo().FindByIDForBusiness(ctx, businessID, expenseID)
		if err != nil {
			return fmt.Errorf("failed to load expense: %w", err)
		}
		if r == nil {
			return shared.ErrNotFound
		}

		if err := r.Void(actorID); err != nil {
			return err
		}
		if err := repos.ExpenseRepo().Update(ctx, r); err != nil {
			return fmt.Errorf("failed to save expense: %w", err)
		}

		m, err := repos.LedgerRepo().FindByExpenseID(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("failed to load ledger movement: %w", err)
		}
		if m != nil {
			if err := m.Void(actorID); err != nil {
				return err
			}
			if err := repos.LedgerRepo().Update(ctx, m); err != nil {
				return fmt.Errorf("failed to save ledger movement: %w", err)
			}
		}

		voided = r
		events = r.GetDomainEvents()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, events)
	voided.ClearDomainEvents()

	resp := ToExpenseResponse(voided)
	return &resp, nil
}

// Delete soft-deletes an expense together with its ledger movement
func (s *Service) Delete(ctx context.Context, businessID, expenseID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "delete")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrExpenseID, expenseID.String())

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.ExpenseRepo().FindByIDForBusiness(ctx, businessID, expenseID)
		if err != nil {
			return fmt.Errorf("failed to load expense: %w", err)
		}
		if r == nil {
			return shared.ErrNotFound
		}

		if err := repos.ExpenseRepo().Delete(ctx, r.ID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}

		m, err := repos.LedgerRepo().FindByExpenseID(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("failed to load ledger movement: %w", err)
		}
		if m != nil {
			if err := repos.LedgerRepo().Delete(ctx, m.ID); err != nil {
				return fmt.Errorf("failed to delete ledger movement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

// Get loads one expense scoped to a business
func (s *Service) Get(ctx context.Context, businessID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	r, err := s.expenseRepo.FindByIDForBusiness(ctx, businessID, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}
	if r == nil {
		return nil, shared.ErrNotFound
	}
	resp := ToExpenseResponse(r)
	return &resp, nil
}

// List pages through a business's expenses
func (s *Service) List(ctx context.Context, businessID uuid.UUID, filter expense.Filter) (*shared.Paginated[ExpenseResponse], error) {
	records, err := s.expenseRepo.FindAllForBusiness(ctx, businessID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	total, err := s.expenseRepo.CountForBusiness(ctx, businessID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count expenses: %w", err)
	}

	items := make([]ExpenseResponse, 0, len(records))
	for i := range records {
		items = append(items, ToExpenseResponse(&records[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *Service) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	for _, ev := range events {
		// post-commit notification, failures never undo the write
		_ = s.publisher.Publish(ctx, ev)
	}
}
