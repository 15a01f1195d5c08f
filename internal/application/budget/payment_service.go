package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	ledgerapp "github.com/quoteflow/backend/internal/application/ledger"
	"github.com/quoteflow/backend/internal/domain/budget"
	"github.com/quoteflow/backend/internal/domain/ledger"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/quoteflow/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// PaymentService registers, amends, voids and deletes payments against quote
// revisions, keeping the mirroring ledger movement in lockstep.
//
// Every write path re-validates reconciliation while holding a row lock on
// the revision, so the sum of live payments can never exceed the revision
// total even under concurrent requests. The read-only Validate method gives
// callers a preflight answer without taking locks; its verdict is advisory.
type PaymentService struct {
	budgetRepo  budget.Repository
	paymentRepo budget.PaymentRepository
	ledgerRepo  ledger.Repository
	scope       TransactionScope
	validator   *PaymentValidator
	publisher   shared.EventPublisher
}

// NewPaymentService creates a new PaymentService. A nil validator falls back
// to one using the default total formula.
func NewPaymentService(
	budgetRepo budget.Repository,
	paymentRepo budget.PaymentRepository,
	ledgerRepo ledger.Repository,
	scope TransactionScope,
	validator *PaymentValidator,
	publisher shared.EventPublisher,
) *PaymentService {
	if validator == nil {
		validator = NewPaymentValidator(nil)
	}
	return &PaymentService{
		budgetRepo:  budgetRepo,
		paymentRepo: paymentRepo,
		ledgerRepo:  ledgerRepo,
		scope:       scope,
		validator:   validator,
		publisher:   publisher,
	}
}

// Validate answers whether a payment amount would reconcile, without writing
// anything. The answer can go stale the moment it is produced; Register runs
// the same check again under a lock.
func (s *PaymentService) Validate(ctx context.Context, businessID, budgetID uuid.UUID, amount decimal.Decimal) (*ValidationResponse, error) {
	b, err := s.budgetRepo.FindByIDForBusiness(ctx, businessID, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load revision: %w", err)
	}
	if b == nil {
		return nil, shared.ErrNotFound
	}

	res, err := s.validator.ValidateCreate(b, amount)
	if err != nil {
		return nil, err
	}
	return &ValidationResponse{
		Allowed:         res.Allowed,
		TotalAmount:     res.TotalAmount,
		TotalPaid:       res.TotalPaid,
		RemainingAmount: res.RemainingAmount,
	}, nil
}

// Register records a payment against a revision and writes its ledger
// movement in the same transaction
func (s *PaymentService) Register(ctx context.Context, req RegisterPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "register")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBudgetID, req.BudgetID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	var created *budget.Payment
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		b, err := repos.BudgetRepo().FindByIDForUpdate(ctx, req.BudgetID)
		if err != nil {
			return fmt.Errorf("failed to load revision: %w", err)
		}
		if b == nil || b.BusinessID != req.BusinessID {
			return shared.ErrNotFound
		}
		if !b.Enabled {
			return shared.NewDomainError("REVISION_SUPERSEDED", "Payments can only be registered against the enabled revision")
		}

		res, err := s.validator.ValidateCreate(b, req.Amount)
		if err != nil {
			return err
		}
		if !res.Allowed {
			return budget.NewReconciliationError(res.TotalAmount, res.TotalPaid, res.RemainingAmount, req.Amount)
		}

		p, err := budget.NewPayment(req.BusinessID, req.BudgetID, req.ActorID, req.Amount, req.Date, req.Reference)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Create(ctx, p); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		attrs := ledger.Attributes{
			AccountID:       req.AccountID,
			ClientID:        &b.ClientID,
			Currency:        b.Currency,
			PaymentMethodID: req.PaymentMethodID,
			DocumentTypeID:  req.DocumentTypeID,
			DocumentNumber:  req.DocumentNumber,
		}
		if b.Detail != nil {
			attrs.CostCenterID = b.Detail.CostCenterID
		}
		concept := fmt.Sprintf("Abono presupuesto %d", b.Number)
		m, err := ledger.NewPaymentMovement(req.BusinessID, p.ID, req.ActorID, p.Amount, p.Date, concept, req.Status, attrs)
		if err != nil {
			return err
		}
		if err := repos.LedgerRepo().Create(ctx, m); err != nil {
			return fmt.Errorf("failed to save ledger movement: %w", err)
		}

		created = p
		events = append(events, budget.NewPaymentReceivedEvent(p))
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, created.ID.String())
	s.publishEvents(ctx, events)

	resp := ToPaymentResponse(created)
	return &resp, nil
}

// Amend patches a live payment, re-validating the effective amount under
// the revision lock and syncing the ledger movement. Nil request fields keep
// the payment's current values.
func (s *PaymentService) Amend(ctx context.Context, req AmendPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "amend")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, req.PaymentID.String())

	var amended *budget.Payment
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByIDForBusiness(ctx, req.BusinessID, req.PaymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if p == nil {
			return shared.ErrNotFound
		}

		b, err := repos.BudgetRepo().FindByIDForUpdate(ctx, p.BudgetID)
		if err != nil {
			return fmt.Errorf("failed to load revision: %w", err)
		}
		if b == nil {
			return shared.ErrNotFound
		}

		amount := p.Amount
		if req.Amount != nil {
			amount = *req.Amount
		}
		date := p.Date
		if req.Date != nil {
			date = *req.Date
		}
		reference := p.Reference
		if req.Reference != nil {
			reference = *req.Reference
		}

		res, err := s.validator.ValidateAmend(b, p.ID, amount)
		if err != nil {
			return err
		}
		if !res.Allowed {
			return budget.NewReconciliationError(res.TotalAmount, res.TotalPaid, res.RemainingAmount, amount)
		}

		if err := p.Amend(req.ActorID, amount, date, reference); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Update(ctx, p); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		m, err := repos.LedgerRepo().FindByPaymentID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to load ledger movement: %w", err)
		}
		if m != nil {
			if err := m.Sync(req.ActorID, p.Amount, p.Date, ""); err != nil {
				return err
			}
			if err := repos.LedgerRepo().Update(ctx, m); err != nil {
				return fmt.Errorf("failed to save ledger movement: %w", err)
			}
		}

		amended = p
		events = append(events, budget.NewPaymentAmendedEvent(p))
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, events)

	resp := ToPaymentResponse(amended)
	return &resp, nil
}

// Void marks a payment voided and voids its ledger movement. The payment
// stops counting toward the revision's paid total but stays on the books.
func (s *PaymentService) Void(ctx context.Context, businessID, paymentID, actorID uuid.UUID) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "void")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	var voided *budget.Payment
	var events []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByIDForBusiness(ctx, businessID, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if p == nil {
			return shared.ErrNotFound
		}

		if err := p.Void(actorID); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Update(ctx, p); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		m, err := repos.LedgerRepo().FindByPaymentID(ctx, p.ID)
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

		voided = p
		events = append(events, budget.NewPaymentVoidedEvent(p))
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, events)

	resp := ToPaymentResponse(voided)
	return &resp, nil
}

// Delete removes a payment and its ledger movement permanently, movement
// first so the movement's payment reference never dangles. Void is the soft
// path; delete is for records that should never have been entered.
func (s *PaymentService) Delete(ctx context.Context, businessID, paymentID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PaymentRepo().FindByIDForBusiness(ctx, businessID, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if p == nil {
			return shared.ErrNotFound
		}

		m, err := repos.LedgerRepo().FindByPaymentID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to load ledger movement: %w", err)
		}
		if m != nil {
			if err := repos.LedgerRepo().Delete(ctx, m.ID); err != nil {
				return fmt.Errorf("failed to delete ledger movement: %w", err)
			}
		}

		if err := repos.PaymentRepo().Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

// FindWithMovement loads one payment scoped to a business together with the
// ledger movement mirroring it
func (s *PaymentService) FindWithMovement(ctx context.Context, businessID, paymentID uuid.UUID) (*PaymentWithMovementResponse, error) {
	p, err := s.paymentRepo.FindByIDForBusiness(ctx, businessID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if p == nil {
		return nil, shared.ErrNotFound
	}

	resp := &PaymentWithMovementResponse{PaymentResponse: ToPaymentResponse(p)}
	m, err := s.ledgerRepo.FindByPaymentID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger movement: %w", err)
	}
	if m != nil {
		mv := ledgerapp.ToMovementResponse(m)
		resp.Movement = &mv
	}
	return resp, nil
}

// ListByBudget lists a revision's payments, voided ones included
func (s *PaymentService) ListByBudget(ctx context.Context, businessID, budgetID uuid.UUID) ([]PaymentResponse, error) {
	b, err := s.budgetRepo.FindByIDForBusiness(ctx, businessID, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load revision: %w", err)
	}
	if b == nil {
		return nil, shared.ErrNotFound
	}

	payments, err := s.paymentRepo.FindByBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, ToPaymentResponse(&payments[i]))
	}
	return out, nil
}

func (s *PaymentService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	for _, ev := range events {
		// post-commit notification, failures never undo the write
		_ = s.publisher.Publish(ctx, ev)
	}
}
