package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/budget"
	"github.com/quoteflow/backend/internal/domain/business"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/quoteflow/backend/internal/infrastructure/telemetry"
)

const defaultExpireDays = 30

// VersioningService manages quote lineages: creating the first revision and
// superseding the enabled one with a replacement.
//
// Past revisions are never edited. An update disables the current revision,
// hands its token to a freshly built row and links the new row back through
// prev_id, all inside one transaction holding a row lock on the current
// revision. Two concurrent updates of the same revision therefore serialize;
// the loser finds the row already disabled and gets a conflict.
type VersioningService struct {
	budgetRepo   budget.Repository
	businessRepo business.Repository
	scope        TransactionScope
	publisher    shared.EventPublisher
	calc         budget.TotalCalculator
}

// NewVersioningService creates a new VersioningService. A nil calculator
// falls back to the default total formula; a nil business repository falls
// back to the default expire window.
func NewVersioningService(
	budgetRepo budget.Repository,
	businessRepo business.Repository,
	scope TransactionScope,
	publisher shared.EventPublisher,
	calc budget.TotalCalculator,
) *VersioningService {
	if calc == nil {
		calc = budget.DefaultTotalCalculator
	}
	return &VersioningService{
		budgetRepo:   budgetRepo,
		businessRepo: businessRepo,
		scope:        scope,
		publisher:    publisher,
		calc:         calc,
	}
}

// expireDate resolves the expire date of a new revision: an explicit caller
// override wins, otherwise the owning business's quote settings decide.
func (s *VersioningService) expireDate(ctx context.Context, businessID uuid.UUID, override *time.Time) time.Time {
	if override != nil {
		return *override
	}
	now := time.Now()
	if s.businessRepo != nil {
		if biz, err := s.businessRepo.FindByID(ctx, businessID); err == nil && biz != nil {
			return biz.QuoteExpireDate(now)
		}
	}
	return now.AddDate(0, 0, defaultExpireDays)
}

// CreateQuote opens a new lineage with its first revision
func (s *VersioningService) CreateQuote(ctx context.Context, req CreateQuoteRequest) (*QuoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "budget", "create_quote")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBusinessID, req.BusinessID.String(),
	)

	expireDate := s.expireDate(ctx, req.BusinessID, req.ExpireDate)

	var created *budget.Budget
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.BudgetRepo().NextNumber(ctx, req.BusinessID)
		if err != nil {
			return fmt.Errorf("failed to allocate quote number: %w", err)
		}

		b, err := budget.NewBudget(req.BusinessID, req.ActorID, number, budget.Header{
			ClientID:      req.ClientID,
			Currency:      req.Currency,
			CurrencyValue: req.CurrencyValue,
			Discount:      req.Discount,
			Utility:       req.Utility,
		}, expireDate)
		if err != nil {
			return err
		}

		if err := attachChildren(b, req.LineProducts, req.LineItems, req.BankAccountIDs, req.Detail); err != nil {
			return err
		}

		if err := repos.BudgetRepo().Create(ctx, b); err != nil {
			return fmt.Errorf("failed to save quote: %w", err)
		}

		created = b
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBudgetID, created.ID.String(),
		telemetry.SpanAttrNumber, created.Number,
	)
	s.publishEvents(ctx, created.GetDomainEvents())
	created.ClearDomainEvents()

	return ToQuoteResponse(created, s.calc), nil
}

// Supersede replaces the enabled revision with a new one carrying the same
// token. The superseded revision stays readable forever through its id and
// the prev chain.
func (s *VersioningService) Supersede(ctx context.Context, req SupersedeQuoteRequest) (*QuoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "budget", "supersede")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBusinessID, req.BusinessID.String(),
		telemetry.SpanAttrBudgetID, req.BudgetID.String(),
	)

	expireDate := s.expireDate(ctx, req.BusinessID, req.ExpireDate)

	var next *budget.Budget
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.BudgetRepo().FindByIDForUpdate(ctx, req.BudgetID)
		if err != nil {
			return fmt.Errorf("failed to load revision: %w", err)
		}
		if current == nil || current.BusinessID != req.BusinessID {
			return shared.ErrNotFound
		}
		if !current.Enabled || current.Token == nil {
			// lost the race to a concurrent supersede
			return shared.NewDomainError("REVISION_SUPERSEDED", "Revision was already replaced by a newer one")
		}

		token := *current.Token
		number := current.Number
		if !req.KeepSameNumber {
			number, err = repos.BudgetRepo().NextNumber(ctx, req.BusinessID)
			if err != nil {
				return fmt.Errorf("failed to allocate quote number: %w", err)
			}
		}

		if err := current.Disable(req.ActorID); err != nil {
			return err
		}
		if err := repos.BudgetRepo().Update(ctx, current); err != nil {
			return fmt.Errorf("failed to disable revision: %w", err)
		}

		next, err = budget.NewRevisionOf(current, req.ActorID, number, token, budget.Header{
			ClientID:      req.ClientID,
			Currency:      req.Currency,
			CurrencyValue: req.CurrencyValue,
			Discount:      req.Discount,
			Utility:       req.Utility,
		}, expireDate)
		if err != nil {
			return err
		}

		if err := attachChildren(next, req.LineProducts, req.LineItems, req.BankAccountIDs, req.Detail); err != nil {
			return err
		}

		if err := repos.BudgetRepo().Create(ctx, next); err != nil {
			return fmt.Errorf("failed to save revision: %w", err)
		}

		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, "next_revision_id", next.ID.String())
	s.publishEvents(ctx, next.GetDomainEvents())
	next.ClearDomainEvents()

	return ToQuoteResponse(next, s.calc), nil
}

// GetQuote loads one revision, enabled or not, scoped to a business
func (s *VersioningService) GetQuote(ctx context.Context, businessID, id uuid.UUID) (*QuoteResponse, error) {
	b, err := s.budgetRepo.FindByIDForBusiness(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load quote: %w", err)
	}
	if b == nil {
		return nil, shared.ErrNotFound
	}
	return ToQuoteResponse(b, s.calc), nil
}

// GetPublicViewByToken resolves a share token to the reduced projection of
// its enabled revision. This is the unauthenticated read path; the full
// QuoteResponse never leaves the authenticated API.
func (s *VersioningService) GetPublicViewByToken(ctx context.Context, token string) (*PublicQuoteView, error) {
	if token == "" {
		return nil, shared.ErrNotFound
	}
	lin, err := s.budgetRepo.FindLineage(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	if lin == nil {
		return nil, shared.ErrNotFound
	}
	b, err := s.budgetRepo.FindByID(ctx, lin.CurrentRevisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load revision: %w", err)
	}
	if b == nil {
		return nil, shared.ErrNotFound
	}
	return ToPublicQuoteView(b, s.calc), nil
}

// GetHistory walks the prev chain of a revision, newest first
func (s *VersioningService) GetHistory(ctx context.Context, businessID, id uuid.UUID) ([]QuoteResponse, error) {
	revisions, err := s.budgetRepo.FindHistory(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if len(revisions) == 0 {
		return nil, shared.ErrNotFound
	}

	out := make([]QuoteResponse, 0, len(revisions))
	for i := range revisions {
		out = append(out, *ToQuoteResponse(&revisions[i], s.calc))
	}
	return out, nil
}

// ListQuotes pages through a business's revisions
func (s *VersioningService) ListQuotes(ctx context.Context, businessID uuid.UUID, filter budget.Filter) (*shared.Paginated[QuoteResponse], error) {
	revisions, err := s.budgetRepo.FindAllForBusiness(ctx, businessID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	total, err := s.budgetRepo.CountForBusiness(ctx, businessID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	items := make([]QuoteResponse, 0, len(revisions))
	for i := range revisions {
		items = append(items, *ToQuoteResponse(&revisions[i], s.calc))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *VersioningService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	for _, ev := range events {
		// post-commit notification, failures never undo the write
		_ = s.publisher.Publish(ctx, ev)
	}
}

func attachChildren(b *budget.Budget, products []LineProductInput, items []LineItemInput, accounts []uuid.UUID, detail *DetailInput) error {
	for _, p := range products {
		if err := b.AddLineProduct(p.ProductID, p.PeriodID, p.Name, p.Amount, p.Count, p.CountPerson, p.Tax); err != nil {
			return err
		}
	}
	for _, it := range items {
		if err := b.AddLineItem(it.ItemID, it.Kind, it.WithTitle, it.Title, it.Text, it.Value); err != nil {
			return err
		}
	}
	for _, acc := range accounts {
		if err := b.AddBankReference(acc); err != nil {
			return err
		}
	}
	if detail != nil {
		b.SetDetail(detail.CostCenterID, detail.Work, detail.Observation)
	}
	return nil
}
