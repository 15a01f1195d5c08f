package budget

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quoteflow/backend/internal/domain/budget"
	"github.com/quoteflow/backend/internal/domain/ledger"
	"github.com/quoteflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seeds one business with one enabled revision totaling the given amount
func seedQuote(t *testing.T, env *testEnv, total decimal.Decimal) (businessID, budgetID uuid.UUID) {
	t.Helper()
	businessID = uuid.New()
	req := CreateQuoteRequest{
		BusinessID:    businessID,
		ActorID:       uuid.New(),
		ClientID:      uuid.New(),
		CurrencyValue: decimal.NewFromInt(1),
		LineProducts:  []LineProductInput{{Name: "Obra", Amount: total, Count: 1}},
	}
	resp, err := env.versioningService().CreateQuote(context.Background(), req)
	require.NoError(t, err)
	return businessID, resp.ID
}

func registerReq(businessID, budgetID uuid.UUID, amount decimal.Decimal) RegisterPaymentRequest {
	return RegisterPaymentRequest{
		BusinessID: businessID,
		BudgetID:   budgetID,
		ActorID:    uuid.New(),
		Amount:     amount,
		Date:       time.Now(),
	}
}

func TestRegisterPayment(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	businessID, budgetID := seedQuote(t, env, decimal.NewFromInt(100))

	t.Run("partial payment accepted and mirrored to ledger", func(t *testing.T) {
		p, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(60)))
		require.NoError(t, err)
		assert.False(t, p.Voided)

		m, err := env.ledgerRepo.FindByPaymentID(context.Background(), p.ID)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, ledger.MovementTypeIncome, m.Type)
		assert.Equal(t, ledger.MovementStatusPending, m.Status, "movement starts pending unless told otherwise")
		assert.True(t, m.Amount.Equal(decimal.NewFromInt(60)))
	})

	t.Run("payment of exactly the remaining amount accepted", func(t *testing.T) {
		_, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(40)))
		require.NoError(t, err)
	})

	t.Run("one cent over is rejected with the figures", func(t *testing.T) {
		_, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromFloat(0.01)))
		require.Error(t, err)
		var rerr *budget.ReconciliationError
		require.ErrorAs(t, err, &rerr)
		assert.True(t, rerr.TotalAmount.Equal(decimal.NewFromInt(100)))
		assert.True(t, rerr.TotalPaid.Equal(decimal.NewFromInt(100)))
		assert.True(t, rerr.RemainingAmount.IsZero())

		// nothing was written
		payments, err := env.paymentRepo.FindByBudget(context.Background(), budgetID)
		require.NoError(t, err)
		assert.Len(t, payments, 2)
	})
}

func TestRegisterPaymentMovementDetails(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	businessID, budgetID := seedQuote(t, env, decimal.NewFromInt(100))

	t.Run("explicit paid status is honored", func(t *testing.T) {
		req := registerReq(businessID, budgetID, decimal.NewFromInt(30))
		req.Status = ledger.MovementStatusPaid
		p, err := svc.Register(context.Background(), req)
		require.NoError(t, err)

		m, err := env.ledgerRepo.FindByPaymentID(context.Background(), p.ID)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, ledger.MovementStatusPaid, m.Status)
	})

	t.Run("account details carry onto the movement", func(t *testing.T) {
		accountID := uuid.New()
		methodID := uuid.New()
		req := registerReq(businessID, budgetID, decimal.NewFromInt(20))
		req.AccountID = &accountID
		req.PaymentMethodID = &methodID
		req.DocumentNumber = "F-9921"
		p, err := svc.Register(context.Background(), req)
		require.NoError(t, err)

		m, err := env.ledgerRepo.FindByPaymentID(context.Background(), p.ID)
		require.NoError(t, err)
		require.NotNil(t, m)
		require.NotNil(t, m.AccountID)
		assert.Equal(t, accountID, *m.AccountID)
		require.NotNil(t, m.PaymentMethodID)
		assert.Equal(t, methodID, *m.PaymentMethodID)
		assert.Equal(t, "F-9921", m.DocumentNumber)
		require.NotNil(t, m.ClientID)
	})
}

func TestRegisterPaymentTruncation(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	// float noise upstream leaves the total a hair above 100
	businessID, budgetID := seedQuote(t, env, decimal.NewFromFloat(100.009999))

	// comparing at two decimals, 100.00 pays off a 100.0099... total fully:
	// remaining 0.0099 truncates to 0.00
	p, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(100)))
	require.NoError(t, err)
	require.NotNil(t, p)

	res, err := svc.Validate(context.Background(), businessID, budgetID, decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestRegisterPaymentGuards(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	businessID, budgetID := seedQuote(t, env, decimal.NewFromInt(100))

	t.Run("unknown revision", func(t *testing.T) {
		_, err := svc.Register(context.Background(), registerReq(businessID, uuid.New(), decimal.NewFromInt(1)))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("wrong business", func(t *testing.T) {
		_, err := svc.Register(context.Background(), registerReq(uuid.New(), budgetID, decimal.NewFromInt(1)))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.Zero))
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "INVALID_AMOUNT", derr.Code)
	})

	t.Run("superseded revision rejects payments", func(t *testing.T) {
		_, err := env.versioningService().Supersede(context.Background(), SupersedeQuoteRequest{
			BudgetID:      budgetID,
			BusinessID:    businessID,
			ActorID:       uuid.New(),
			ClientID:      uuid.New(),
			CurrencyValue: decimal.NewFromInt(1),
			LineProducts:  []LineProductInput{{Name: "Obra", Amount: decimal.NewFromInt(100), Count: 1}},
		})
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(1)))
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "REVISION_SUPERSEDED", derr.Code)
	})
}

func TestAmendPayment(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	businessID, budgetID := seedQuote(t, env, decimal.NewFromInt(100))

	p1, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(60)))
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(40)))
	require.NoError(t, err)

	amend := func(amount decimal.Decimal) (*PaymentResponse, error) {
		now := time.Now()
		return svc.Amend(context.Background(), AmendPaymentRequest{
			BusinessID: businessID,
			PaymentID:  p1.ID,
			ActorID:    uuid.New(),
			Amount:     &amount,
			Date:       &now,
		})
	}

	t.Run("edited payment does not count against itself", func(t *testing.T) {
		// fully paid, yet p1 can move anywhere within 100 - 40
		resp, err := amend(decimal.NewFromInt(55))
		require.NoError(t, err)
		assert.True(t, resp.Amount.Equal(decimal.NewFromInt(55)))

		m, err := env.ledgerRepo.FindByPaymentID(context.Background(), p1.ID)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.True(t, m.Amount.Equal(decimal.NewFromInt(55)), "ledger movement follows the amend")
	})

	t.Run("amend up to the freed headroom", func(t *testing.T) {
		_, err := amend(decimal.NewFromInt(60))
		require.NoError(t, err)
	})

	t.Run("amend past the headroom is rejected", func(t *testing.T) {
		_, err := amend(decimal.NewFromFloat(60.01))
		require.Error(t, err)
		var rerr *budget.ReconciliationError
		require.ErrorAs(t, err, &rerr)
		assert.True(t, rerr.RemainingAmount.Equal(decimal.NewFromInt(60)))
	})

	t.Run("absent fields keep their values", func(t *testing.T) {
		before, err := svc.FindWithMovement(context.Background(), businessID, p1.ID)
		require.NoError(t, err)

		newDate := time.Now().AddDate(0, 0, -3).Truncate(time.Second)
		resp, err := svc.Amend(context.Background(), AmendPaymentRequest{
			BusinessID: businessID,
			PaymentID:  p1.ID,
			ActorID:    uuid.New(),
			Date:       &newDate,
		})
		require.NoError(t, err)
		assert.True(t, resp.Amount.Equal(before.Amount), "amount untouched by a date-only amend")
		assert.Equal(t, before.Reference, resp.Reference)
		assert.True(t, newDate.Equal(resp.Date))
	})

	t.Run("unknown payment", func(t *testing.T) {
		one := decimal.NewFromInt(1)
		_, err := svc.Amend(context.Background(), AmendPaymentRequest{
			BusinessID: businessID,
			PaymentID:  uuid.New(),
			ActorID:    uuid.New(),
			Amount:     &one,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestFindWithMovement(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	businessID, budgetID := seedQuote(t, env, decimal.NewFromInt(100))

	p, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(45)))
	require.NoError(t, err)

	got, err := svc.FindWithMovement(context.Background(), businessID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	require.NotNil(t, got.Movement, "the mirrored movement rides along")
	assert.Equal(t, ledger.MovementTypeIncome, got.Movement.Type)
	assert.True(t, got.Movement.Amount.Equal(decimal.NewFromInt(45)))

	_, err = svc.FindWithMovement(context.Background(), businessID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestVoidPayment(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	businessID, budgetID := seedQuote(t, env, decimal.NewFromInt(100))

	p, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(100)))
	require.NoError(t, err)

	t.Run("void frees the headroom", func(t *testing.T) {
		voided, err := svc.Void(context.Background(), businessID, p.ID, uuid.New())
		require.NoError(t, err)
		assert.True(t, voided.Voided)
		require.NotNil(t, voided.VoidedAt)

		m, err := env.ledgerRepo.FindByPaymentID(context.Background(), p.ID)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, ledger.MovementStatusVoided, m.Status)

		// the full total is payable again
		_, err = svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(100)))
		require.NoError(t, err)
	})

	t.Run("voiding twice conflicts", func(t *testing.T) {
		_, err := svc.Void(context.Background(), businessID, p.ID, uuid.New())
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "PAYMENT_VOIDED", derr.Code)
	})
}

func TestDeletePayment(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	businessID, budgetID := seedQuote(t, env, decimal.NewFromInt(100))

	p, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(70)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), businessID, p.ID))

	t.Run("payment and movement are gone", func(t *testing.T) {
		got, err := svc.FindWithMovement(context.Background(), businessID, p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, got)

		m, err := env.ledgerRepo.FindByPaymentID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("deleted payment stops counting", func(t *testing.T) {
		res, err := svc.Validate(context.Background(), businessID, budgetID, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("deleting twice is not found", func(t *testing.T) {
		err := svc.Delete(context.Background(), businessID, p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestValidate(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	businessID, budgetID := seedQuote(t, env, decimal.NewFromInt(100))

	_, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(60)))
	require.NoError(t, err)

	res, err := svc.Validate(context.Background(), businessID, budgetID, decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.True(t, res.TotalAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.TotalPaid.Equal(decimal.NewFromInt(60)))
	assert.True(t, res.RemainingAmount.Equal(decimal.NewFromInt(40)))

	res, err = svc.Validate(context.Background(), businessID, budgetID, decimal.NewFromFloat(40.01))
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	_, err = svc.Validate(context.Background(), businessID, uuid.New(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListByBudget(t *testing.T) {
	env := newTestEnv()
	svc := env.paymentService()
	businessID, budgetID := seedQuote(t, env, decimal.NewFromInt(100))

	p1, err := svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(30)))
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), registerReq(businessID, budgetID, decimal.NewFromInt(20)))
	require.NoError(t, err)
	_, err = svc.Void(context.Background(), businessID, p1.ID, uuid.New())
	require.NoError(t, err)

	payments, err := svc.ListByBudget(context.Background(), businessID, budgetID)
	require.NoError(t, err)
	require.Len(t, payments, 2, "voided payments stay listed")

	_, err = svc.ListByBudget(context.Background(), businessID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
