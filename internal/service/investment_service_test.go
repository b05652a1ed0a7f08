package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/service"
	"github.com/SinaHo/investment-backend/internal/testutil"
)

func TestPurchase_CreditsFirstDay(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := service.NewInvestmentService(store)
	plan := testutil.CreatePlan(t, store, 1)
	u := testutil.CreateUser(t, store, "alice", testutil.WithBalance("5000"))

	res, err := svc.Purchase(ctx, u.ID, plan.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	inv := res.Investment
	assert.Equal(t, model.InvestmentActive, inv.Status)
	assert.True(t, testutil.Dec("3000").Equal(inv.Amount))
	assert.True(t, testutil.Dec("300").Equal(inv.TotalReturned))
	assert.Equal(t, 20, inv.DurationDays)

	got := testutil.GetUser(t, store, u)
	assert.True(t, testutil.Dec("2300").Equal(got.Balance), got.Balance.String())
	assert.True(t, testutil.Dec("300").Equal(got.ProfitBalance))
	assert.True(t, testutil.Dec("300").Equal(got.TotalProfit))

	returns, err := store.DailyReturns().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, returns, 1)
	assert.Equal(t, model.Day(inv.StartDate), returns[0].ReturnDate)

	txs, err := store.Transactions().List(ctx, model.TransactionFilter{UserID: &u.ID})
	require.NoError(t, err)
	var types []model.TransactionType
	for _, tx := range txs {
		types = append(types, tx.Type)
	}
	assert.ElementsMatch(t, []model.TransactionType{model.TxInvestment, model.TxDailyReturn}, types)
}

func TestPurchase_RaisesTierWithoutCommission(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := service.NewInvestmentService(store)
	plan := testutil.CreatePlan(t, store, 3)
	referrer := testutil.CreateUser(t, store, "ref")
	u := testutil.CreateUser(t, store, "bob", testutil.WithBalance("10000"), testutil.ReferredBy(referrer))
	require.NoError(t, store.Referrals().Create(ctx, &model.Referral{
		ReferrerID: referrer.ID, ReferredUserID: u.ID, Level: 1, CommissionRate: testutil.Dec("10"),
	}))

	_, err := svc.Purchase(ctx, u.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, testutil.GetUser(t, store, u).CurrentTier)
	assert.True(t, testutil.GetUser(t, store, referrer).Balance.IsZero())
}

func TestPurchase_Rejections(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := service.NewInvestmentService(store)
	plan := testutil.CreatePlan(t, store, 1)
	u := testutil.CreateUser(t, store, "carl", testutil.WithBalance("1000"))

	_, err := svc.Purchase(ctx, u.ID, plan.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientFunds))
	assert.True(t, testutil.Dec("1000").Equal(testutil.GetUser(t, store, u).Balance))

	_, err = svc.Purchase(ctx, u.ID, 99)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	_, err = svc.Purchase(ctx, u.ID, 0)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))

	invs, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, invs)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := service.NewInvestmentService(store)
	plan := testutil.CreatePlan(t, store, 1)
	u := testutil.CreateUser(t, store, "dina", testutil.WithBalance("3000"))
	res, err := svc.Purchase(ctx, u.ID, plan.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, res.Investment.ID, ""))
	inv, err := store.Investments().Get(ctx, res.Investment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvestmentCancelled, inv.Status)
	assert.NotNil(t, inv.EndDate)

	cancelled, err := store.Transactions().List(ctx, model.TransactionFilter{
		UserID: &u.ID, Types: []model.TransactionType{model.TxInvestmentCancelled},
	})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "Investment cancelled: Cancelled by admin", *cancelled[0].Description)
	assert.True(t, cancelled[0].Amount.IsZero())

	err = svc.Cancel(ctx, res.Investment.ID, "again")
	assert.True(t, apperr.IsCode(err, apperr.CodeFailedPrecondition))

	err = svc.Cancel(ctx, uuid.New(), "")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}
