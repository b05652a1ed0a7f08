package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/service"
	"github.com/SinaHo/investment-backend/internal/testutil"
)

var accrualStart = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func activeInvestment(t *testing.T, store *testutil.MemStore, u *model.User) *model.Investment {
	t.Helper()
	inv := &model.Investment{
		UserID:        u.ID,
		PlanID:        1,
		Amount:        testutil.Dec("3000"),
		DailyReturn:   testutil.Dec("300"),
		DurationDays:  20,
		TotalReturned: testutil.Dec("0"),
		Status:        model.InvestmentActive,
		StartDate:     accrualStart,
	}
	require.NoError(t, store.Investments().Create(context.Background(), inv))
	return inv
}

func TestProcessDailyReturns_CatchesUpAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := service.NewAccrualService(store, zap.NewNop().Sugar())
	u := testutil.CreateUser(t, store, "alice")
	inv := activeInvestment(t, store, u)

	now := accrualStart.AddDate(0, 0, 3).Add(time.Hour)
	sum, err := svc.ProcessDailyReturns(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 4, sum.Credited)
	assert.True(t, testutil.Dec("1200").Equal(sum.CreditedAmount))
	assert.Equal(t, 0, sum.Completed)

	// Everything due is paid, so the rerun must not attempt any insert.
	store.FailDailyReturn = func(*model.DailyReturn) error { return errors.New("unexpected insert") }
	sum, err = svc.ProcessDailyReturns(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Credited)
	assert.Equal(t, 0, sum.Failed)
	store.FailDailyReturn = nil

	got := testutil.GetUser(t, store, u)
	assert.True(t, testutil.Dec("1200").Equal(got.ProfitBalance))
	assert.True(t, testutil.Dec("1200").Equal(got.Balance))

	returns, err := svc.ListDailyReturns(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, returns, 4)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), returns[0].ReturnDate)

	stored, err := store.Investments().Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, testutil.Dec("1200").Equal(stored.TotalReturned))
}

func TestProcessDailyReturns_CompletesMaturedInvestment(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := service.NewAccrualService(store, zap.NewNop().Sugar())
	u := testutil.CreateUser(t, store, "bob")
	inv := activeInvestment(t, store, u)

	sum, err := svc.ProcessDailyReturns(ctx, accrualStart.AddDate(0, 0, 25))
	require.NoError(t, err)
	assert.Equal(t, 20, sum.Credited)
	assert.Equal(t, 1, sum.Completed)

	stored, err := store.Investments().Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvestmentCompleted, stored.Status)
	require.NotNil(t, stored.EndDate)
	assert.Equal(t, accrualStart.AddDate(0, 0, 20), *stored.EndDate)
	assert.True(t, testutil.Dec("6000").Equal(stored.TotalReturned))

	done, err := store.Transactions().List(ctx, model.TransactionFilter{
		UserID: &u.ID, Types: []model.TransactionType{model.TxInvestmentCompleted},
	})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.True(t, done[0].Amount.IsZero())

	sum, err = svc.ProcessDailyReturns(ctx, accrualStart.AddDate(0, 0, 26))
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Processed)
}

func TestProcessDailyReturns_FailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := service.NewAccrualService(store, zap.NewNop().Sugar())
	alice := testutil.CreateUser(t, store, "alice")
	bob := testutil.CreateUser(t, store, "bob")
	broken := activeInvestment(t, store, alice)
	activeInvestment(t, store, bob)

	store.FailTransaction = func(tx *model.Transaction) error {
		if tx.UserID == broken.UserID {
			return errors.New("disk full")
		}
		return nil
	}

	sum, err := svc.ProcessDailyReturns(ctx, accrualStart.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Credited)

	n, err := store.DailyReturns().CountByInvestment(ctx, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, testutil.GetUser(t, store, alice).Balance.IsZero())
	assert.True(t, testutil.Dec("300").Equal(testutil.GetUser(t, store, bob).Balance))
}
