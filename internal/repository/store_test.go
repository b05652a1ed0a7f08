package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SinaHo/investment-backend/internal/database"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
)

// openStore connects to TEST_POSTGRES_DSN, migrates, and wipes every table.
func openStore(t *testing.T) repository.Store {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	_, err = database.Migrate(ctx, db, zap.NewNop().Sugar())
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `TRUNCATE support_messages, support_chats, daily_returns, referrals,
		transactions, user_investments, investment_plans, payment_methods, payment_config, users CASCADE`)
	require.NoError(t, err)
	return repository.NewStore(db)
}

func newUser(name string) *model.User {
	return &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		FullName:     name,
		Phone:        "9999999999",
		ReferralCode: "EV-" + name,
		IsActive:     true,
	}
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	u, err := store.Users().Create(ctx, newUser("alice"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, model.RoleUser, u.Role)

	got, err := store.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	got, err = store.Users().GetByReferralCode(ctx, "EV-alice")
	require.NoError(t, err)
	require.NotNil(t, got)

	missing, err := store.Users().GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = store.Users().Create(ctx, newUser("alice"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestStore_WithTxRollsBack(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	u, err := store.Users().Create(ctx, newUser("bob"))
	require.NoError(t, err)

	err = store.WithTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Users().GetByIDForUpdate(ctx, u.ID)
		require.NoError(t, err)
		locked.Balance = decimal.NewFromInt(500)
		require.NoError(t, tx.Users().Update(ctx, locked))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	got, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestDailyReturnRepository_UniquePerDay(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	u, err := store.Users().Create(ctx, newUser("carol"))
	require.NoError(t, err)
	require.NoError(t, store.Plans().Create(ctx, &model.Plan{
		ID: 1, Name: "Starter", Amount: decimal.NewFromInt(3000), DailyReturn: decimal.NewFromInt(300),
		MaxWithdrawalPerDay: decimal.NewFromInt(300), DurationDays: 20, Tier: 1, IsActive: true,
	}))
	inv := &model.Investment{
		UserID: u.ID, PlanID: 1, Amount: decimal.NewFromInt(3000), DailyReturn: decimal.NewFromInt(300),
		DurationDays: 20, Status: model.InvestmentActive, StartDate: time.Now().UTC(),
	}
	require.NoError(t, store.Investments().Create(ctx, inv))

	day := time.Date(2026, 5, 1, 13, 0, 0, 0, time.UTC)
	ok, err := store.DailyReturns().Create(ctx, &model.DailyReturn{
		InvestmentID: inv.ID, UserID: u.ID, Amount: inv.DailyReturn, ReturnDate: day, Processed: true,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.DailyReturns().Create(ctx, &model.DailyReturn{
		InvestmentID: inv.ID, UserID: u.ID, Amount: inv.DailyReturn, ReturnDate: day.Add(5 * time.Hour), Processed: true,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.DailyReturns().CountByInvestment(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTransactionRepository_FilterAndSum(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	u, err := store.Users().Create(ctx, newUser("dave"))
	require.NoError(t, err)

	for _, tx := range []model.Transaction{
		{UserID: u.ID, Type: model.TxDailyReturn, Amount: decimal.NewFromInt(300), Status: model.TxCompleted},
		{UserID: u.ID, Type: model.TxDailyReturn, Amount: decimal.NewFromInt(300), Status: model.TxCompleted},
		{UserID: u.ID, Type: model.TxWithdrawal, Amount: decimal.NewFromInt(100), Status: model.TxPending},
		{UserID: u.ID, Type: model.TxWithdrawal, Amount: decimal.NewFromInt(50), Status: model.TxRejected},
	} {
		tx := tx
		require.NoError(t, store.Transactions().Create(ctx, &tx))
	}

	returns, err := store.Transactions().Sum(ctx, model.TransactionFilter{
		UserID: &u.ID, Types: []model.TransactionType{model.TxDailyReturn}, Statuses: []model.TransactionStatus{model.TxCompleted},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(600).Equal(returns))

	withdrawn, err := store.Transactions().Sum(ctx, model.TransactionFilter{
		UserID: &u.ID, Types: []model.TransactionType{model.TxWithdrawal},
		Statuses: []model.TransactionStatus{model.TxApproved, model.TxPending},
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(withdrawn))

	list, err := store.Transactions().List(ctx, model.TransactionFilter{Types: []model.TransactionType{model.TxWithdrawal}})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPaymentConfigRepository_Upsert(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	cfg, err := store.PaymentConfig().Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	require.NoError(t, store.PaymentConfig().Upsert(ctx, &model.PaymentConfig{UPIID: model.StrPtr("pay@upi"), IsActive: true}))
	require.NoError(t, store.PaymentConfig().Upsert(ctx, &model.PaymentConfig{UPIID: model.StrPtr("new@upi"), IsActive: true}))

	cfg, err = store.PaymentConfig().Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "new@upi", *cfg.UPIID)
}

func TestListQueries_EmptyResultsAreNotNil(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	u, err := store.Users().Create(ctx, newUser("empty"))
	require.NoError(t, err)

	txs, err := store.Transactions().List(ctx, model.TransactionFilter{UserID: &u.ID})
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)

	invs, err := store.Investments().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, invs)

	returns, err := store.DailyReturns().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, returns)

	refs, err := store.Referrals().ListByReferrer(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, refs)

	chats, err := store.Support().ListChats(ctx, &u.ID)
	require.NoError(t, err)
	assert.NotNil(t, chats)

	msgs, err := store.Support().ListMessages(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, msgs)

	methods, err := store.PaymentMethods().List(ctx, false)
	require.NoError(t, err)
	assert.NotNil(t, methods)

	plans, err := store.Plans().List(ctx, true)
	require.NoError(t, err)
	assert.NotNil(t, plans)
}
