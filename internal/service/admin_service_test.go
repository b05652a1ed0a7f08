package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/service"
	"github.com/SinaHo/investment-backend/internal/testutil"
)

type referralChain struct {
	grand, parent, child *model.User
}

// newReferralChain builds grand -> parent -> child with the referral rows Register would create.
func newReferralChain(t *testing.T, store *testutil.MemStore) referralChain {
	t.Helper()
	ctx := context.Background()
	grand := testutil.CreateUser(t, store, "grand")
	parent := testutil.CreateUser(t, store, "parent", testutil.ReferredBy(grand))
	child := testutil.CreateUser(t, store, "child", testutil.ReferredBy(parent))
	for _, r := range []model.Referral{
		{ReferrerID: grand.ID, ReferredUserID: parent.ID, Level: 1, CommissionRate: testutil.Dec("10")},
		{ReferrerID: parent.ID, ReferredUserID: child.ID, Level: 1, CommissionRate: testutil.Dec("10")},
		{ReferrerID: grand.ID, ReferredUserID: child.ID, Level: 2, CommissionRate: testutil.Dec("2")},
	} {
		r := r
		require.NoError(t, store.Referrals().Create(ctx, &r))
	}
	return referralChain{grand: grand, parent: parent, child: child}
}

func TestReviewDeposit_PaysCommissionsOnFirstDepositOnly(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	admin := service.NewAdminService(store, service.DefaultRules())
	chain := newReferralChain(t, store)

	first := addTx(t, store, chain.child.ID, model.TxDeposit, model.TxPending, "1000")
	second := addTx(t, store, chain.child.ID, model.TxDeposit, model.TxPending, "500")

	reviewed, err := admin.ReviewTransaction(ctx, first.ID, "approved", "")
	require.NoError(t, err)
	assert.Equal(t, model.TxApproved, reviewed.Status)

	child := testutil.GetUser(t, store, chain.child)
	assert.True(t, testutil.Dec("1000").Equal(child.Balance))
	assert.True(t, testutil.Dec("1000").Equal(child.DepositBalance))
	assert.True(t, testutil.Dec("1000").Equal(child.TotalDeposits))
	assert.True(t, testutil.Dec("100").Equal(testutil.GetUser(t, store, chain.parent).Balance))
	assert.True(t, testutil.Dec("20").Equal(testutil.GetUser(t, store, chain.grand).Balance))

	ref, err := store.Referrals().Get(ctx, chain.parent.ID, chain.child.ID)
	require.NoError(t, err)
	assert.True(t, testutil.Dec("100").Equal(ref.TotalEarned))

	commissions, err := store.Transactions().List(ctx, model.TransactionFilter{
		UserID: &chain.parent.ID, Types: []model.TransactionType{model.TxReferral},
	})
	require.NoError(t, err)
	require.Len(t, commissions, 1)
	assert.Equal(t, model.TxCompleted, commissions[0].Status)

	_, err = admin.ReviewTransaction(ctx, second.ID, "approved", "")
	require.NoError(t, err)
	assert.True(t, testutil.Dec("1500").Equal(testutil.GetUser(t, store, chain.child).Balance))
	assert.True(t, testutil.Dec("100").Equal(testutil.GetUser(t, store, chain.parent).Balance))
}

func TestReview_Validation(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	admin := service.NewAdminService(store, service.DefaultRules())
	u := testutil.CreateUser(t, store, "alice")
	dep := addTx(t, store, u.ID, model.TxDeposit, model.TxPending, "200")
	ret := addTx(t, store, u.ID, model.TxDailyReturn, model.TxCompleted, "300")

	_, err := admin.ReviewTransaction(ctx, dep.ID, "completed", "")
	assert.Equal(t, "Invalid status", apperr.Message(err, ""))

	_, err = admin.ReviewTransaction(ctx, dep.ID, "rejected", "bad")
	assert.Equal(t, "Rejection reason is required and must be at least 5 characters", apperr.Message(err, ""))

	_, err = admin.ReviewTransaction(ctx, ret.ID, "approved", "")
	assert.True(t, apperr.IsCode(err, apperr.CodeFailedPrecondition))

	rejected, err := admin.ReviewTransaction(ctx, dep.ID, "rejected", "Screenshot unreadable")
	require.NoError(t, err)
	assert.Equal(t, "Screenshot unreadable", *rejected.AdminNotes)
	assert.True(t, testutil.GetUser(t, store, u).Balance.IsZero())

	_, err = admin.ReviewTransaction(ctx, dep.ID, "approved", "")
	assert.True(t, apperr.IsCode(err, apperr.CodeFailedPrecondition))
	assert.True(t, testutil.GetUser(t, store, u).Balance.IsZero())
}

func TestReviewWithdrawal(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	admin := service.NewAdminService(store, service.DefaultRules())
	wallet, _ := newWallet(store)
	u := testutil.CreateUser(t, store, "bob", testutil.WithBalance("1000"), func(u *model.User) {
		u.UPIID = model.StrPtr("bob@upi")
		u.ProfitBalance = testutil.Dec("150")
	})
	addTx(t, store, u.ID, model.TxDailyReturn, model.TxCompleted, "600")

	approveMe, err := wallet.RequestWithdrawal(ctx, u.ID, testutil.Dec("200"), service.PayoutUPI)
	require.NoError(t, err)
	rejectMe, err := wallet.RequestWithdrawal(ctx, u.ID, testutil.Dec("100"), service.PayoutUPI)
	require.NoError(t, err)

	_, err = admin.ReviewTransaction(ctx, approveMe.Transaction.ID, "approved", "paid")
	require.NoError(t, err)
	got := testutil.GetUser(t, store, u)
	assert.True(t, testutil.Dec("800").Equal(got.Balance))
	assert.True(t, got.ProfitBalance.IsZero())
	assert.True(t, testutil.Dec("200").Equal(got.TotalWithdrawals))

	_, err = admin.ReviewTransaction(ctx, rejectMe.Transaction.ID, "rejected", "Wrong UPI handle")
	require.NoError(t, err)
	fee, err := store.Transactions().FindByReference(ctx, model.TxWithdrawalFee, rejectMe.Transaction.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.TxRejected, fee.Status)
	assert.True(t, testutil.Dec("800").Equal(testutil.GetUser(t, store, u).Balance))
}

func TestReviewWithdrawal_InsufficientBalanceRollsBack(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	admin := service.NewAdminService(store, service.DefaultRules())
	u := testutil.CreateUser(t, store, "cara", testutil.WithBalance("50"))
	w := addTx(t, store, u.ID, model.TxWithdrawal, model.TxPending, "100")

	_, err := admin.ReviewTransaction(ctx, w.ID, "approved", "")
	assert.True(t, apperr.IsCode(err, apperr.CodeInsufficientFunds))

	stored, err := store.Transactions().Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TxPending, stored.Status)
}

func TestAdminListTransactions(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	admin := service.NewAdminService(store, service.DefaultRules())
	u := testutil.CreateUser(t, store, "dan", func(u *model.User) {
		u.UPIID = model.StrPtr("dan@upi")
		u.AccountNumber = model.StrPtr("1234")
	})
	dep := &model.Transaction{UserID: u.ID, Type: model.TxDeposit, Status: model.TxPending,
		Amount: testutil.Dec("500"), PaymentScreenshot: model.StrPtr("shot.png")}
	require.NoError(t, store.Transactions().Create(ctx, dep))
	w := &model.Transaction{UserID: u.ID, Type: model.TxWithdrawal, Status: model.TxPending,
		Amount: testutil.Dec("100"), PaymentMethod: model.StrPtr("upi")}
	require.NoError(t, store.Transactions().Create(ctx, w))
	addTx(t, store, u.ID, model.TxDailyReturn, model.TxCompleted, "300")

	list, err := admin.ListTransactions(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, w.ID, list[0].ID)
	assert.Equal(t, "dan@upi", *list[0].PaymentMethodDetails.UPIID)
	assert.Nil(t, list[0].PaymentMethodDetails.AccountNumber)
	assert.Equal(t, "/uploads/shot.png", *list[1].PaymentScreenshot)
	assert.Equal(t, "dan@example.com", list[1].UserDetails.Email)

	list, err = admin.ListTransactions(ctx, "daily_return", "")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = admin.ListTransactions(ctx, "deposit", "pending")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAdminUsers(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	admin := service.NewAdminService(store, service.DefaultRules())
	root := testutil.CreateUser(t, store, "root", testutil.AsAdmin())
	chain := newReferralChain(t, store)

	require.NoError(t, admin.UpdateUser(ctx, chain.child.ID, service.UserUpdate{
		FullName: model.StrPtr("Child Renamed"), BankName: model.StrPtr("SBI"),
	}))
	got := testutil.GetUser(t, store, chain.child)
	assert.Equal(t, "Child Renamed", got.FullName)
	assert.Equal(t, "SBI", *got.BankName)

	err := admin.UpdateUser(ctx, chain.child.ID, service.UserUpdate{Email: model.StrPtr(chain.parent.Email)})
	assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyExists))

	require.NoError(t, admin.SetActive(ctx, chain.child.ID, false))
	assert.False(t, testutil.GetUser(t, store, chain.child).IsActive)

	credited, err := admin.AddBalance(ctx, chain.child.ID, testutil.Dec("250"))
	require.NoError(t, err)
	assert.True(t, testutil.Dec("250").Equal(credited.Balance))
	_, err = admin.AddBalance(ctx, chain.child.ID, testutil.Dec("0"))
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))

	details, err := admin.UserDetails(ctx, chain.child.ID)
	require.NoError(t, err)
	assert.Len(t, details.Transactions, 1)
	assert.Len(t, details.Referrals, 2)

	err = admin.DeleteUser(ctx, root.ID, root.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeFailedPrecondition))

	require.NoError(t, admin.DeleteUser(ctx, root.ID, chain.parent.ID))
	_, err = admin.UserDetails(ctx, chain.parent.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
	refs, err := store.Referrals().ListByReferrer(ctx, chain.grand.ID)
	require.NoError(t, err)
	assert.Len(t, refs, 1, "only grand -> child should survive")

	stats, err := admin.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
}

func TestResetDatabase(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	admin := service.NewAdminService(store, service.DefaultRules())
	u := testutil.CreateUser(t, store, "eve", testutil.WithBalance("900"))
	addTx(t, store, u.ID, model.TxDeposit, model.TxApproved, "900")

	require.NoError(t, admin.ResetDatabase(ctx))
	assert.True(t, testutil.GetUser(t, store, u).Balance.IsZero())
	n, err := store.Transactions().Count(ctx, model.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)

	detailed, err := admin.DashboardDetailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, detailed.TotalUsers)
	assert.True(t, detailed.TotalDeposits.IsZero())
}
