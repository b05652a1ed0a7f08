package service

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
	"github.com/SinaHo/investment-backend/internal/upload"
)

const (
	PayoutUPI  = "upi"
	PayoutBank = "bank"
)

type DepositInput struct {
	Amount            string
	PaymentMethod     string
	TransactionNumber string
	Screenshot        io.Reader
}

type WithdrawableBalance struct {
	WithdrawableBalance string `json:"withdrawableBalance"`
	TotalDailyReturns   string `json:"totalDailyReturns"`
	TotalWithdrawn      string `json:"totalWithdrawn"`
}

type WithdrawalResult struct {
	Message        string             `json:"message"`
	Transaction    *model.Transaction `json:"transaction"`
	Fee            string             `json:"fee"`
	NetAmount      string             `json:"netAmount"`
	ProcessingTime string             `json:"processingTime"`
}

// WalletService covers the user side of money movement.
type WalletService interface {
	RequestDeposit(ctx context.Context, userID uuid.UUID, in DepositInput) (*model.Transaction, error)
	WithdrawableBalance(ctx context.Context, userID uuid.UUID) (*WithdrawableBalance, error)
	RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (*WithdrawalResult, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, typ, status string) ([]model.Transaction, error)
	ListReferrals(ctx context.Context, userID uuid.UUID) ([]model.Referral, error)
}

type walletService struct {
	store   repository.Store
	uploads upload.Store
	rules   Rules
	now     func() time.Time
}

func NewWalletService(store repository.Store, uploads upload.Store, rules Rules) WalletService {
	return &walletService{store: store, uploads: uploads, rules: rules, now: time.Now}
}

func (s *walletService) RequestDeposit(ctx context.Context, userID uuid.UUID, in DepositInput) (*model.Transaction, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil || amount.LessThan(s.rules.MinDeposit) {
		return nil, apperr.Newf(apperr.CodeInvalidArgument, "Minimum deposit amount is ₹%s", s.rules.MinDeposit.String())
	}
	method := model.PaymentMethodType(in.PaymentMethod)
	if in.PaymentMethod == "" {
		return nil, apperr.Invalid("Payment method is required")
	}
	if !method.Valid() {
		return nil, apperr.Invalid("Invalid payment method")
	}
	if strings.TrimSpace(in.TransactionNumber) == "" {
		return nil, apperr.Invalid("Transaction number is required")
	}
	if in.Screenshot == nil {
		return nil, apperr.Invalid("Payment screenshot is required")
	}

	path, err := s.uploads.SaveImage(in.Screenshot, "screenshot")
	if err != nil {
		return nil, err
	}

	now := s.now()
	label := strings.ToUpper(strings.ReplaceAll(in.PaymentMethod, "_", " "))
	tx := &model.Transaction{
		UserID:            userID,
		Type:              model.TxDeposit,
		Amount:            money(amount),
		Status:            model.TxPending,
		Description:       model.StrPtr(fmt.Sprintf("%s deposit of ₹%s", label, money(amount).StringFixed(2))),
		Reference:         model.StrPtr(depositReference(now)),
		PaymentMethod:     model.StrPtr(in.PaymentMethod),
		PaymentScreenshot: &path,
		TransactionNumber: model.StrPtr(strings.TrimSpace(in.TransactionNumber)),
	}
	if err := s.store.Transactions().Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

const refAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// depositReference renders DEP-<unix ms>-<6 random base36 chars>.
func depositReference(now time.Time) string {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(refAlphabet[rand.Intn(len(refAlphabet))])
	}
	return fmt.Sprintf("DEP-%d-%s", now.UnixMilli(), b.String())
}

type withdrawable struct {
	returns, withdrawn decimal.Decimal
}

func (w withdrawable) available() decimal.Decimal {
	return w.returns.Sub(w.withdrawn)
}

func loadWithdrawable(ctx context.Context, store repository.Store, userID uuid.UUID) (withdrawable, error) {
	returns, err := store.Transactions().Sum(ctx, model.TransactionFilter{
		UserID:   &userID,
		Types:    []model.TransactionType{model.TxDailyReturn},
		Statuses: []model.TransactionStatus{model.TxCompleted},
	})
	if err != nil {
		return withdrawable{}, err
	}
	withdrawn, err := store.Transactions().Sum(ctx, model.TransactionFilter{
		UserID:   &userID,
		Types:    []model.TransactionType{model.TxWithdrawal},
		Statuses: []model.TransactionStatus{model.TxApproved, model.TxPending},
	})
	if err != nil {
		return withdrawable{}, err
	}
	return withdrawable{returns: returns, withdrawn: withdrawn}, nil
}

func (s *walletService) WithdrawableBalance(ctx context.Context, userID uuid.UUID) (*WithdrawableBalance, error) {
	w, err := loadWithdrawable(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	return &WithdrawableBalance{
		WithdrawableBalance: decimal.Max(decimal.Zero, w.available()).StringFixed(2),
		TotalDailyReturns:   w.returns.StringFixed(2),
		TotalWithdrawn:      w.withdrawn.StringFixed(2),
	}, nil
}

func (s *walletService) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (*WithdrawalResult, error) {
	if !amount.IsPositive() {
		return nil, apperr.Invalid("Amount must be a positive number")
	}
	amount = money(amount)
	if method != PayoutUPI && method != PayoutBank {
		return nil, apperr.Invalid("Payment method must be upi or bank")
	}
	fee := money(amount.Mul(s.rules.WithdrawalFeeRate))
	net := amount.Sub(fee)

	var created *model.Transaction
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		u, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("User not found")
		}

		w, err := loadWithdrawable(ctx, tx, userID)
		if err != nil {
			return err
		}
		if w.available().LessThan(amount) {
			return apperr.Newf(apperr.CodeInsufficientFunds,
				"Insufficient withdrawable balance. You can only withdraw daily returns. Available: ₹%s",
				w.available().StringFixed(2))
		}
		if u.Balance.LessThan(amount) {
			return apperr.New(apperr.CodeInsufficientFunds, "Insufficient balance")
		}

		if err := s.checkReferralGate(ctx, tx, userID); err != nil {
			return err
		}

		switch {
		case method == PayoutUPI && !u.HasUPI():
			return apperr.Precondition("Please configure your UPI ID first in profile settings")
		case method == PayoutBank && !u.HasBankAccount():
			return apperr.Precondition("Please configure your bank account details first in profile settings")
		}

		now := s.now()
		created = &model.Transaction{
			UserID: userID,
			Type:   model.TxWithdrawal,
			Amount: amount,
			Status: model.TxPending,
			Description: model.StrPtr(fmt.Sprintf("%s Withdrawal - ₹%s (Fee: ₹%s, Net: ₹%s) - Processing Time: 24 hours",
				strings.ToUpper(method), amount.StringFixed(2), fee.StringFixed(2), net.StringFixed(2))),
			Reference:     model.StrPtr(fmt.Sprintf("withdrawal-%d", now.UnixMilli())),
			PaymentMethod: &method,
		}
		if err := tx.Transactions().Create(ctx, created); err != nil {
			return err
		}
		feeRef := created.ID.String()
		return tx.Transactions().Create(ctx, &model.Transaction{
			UserID: userID,
			Type:   model.TxWithdrawalFee,
			Amount: fee,
			Status: model.TxCompleted,
			Description: model.StrPtr(fmt.Sprintf("Withdrawal processing fee (%s%% of ₹%s)",
				Percent(s.rules.WithdrawalFeeRate).String(), amount.StringFixed(2))),
			Reference: &feeRef,
		})
	})
	if err != nil {
		return nil, err
	}
	return &WithdrawalResult{
		Message:        "Withdrawal request submitted successfully. Processing time: 24 hours",
		Transaction:    created,
		Fee:            fee.StringFixed(2),
		NetAmount:      net.StringFixed(2),
		ProcessingTime: "24 hours",
	}, nil
}

// checkReferralGate blocks withdrawals once the first plan has completed
// until the user has brought in enough direct referrals.
func (s *walletService) checkReferralGate(ctx context.Context, store repository.Store, userID uuid.UUID) error {
	invs, err := store.Investments().ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	completed := 0
	for _, inv := range invs {
		if inv.Status == model.InvestmentCompleted {
			completed++
		}
	}
	if completed != 1 {
		return nil
	}
	direct, err := store.Referrals().CountByReferrer(ctx, userID, 1)
	if err != nil {
		return err
	}
	if direct < s.rules.RequiredReferrals {
		return apperr.Newf(apperr.CodeFailedPrecondition,
			"Your first plan is complete. You need %d referrals before you can withdraw, share your referral code!",
			s.rules.RequiredReferrals)
	}
	return nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID uuid.UUID, typ, status string) ([]model.Transaction, error) {
	return s.store.Transactions().List(ctx, buildFilter(&userID, typ, status))
}

func (s *walletService) ListReferrals(ctx context.Context, userID uuid.UUID) ([]model.Referral, error) {
	return s.store.Referrals().ListByReferrer(ctx, userID)
}

func buildFilter(userID *uuid.UUID, typ, status string) model.TransactionFilter {
	f := model.TransactionFilter{UserID: userID}
	if typ != "" {
		f.Types = []model.TransactionType{model.TransactionType(typ)}
	}
	if status != "" {
		f.Statuses = []model.TransactionStatus{model.TransactionStatus(status)}
	}
	return f
}
