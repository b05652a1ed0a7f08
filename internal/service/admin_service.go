package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
	"github.com/SinaHo/investment-backend/internal/upload"
)

// UserContact is the slice of a user the review screen needs.
type UserContact struct {
	FullName          string          `json:"fullName"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	UPIID             *string         `json:"upiId"`
	AccountHolderName *string         `json:"accountHolderName"`
	AccountNumber     *string         `json:"accountNumber"`
	IFSCCode          *string         `json:"ifscCode"`
	BankName          *string         `json:"bankName"`
	ReferralCode      string          `json:"referralCode"`
	Balance           decimal.Decimal `json:"balance"`
}

// PayoutDetails carries only the fields of the chosen payout channel.
type PayoutDetails struct {
	Method            string  `json:"method"`
	UPIID             *string `json:"upiId"`
	AccountNumber     *string `json:"accountNumber"`
	IFSCCode          *string `json:"ifscCode"`
	BankName          *string `json:"bankName"`
	AccountHolderName *string `json:"accountHolderName"`
}

type AdminTransaction struct {
	model.Transaction
	UserDetails          *UserContact   `json:"userDetails"`
	PaymentMethodDetails *PayoutDetails `json:"paymentMethodDetails"`
}

type UserDetails struct {
	User         *model.User         `json:"user"`
	Transactions []model.Transaction `json:"transactions"`
	Investments  []model.Investment  `json:"investments"`
	Referrals    []model.Referral    `json:"referrals"`
}

// UserUpdate holds the admin editable fields; nil means unchanged.
type UserUpdate struct {
	Username          *string `json:"username"`
	Email             *string `json:"email"`
	FullName          *string `json:"fullName"`
	Phone             *string `json:"phone"`
	UPIID             *string `json:"upiId"`
	AccountHolderName *string `json:"accountHolderName"`
	AccountNumber     *string `json:"accountNumber"`
	IFSCCode          *string `json:"ifscCode"`
	BankName          *string `json:"bankName"`
}

type AdminService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	UserDetails(ctx context.Context, id uuid.UUID) (*UserDetails, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in UserUpdate) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteUser(ctx context.Context, actorID, id uuid.UUID) error
	AddBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.User, error)

	ListTransactions(ctx context.Context, typ, status string) ([]AdminTransaction, error)
	ReviewTransaction(ctx context.Context, id uuid.UUID, status, notes string) (*model.Transaction, error)

	Dashboard(ctx context.Context) (*model.DashboardStats, error)
	DashboardDetailed(ctx context.Context) (*model.DetailedStats, error)
	ResetDatabase(ctx context.Context) error
}

type adminService struct {
	store repository.Store
	rules Rules
}

func NewAdminService(store repository.Store, rules Rules) AdminService {
	return &adminService{store: store, rules: rules}
}

func (s *adminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.store.Users().List(ctx)
}

func (s *adminService) UserDetails(ctx context.Context, id uuid.UUID) (*UserDetails, error) {
	u, err := getUser(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions().List(ctx, model.TransactionFilter{UserID: &id})
	if err != nil {
		return nil, err
	}
	invs, err := s.store.Investments().ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	refs, err := s.store.Referrals().ListByReferred(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserDetails{User: u, Transactions: txs, Investments: invs, Referrals: refs}, nil
}

func (s *adminService) UpdateUser(ctx context.Context, id uuid.UUID, in UserUpdate) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		u, err := tx.Users().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("User not found")
		}
		setString(&u.Username, in.Username)
		setString(&u.Email, in.Email)
		setString(&u.FullName, in.FullName)
		setString(&u.Phone, in.Phone)
		setOptional(&u.UPIID, in.UPIID)
		setOptional(&u.AccountHolderName, in.AccountHolderName)
		setOptional(&u.AccountNumber, in.AccountNumber)
		setOptional(&u.IFSCCode, in.IFSCCode)
		setOptional(&u.BankName, in.BankName)
		return tx.Users().Update(ctx, u)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Conflict("Username or email already in use")
	}
	return err
}

func setString(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = strings.TrimSpace(*v)
	}
}

func setOptional(dst **string, v *string) {
	if v != nil {
		*dst = model.StrPtr(strings.TrimSpace(*v))
	}
}

func (s *adminService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		u, err := tx.Users().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("User not found")
		}
		u.IsActive = active
		return tx.Users().Update(ctx, u)
	})
}

// DeleteUser removes the user and everything that references it.
func (s *adminService) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return apperr.Precondition("You cannot delete your own account")
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		u, err := tx.Users().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("User not found")
		}
		steps := []func(context.Context, uuid.UUID) error{
			tx.DailyReturns().DeleteByUser,
			tx.Transactions().DeleteByUser,
			tx.Investments().DeleteByUser,
			tx.Referrals().DeleteByUser,
			tx.Support().DeleteByUser,
			tx.Users().Delete,
		}
		for _, step := range steps {
			if err := step(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *adminService) AddBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.User, error) {
	if !amount.IsPositive() {
		return nil, apperr.Invalid("Valid amount is required")
	}
	amount = money(amount)
	var out *model.User
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		u, err := tx.Users().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("User not found")
		}
		u.Balance = u.Balance.Add(amount)
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		out = u
		return tx.Transactions().Create(ctx, &model.Transaction{
			UserID:      u.ID,
			Type:        model.TxAdminCredit,
			Amount:      amount,
			Status:      model.TxCompleted,
			Description: model.StrPtr(fmt.Sprintf("Balance added by admin: ₹%s", amount.StringFixed(2))),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListTransactions lists deposits and withdrawals for review, newest first.
func (s *adminService) ListTransactions(ctx context.Context, typ, status string) ([]AdminTransaction, error) {
	f := buildFilter(nil, typ, status)
	reviewable := []model.TransactionType{model.TxDeposit, model.TxWithdrawal}
	if len(f.Types) == 0 {
		f.Types = reviewable
	} else if !contains(reviewable, f.Types[0]) {
		return []AdminTransaction{}, nil
	}
	txs, err := s.store.Transactions().List(ctx, f)
	if err != nil {
		return nil, err
	}

	users := map[uuid.UUID]*model.User{}
	out := make([]AdminTransaction, 0, len(txs))
	for _, t := range txs {
		u, ok := users[t.UserID]
		if !ok {
			if u, err = s.store.Users().GetByID(ctx, t.UserID); err != nil {
				return nil, err
			}
			users[t.UserID] = u
		}
		if t.PaymentScreenshot != nil {
			t.PaymentScreenshot = model.StrPtr(upload.PublicURL(*t.PaymentScreenshot))
		}
		out = append(out, AdminTransaction{
			Transaction:          t,
			UserDetails:          contactOf(u),
			PaymentMethodDetails: payoutOf(t.PaymentMethod, u),
		})
	}
	return out, nil
}

func contains[T comparable](items []T, v T) bool {
	for _, x := range items {
		if x == v {
			return true
		}
	}
	return false
}

func contactOf(u *model.User) *UserContact {
	if u == nil {
		return nil
	}
	return &UserContact{
		FullName: u.FullName, Email: u.Email, Phone: u.Phone,
		UPIID: u.UPIID, AccountHolderName: u.AccountHolderName, AccountNumber: u.AccountNumber,
		IFSCCode: u.IFSCCode, BankName: u.BankName, ReferralCode: u.ReferralCode, Balance: u.Balance,
	}
}

func payoutOf(method *string, u *model.User) *PayoutDetails {
	if method == nil {
		return nil
	}
	d := &PayoutDetails{Method: *method}
	if u == nil {
		return d
	}
	switch *method {
	case PayoutUPI:
		d.UPIID = u.UPIID
	case PayoutBank:
		d.AccountNumber, d.IFSCCode = u.AccountNumber, u.IFSCCode
		d.BankName, d.AccountHolderName = u.BankName, u.AccountHolderName
	}
	return d
}

// ReviewTransaction approves or rejects a pending deposit or withdrawal and
// applies its balance effects in the same database transaction.
func (s *adminService) ReviewTransaction(ctx context.Context, id uuid.UUID, status, notes string) (*model.Transaction, error) {
	next := model.TransactionStatus(status)
	if next != model.TxApproved && next != model.TxRejected {
		return nil, apperr.Invalid("Invalid status")
	}
	notes = strings.TrimSpace(notes)
	if next == model.TxRejected && len([]rune(notes)) < 5 {
		return nil, apperr.Invalid("Rejection reason is required and must be at least 5 characters")
	}

	var out *model.Transaction
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		t, err := tx.Transactions().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFound("Transaction not found")
		}
		if t.Type != model.TxDeposit && t.Type != model.TxWithdrawal {
			return apperr.Precondition("Only deposits and withdrawals can be reviewed")
		}
		if t.Status != model.TxPending {
			return apperr.Newf(apperr.CodeFailedPrecondition, "Transaction is already %s", t.Status)
		}

		t.Status = next
		t.AdminNotes = model.StrPtr(notes)
		if err := tx.Transactions().Update(ctx, t); err != nil {
			return err
		}
		out = t

		switch {
		case next == model.TxApproved && t.Type == model.TxDeposit:
			return s.approveDeposit(ctx, tx, t)
		case next == model.TxApproved && t.Type == model.TxWithdrawal:
			return s.approveWithdrawal(ctx, tx, t)
		case next == model.TxRejected && t.Type == model.TxWithdrawal:
			return rejectWithdrawalFee(ctx, tx, t, notes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *adminService) approveDeposit(ctx context.Context, tx repository.Store, t *model.Transaction) error {
	u, err := tx.Users().GetByIDForUpdate(ctx, t.UserID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("User not found")
	}
	// The deposit under review is already approved, so one means first.
	approved, err := tx.Transactions().Count(ctx, model.TransactionFilter{
		UserID:   &u.ID,
		Types:    []model.TransactionType{model.TxDeposit},
		Statuses: []model.TransactionStatus{model.TxApproved},
	})
	if err != nil {
		return err
	}

	u.DepositBalance = u.DepositBalance.Add(t.Amount)
	u.Balance = u.Balance.Add(t.Amount)
	u.TotalDeposits = u.TotalDeposits.Add(t.Amount)
	if err := tx.Users().Update(ctx, u); err != nil {
		return err
	}
	if approved == 1 {
		return payReferralCommissions(ctx, tx, s.rules, u, t.Amount)
	}
	return nil
}

func (s *adminService) approveWithdrawal(ctx context.Context, tx repository.Store, t *model.Transaction) error {
	u, err := tx.Users().GetByIDForUpdate(ctx, t.UserID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.NotFound("User not found")
	}
	if u.Balance.LessThan(t.Amount) {
		return apperr.New(apperr.CodeInsufficientFunds, "User balance is insufficient for this withdrawal")
	}
	u.Balance = u.Balance.Sub(t.Amount)
	u.ProfitBalance = decimal.Max(decimal.Zero, u.ProfitBalance.Sub(t.Amount))
	u.TotalWithdrawals = u.TotalWithdrawals.Add(t.Amount)
	return tx.Users().Update(ctx, u)
}

func rejectWithdrawalFee(ctx context.Context, tx repository.Store, t *model.Transaction, notes string) error {
	fee, err := tx.Transactions().FindByReference(ctx, model.TxWithdrawalFee, t.ID.String())
	if err != nil || fee == nil {
		return err
	}
	fee.Status = model.TxRejected
	fee.AdminNotes = model.StrPtr(notes)
	return tx.Transactions().Update(ctx, fee)
}

func (s *adminService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	return s.store.Stats().Dashboard(ctx)
}

func (s *adminService) DashboardDetailed(ctx context.Context) (*model.DetailedStats, error) {
	return s.store.Stats().Detailed(ctx)
}

// ResetDatabase clears all activity but keeps user accounts with zeroed balances.
func (s *adminService) ResetDatabase(ctx context.Context) error {
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		steps := []func(context.Context) error{
			tx.DailyReturns().DeleteAll,
			tx.Transactions().DeleteAll,
			tx.Investments().DeleteAll,
			tx.Referrals().DeleteAll,
			tx.Support().DeleteAll,
			tx.Users().ResetBalances,
		}
		for _, step := range steps {
			if err := step(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
