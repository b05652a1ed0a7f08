package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	Username          string          `db:"username" json:"username"`
	Email             string          `db:"email" json:"email"`
	PasswordHash      string          `db:"password_hash" json:"-"`
	FullName          string          `db:"full_name" json:"fullName"`
	Phone             string          `db:"phone" json:"phone"`
	Role              Role            `db:"role" json:"role"`
	Balance           decimal.Decimal `db:"balance" json:"balance"`
	DepositBalance    decimal.Decimal `db:"deposit_balance" json:"depositBalance"`
	ProfitBalance     decimal.Decimal `db:"profit_balance" json:"profitBalance"`
	TotalDeposits     decimal.Decimal `db:"total_deposits" json:"totalDeposits"`
	TotalWithdrawals  decimal.Decimal `db:"total_withdrawals" json:"totalWithdrawals"`
	TotalProfit       decimal.Decimal `db:"total_profit" json:"totalProfit"`
	CurrentTier       int             `db:"current_tier" json:"currentTier"`
	ReferralCode      string          `db:"referral_code" json:"referralCode"`
	ReferredBy        *string         `db:"referred_by" json:"referredBy"`
	ProfilePhoto      *string         `db:"profile_photo" json:"profilePhoto"`
	UPIID             *string         `db:"upi_id" json:"upiId"`
	AccountHolderName *string         `db:"account_holder_name" json:"accountHolderName"`
	AccountNumber     *string         `db:"account_number" json:"accountNumber"`
	IFSCCode          *string         `db:"ifsc_code" json:"ifscCode"`
	BankName          *string         `db:"bank_name" json:"bankName"`
	IsActive          bool            `db:"is_active" json:"isActive"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updatedAt"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// HasUPI reports whether the user configured a UPI payout handle.
func (u *User) HasUPI() bool { return nonEmpty(u.UPIID) }

// HasBankAccount reports whether the user configured bank payout details.
func (u *User) HasBankAccount() bool { return nonEmpty(u.AccountNumber) && nonEmpty(u.IFSCCode) }

func nonEmpty(s *string) bool { return s != nil && *s != "" }

// StrPtr returns nil for the empty string.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
