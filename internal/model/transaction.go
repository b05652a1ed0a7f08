package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxDeposit             TransactionType = "deposit"
	TxWithdrawal          TransactionType = "withdrawal"
	TxWithdrawalFee       TransactionType = "withdrawal_fee"
	TxInvestment          TransactionType = "investment"
	TxDailyReturn         TransactionType = "daily_return"
	TxReferral            TransactionType = "referral"
	TxAdminCredit         TransactionType = "admin_credit"
	TxInvestmentCompleted TransactionType = "investment_completed"
	TxInvestmentCancelled TransactionType = "investment_cancelled"
)

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxApproved  TransactionStatus = "approved"
	TxRejected  TransactionStatus = "rejected"
	TxCompleted TransactionStatus = "completed"
)

type Transaction struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	UserID            uuid.UUID         `db:"user_id" json:"userId"`
	Type              TransactionType   `db:"type" json:"type"`
	Amount            decimal.Decimal   `db:"amount" json:"amount"`
	Status            TransactionStatus `db:"status" json:"status"`
	Description       *string           `db:"description" json:"description"`
	Reference         *string           `db:"reference" json:"reference"`
	PaymentMethod     *string           `db:"payment_method" json:"paymentMethod"`
	PaymentScreenshot *string           `db:"payment_screenshot" json:"paymentScreenshot"`
	TransactionNumber *string           `db:"transaction_number" json:"transactionNumber"`
	AdminNotes        *string           `db:"admin_notes" json:"adminNotes"`
	CreatedAt         time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updatedAt"`
}

// TransactionFilter narrows transaction listings. Zero fields match everything.
type TransactionFilter struct {
	UserID   *uuid.UUID
	Types    []TransactionType
	Statuses []TransactionStatus
}
