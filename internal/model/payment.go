package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethodType string

const (
	MethodGooglePay    PaymentMethodType = "google_pay"
	MethodPhonePe      PaymentMethodType = "phone_pe"
	MethodPaytm        PaymentMethodType = "paytm"
	MethodBankTransfer PaymentMethodType = "bank_transfer"
)

func (t PaymentMethodType) Valid() bool {
	switch t {
	case MethodGooglePay, MethodPhonePe, MethodPaytm, MethodBankTransfer:
		return true
	}
	return false
}

// PaymentMethod is a deposit channel configured by admins.
type PaymentMethod struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	Type              PaymentMethodType `db:"type" json:"type"`
	Name              string            `db:"name" json:"name"`
	UPIID             *string           `db:"upi_id" json:"upiId"`
	QRCodeURL         *string           `db:"qr_code_url" json:"qrCodeUrl"`
	BankAccountNumber *string           `db:"bank_account_number" json:"bankAccountNumber"`
	BankIFSC          *string           `db:"bank_ifsc" json:"bankIfsc"`
	BankName          *string           `db:"bank_name" json:"bankName"`
	AccountHolderName *string           `db:"account_holder_name" json:"accountHolderName"`
	Instructions      *string           `db:"instructions" json:"instructions"`
	IsActive          bool              `db:"is_active" json:"isActive"`
	SortOrder         int               `db:"sort_order" json:"sortOrder"`
	CreatedAt         time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updatedAt"`
}

// PaymentConfig is the singleton deposit configuration row.
type PaymentConfig struct {
	ID                  int       `db:"id" json:"id"`
	UPIID               *string   `db:"upi_id" json:"upiId"`
	QRCodeURL           *string   `db:"qr_code_url" json:"qrCodeUrl"`
	BankAccountNumber   *string   `db:"bank_account_number" json:"bankAccountNumber"`
	BankIFSC            *string   `db:"bank_ifsc" json:"bankIfsc"`
	BankName            *string   `db:"bank_name" json:"bankName"`
	AccountHolderName   *string   `db:"account_holder_name" json:"accountHolderName"`
	DepositInstructions *string   `db:"deposit_instructions" json:"depositInstructions"`
	IsActive            bool      `db:"is_active" json:"isActive"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}
