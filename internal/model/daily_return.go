package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DailyReturn struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	InvestmentID uuid.UUID       `db:"investment_id" json:"investmentId"`
	UserID       uuid.UUID       `db:"user_id" json:"userId"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	ReturnDate   time.Time       `db:"return_date" json:"returnDate"`
	Processed    bool            `db:"processed" json:"processed"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}
