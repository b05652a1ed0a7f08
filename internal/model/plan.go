package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a fixed (amount, daily return, duration) offer users can buy repeatedly.
type Plan struct {
	ID                  int             `db:"id" json:"id"`
	Name                string          `db:"name" json:"name"`
	Amount              decimal.Decimal `db:"amount" json:"amount"`
	DailyReturn         decimal.Decimal `db:"daily_return" json:"dailyReturn"`
	MaxWithdrawalPerDay decimal.Decimal `db:"max_withdrawal_per_day" json:"maxWithdrawalPerDay"`
	DurationDays        int             `db:"duration_days" json:"durationDays"`
	Tier                int             `db:"tier" json:"tier"`
	IsActive            bool            `db:"is_active" json:"isActive"`
	CreatedAt           time.Time       `db:"created_at" json:"createdAt"`
}
