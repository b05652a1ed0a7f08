package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "active"
	InvestmentCompleted InvestmentStatus = "completed"
	InvestmentCancelled InvestmentStatus = "cancelled"
)

type Investment struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	UserID        uuid.UUID        `db:"user_id" json:"userId"`
	PlanID        int              `db:"plan_id" json:"planId"`
	Amount        decimal.Decimal  `db:"amount" json:"amount"`
	DailyReturn   decimal.Decimal  `db:"daily_return" json:"dailyReturn"`
	DurationDays  int              `db:"duration_days" json:"durationDays"`
	TotalReturned decimal.Decimal  `db:"total_returned" json:"totalReturned"`
	Status        InvestmentStatus `db:"status" json:"status"`
	StartDate     time.Time        `db:"start_date" json:"startDate"`
	EndDate       *time.Time       `db:"end_date" json:"endDate"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
}

// MaturesAt is the instant the investment stops accruing.
func (i *Investment) MaturesAt() time.Time {
	return i.StartDate.AddDate(0, 0, i.DurationDays)
}

// DueReturns is how many daily returns should exist at now: one for the
// purchase day plus one per elapsed day, capped at the duration.
func (i *Investment) DueReturns(now time.Time) int {
	if now.Before(i.StartDate) {
		return 0
	}
	due := int(now.Sub(i.StartDate)/(24*time.Hour)) + 1
	if due > i.DurationDays {
		due = i.DurationDays
	}
	return due
}

// ReturnDate is the calendar day (UTC midnight) of the n-th return, zero based.
func (i *Investment) ReturnDate(n int) time.Time {
	return Day(i.StartDate).AddDate(0, 0, n)
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
