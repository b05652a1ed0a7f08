package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Referral links a referrer to a user they brought in, directly (level 1) or
// through one intermediary (level 2). CommissionRate is a percentage.
type Referral struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	ReferrerID     uuid.UUID       `db:"referrer_id" json:"referrerId"`
	ReferredUserID uuid.UUID       `db:"referred_user_id" json:"referredUserId"`
	Level          int             `db:"level" json:"level"`
	CommissionRate decimal.Decimal `db:"commission_rate" json:"commissionRate"`
	TotalEarned    decimal.Decimal `db:"total_earned" json:"totalEarned"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
}
