package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SinaHo/investment-backend/internal/model"
)

func TestInvestment_DueReturns(t *testing.T) {
	start := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)
	inv := &model.Investment{StartDate: start, DurationDays: 20}

	assert.Equal(t, 0, inv.DueReturns(start.Add(-time.Minute)))
	assert.Equal(t, 1, inv.DueReturns(start))
	assert.Equal(t, 1, inv.DueReturns(start.Add(23*time.Hour)))
	assert.Equal(t, 2, inv.DueReturns(start.Add(24*time.Hour)))
	assert.Equal(t, 20, inv.DueReturns(start.AddDate(0, 0, 19)))
	assert.Equal(t, 20, inv.DueReturns(start.AddDate(0, 2, 0)))
}

func TestInvestment_DatesAreUTCDays(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2026, 3, 2, 2, 0, 0, 0, ist) // 1 March 20:30 UTC
	inv := &model.Investment{StartDate: start, DurationDays: 20}

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), inv.ReturnDate(0))
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), inv.ReturnDate(2))
	assert.Equal(t, start.AddDate(0, 0, 20), inv.MaturesAt())
}

func TestUser_PayoutDetails(t *testing.T) {
	u := &model.User{}
	assert.False(t, u.HasUPI())
	assert.False(t, u.HasBankAccount())

	u.UPIID = model.StrPtr("someone@upi")
	u.AccountNumber = model.StrPtr("1234")
	assert.True(t, u.HasUPI())
	assert.False(t, u.HasBankAccount())

	u.IFSCCode = model.StrPtr("SBIN0000123")
	assert.True(t, u.HasBankAccount())
	assert.Nil(t, model.StrPtr(""))
}
