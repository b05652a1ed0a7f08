package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/SinaHo/investment-backend/internal/config"
)

// Rules are the ledger parameters shared by the money moving services.
type Rules struct {
	MinDeposit        decimal.Decimal
	WithdrawalFeeRate decimal.Decimal
	Level1Rate        decimal.Decimal
	Level2Rate        decimal.Decimal
	RequiredReferrals int
	PlanDays          int
}

// DefaultRules mirrors the defaults in configs/config.yaml.
func DefaultRules() Rules {
	return Rules{
		MinDeposit:        decimal.NewFromInt(100),
		WithdrawalFeeRate: decimal.RequireFromString("0.05"),
		Level1Rate:        decimal.RequireFromString("0.10"),
		Level2Rate:        decimal.RequireFromString("0.02"),
		RequiredReferrals: 2,
		PlanDays:          20,
	}
}

func RulesFromConfig(c config.LedgerConfig) (Rules, error) {
	r := Rules{RequiredReferrals: c.RequiredReferrals, PlanDays: c.DefaultPlanDays}
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"min_deposit", c.MinDeposit, &r.MinDeposit},
		{"withdrawal_fee_rate", c.WithdrawalFeeRate, &r.WithdrawalFeeRate},
		{"level1_rate", c.Level1Rate, &r.Level1Rate},
		{"level2_rate", c.Level2Rate, &r.Level2Rate},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return Rules{}, fmt.Errorf("ledger.%s: %w", f.name, err)
		}
		if d.IsNegative() {
			return Rules{}, fmt.Errorf("ledger.%s must not be negative", f.name)
		}
		*f.dst = d
	}
	if r.PlanDays <= 0 {
		r.PlanDays = 20
	}
	return r, nil
}

// Percent renders a fractional rate as the percentage stored on referral rows.
func Percent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(100)).Round(2)
}

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
