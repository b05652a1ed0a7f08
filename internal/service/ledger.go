package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
)

// creditDailyReturn books the n-th (zero based) return of inv. It records the
// daily_returns row, a completed daily_return transaction and bumps the
// balances on u and inv in memory; callers persist u and inv afterwards.
// It reports false when that day was already credited.
func creditDailyReturn(ctx context.Context, store repository.Store, u *model.User, inv *model.Investment, n int, now time.Time) (bool, error) {
	dr := &model.DailyReturn{
		InvestmentID: inv.ID,
		UserID:       inv.UserID,
		Amount:       inv.DailyReturn,
		ReturnDate:   inv.ReturnDate(n),
		Processed:    true,
		CreatedAt:    now,
	}
	inserted, err := store.DailyReturns().Create(ctx, dr)
	if err != nil || !inserted {
		return false, err
	}

	ref := inv.ID.String()
	if err := store.Transactions().Create(ctx, &model.Transaction{
		UserID:      inv.UserID,
		Type:        model.TxDailyReturn,
		Amount:      inv.DailyReturn,
		Status:      model.TxCompleted,
		Description: model.StrPtr(fmt.Sprintf("Daily return from investment (Day %d)", n+1)),
		Reference:   &ref,
		CreatedAt:   now,
	}); err != nil {
		return false, err
	}

	u.ProfitBalance = u.ProfitBalance.Add(inv.DailyReturn)
	u.Balance = u.Balance.Add(inv.DailyReturn)
	u.TotalProfit = u.TotalProfit.Add(inv.DailyReturn)
	inv.TotalReturned = inv.TotalReturned.Add(inv.DailyReturn)
	return true, nil
}

// payReferralCommissions credits the level 1 and level 2 referrers of u for
// a deposit of amount. Referrers that no longer exist are skipped.
func payReferralCommissions(ctx context.Context, store repository.Store, rules Rules, u *model.User, amount decimal.Decimal) error {
	refs, err := store.Referrals().ListByReferred(ctx, u.ID)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		var rate decimal.Decimal
		switch ref.Level {
		case 1:
			rate = rules.Level1Rate
		case 2:
			rate = rules.Level2Rate
		default:
			continue
		}
		commission := money(amount.Mul(rate))
		if !commission.IsPositive() {
			continue
		}

		referrer, err := store.Users().GetByIDForUpdate(ctx, ref.ReferrerID)
		if err != nil {
			return err
		}
		if referrer == nil {
			continue
		}
		referrer.Balance = referrer.Balance.Add(commission)
		if err := store.Users().Update(ctx, referrer); err != nil {
			return err
		}

		reference := "referral-" + u.ID.String()
		if err := store.Transactions().Create(ctx, &model.Transaction{
			UserID: referrer.ID,
			Type:   model.TxReferral,
			Amount: commission,
			Status: model.TxCompleted,
			Description: model.StrPtr(fmt.Sprintf("Level %d referral commission from %s's deposit (₹%s)",
				ref.Level, u.FullName, amount.StringFixed(2))),
			Reference: &reference,
		}); err != nil {
			return err
		}
		if err := store.Referrals().AddEarnings(ctx, ref.ID, commission); err != nil {
			return err
		}
	}
	return nil
}
