package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
)

// AccrualSummary reports one ProcessDailyReturns run.
type AccrualSummary struct {
	Processed      int             `json:"processed"`
	Credited       int             `json:"credited"`
	CreditedAmount decimal.Decimal `json:"creditedAmount"`
	Completed      int             `json:"completed"`
	Failed         int             `json:"failed"`
}

type AccrualService interface {
	// ProcessDailyReturns credits every missing daily return up to now and
	// completes matured investments. Safe to run repeatedly.
	ProcessDailyReturns(ctx context.Context, now time.Time) (*AccrualSummary, error)
	ListDailyReturns(ctx context.Context, userID uuid.UUID) ([]model.DailyReturn, error)
}

type accrualService struct {
	store  repository.Store
	logger *zap.SugaredLogger
}

func NewAccrualService(store repository.Store, logger *zap.SugaredLogger) AccrualService {
	return &accrualService{store: store, logger: logger}
}

func (s *accrualService) ProcessDailyReturns(ctx context.Context, now time.Time) (*AccrualSummary, error) {
	ids, err := s.store.Investments().ListActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active investments: %w", err)
	}

	sum := &AccrualSummary{CreditedAmount: decimal.Zero}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		credited, amount, completed, err := s.processOne(ctx, id, now)
		sum.Processed++
		if err != nil {
			sum.Failed++
			s.logger.Errorw("daily return failed", "investment_id", id, "error", err)
			continue
		}
		sum.Credited += credited
		sum.CreditedAmount = sum.CreditedAmount.Add(amount)
		if completed {
			sum.Completed++
		}
	}
	return sum, nil
}

func (s *accrualService) processOne(ctx context.Context, id uuid.UUID, now time.Time) (credited int, amount decimal.Decimal, completed bool, err error) {
	amount = decimal.Zero
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		inv, err := tx.Investments().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil || inv.Status != model.InvestmentActive {
			return nil
		}
		due := inv.DueReturns(now)
		matured := !now.Before(inv.MaturesAt())
		paid, err := tx.DailyReturns().CountByInvestment(ctx, inv.ID)
		if err != nil {
			return err
		}
		if paid >= due && !matured {
			return nil
		}

		u, err := tx.Users().GetByIDForUpdate(ctx, inv.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("owner %s of investment %s not found", inv.UserID, inv.ID)
		}

		for n := 0; n < due; n++ {
			ok, err := creditDailyReturn(ctx, tx, u, inv, n, now)
			if err != nil {
				return err
			}
			if ok {
				credited++
				amount = amount.Add(inv.DailyReturn)
			}
		}

		if matured {
			end := inv.MaturesAt()
			inv.Status = model.InvestmentCompleted
			inv.EndDate = &end
			completed = true
			ref := inv.ID.String()
			if err := tx.Transactions().Create(ctx, &model.Transaction{
				UserID: inv.UserID,
				Type:   model.TxInvestmentCompleted,
				Amount: decimal.Zero,
				Status: model.TxCompleted,
				Description: model.StrPtr(fmt.Sprintf(
					"Investment plan completed. Original amount (₹%s) is retained by platform.", inv.Amount.StringFixed(2))),
				Reference: &ref,
			}); err != nil {
				return err
			}
		}

		if credited == 0 && !completed {
			return nil
		}
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		return tx.Investments().Update(ctx, inv)
	})
	if err != nil {
		return 0, decimal.Zero, false, err
	}
	return credited, amount, completed, nil
}

func (s *accrualService) ListDailyReturns(ctx context.Context, userID uuid.UUID) ([]model.DailyReturn, error) {
	return s.store.DailyReturns().ListByUser(ctx, userID)
}
