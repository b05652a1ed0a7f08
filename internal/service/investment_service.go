package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
)

type PurchaseResult struct {
	Success    bool              `json:"success"`
	Investment *model.Investment `json:"investment"`
	Message    string            `json:"message"`
}

type InvestmentService interface {
	ListPlans(ctx context.Context) ([]model.Plan, error)
	Purchase(ctx context.Context, userID uuid.UUID, planID int) (*PurchaseResult, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Investment, error)
	ListAll(ctx context.Context) ([]model.Investment, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) error
}

type investmentService struct {
	store repository.Store
	now   func() time.Time
}

func NewInvestmentService(store repository.Store) InvestmentService {
	return &investmentService{store: store, now: time.Now}
}

func (s *investmentService) ListPlans(ctx context.Context) ([]model.Plan, error) {
	return s.store.Plans().List(ctx, true)
}

// Purchase buys plan planID from the user's balance and credits day one.
func (s *investmentService) Purchase(ctx context.Context, userID uuid.UUID, planID int) (*PurchaseResult, error) {
	if planID <= 0 {
		return nil, apperr.Invalid("Plan ID is required")
	}
	var inv *model.Investment
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		plan, err := tx.Plans().Get(ctx, planID)
		if err != nil {
			return err
		}
		if plan == nil || !plan.IsActive {
			return apperr.NotFound("Investment plan not found")
		}

		u, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("User not found")
		}
		if u.Balance.LessThan(plan.Amount) {
			return apperr.New(apperr.CodeInsufficientFunds, "Insufficient balance")
		}

		now := s.now().UTC()
		inv = &model.Investment{
			UserID:        u.ID,
			PlanID:        plan.ID,
			Amount:        plan.Amount,
			DailyReturn:   plan.DailyReturn,
			DurationDays:  plan.DurationDays,
			TotalReturned: decimal.Zero,
			Status:        model.InvestmentActive,
			StartDate:     now,
			CreatedAt:     now,
		}
		if err := tx.Investments().Create(ctx, inv); err != nil {
			return err
		}

		u.Balance = u.Balance.Sub(plan.Amount)
		if plan.Tier > u.CurrentTier {
			u.CurrentTier = plan.Tier
		}
		ref := inv.ID.String()
		if err := tx.Transactions().Create(ctx, &model.Transaction{
			UserID:      u.ID,
			Type:        model.TxInvestment,
			Amount:      plan.Amount,
			Status:      model.TxCompleted,
			Description: model.StrPtr(fmt.Sprintf("Investment in %s", plan.Name)),
			Reference:   &ref,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		if _, err := creditDailyReturn(ctx, tx, u, inv, 0, now); err != nil {
			return err
		}
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		return tx.Investments().Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{
		Success:    true,
		Investment: inv,
		Message:    "Investment created successfully! Daily returns will start today.",
	}, nil
}

func (s *investmentService) List(ctx context.Context, userID uuid.UUID) ([]model.Investment, error) {
	return s.store.Investments().ListByUser(ctx, userID)
}

func (s *investmentService) ListAll(ctx context.Context) ([]model.Investment, error) {
	return s.store.Investments().ListAll(ctx)
}

// Cancel stops an active investment. The principal is not refunded.
func (s *investmentService) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	if reason == "" {
		reason = "Cancelled by admin"
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		inv, err := tx.Investments().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperr.NotFound("Investment not found")
		}
		if inv.Status != model.InvestmentActive {
			return apperr.Precondition("Only active investments can be cancelled")
		}
		now := s.now().UTC()
		inv.Status = model.InvestmentCancelled
		inv.EndDate = &now
		if err := tx.Investments().Update(ctx, inv); err != nil {
			return err
		}
		ref := inv.ID.String()
		return tx.Transactions().Create(ctx, &model.Transaction{
			UserID:      inv.UserID,
			Type:        model.TxInvestmentCancelled,
			Amount:      decimal.Zero,
			Status:      model.TxCompleted,
			Description: model.StrPtr("Investment cancelled: " + reason),
			Reference:   &ref,
		})
	})
}
