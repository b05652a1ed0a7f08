package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SinaHo/investment-backend/internal/config"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
)

var planNames = []string{
	"Starter", "Basic", "Silver", "Gold", "Platinum",
	"Diamond", "Elite", "Premium", "Supreme", "Ultimate",
}

// DefaultPlans returns the ten tiers: amount 3000·tier paying 10% a day.
func DefaultPlans(days int) []model.Plan {
	plans := make([]model.Plan, 0, len(planNames))
	for i, name := range planNames {
		tier := i + 1
		amount := decimal.NewFromInt(int64(3000 * tier))
		daily := amount.Div(decimal.NewFromInt(10))
		plans = append(plans, model.Plan{
			ID:                  tier,
			Name:                name + " Plan",
			Amount:              amount,
			DailyReturn:         daily,
			MaxWithdrawalPerDay: daily,
			DurationDays:        days,
			Tier:                tier,
			IsActive:            true,
		})
	}
	return plans
}

func DefaultPaymentMethods() []model.PaymentMethod {
	return []model.PaymentMethod{
		{Type: model.MethodGooglePay, Name: "Google Pay", UPIID: model.StrPtr("merchant@googlepay"),
			Instructions: model.StrPtr("Pay using Google Pay and upload screenshot"), IsActive: true, SortOrder: 1},
		{Type: model.MethodPhonePe, Name: "PhonePe", UPIID: model.StrPtr("merchant@phonepe"),
			Instructions: model.StrPtr("Pay using PhonePe and upload screenshot"), IsActive: true, SortOrder: 2},
		{Type: model.MethodPaytm, Name: "Paytm", UPIID: model.StrPtr("merchant@paytm"),
			Instructions: model.StrPtr("Pay using Paytm and upload screenshot"), IsActive: true, SortOrder: 3},
		{Type: model.MethodBankTransfer, Name: "Bank Transfer",
			BankAccountNumber: model.StrPtr("1234567890"), BankIFSC: model.StrPtr("SBIN0000123"),
			BankName: model.StrPtr("State Bank of India"), AccountHolderName: model.StrPtr("EV Investment Ltd"),
			Instructions: model.StrPtr("Transfer to bank account and upload receipt"), IsActive: true, SortOrder: 4},
	}
}

type SeedResult struct {
	Plans          int
	AdminCreated   bool
	PaymentMethods int
}

// Seeder bootstraps an empty database. Every step is skipped when its data exists.
type Seeder struct {
	store  repository.Store
	seed   config.SeedConfig
	rules  Rules
	logger *zap.SugaredLogger
}

func NewSeeder(store repository.Store, seed config.SeedConfig, rules Rules, logger *zap.SugaredLogger) *Seeder {
	return &Seeder{store: store, seed: seed, rules: rules, logger: logger}
}

func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	res := &SeedResult{}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		n, err := tx.Plans().Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			for _, p := range DefaultPlans(s.rules.PlanDays) {
				p := p
				if err := tx.Plans().Create(ctx, &p); err != nil {
					return fmt.Errorf("seed plan %d: %w", p.ID, err)
				}
				res.Plans++
			}
		}

		if res.AdminCreated, err = s.seedAdmin(ctx, tx); err != nil {
			return err
		}

		if n, err = tx.PaymentMethods().Count(ctx); err != nil {
			return err
		}
		if n == 0 {
			for _, m := range DefaultPaymentMethods() {
				m := m
				if err := tx.PaymentMethods().Create(ctx, &m); err != nil {
					return fmt.Errorf("seed payment method %s: %w", m.Name, err)
				}
				res.PaymentMethods++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("seed complete", "plans", res.Plans, "admin_created", res.AdminCreated, "payment_methods", res.PaymentMethods)
	return res, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, tx repository.Store) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(s.seed.AdminEmail))
	if email == "" || s.seed.AdminPassword == "" {
		s.logger.Warn("seed.admin_email or seed.admin_password not set, skipping admin account")
		return false, nil
	}
	existing, err := tx.Users().GetByEmail(ctx, email)
	if err != nil || existing != nil {
		return false, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(s.seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = tx.Users().Create(ctx, &model.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     "Administrator",
		Phone:        "0000000000",
		Role:         model.RoleAdmin,
		ReferralCode: "ADMIN001",
		IsActive:     true,
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
