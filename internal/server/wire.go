package server

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/SinaHo/investment-backend/internal/config"
	"github.com/SinaHo/investment-backend/internal/handler"
	"github.com/SinaHo/investment-backend/internal/lock"
	"github.com/SinaHo/investment-backend/internal/repository"
	"github.com/SinaHo/investment-backend/internal/service"
	"github.com/SinaHo/investment-backend/internal/upload"
	"github.com/SinaHo/investment-backend/internal/worker"
)

// Components are the services built from one configuration.
type Components struct {
	Services handler.Services
	Worker   *worker.DailyReturns
	Seeder   *service.Seeder
	Uploads  upload.Store
}

// Wire builds repositories, services and the accrual worker. rdb may be nil,
// in which case the worker lease is process local.
func Wire(cfg *config.Config, store repository.Store, rdb *redis.Client, logger *zap.SugaredLogger) (*Components, error) {
	rules, err := service.RulesFromConfig(cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("ledger rules: %w", err)
	}
	uploads, err := upload.NewLocalStore(cfg.Uploads)
	if err != nil {
		return nil, err
	}

	tokens := service.NewTokenManager([]byte(cfg.JWT.SigningKey), cfg.JWT.TokenTTL)
	accrual := service.NewAccrualService(store, logger.Named("accrual"))
	daily := worker.NewDailyReturns(accrual, lock.New(rdb), cfg.Scheduler, logger.Named("worker"))

	return &Components{
		Services: handler.Services{
			Auth:        service.NewAuthService(store, tokens, rules),
			Investments: service.NewInvestmentService(store),
			Accrual:     accrual,
			Wallet:      service.NewWalletService(store, uploads, rules),
			Profile:     service.NewProfileService(store, uploads),
			Support:     service.NewSupportService(store),
			Payments:    service.NewPaymentService(store, uploads, logger.Named("payments")),
			Admin:       service.NewAdminService(store, rules),
			Runner:      daily,
		},
		Worker:  daily,
		Seeder:  service.NewSeeder(store, cfg.Seed, rules, logger.Named("seed")),
		Uploads: uploads,
	}, nil
}

// SeedOnStart runs the seeder when seed.on_start is set. Seeding skips data
// that already exists, so it is safe on every start.
func (c *Components) SeedOnStart(ctx context.Context, cfg config.SeedConfig) error {
	if !cfg.OnStart {
		return nil
	}
	if _, err := c.Seeder.Seed(ctx); err != nil {
		return fmt.Errorf("seed on start: %w", err)
	}
	return nil
}
