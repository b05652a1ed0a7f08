package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/SinaHo/investment-backend/internal/model"
)

type StatsRepository interface {
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
	Detailed(ctx context.Context) (*model.DetailedStats, error)
}

type statsRepository struct {
	db sqlx.ExtContext
}

func (r *statsRepository) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	var s model.DashboardStats
	row := r.db.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'user'),
			(SELECT COALESCE(SUM(total_deposits), 0) FROM users),
			(SELECT COUNT(*) FROM transactions WHERE type = 'withdrawal' AND status = 'pending')`)
	if err := row.Scan(&s.TotalUsers, &s.TotalVolume, &s.PendingWithdrawals); err != nil {
		return nil, fmt.Errorf("error loading dashboard stats: %w", err)
	}
	return &s, nil
}

func (r *statsRepository) Detailed(ctx context.Context) (*model.DetailedStats, error) {
	var s model.DetailedStats
	row := r.db.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'user'),
			(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = 'deposit' AND status = 'approved'),
			(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = 'withdrawal' AND status = 'approved'),
			(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = 'daily_return' AND status = 'completed'),
			(SELECT COALESCE(SUM(amount), 0) FROM user_investments),
			(SELECT COUNT(*) FROM transactions WHERE type = 'deposit' AND status = 'pending'),
			(SELECT COUNT(*) FROM transactions WHERE type = 'withdrawal' AND status = 'pending'),
			(SELECT COUNT(*) FROM user_investments WHERE status = 'active'),
			(SELECT COUNT(*) FROM user_investments WHERE status = 'completed')`)
	err := row.Scan(&s.TotalUsers, &s.TotalDeposits, &s.TotalWithdrawals, &s.TotalProfits, &s.TotalInvestments,
		&s.PendingDeposits, &s.PendingWithdrawals, &s.ActiveInvestments, &s.CompletedInvestments)
	if err != nil {
		return nil, fmt.Errorf("error loading detailed stats: %w", err)
	}
	return &s, nil
}
