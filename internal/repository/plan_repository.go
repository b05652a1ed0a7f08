package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/SinaHo/investment-backend/internal/model"
)

type PlanRepository interface {
	List(ctx context.Context, activeOnly bool) ([]model.Plan, error)
	Get(ctx context.Context, id int) (*model.Plan, error)
	Create(ctx context.Context, p *model.Plan) error
	Count(ctx context.Context) (int, error)
}

type planRepository struct {
	db sqlx.ExtContext
}

const planColumns = `id, name, amount, daily_return, max_withdrawal_per_day, duration_days, tier, is_active, created_at`

func (r *planRepository) List(ctx context.Context, activeOnly bool) ([]model.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM investment_plans`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY tier, id`
	plans := []model.Plan{}
	if err := sqlx.SelectContext(ctx, r.db, &plans, query); err != nil {
		return nil, fmt.Errorf("error listing plans: %w", err)
	}
	return plans, nil
}

// Get returns (nil, nil) if the plan does not exist.
func (r *planRepository) Get(ctx context.Context, id int) (*model.Plan, error) {
	var p model.Plan
	err := sqlx.GetContext(ctx, r.db, &p, `SELECT `+planColumns+` FROM investment_plans WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error selecting plan: %w", err)
	}
	return &p, nil
}

func (r *planRepository) Create(ctx context.Context, p *model.Plan) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO investment_plans (` + planColumns + `)
		VALUES (:id, :name, :amount, :daily_return, :max_withdrawal_per_day, :duration_days, :tier, :is_active, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, p); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error inserting plan: %w", err)
	}
	return nil
}

func (r *planRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM investment_plans`); err != nil {
		return 0, fmt.Errorf("error counting plans: %w", err)
	}
	return n, nil
}
