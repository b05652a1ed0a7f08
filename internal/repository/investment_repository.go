package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SinaHo/investment-backend/internal/model"
)

type InvestmentRepository interface {
	Create(ctx context.Context, inv *model.Investment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Investment, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Investment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Investment, error)
	ListAll(ctx context.Context) ([]model.Investment, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	Update(ctx context.Context, inv *model.Investment) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type investmentRepository struct {
	db sqlx.ExtContext
}

const investmentColumns = `id, user_id, plan_id, amount, daily_return, duration_days, total_returned,
	status, start_date, end_date, created_at`

func (r *investmentRepository) Create(ctx context.Context, inv *model.Investment) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO user_investments (` + investmentColumns + `) VALUES (
			:id, :user_id, :plan_id, :amount, :daily_return, :duration_days, :total_returned,
			:status, :start_date, :end_date, :created_at
		)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, inv); err != nil {
		return fmt.Errorf("error inserting investment: %w", err)
	}
	return nil
}

func (r *investmentRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*model.Investment, error) {
	var inv model.Investment
	if err := sqlx.GetContext(ctx, r.db, &inv, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error selecting investment: %w", err)
	}
	return &inv, nil
}

func (r *investmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Investment, error) {
	return r.getOne(ctx, `SELECT `+investmentColumns+` FROM user_investments WHERE id = $1`, id)
}

func (r *investmentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Investment, error) {
	return r.getOne(ctx, `SELECT `+investmentColumns+` FROM user_investments WHERE id = $1 FOR UPDATE`, id)
}

func (r *investmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Investment, error) {
	out := []model.Investment{}
	query := `SELECT ` + investmentColumns + ` FROM user_investments WHERE user_id = $1 ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, r.db, &out, query, userID); err != nil {
		return nil, fmt.Errorf("error listing investments: %w", err)
	}
	return out, nil
}

func (r *investmentRepository) ListAll(ctx context.Context) ([]model.Investment, error) {
	out := []model.Investment{}
	query := `SELECT ` + investmentColumns + ` FROM user_investments ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, r.db, &out, query); err != nil {
		return nil, fmt.Errorf("error listing investments: %w", err)
	}
	return out, nil
}

// ListActiveIDs returns the ids of active investments, oldest first.
func (r *investmentRepository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	query := `SELECT id FROM user_investments WHERE status = $1 ORDER BY start_date`
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, model.InvestmentActive); err != nil {
		return nil, fmt.Errorf("error listing active investments: %w", err)
	}
	return ids, nil
}

func (r *investmentRepository) Update(ctx context.Context, inv *model.Investment) error {
	query := `
		UPDATE user_investments SET
			total_returned = :total_returned, status = :status, end_date = :end_date
		WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, inv); err != nil {
		return fmt.Errorf("error updating investment: %w", err)
	}
	return nil
}

func (r *investmentRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_investments WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error deleting investments: %w", err)
	}
	return nil
}

func (r *investmentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_investments`); err != nil {
		return fmt.Errorf("error deleting investments: %w", err)
	}
	return nil
}
