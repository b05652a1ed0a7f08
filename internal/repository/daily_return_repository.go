package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/SinaHo/investment-backend/internal/model"
)

type DailyReturnRepository interface {
	// Create inserts the return unless one already exists for the same
	// investment and day; the boolean reports whether a row was written.
	Create(ctx context.Context, d *model.DailyReturn) (bool, error)
	CountByInvestment(ctx context.Context, investmentID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.DailyReturn, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type dailyReturnRepository struct {
	db sqlx.ExtContext
}

const dailyReturnColumns = `id, investment_id, user_id, amount, return_date, processed, created_at`

func (r *dailyReturnRepository) Create(ctx context.Context, d *model.DailyReturn) (bool, error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	d.ReturnDate = model.Day(d.ReturnDate)
	query := `
		INSERT INTO daily_returns (` + dailyReturnColumns + `)
		VALUES (:id, :investment_id, :user_id, :amount, :return_date, :processed, :created_at)
		ON CONFLICT (investment_id, return_date) DO NOTHING`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, d)
	if err != nil {
		return false, fmt.Errorf("error inserting daily return: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error inserting daily return: %w", err)
	}
	return n == 1, nil
}

func (r *dailyReturnRepository) CountByInvestment(ctx context.Context, investmentID uuid.UUID) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM daily_returns WHERE investment_id = $1`, investmentID); err != nil {
		return 0, fmt.Errorf("error counting daily returns: %w", err)
	}
	return n, nil
}

func (r *dailyReturnRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.DailyReturn, error) {
	out := []model.DailyReturn{}
	query := `SELECT ` + dailyReturnColumns + ` FROM daily_returns WHERE user_id = $1 ORDER BY return_date DESC`
	if err := sqlx.SelectContext(ctx, r.db, &out, query, userID); err != nil {
		return nil, fmt.Errorf("error listing daily returns: %w", err)
	}
	return out, nil
}

func (r *dailyReturnRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM daily_returns WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error deleting daily returns: %w", err)
	}
	return nil
}

func (r *dailyReturnRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM daily_returns`); err != nil {
		return fmt.Errorf("error deleting daily returns: %w", err)
	}
	return nil
}
