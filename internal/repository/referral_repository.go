package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/SinaHo/investment-backend/internal/model"
)

type ReferralRepository interface {
	Create(ctx context.Context, ref *model.Referral) error
	Get(ctx context.Context, referrerID, referredUserID uuid.UUID) (*model.Referral, error)
	ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]model.Referral, error)
	ListByReferred(ctx context.Context, referredUserID uuid.UUID) ([]model.Referral, error)
	CountByReferrer(ctx context.Context, referrerID uuid.UUID, level int) (int, error)
	AddEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type referralRepository struct {
	db sqlx.ExtContext
}

const referralColumns = `id, referrer_id, referred_user_id, level, commission_rate, total_earned, created_at`

func (r *referralRepository) Create(ctx context.Context, ref *model.Referral) error {
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO referrals (` + referralColumns + `)
		VALUES (:id, :referrer_id, :referred_user_id, :level, :commission_rate, :total_earned, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, ref); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error inserting referral: %w", err)
	}
	return nil
}

func (r *referralRepository) Get(ctx context.Context, referrerID, referredUserID uuid.UUID) (*model.Referral, error) {
	var ref model.Referral
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE referrer_id = $1 AND referred_user_id = $2`
	if err := sqlx.GetContext(ctx, r.db, &ref, query, referrerID, referredUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error selecting referral: %w", err)
	}
	return &ref, nil
}

func (r *referralRepository) list(ctx context.Context, where string, id uuid.UUID) ([]model.Referral, error) {
	out := []model.Referral{}
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE ` + where + ` ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, r.db, &out, query, id); err != nil {
		return nil, fmt.Errorf("error listing referrals: %w", err)
	}
	return out, nil
}

func (r *referralRepository) ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]model.Referral, error) {
	return r.list(ctx, "referrer_id = $1", referrerID)
}

func (r *referralRepository) ListByReferred(ctx context.Context, referredUserID uuid.UUID) ([]model.Referral, error) {
	return r.list(ctx, "referred_user_id = $1", referredUserID)
}

func (r *referralRepository) CountByReferrer(ctx context.Context, referrerID uuid.UUID, level int) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM referrals WHERE referrer_id = $1 AND level = $2`
	if err := sqlx.GetContext(ctx, r.db, &n, query, referrerID, level); err != nil {
		return 0, fmt.Errorf("error counting referrals: %w", err)
	}
	return n, nil
}

func (r *referralRepository) AddEarnings(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `UPDATE referrals SET total_earned = total_earned + $2 WHERE id = $1`, id, amount)
	if err != nil {
		return fmt.Errorf("error updating referral earnings: %w", err)
	}
	return nil
}

// DeleteByUser removes referrals on both sides of the relation.
func (r *referralRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM referrals WHERE referrer_id = $1 OR referred_user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error deleting referrals: %w", err)
	}
	return nil
}

func (r *referralRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM referrals`); err != nil {
		return fmt.Errorf("error deleting referrals: %w", err)
	}
	return nil
}
