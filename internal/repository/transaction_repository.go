package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/SinaHo/investment-backend/internal/model"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *model.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	FindByReference(ctx context.Context, typ model.TransactionType, reference string) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error)
	Count(ctx context.Context, f model.TransactionFilter) (int, error)
	Sum(ctx context.Context, f model.TransactionFilter) (decimal.Decimal, error)
	Update(ctx context.Context, t *model.Transaction) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type transactionRepository struct {
	db sqlx.ExtContext
}

const transactionColumns = `id, user_id, type, amount, status, description, reference, payment_method,
	payment_screenshot, transaction_number, admin_notes, created_at, updated_at`

func (r *transactionRepository) Create(ctx context.Context, t *model.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	query := `
		INSERT INTO transactions (` + transactionColumns + `) VALUES (
			:id, :user_id, :type, :amount, :status, :description, :reference, :payment_method,
			:payment_screenshot, :transaction_number, :admin_notes, :created_at, :updated_at
		)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, t); err != nil {
		return fmt.Errorf("error inserting transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) getOne(ctx context.Context, query string, args ...any) (*model.Transaction, error) {
	var t model.Transaction
	if err := sqlx.GetContext(ctx, r.db, &t, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error selecting transaction: %w", err)
	}
	return &t, nil
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return r.getOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

func (r *transactionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return r.getOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *transactionRepository) FindByReference(ctx context.Context, typ model.TransactionType, reference string) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE type = $1 AND reference = $2 ORDER BY created_at DESC LIMIT 1`
	return r.getOne(ctx, query, typ, reference)
}

func buildTransactionWhere(f model.TransactionFilter) (string, []any) {
	var conds []string
	var args []any
	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		args = append(args, pq.Array(types))
		conds = append(conds, fmt.Sprintf("type = ANY($%d)", len(args)))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns matching transactions, newest first.
func (r *transactionRepository) List(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	where, args := buildTransactionWhere(f)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY created_at DESC`
	out := []model.Transaction{}
	if err := sqlx.SelectContext(ctx, r.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return out, nil
}

func (r *transactionRepository) Count(ctx context.Context, f model.TransactionFilter) (int, error) {
	where, args := buildTransactionWhere(f)
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM transactions`+where, args...); err != nil {
		return 0, fmt.Errorf("error counting transactions: %w", err)
	}
	return n, nil
}

func (r *transactionRepository) Sum(ctx context.Context, f model.TransactionFilter) (decimal.Decimal, error) {
	where, args := buildTransactionWhere(f)
	var total decimal.Decimal
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COALESCE(SUM(amount), 0) FROM transactions`+where, args...); err != nil {
		return decimal.Zero, fmt.Errorf("error summing transactions: %w", err)
	}
	return total, nil
}

// Update persists the reviewable fields: status and admin notes.
func (r *transactionRepository) Update(ctx context.Context, t *model.Transaction) error {
	t.UpdatedAt = time.Now().UTC()
	query := `UPDATE transactions SET status = :status, admin_notes = :admin_notes, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, t); err != nil {
		return fmt.Errorf("error updating transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error deleting transactions: %w", err)
	}
	return nil
}

func (r *transactionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("error deleting transactions: %w", err)
	}
	return nil
}
