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

type PaymentMethodRepository interface {
	List(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error)
	Get(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error)
	Create(ctx context.Context, m *model.PaymentMethod) error
	Update(ctx context.Context, m *model.PaymentMethod) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int, error)
}

type PaymentConfigRepository interface {
	// Get returns the singleton row, or (nil, nil) before it is first saved.
	Get(ctx context.Context) (*model.PaymentConfig, error)
	Upsert(ctx context.Context, c *model.PaymentConfig) error
}

type paymentMethodRepository struct {
	db sqlx.ExtContext
}

const paymentMethodColumns = `id, type, name, upi_id, qr_code_url, bank_account_number, bank_ifsc, bank_name,
	account_holder_name, instructions, is_active, sort_order, created_at, updated_at`

func (r *paymentMethodRepository) List(ctx context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`
	out := []model.PaymentMethod{}
	if err := sqlx.SelectContext(ctx, r.db, &out, query); err != nil {
		return nil, fmt.Errorf("error listing payment methods: %w", err)
	}
	return out, nil
}

func (r *paymentMethodRepository) Get(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	if err := sqlx.GetContext(ctx, r.db, &m, `SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error selecting payment method: %w", err)
	}
	return &m, nil
}

func (r *paymentMethodRepository) Create(ctx context.Context, m *model.PaymentMethod) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	query := `
		INSERT INTO payment_methods (` + paymentMethodColumns + `) VALUES (
			:id, :type, :name, :upi_id, :qr_code_url, :bank_account_number, :bank_ifsc, :bank_name,
			:account_holder_name, :instructions, :is_active, :sort_order, :created_at, :updated_at
		)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, m); err != nil {
		return fmt.Errorf("error inserting payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodRepository) Update(ctx context.Context, m *model.PaymentMethod) error {
	m.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE payment_methods SET
			type = :type, name = :name, upi_id = :upi_id, qr_code_url = :qr_code_url,
			bank_account_number = :bank_account_number, bank_ifsc = :bank_ifsc, bank_name = :bank_name,
			account_holder_name = :account_holder_name, instructions = :instructions,
			is_active = :is_active, sort_order = :sort_order, updated_at = :updated_at
		WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, m); err != nil {
		return fmt.Errorf("error updating payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting payment method: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error deleting payment method: %w", err)
	}
	return n > 0, nil
}

func (r *paymentMethodRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM payment_methods`); err != nil {
		return 0, fmt.Errorf("error counting payment methods: %w", err)
	}
	return n, nil
}

type paymentConfigRepository struct {
	db sqlx.ExtContext
}

const paymentConfigColumns = `id, upi_id, qr_code_url, bank_account_number, bank_ifsc, bank_name,
	account_holder_name, deposit_instructions, is_active, updated_at`

func (r *paymentConfigRepository) Get(ctx context.Context) (*model.PaymentConfig, error) {
	var c model.PaymentConfig
	if err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+paymentConfigColumns+` FROM payment_config WHERE id = 1`); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error selecting payment config: %w", err)
	}
	return &c, nil
}

func (r *paymentConfigRepository) Upsert(ctx context.Context, c *model.PaymentConfig) error {
	c.ID = 1
	c.UpdatedAt = time.Now().UTC()
	query := `
		INSERT INTO payment_config (` + paymentConfigColumns + `) VALUES (
			:id, :upi_id, :qr_code_url, :bank_account_number, :bank_ifsc, :bank_name,
			:account_holder_name, :deposit_instructions, :is_active, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			upi_id = EXCLUDED.upi_id, qr_code_url = EXCLUDED.qr_code_url,
			bank_account_number = EXCLUDED.bank_account_number, bank_ifsc = EXCLUDED.bank_ifsc,
			bank_name = EXCLUDED.bank_name, account_holder_name = EXCLUDED.account_holder_name,
			deposit_instructions = EXCLUDED.deposit_instructions, is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, c); err != nil {
		return fmt.Errorf("error saving payment config: %w", err)
	}
	return nil
}
