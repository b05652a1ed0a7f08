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

// UserRepository defines the methods we need for storing and retrieving users.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByReferralCode(ctx context.Context, code string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	ResetBalances(ctx context.Context) error
}

type userRepository struct {
	db sqlx.ExtContext
}

const userColumns = `id, username, email, password_hash, full_name, phone, role,
	balance, deposit_balance, profit_balance, total_deposits, total_withdrawals, total_profit,
	current_tier, referral_code, referred_by, profile_photo, upi_id, account_holder_name,
	account_number, ifsc_code, bank_name, is_active, created_at, updated_at`

// Create inserts a new User into PostgreSQL.
// It fills in a new UUID and the timestamps when they are unset.
func (r *userRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if u.CurrentTier == 0 {
		u.CurrentTier = 1
	}

	query := `
		INSERT INTO users (` + userColumns + `) VALUES (
			:id, :username, :email, :password_hash, :full_name, :phone, :role,
			:balance, :deposit_balance, :profit_balance, :total_deposits, :total_withdrawals, :total_profit,
			:current_tier, :referral_code, :referred_by, :profile_photo, :upi_id, :account_holder_name,
			:account_number, :ifsc_code, :bank_name, :is_active, :created_at, :updated_at
		)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, u); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}
	return u, nil
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	if err := sqlx.GetContext(ctx, r.db, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error selecting user: %w", err)
	}
	return &u, nil
}

// GetByID fetches a user row by id. Returns (nil, nil) if not found.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByIDForUpdate is GetByID holding a row lock until the transaction ends.
func (r *userRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, "id = $1 FOR UPDATE", id)
}

// GetByEmail fetches a user row by its email. Returns (nil, nil) if not found.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*model.User, error) {
	return r.getOne(ctx, "referral_code = $1", code)
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, r.db, &users, query); err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// Update writes every mutable column of u.
func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE users SET
			username = :username, email = :email, password_hash = :password_hash,
			full_name = :full_name, phone = :phone, role = :role,
			balance = :balance, deposit_balance = :deposit_balance, profit_balance = :profit_balance,
			total_deposits = :total_deposits, total_withdrawals = :total_withdrawals, total_profit = :total_profit,
			current_tier = :current_tier, referral_code = :referral_code, referred_by = :referred_by,
			profile_photo = :profile_photo, upi_id = :upi_id, account_holder_name = :account_holder_name,
			account_number = :account_number, ifsc_code = :ifsc_code, bank_name = :bank_name,
			is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, u); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	return nil
}

// ResetBalances zeroes every money column and tier for all users.
func (r *userRepository) ResetBalances(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			balance = 0, deposit_balance = 0, profit_balance = 0,
			total_deposits = 0, total_withdrawals = 0, total_profit = 0,
			current_tier = 1, updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("error resetting balances: %w", err)
	}
	return nil
}
