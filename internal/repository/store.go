package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// Store bundles the repositories so services can run several of them inside
// one database transaction.
type Store interface {
	Users() UserRepository
	Plans() PlanRepository
	Investments() InvestmentRepository
	Transactions() TransactionRepository
	Referrals() ReferralRepository
	DailyReturns() DailyReturnRepository
	Support() SupportRepository
	PaymentMethods() PaymentMethodRepository
	PaymentConfig() PaymentConfigRepository
	Stats() StatsRepository

	// WithTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil. Nested calls reuse the outer one.
	WithTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	db *sqlx.DB        // nil once bound to a transaction
	q  sqlx.ExtContext // *sqlx.DB or *sqlx.Tx
}

// NewStore constructs a Store backed by a sqlx.DB.
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db, q: db}
}

func (s *sqlStore) Users() UserRepository                   { return &userRepository{db: s.q} }
func (s *sqlStore) Plans() PlanRepository                   { return &planRepository{db: s.q} }
func (s *sqlStore) Investments() InvestmentRepository       { return &investmentRepository{db: s.q} }
func (s *sqlStore) Transactions() TransactionRepository     { return &transactionRepository{db: s.q} }
func (s *sqlStore) Referrals() ReferralRepository           { return &referralRepository{db: s.q} }
func (s *sqlStore) DailyReturns() DailyReturnRepository     { return &dailyReturnRepository{db: s.q} }
func (s *sqlStore) Support() SupportRepository              { return &supportRepository{db: s.q} }
func (s *sqlStore) PaymentMethods() PaymentMethodRepository { return &paymentMethodRepository{db: s.q} }
func (s *sqlStore) PaymentConfig() PaymentConfigRepository  { return &paymentConfigRepository{db: s.q} }
func (s *sqlStore) Stats() StatsRepository                  { return &statsRepository{db: s.q} }

func (s *sqlStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&sqlStore{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
