package testutil

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/upload"
)

// Password is the plain text password of every fixture user.
const Password = "password123"

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateUser inserts an active user named name. Options run before insert.
func CreateUser(t *testing.T, store *MemStore, name string, opts ...func(*model.User)) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash fixture password: %v", err)
	}
	u := &model.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: string(hash),
		FullName:     name,
		Phone:        "9876543210",
		Role:         model.RoleUser,
		ReferralCode: "EV-" + name,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(u)
	}
	created, err := store.Users().Create(context.Background(), u)
	if err != nil {
		t.Fatalf("create fixture user %s: %v", name, err)
	}
	return created
}

func WithBalance(amount string) func(*model.User) {
	return func(u *model.User) { u.Balance = Dec(amount) }
}

func AsAdmin() func(*model.User) {
	return func(u *model.User) { u.Role = model.RoleAdmin }
}

// ReferredBy links the new user to referrer's code without creating referral rows.
func ReferredBy(referrer *model.User) func(*model.User) {
	return func(u *model.User) { u.ReferredBy = &referrer.ReferralCode }
}

// GetUser reloads a user and fails the test if it is gone.
func GetUser(t *testing.T, store *MemStore, u *model.User) *model.User {
	t.Helper()
	got, err := store.Users().GetByID(context.Background(), u.ID)
	if err != nil || got == nil {
		t.Fatalf("reload user %s: %v", u.Username, err)
	}
	return got
}

// CreatePlan inserts plan tier with amount 3000·tier paying 10% a day over 20 days.
func CreatePlan(t *testing.T, store *MemStore, tier int) *model.Plan {
	t.Helper()
	amount := decimal.NewFromInt(int64(3000 * tier))
	p := &model.Plan{
		ID:                  tier,
		Name:                fmt.Sprintf("Tier %d", tier),
		Amount:              amount,
		DailyReturn:         amount.Div(decimal.NewFromInt(10)),
		MaxWithdrawalPerDay: amount.Div(decimal.NewFromInt(10)),
		DurationDays:        20,
		Tier:                tier,
		IsActive:            true,
	}
	if err := store.Plans().Create(context.Background(), p); err != nil {
		t.Fatalf("create fixture plan: %v", err)
	}
	return p
}

// FakeUploads records saved images instead of writing them.
type FakeUploads struct {
	Saved []string
	Err   error
}

var _ upload.Store = (*FakeUploads)(nil)

func (f *FakeUploads) SaveImage(r io.Reader, prefix string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	path := fmt.Sprintf("%s%s-%d.png", upload.PublicPrefix, prefix, len(f.Saved)+1)
	f.Saved = append(f.Saved, path)
	return path, nil
}

func (f *FakeUploads) Dir() string { return "" }
