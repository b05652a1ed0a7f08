package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/service"
	"github.com/SinaHo/investment-backend/internal/testutil"
)

var testSecret = []byte("test-secret")

func newAuth(store *testutil.MemStore) (service.AuthService, service.TokenManager) {
	tokens := service.NewTokenManager(testSecret, time.Hour)
	return service.NewAuthService(store, tokens, service.DefaultRules()), tokens
}

func registerInput(name, code string) service.RegisterInput {
	return service.RegisterInput{
		Username:     name,
		Email:        name + "@example.com",
		Password:     "password123",
		FullName:     strings.ToUpper(name),
		Phone:        "9876543210",
		ReferralCode: code,
	}
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	auth, tokens := newAuth(store)

	res, err := auth.Register(ctx, registerInput("alice", ""))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, strings.HasPrefix(res.User.ReferralCode, "EV-"))
	assert.Len(t, res.User.ReferralCode, 11)
	assert.Equal(t, model.RoleUser, res.User.Role)
	assert.Nil(t, res.User.ReferredBy)

	// Stored hash must verify against the original password
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("password123")))

	id, claims, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestRegister_CreatesTwoLevelReferrals(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	auth, _ := newAuth(store)
	grand := testutil.CreateUser(t, store, "grand")

	parent, err := auth.Register(ctx, registerInput("parent", grand.ReferralCode))
	require.NoError(t, err)
	require.NotNil(t, parent.User.ReferredBy)
	assert.Equal(t, grand.ReferralCode, *parent.User.ReferredBy)

	child, err := auth.Register(ctx, registerInput("child", parent.User.ReferralCode))
	require.NoError(t, err)

	refs, err := store.Referrals().ListByReferred(ctx, child.User.ID)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	byLevel := map[int]model.Referral{}
	for _, r := range refs {
		byLevel[r.Level] = r
	}
	assert.Equal(t, parent.User.ID, byLevel[1].ReferrerID)
	assert.True(t, testutil.Dec("10").Equal(byLevel[1].CommissionRate))
	assert.Equal(t, grand.ID, byLevel[2].ReferrerID)
	assert.True(t, testutil.Dec("2").Equal(byLevel[2].CommissionRate))
}

func TestRegister_UnknownReferralCodeIgnored(t *testing.T) {
	store := testutil.NewMemStore()
	auth, _ := newAuth(store)

	res, err := auth.Register(context.Background(), registerInput("dora", "EV-NOPE"))
	require.NoError(t, err)
	assert.Nil(t, res.User.ReferredBy)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	auth, _ := newAuth(store)
	_, err := auth.Register(ctx, registerInput("erin", ""))
	require.NoError(t, err)

	_, err = auth.Register(ctx, registerInput("erin", ""))
	assert.Equal(t, "User already exists", apperr.Message(err, ""))

	in := registerInput("erin", "")
	in.Email = "other@example.com"
	_, err = auth.Register(ctx, in)
	assert.Equal(t, "Username already taken", apperr.Message(err, ""))

	in = registerInput("frank", "")
	in.Password = "123"
	_, err = auth.Register(ctx, in)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	auth, _ := newAuth(store)
	u := testutil.CreateUser(t, store, "gina")

	res, err := auth.Login(ctx, u.Email, testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	_, err = auth.Login(ctx, u.Email, "wrong-password")
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthenticated))
	assert.Equal(t, "Invalid credentials", apperr.Message(err, ""))

	_, err = auth.Login(ctx, "nobody@example.com", testutil.Password)
	assert.Equal(t, "Invalid credentials", apperr.Message(err, ""))

	u.IsActive = false
	require.NoError(t, store.Users().Update(ctx, u))
	_, err = auth.Login(ctx, u.Email, testutil.Password)
	assert.Equal(t, "Account is deactivated", apperr.Message(err, ""))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	auth, tokens := newAuth(store)
	u := testutil.CreateUser(t, store, "hank")
	token, err := tokens.Issue(u)
	require.NoError(t, err)

	got, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = auth.Authenticate(ctx, "")
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthenticated))

	_, err = auth.Authenticate(ctx, "not-a-jwt")
	assert.True(t, apperr.IsCode(err, apperr.CodePermissionDenied))

	u.IsActive = false
	require.NoError(t, store.Users().Update(ctx, u))
	_, err = auth.Authenticate(ctx, token)
	assert.True(t, apperr.IsCode(err, apperr.CodeAccountDisabled))

	require.NoError(t, store.Users().Delete(ctx, u.ID))
	_, err = auth.Authenticate(ctx, token)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthenticated))
}

func TestTokenManager_RejectsExpiredAndForeignTokens(t *testing.T) {
	tokens := service.NewTokenManager(testSecret, time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "123e4567-e89b-12d3-a456-426655440000",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	signed, err := expired.SignedString(testSecret)
	require.NoError(t, err)
	_, _, err = tokens.Parse(signed)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "123e4567-e89b-12d3-a456-426655440000",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err = foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, _, err = tokens.Parse(signed)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	auth, _ := newAuth(store)
	u := testutil.CreateUser(t, store, "ivy")

	err := auth.ChangePassword(ctx, u.ID, "wrong-current", "newpass1")
	assert.Equal(t, "Current password is incorrect", apperr.Message(err, ""))

	err = auth.ChangePassword(ctx, u.ID, testutil.Password, "short")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))

	require.NoError(t, auth.ChangePassword(ctx, u.ID, testutil.Password, "newpass1"))
	_, err = auth.Login(ctx, u.Email, "newpass1")
	assert.NoError(t, err)
}
