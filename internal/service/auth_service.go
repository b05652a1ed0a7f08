package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/repository"
)

const minPasswordLen = 6

type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	FullName     string
	Phone        string
	ReferralCode string
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// AuthService defines business logic for authentication.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authenticate resolves a bearer token to an active user.
	Authenticate(ctx context.Context, token string) (*model.User, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

type authService struct {
	store  repository.Store
	tokens TokenManager
	rules  Rules
}

// NewAuthService constructs a new AuthService.
func NewAuthService(store repository.Store, tokens TokenManager, rules Rules) AuthService {
	return &authService{store: store, tokens: tokens, rules: rules}
}

// Register creates the user, links it to its referrers and returns a JWT.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	// 1. Basic validation
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.FullName == "" || in.Phone == "" {
		return nil, apperr.Invalid("Username, email, full name and phone are required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Invalid("Password must be at least 6 characters")
	}

	// 2. Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var created *model.User
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		// 3. Uniqueness
		if existing, err := tx.Users().GetByEmail(ctx, in.Email); err != nil {
			return err
		} else if existing != nil {
			return apperr.Invalid("User already exists")
		}
		if existing, err := tx.Users().GetByUsername(ctx, in.Username); err != nil {
			return err
		} else if existing != nil {
			return apperr.Invalid("Username already taken")
		}

		// 4. Resolve referrer; unknown codes are ignored
		var referrer *model.User
		if code := strings.TrimSpace(in.ReferralCode); code != "" {
			if referrer, err = tx.Users().GetByReferralCode(ctx, code); err != nil {
				return err
			}
		}

		// 5. Insert, retrying on a referral code collision
		u := &model.User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: string(hashed),
			FullName:     in.FullName,
			Phone:        in.Phone,
			Role:         model.RoleUser,
			IsActive:     true,
		}
		if referrer != nil {
			u.ReferredBy = &referrer.ReferralCode
		}
		if created, err = createWithReferralCode(ctx, tx, u); err != nil {
			return err
		}

		// 6. Referral rows
		if referrer == nil {
			return nil
		}
		return s.linkReferrers(ctx, tx, created, referrer)
	})
	if err != nil {
		return nil, err
	}

	// 7. Generate JWT
	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: created, Token: token}, nil
}

func (s *authService) linkReferrers(ctx context.Context, tx repository.Store, u, referrer *model.User) error {
	if err := tx.Referrals().Create(ctx, &model.Referral{
		ReferrerID:     referrer.ID,
		ReferredUserID: u.ID,
		Level:          1,
		CommissionRate: Percent(s.rules.Level1Rate),
	}); err != nil {
		return err
	}
	if referrer.ReferredBy == nil {
		return nil
	}
	upline, err := tx.Users().GetByReferralCode(ctx, *referrer.ReferredBy)
	if err != nil || upline == nil || upline.ID == u.ID {
		return err
	}
	return tx.Referrals().Create(ctx, &model.Referral{
		ReferrerID:     upline.ID,
		ReferredUserID: u.ID,
		Level:          2,
		CommissionRate: Percent(s.rules.Level2Rate),
	})
}

// NewReferralCode returns a code of the form EV-XXXXXXXX.
func NewReferralCode() string {
	return "EV-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func createWithReferralCode(ctx context.Context, store repository.Store, u *model.User) (*model.User, error) {
	for attempt := 0; attempt < 5; attempt++ {
		u.ReferralCode = NewReferralCode()
		if clash, err := store.Users().GetByReferralCode(ctx, u.ReferralCode); err != nil {
			return nil, err
		} else if clash != nil {
			continue
		}
		created, err := store.Users().Create(ctx, u)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Invalid("User already exists")
		}
		return created, err
	}
	return nil, errors.New("could not allocate a unique referral code")
}

// Login verifies email+password, then returns a fresh JWT.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperr.Invalid("Email and password are required")
	}

	// 1. Fetch user by email
	u, err := s.store.Users().GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.New(apperr.CodeUnauthenticated, "Invalid credentials")
	}

	// 2. Compare password
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.CodeUnauthenticated, "Invalid credentials")
	}
	if !u.IsActive {
		return nil, apperr.New(apperr.CodeUnauthenticated, "Account is deactivated")
	}

	// 3. Generate new JWT
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.New(apperr.CodeUnauthenticated, "Access token required")
	}
	id, _, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.New(apperr.CodePermissionDenied, "Invalid or expired token")
	}
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.New(apperr.CodeUnauthenticated, "User not found")
	}
	if !u.IsActive {
		return nil, apperr.New(apperr.CodeAccountDisabled, "Account has been suspended")
	}
	return u, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return getUser(ctx, s.store, userID)
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < minPasswordLen {
		return apperr.Invalid("New password must be at least 6 characters")
	}
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		u, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.NotFound("User not found")
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
			return apperr.Invalid("Current password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		u.PasswordHash = string(hashed)
		return tx.Users().Update(ctx, u)
	})
}

func getUser(ctx context.Context, store repository.Store, id uuid.UUID) (*model.User, error) {
	u, err := store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}
