package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/job-board/internal/config"
	"github.com/jonathan/job-board/internal/db"
	"github.com/jonathan/job-board/internal/types"
)

// UserStore is the account persistence UserService needs.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
}

var _ UserStore = (*db.DB)(nil)

// UserService signs accounts up and in.
type UserService struct {
	db             UserStore
	passwordConfig *config.PasswordConfig
}

func NewUserService(store UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             store,
		passwordConfig: passwordConfig,
	}
}

// accountFromDB drops everything but the public account fields.
func accountFromDB(u *db.User) *types.Account {
	if u == nil {
		return nil
	}
	return &types.Account{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates an account. The request is normalized first, so callers
// that skipped validation still store a trimmed, lower-cased email.
func (s *UserService) Register(ctx context.Context, req *types.SignUpRequest) (*types.Account, error) {
	req.Normalize()

	exists, err := s.db.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailTaken{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The unique index still catches a sign-up that raced the check above.
	u, err := s.db.CreateUser(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, &ErrEmailTaken{Email: req.Email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return accountFromDB(u), nil
}

// Login checks the credentials. Unknown emails, accounts without a password
// and wrong passwords all return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req *types.SignInRequest) (*types.Account, error) {
	req.Normalize()

	u, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if u == nil || !u.PasswordSet {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, u.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	return accountFromDB(u), nil
}

// Me returns the account behind an authenticated request.
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*types.Account, error) {
	u, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, &ErrAccountNotFound{UserID: userID}
	}
	return accountFromDB(u), nil
}
