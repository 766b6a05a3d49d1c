package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// authService implements AuthService with bcrypt password hashing.
type authService struct {
	users  UserRepository
	logger *slog.Logger
}

// NewAuthService creates an AuthService backed by the given user repository.
func NewAuthService(users UserRepository, logger *slog.Logger) (AuthService, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{users: users, logger: logger}, nil
}

func (a *authService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	if _, err := a.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:             uuid.New(),
		Email:          req.Email,
		HashedPassword: string(hash),
		IsActive:       true,
	}

	// The repository's unique constraint backstops the lookup above against
	// a concurrent registration of the same email.
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (a *authService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
