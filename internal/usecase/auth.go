package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/security"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidAccessToken indicates the provided access token is malformed or
	// signature validation failed.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the provided access token has expired.
	ErrExpiredAccessToken = errors.New("access token expired")
)

// LoginResult carries the outcome of a successful authentication.
type LoginResult struct {
	Token string
	User  domain.User
	// Warning is non-empty when the account is soft-deleted but still inside
	// its recovery window.
	Warning string
}

// AuthService coordinates credential authentication and token verification.
type AuthService struct {
	users    port.UserRepository
	accounts *AccountService
	tokens   *security.TokenGenerator
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users port.UserRepository, accounts *AccountService, tokens *security.TokenGenerator, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		accounts: accounts,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login validates email and password, gates on account state, stamps the last
// login, and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	warning, err := s.accounts.Gate(*user)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.SetLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("stamp last login failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &LoginResult{Token: token, User: sanitized, Warning: warning}, nil
}

// Me loads the authenticated user's profile, applying the same account gating
// as login.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	warning, err := s.accounts.Gate(*user)
	if err != nil {
		return nil, "", err
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &sanitized, warning, nil
}

// ParseAccessToken validates the JWT access token and returns its claims.
func (s *AuthService) ParseAccessToken(token string) (*security.AccessClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidAccessToken
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, ErrExpiredAccessToken
		}
		return nil, ErrInvalidAccessToken
	}

	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrInvalidAccessToken
	}

	return claims, nil
}
