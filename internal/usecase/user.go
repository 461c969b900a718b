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

// ErrWrongPassword indicates the supplied current password did not match.
var ErrWrongPassword = errors.New("current password incorrect")

// UserService covers profile updates for the logged-in user.
type UserService struct {
	users        port.UserRepository
	registration *RegistrationService
	logger       *zap.Logger
	now          func() time.Time
}

// NewUserService constructs a profile service. The registration service is
// used to re-run email verification after an address change.
func NewUserService(users port.UserRepository, registration *RegistrationService, logger *zap.Logger) *UserService {
	return &UserService{
		users:        users,
		registration: registration,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

func (s *UserService) load(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// UpdateName changes the display name.
func (s *UserService) UpdateName(ctx context.Context, userID, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if len(name) < minNameLength || len(name) > maxNameLength {
		return nil, validationError("name must be between %d and %d characters", minNameLength, maxNameLength)
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if err := s.users.Update(ctx, *user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdateEmail changes the address and resets verification. A fresh
// verification code is mailed to the new address.
func (s *UserService) UpdateEmail(ctx context.Context, userID, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationError("a valid email is required")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != userID {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Email = email
	user.EmailVerified = false
	if err := s.users.Update(ctx, *user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if s.registration != nil {
		if err := s.registration.RequestEmailVerification(ctx, userID); err != nil {
			s.logger.Warn("request email verification failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash, s.now().UTC()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}
