package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

var (
	// ErrAccountDisabled indicates the account has been deactivated by an
	// administrator and cannot be used regardless of deletion state.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountDeleted indicates the account's recovery window has elapsed.
	ErrAccountDeleted = errors.New("account deleted")
	// ErrAccountNotDeleted indicates recovery was requested for a live account.
	ErrAccountNotDeleted = errors.New("account is not deleted")
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// RecoveryStatus reports where a soft-deleted account sits relative to its
// recovery window.
type RecoveryStatus struct {
	// Deleted is true once the window has elapsed; the caller must reject the
	// request with an account-deleted error.
	Deleted bool
	// Warning carries the "N days left to reactivate" message while the
	// window is still open. Empty for accounts that are not soft-deleted.
	Warning string
}

// AccountService owns soft delete and recovery-window behavior for users.
type AccountService struct {
	users        port.UserRepository
	publisher    port.EventPublisher
	logger       *zap.Logger
	recoveryDays int
	now          func() time.Time
}

// NewAccountService constructs an account lifecycle service.
func NewAccountService(users port.UserRepository, publisher port.EventPublisher, recoveryDays int, logger *zap.Logger) *AccountService {
	if recoveryDays <= 0 {
		recoveryDays = 15
	}
	return &AccountService{
		users:        users,
		publisher:    publisher,
		logger:       logger,
		recoveryDays: recoveryDays,
		now:          time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	return s
}

// CheckRecoveryStatus computes the recovery state of a possibly soft-deleted
// account at the given instant.
func CheckRecoveryStatus(user domain.User, recoveryDays int, now time.Time) RecoveryStatus {
	if !user.IsDeleted || user.DeletedAt == nil {
		return RecoveryStatus{}
	}

	deadline := user.DeletedAt.AddDate(0, 0, recoveryDays)
	if now.After(deadline) {
		return RecoveryStatus{Deleted: true}
	}

	daysLeft := int(deadline.Sub(now).Hours()/24) + 1
	return RecoveryStatus{
		Warning: fmt.Sprintf("Your account is scheduled for deletion. You have %d days left to reactivate it.", daysLeft),
	}
}

// Gate rejects disabled and irrecoverably deleted accounts. Activation is
// checked before deletion state: a disabled account is rejected even inside
// its recovery window. The returned warning is non-empty for accounts still
// inside the window.
func (s *AccountService) Gate(user domain.User) (string, error) {
	if !user.IsActivated {
		return "", ErrAccountDisabled
	}

	status := CheckRecoveryStatus(user, s.recoveryDays, s.now().UTC())
	if status.Deleted {
		return "", ErrAccountDeleted
	}

	return status.Warning, nil
}

// DeleteAccount soft-deletes the user, recording the supplied reasons.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string, reasons []string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.IsDeleted {
		return nil
	}

	now := s.now().UTC()
	if err := s.users.SetDeleted(ctx, userID, true, &now, reasons); err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}

	if s.publisher != nil {
		event := domain.AccountDeletedEvent{
			UserID:       userID,
			DeletedAt:    now,
			RecoverUntil: now.AddDate(0, 0, s.recoveryDays),
			Reasons:      reasons,
		}
		if err := s.publisher.PublishAccountDeleted(ctx, event); err != nil {
			s.logger.Warn("publish account deleted event failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	return nil
}

// RecoverAccount clears the soft-delete state while the recovery window is
// still open.
func (s *AccountService) RecoverAccount(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsDeleted {
		return ErrAccountNotDeleted
	}

	status := CheckRecoveryStatus(*user, s.recoveryDays, s.now().UTC())
	if status.Deleted {
		return ErrAccountDeleted
	}

	if err := s.users.SetDeleted(ctx, userID, false, nil, nil); err != nil {
		return fmt.Errorf("recover user: %w", err)
	}

	return nil
}
