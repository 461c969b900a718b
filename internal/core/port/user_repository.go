package port

import (
	"context"
	"time"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error)
	Update(ctx context.Context, user domain.User) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error
	SetResetOTP(ctx context.Context, id string, otpHash *string, expiresAt *time.Time) error
	SetLastLogin(ctx context.Context, id string, at time.Time) error
	SetDeleted(ctx context.Context, id string, deleted bool, deletedAt *time.Time, reasons []string) error
}
