package port

import (
	"context"
	"time"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
)

// AddressRepository exposes persistence behavior for addresses.
type AddressRepository interface {
	Create(ctx context.Context, address domain.Address) error
	GetByID(ctx context.Context, id string) (*domain.Address, error)
	// GetOwnedActive returns the address only when it belongs to ownerID and
	// is not soft-deleted.
	GetOwnedActive(ctx context.Context, id, ownerID string) (*domain.Address, error)
	ListByUser(ctx context.Context, ownerID string) ([]domain.Address, error)
	Update(ctx context.Context, address domain.Address) error
	SetDeleted(ctx context.Context, id string, deletedAt time.Time) error
}
