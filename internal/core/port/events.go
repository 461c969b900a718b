package port

import (
	"context"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus. Publishing is
// fire-and-forget relative to the triggering request; failures are logged by
// the implementation, never surfaced to callers.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishAccountDeleted(ctx context.Context, event domain.AccountDeletedEvent) error
	PublishParcelCreated(ctx context.Context, event domain.ParcelCreatedEvent) error
	PublishParcelAssigned(ctx context.Context, event domain.ParcelAssignedEvent) error
	PublishParcelStatusChanged(ctx context.Context, event domain.ParcelStatusChangedEvent) error
	PublishParcelDeleted(ctx context.Context, event domain.ParcelDeletedEvent) error
}
