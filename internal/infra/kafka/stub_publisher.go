package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
)

// StubEventPublisher logs events instead of sending them. Used when no Kafka
// brokers are configured so the rest of the app keeps working unchanged.
type StubEventPublisher struct {
	logger *zap.Logger
}

// NewStubEventPublisher constructs a logging-only event publisher.
func NewStubEventPublisher(logger *zap.Logger) *StubEventPublisher {
	return &StubEventPublisher{logger: logger}
}

func (p *StubEventPublisher) log(eventType string, fields ...zap.Field) {
	p.logger.Info("event publish skipped, kafka disabled",
		append([]zap.Field{zap.String("event_type", eventType)}, fields...)...)
}

func (p *StubEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.log("wanaship.user.registered", zap.String("user_id", event.UserID))
	return nil
}

func (p *StubEventPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	p.log("wanaship.user.password.reset_requested", zap.String("user_id", event.UserID))
	return nil
}

func (p *StubEventPublisher) PublishAccountDeleted(_ context.Context, event domain.AccountDeletedEvent) error {
	p.log("wanaship.user.deleted", zap.String("user_id", event.UserID))
	return nil
}

func (p *StubEventPublisher) PublishParcelCreated(_ context.Context, event domain.ParcelCreatedEvent) error {
	p.log("wanaship.parcel.created",
		zap.String("user_id", event.UserID),
		zap.String("parcel_id", event.ParcelID))
	return nil
}

func (p *StubEventPublisher) PublishParcelAssigned(_ context.Context, event domain.ParcelAssignedEvent) error {
	p.log("wanaship.parcel.assigned",
		zap.String("user_id", event.UserID),
		zap.String("parcel_id", event.ParcelID),
		zap.String("reshipper_id", event.ReshipperID))
	return nil
}

func (p *StubEventPublisher) PublishParcelStatusChanged(_ context.Context, event domain.ParcelStatusChangedEvent) error {
	p.log("wanaship.parcel.status.changed",
		zap.String("user_id", event.UserID),
		zap.String("parcel_id", event.ParcelID),
		zap.String("new_status", string(event.NewStatus)))
	return nil
}

func (p *StubEventPublisher) PublishParcelDeleted(_ context.Context, event domain.ParcelDeletedEvent) error {
	p.log("wanaship.parcel.deleted",
		zap.String("user_id", event.UserID),
		zap.String("parcel_id", event.ParcelID))
	return nil
}
