package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes wanaship.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID             string         `json:"user_id"`
		Name               string         `json:"name"`
		Email              string         `json:"email"`
		RegisteredAt       time.Time      `json:"registered_at"`
		RegistrationMethod string         `json:"registration_method"`
		Metadata           map[string]any `json:"metadata,omitempty"`
	}{
		UserID:             event.UserID,
		Name:               event.Name,
		Email:              event.Email,
		RegisteredAt:       event.RegisteredAt.UTC(),
		RegistrationMethod: event.RegistrationMethod,
		Metadata:           event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wanaship.user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishPasswordResetRequested publishes wanaship.user.password.reset_requested events.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		UserID      string         `json:"user_id"`
		RequestedAt time.Time      `json:"requested_at"`
		MaskedEmail string         `json:"masked_email,omitempty"`
		ExpiresAt   time.Time      `json:"expires_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		UserID:      event.UserID,
		RequestedAt: event.RequestedAt.UTC(),
		MaskedEmail: event.MaskedEmail,
		ExpiresAt:   event.ExpiresAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wanaship.user.password.reset_requested", event.UserID, event.RequestedAt, payload)
}

// PublishAccountDeleted publishes wanaship.user.deleted events.
func (p *EventPublisher) PublishAccountDeleted(ctx context.Context, event domain.AccountDeletedEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		DeletedAt    time.Time      `json:"deleted_at"`
		RecoverUntil time.Time      `json:"recover_until"`
		Reasons      []string       `json:"reasons,omitempty"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		DeletedAt:    event.DeletedAt.UTC(),
		RecoverUntil: event.RecoverUntil.UTC(),
		Reasons:      event.Reasons,
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wanaship.user.deleted", event.UserID, event.DeletedAt, payload)
}

// PublishParcelCreated publishes wanaship.parcel.created events.
func (p *EventPublisher) PublishParcelCreated(ctx context.Context, event domain.ParcelCreatedEvent) error {
	payload := struct {
		ParcelID    string         `json:"parcel_id"`
		UserID      string         `json:"user_id"`
		ReferenceID string         `json:"reference_id"`
		CreatedAt   time.Time      `json:"created_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		ParcelID:    event.ParcelID,
		UserID:      event.UserID,
		ReferenceID: event.ReferenceID,
		CreatedAt:   event.CreatedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wanaship.parcel.created", event.UserID, event.CreatedAt, payload)
}

// PublishParcelAssigned publishes wanaship.parcel.assigned events.
func (p *EventPublisher) PublishParcelAssigned(ctx context.Context, event domain.ParcelAssignedEvent) error {
	payload := struct {
		ParcelID    string         `json:"parcel_id"`
		UserID      string         `json:"user_id"`
		ReshipperID string         `json:"reshipper_id"`
		AssignedBy  string         `json:"assigned_by"`
		AssignedAt  time.Time      `json:"assigned_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		ParcelID:    event.ParcelID,
		UserID:      event.UserID,
		ReshipperID: event.ReshipperID,
		AssignedBy:  event.AssignedBy,
		AssignedAt:  event.AssignedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wanaship.parcel.assigned", event.UserID, event.AssignedAt, payload)
}

// PublishParcelStatusChanged publishes wanaship.parcel.status.changed events.
func (p *EventPublisher) PublishParcelStatusChanged(ctx context.Context, event domain.ParcelStatusChangedEvent) error {
	payload := struct {
		ParcelID       string         `json:"parcel_id"`
		UserID         string         `json:"user_id"`
		PreviousStatus string         `json:"previous_status"`
		NewStatus      string         `json:"new_status"`
		ChangedBy      string         `json:"changed_by"`
		ChangedAt      time.Time      `json:"changed_at"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		ParcelID:       event.ParcelID,
		UserID:         event.UserID,
		PreviousStatus: string(event.PreviousStatus),
		NewStatus:      string(event.NewStatus),
		ChangedBy:      event.ChangedBy,
		ChangedAt:      event.ChangedAt.UTC(),
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wanaship.parcel.status.changed", event.UserID, event.ChangedAt, payload)
}

// PublishParcelDeleted publishes wanaship.parcel.deleted events.
func (p *EventPublisher) PublishParcelDeleted(ctx context.Context, event domain.ParcelDeletedEvent) error {
	payload := struct {
		ParcelID    string         `json:"parcel_id"`
		UserID      string         `json:"user_id"`
		ReferenceID string         `json:"reference_id"`
		DeletedAt   time.Time      `json:"deleted_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		ParcelID:    event.ParcelID,
		UserID:      event.UserID,
		ReferenceID: event.ReferenceID,
		DeletedAt:   event.DeletedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wanaship.parcel.deleted", event.UserID, event.DeletedAt, payload)
}
