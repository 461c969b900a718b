package domain

import "time"

// UserRegisteredEvent represents the payload for wanaship.user.registered messages.
type UserRegisteredEvent struct {
	EventID            string
	UserID             string
	Name               string
	Email              string
	RegisteredAt       time.Time
	RegistrationMethod string
	Metadata           map[string]any
}

// PasswordResetRequestedEvent represents the payload for
// wanaship.user.password.reset_requested messages.
type PasswordResetRequestedEvent struct {
	EventID     string
	UserID      string
	RequestedAt time.Time
	MaskedEmail string
	ExpiresAt   time.Time
	Metadata    map[string]any
}

// AccountDeletedEvent represents the payload for wanaship.user.deleted messages.
type AccountDeletedEvent struct {
	EventID      string
	UserID       string
	DeletedAt    time.Time
	RecoverUntil time.Time
	Reasons      []string
	Metadata     map[string]any
}

// ParcelCreatedEvent represents the payload for wanaship.parcel.created messages.
type ParcelCreatedEvent struct {
	EventID     string
	ParcelID    string
	UserID      string
	ReferenceID string
	CreatedAt   time.Time
	Metadata    map[string]any
}

// ParcelAssignedEvent represents the payload for wanaship.parcel.assigned messages.
type ParcelAssignedEvent struct {
	EventID     string
	ParcelID    string
	UserID      string
	ReshipperID string
	AssignedBy  string
	AssignedAt  time.Time
	Metadata    map[string]any
}

// ParcelStatusChangedEvent represents the payload for
// wanaship.parcel.status.changed messages.
type ParcelStatusChangedEvent struct {
	EventID        string
	ParcelID       string
	UserID         string
	PreviousStatus ParcelStatus
	NewStatus      ParcelStatus
	ChangedBy      string
	ChangedAt      time.Time
	Metadata       map[string]any
}

// ParcelDeletedEvent represents the payload for wanaship.parcel.deleted messages.
type ParcelDeletedEvent struct {
	EventID     string
	ParcelID    string
	UserID      string
	ReferenceID string
	DeletedAt   time.Time
	Metadata    map[string]any
}
