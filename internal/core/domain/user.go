package domain

import "time"

// Role enumerates the account roles recognised by the platform.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleReshipper Role = "reshipper"
)

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	AuthProviderLocal   AuthProvider = "local"
	AuthProviderGoogle  AuthProvider = "google"
	AuthProviderDiscord AuthProvider = "discord"
)

// Preferences holds per-user display settings.
type Preferences struct {
	Currency string `json:"currency"`
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// NotificationSettings controls which channels a user receives notifications on.
type NotificationSettings struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// User mirrors the persisted representation in the users table.
type User struct {
	ID                      string
	Name                    string
	Email                   string
	EmailVerified           bool
	PasswordHash            string
	Role                    Role
	IsActivated             bool
	AuthProvider            AuthProvider
	GoogleID                *string
	DiscordID               *string
	AvatarURL               *string
	LastLogin               *time.Time
	ResetPasswordOTP        *string
	ResetPasswordOTPExpires *time.Time
	IsDeleted               bool
	DeletedAt               *time.Time
	DeletionReasons         []string
	Preferences             Preferences
	NotificationSettings    NotificationSettings
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// DefaultPreferences returns the settings applied to freshly registered accounts.
func DefaultPreferences() Preferences {
	return Preferences{Currency: "USD", Language: "en", Theme: "light"}
}

// DefaultNotificationSettings enables all channels for new accounts.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{Email: true, Push: true}
}
