package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

var userColumns = []string{
	"id",
	"name",
	"email",
	"email_verified",
	"password_hash",
	"role",
	"is_activated",
	"auth_provider",
	"google_id",
	"discord_id",
	"avatar_url",
	"last_login",
	"reset_password_otp",
	"reset_password_otp_expires",
	"is_deleted",
	"deleted_at",
	"deletion_reasons",
	"preferences",
	"notification_settings",
	"created_at",
	"updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	notifications, err := json.Marshal(user.NotificationSettings)
	if err != nil {
		return fmt.Errorf("marshal notification settings: %w", err)
	}

	query := r.builder.Insert("wanaship.users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Name,
			user.Email,
			user.EmailVerified,
			user.PasswordHash,
			user.Role,
			user.IsActivated,
			user.AuthProvider,
			user.GoogleID,
			user.DiscordID,
			user.AvatarURL,
			user.LastLogin,
			user.ResetPasswordOTP,
			user.ResetPasswordOTPExpires,
			user.IsDeleted,
			user.DeletedAt,
			user.DeletionReasons,
			prefs,
			notifications,
			user.CreatedAt,
			user.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user          domain.User
		email         sql.NullString
		prefs         []byte
		notifications []byte
	)

	if err := row.Scan(
		&user.ID,
		&user.Name,
		&email,
		&user.EmailVerified,
		&user.PasswordHash,
		&user.Role,
		&user.IsActivated,
		&user.AuthProvider,
		&user.GoogleID,
		&user.DiscordID,
		&user.AvatarURL,
		&user.LastLogin,
		&user.ResetPasswordOTP,
		&user.ResetPasswordOTPExpires,
		&user.IsDeleted,
		&user.DeletedAt,
		&user.DeletionReasons,
		&prefs,
		&notifications,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if email.Valid {
		user.Email = email.String
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &user.Preferences); err != nil {
			return nil, fmt.Errorf("unmarshal preferences: %w", err)
		}
	}
	if len(notifications) > 0 {
		if err := json.Unmarshal(notifications, &user.NotificationSettings); err != nil {
			return nil, fmt.Errorf("unmarshal notification settings: %w", err)
		}
	}

	return &user, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("wanaship.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("wanaship.users").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by email sql: %w", err)
	}

	return scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByProviderID retrieves a user by OAuth provider identity.
func (r *UserRepository) GetByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	var column string
	switch provider {
	case domain.AuthProviderGoogle:
		column = "google_id"
	case domain.AuthProviderDiscord:
		column = "discord_id"
	default:
		return nil, fmt.Errorf("unsupported auth provider %q", provider)
	}

	stmt, args, err := r.builder.
		Select(userColumns...).
		From("wanaship.users").
		Where(squirrel.Eq{column: providerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by provider sql: %w", err)
	}

	return scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// Update modifies an existing user's profile fields.
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	notifications, err := json.Marshal(user.NotificationSettings)
	if err != nil {
		return fmt.Errorf("marshal notification settings: %w", err)
	}

	stmt, args, err := r.builder.Update("wanaship.users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("email_verified", user.EmailVerified).
		Set("role", user.Role).
		Set("is_activated", user.IsActivated).
		Set("auth_provider", user.AuthProvider).
		Set("google_id", user.GoogleID).
		Set("discord_id", user.DiscordID).
		Set("avatar_url", user.AvatarURL).
		Set("preferences", prefs).
		Set("notification_settings", notifications).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword updates a user's password hash and bump timestamp.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error {
	stmt, args, err := r.builder.Update("wanaship.users").
		Set("password_hash", passwordHash).
		Set("updated_at", changedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetResetOTP stores or clears the password-reset code hash and its expiry.
func (r *UserRepository) SetResetOTP(ctx context.Context, id string, otpHash *string, expiresAt *time.Time) error {
	stmt, args, err := r.builder.Update("wanaship.users").
		Set("reset_password_otp", otpHash).
		Set("reset_password_otp_expires", expiresAt).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set reset otp sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set reset otp: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetLastLogin stamps the most recent successful authentication.
func (r *UserRepository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	stmt, args, err := r.builder.Update("wanaship.users").
		Set("last_login", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set last login sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set last login: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetDeleted flips the soft-delete flag. Recovery passes deleted=false with a
// nil timestamp and reasons to clear the prior deletion state.
func (r *UserRepository) SetDeleted(ctx context.Context, id string, deleted bool, deletedAt *time.Time, reasons []string) error {
	stmt, args, err := r.builder.Update("wanaship.users").
		Set("is_deleted", deleted).
		Set("deleted_at", deletedAt).
		Set("deletion_reasons", reasons).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set deleted sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set deleted: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.UserRepository = (*UserRepository)(nil)
