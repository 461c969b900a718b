package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

var addressColumns = []string{
	"id",
	"user_id",
	"label",
	"line1",
	"line2",
	"city",
	"state",
	"postal_code",
	"country",
	"phone",
	"is_default",
	"is_deleted",
	"deleted_at",
	"created_at",
	"updated_at",
}

// AddressRepository implements port.AddressRepository using PostgreSQL.
type AddressRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAddressRepository wires a PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new address row.
func (r *AddressRepository) Create(ctx context.Context, address domain.Address) error {
	query := r.builder.Insert("wanaship.addresses").
		Columns(addressColumns...).
		Values(
			address.ID,
			address.UserID,
			address.Label,
			address.Line1,
			address.Line2,
			address.City,
			address.State,
			address.PostalCode,
			address.Country,
			address.Phone,
			address.IsDefault,
			address.IsDeleted,
			address.DeletedAt,
			address.CreatedAt,
			address.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert address sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}

	return nil
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var address domain.Address

	if err := row.Scan(
		&address.ID,
		&address.UserID,
		&address.Label,
		&address.Line1,
		&address.Line2,
		&address.City,
		&address.State,
		&address.PostalCode,
		&address.Country,
		&address.Phone,
		&address.IsDefault,
		&address.IsDeleted,
		&address.DeletedAt,
		&address.CreatedAt,
		&address.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan address: %w", err)
	}

	return &address, nil
}

// GetByID retrieves an address by identifier.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	stmt, args, err := r.builder.
		Select(addressColumns...).
		From("wanaship.addresses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select address sql: %w", err)
	}

	return scanAddress(r.exec.QueryRow(ctx, stmt, args...))
}

// GetOwnedActive returns the address only when it belongs to ownerID and is
// not soft-deleted.
func (r *AddressRepository) GetOwnedActive(ctx context.Context, id, ownerID string) (*domain.Address, error) {
	stmt, args, err := r.builder.
		Select(addressColumns...).
		From("wanaship.addresses").
		Where(squirrel.Eq{
			"id":         id,
			"user_id":    ownerID,
			"is_deleted": false,
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select owned address sql: %w", err)
	}

	return scanAddress(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByUser returns the user's non-deleted addresses, default first.
func (r *AddressRepository) ListByUser(ctx context.Context, ownerID string) ([]domain.Address, error) {
	stmt, args, err := r.builder.
		Select(addressColumns...).
		From("wanaship.addresses").
		Where(squirrel.Eq{"user_id": ownerID, "is_deleted": false}).
		OrderBy("is_default DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list addresses sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]domain.Address, 0)
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *address)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}

	return addresses, nil
}

// Update modifies an existing address.
func (r *AddressRepository) Update(ctx context.Context, address domain.Address) error {
	stmt, args, err := r.builder.Update("wanaship.addresses").
		Set("label", address.Label).
		Set("line1", address.Line1).
		Set("line2", address.Line2).
		Set("city", address.City).
		Set("state", address.State).
		Set("postal_code", address.PostalCode).
		Set("country", address.Country).
		Set("phone", address.Phone).
		Set("is_default", address.IsDefault).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": address.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update address sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetDeleted soft-deletes an address. Existing parcels keep their reference.
func (r *AddressRepository) SetDeleted(ctx context.Context, id string, deletedAt time.Time) error {
	stmt, args, err := r.builder.Update("wanaship.addresses").
		Set("is_deleted", true).
		Set("deleted_at", deletedAt).
		Set("updated_at", deletedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete address sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.AddressRepository = (*AddressRepository)(nil)
