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

var parcelColumns = []string{
	"id",
	"user_id",
	"reshipper_id",
	"name",
	"description",
	"quantity",
	"price",
	"currency",
	"weight",
	"tracking_number",
	"to_address_id",
	"status",
	"images",
	"reshipper_note",
	"received_quantity",
	"purchase_date",
	"reshipper_received_date",
	"reshipper_sent_date",
	"delivered_date",
	"reference_id",
	"is_active",
	"is_deleted",
	"deleted_at",
	"created_at",
	"updated_at",
}

// ParcelRepository implements port.ParcelRepository using PostgreSQL.
type ParcelRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewParcelRepository wires a PostgreSQL-backed parcel repository.
func NewParcelRepository(pool *pgxpool.Pool) *ParcelRepository {
	return &ParcelRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ParcelRepository) WithTx(tx pgx.Tx) *ParcelRepository {
	if tx == nil {
		return r
	}
	return &ParcelRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new parcel row.
func (r *ParcelRepository) Create(ctx context.Context, parcel domain.Parcel) error {
	query := r.builder.Insert("wanaship.parcels").
		Columns(parcelColumns...).
		Values(
			parcel.ID,
			parcel.UserID,
			parcel.ReshipperID,
			parcel.Name,
			parcel.Description,
			parcel.Quantity,
			parcel.Price,
			parcel.Currency,
			parcel.Weight,
			parcel.TrackingNumber,
			parcel.ToAddressID,
			parcel.Status,
			parcel.Images,
			parcel.ReshipperNote,
			parcel.ReceivedQuantity,
			parcel.PurchaseDate,
			parcel.ReshipperReceivedDate,
			parcel.ReshipperSentDate,
			parcel.DeliveredDate,
			parcel.ReferenceID,
			parcel.IsActive,
			parcel.IsDeleted,
			parcel.DeletedAt,
			parcel.CreatedAt,
			parcel.UpdatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert parcel sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert parcel: %w", err)
	}

	return nil
}

func scanParcel(row pgx.Row) (*domain.Parcel, error) {
	var parcel domain.Parcel

	if err := row.Scan(
		&parcel.ID,
		&parcel.UserID,
		&parcel.ReshipperID,
		&parcel.Name,
		&parcel.Description,
		&parcel.Quantity,
		&parcel.Price,
		&parcel.Currency,
		&parcel.Weight,
		&parcel.TrackingNumber,
		&parcel.ToAddressID,
		&parcel.Status,
		&parcel.Images,
		&parcel.ReshipperNote,
		&parcel.ReceivedQuantity,
		&parcel.PurchaseDate,
		&parcel.ReshipperReceivedDate,
		&parcel.ReshipperSentDate,
		&parcel.DeliveredDate,
		&parcel.ReferenceID,
		&parcel.IsActive,
		&parcel.IsDeleted,
		&parcel.DeletedAt,
		&parcel.CreatedAt,
		&parcel.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan parcel: %w", err)
	}

	return &parcel, nil
}

// GetByID retrieves a parcel by identifier.
func (r *ParcelRepository) GetByID(ctx context.Context, id string) (*domain.Parcel, error) {
	stmt, args, err := r.builder.
		Select(parcelColumns...).
		From("wanaship.parcels").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select parcel sql: %w", err)
	}

	return scanParcel(r.exec.QueryRow(ctx, stmt, args...))
}

// ExistsDuplicate reports whether a non-deleted parcel already exists for the
// same owner, destination address and tracking number.
func (r *ParcelRepository) ExistsDuplicate(ctx context.Context, ownerID, toAddressID, trackingNumber string) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From("wanaship.parcels").
		Where(squirrel.Eq{
			"user_id":         ownerID,
			"to_address_id":   toAddressID,
			"tracking_number": trackingNumber,
			"is_deleted":      false,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build duplicate check sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check duplicate parcel: %w", err)
	}

	return true, nil
}

// Assign attaches a reshipper to the parcel.
func (r *ParcelRepository) Assign(ctx context.Context, id, reshipperID string) error {
	stmt, args, err := r.builder.Update("wanaship.parcels").
		Set("reshipper_id", reshipperID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build assign parcel sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("assign parcel: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Update applies the supplied patch. Nil fields are left untouched.
func (r *ParcelRepository) Update(ctx context.Context, id string, update port.ParcelUpdate) error {
	query := r.builder.Update("wanaship.parcels").
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id})

	if update.Name != nil {
		query = query.Set("name", *update.Name)
	}
	if update.Description != nil {
		query = query.Set("description", *update.Description)
	}
	if update.Quantity != nil {
		query = query.Set("quantity", *update.Quantity)
	}
	if update.Price != nil {
		query = query.Set("price", *update.Price)
	}
	if update.Weight != nil {
		query = query.Set("weight", *update.Weight)
	}
	if update.TrackingNumber != nil {
		query = query.Set("tracking_number", *update.TrackingNumber)
	}
	if update.ToAddressID != nil {
		query = query.Set("to_address_id", *update.ToAddressID)
	}
	if update.PurchaseDate != nil {
		query = query.Set("purchase_date", *update.PurchaseDate)
	}
	if update.Status != nil {
		query = query.Set("status", *update.Status)
	}
	if update.Images != nil {
		query = query.Set("images", update.Images)
	}
	if update.ReshipperNote != nil {
		query = query.Set("reshipper_note", *update.ReshipperNote)
	}
	if update.ReceivedQuantity != nil {
		query = query.Set("received_quantity", *update.ReceivedQuantity)
	}
	if update.ReshipperReceivedDate != nil {
		query = query.Set("reshipper_received_date", *update.ReshipperReceivedDate)
	}
	if update.ReshipperSentDate != nil {
		query = query.Set("reshipper_sent_date", *update.ReshipperSentDate)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build update parcel sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update parcel: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetDeleted soft-deletes a parcel.
func (r *ParcelRepository) SetDeleted(ctx context.Context, id string, deletedAt time.Time) error {
	stmt, args, err := r.builder.Update("wanaship.parcels").
		Set("is_deleted", true).
		Set("is_active", false).
		Set("deleted_at", deletedAt).
		Set("updated_at", deletedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete parcel sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete parcel: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func parcelFilterConditions(filter port.ParcelFilter) []squirrel.Sqlizer {
	conditions := []squirrel.Sqlizer{
		squirrel.Eq{"user_id": filter.OwnerID},
		squirrel.Eq{"is_deleted": false},
	}

	if filter.Status != nil {
		conditions = append(conditions, squirrel.Eq{"status": *filter.Status})
	}
	if filter.TrackingNumber != "" {
		conditions = append(conditions, squirrel.ILike{"tracking_number": "%" + filter.TrackingNumber + "%"})
	}
	if filter.CreatedFrom != nil {
		conditions = append(conditions, squirrel.GtOrEq{"created_at": *filter.CreatedFrom})
	}
	if filter.CreatedTo != nil {
		conditions = append(conditions, squirrel.LtOrEq{"created_at": *filter.CreatedTo})
	}
	if filter.MinWeight != nil {
		conditions = append(conditions, squirrel.GtOrEq{"weight": *filter.MinWeight})
	}
	if filter.MaxWeight != nil {
		conditions = append(conditions, squirrel.LtOrEq{"weight": *filter.MaxWeight})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
			squirrel.ILike{"tracking_number": pattern},
			squirrel.ILike{"reference_id": pattern},
		})
	}

	return conditions
}

// List returns a page of the owner's parcels plus the total match count.
func (r *ParcelRepository) List(ctx context.Context, filter port.ParcelFilter, sort port.ParcelSort, offset, limit int) (*port.ParcelPage, error) {
	conditions := parcelFilterConditions(filter)

	countQuery := r.builder.Select("COUNT(*)").From("wanaship.parcels")
	for _, cond := range conditions {
		countQuery = countQuery.Where(cond)
	}

	countStmt, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count parcels sql: %w", err)
	}

	var total int64
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("scan parcels count: %w", err)
	}

	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}

	query := r.builder.Select(parcelColumns...).
		From("wanaship.parcels").
		OrderBy(fmt.Sprintf("%s %s", sort.Field, direction))
	for _, cond := range conditions {
		query = query.Where(cond)
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list parcels sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query parcels: %w", err)
	}
	defer rows.Close()

	parcels := make([]domain.Parcel, 0)
	for rows.Next() {
		parcel, err := scanParcel(rows)
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, *parcel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parcels: %w", err)
	}

	return &port.ParcelPage{Items: parcels, TotalItems: int(total)}, nil
}

var _ port.ParcelRepository = (*ParcelRepository)(nil)
