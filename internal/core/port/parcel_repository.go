package port

import (
	"context"
	"time"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
)

// ParcelSortField names a column the parcel listing may be ordered by.
type ParcelSortField string

const (
	ParcelSortCreatedAt      ParcelSortField = "created_at"
	ParcelSortStatus         ParcelSortField = "status"
	ParcelSortWeight         ParcelSortField = "weight"
	ParcelSortTrackingNumber ParcelSortField = "tracking_number"
)

// ParcelFilter narrows a parcel listing. OwnerID is always set by the caller;
// it is never client-supplied.
type ParcelFilter struct {
	OwnerID        string
	Status         *domain.ParcelStatus
	TrackingNumber string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	MinWeight      *float64
	MaxWeight      *float64
	Search         string
}

// ParcelSort describes the requested ordering of a parcel listing.
type ParcelSort struct {
	Field      ParcelSortField
	Descending bool
}

// ParcelPage carries one page of results plus totals for pagination metadata.
type ParcelPage struct {
	Items      []domain.Parcel
	TotalItems int
}

// ParcelUpdate carries the merged patch applied to a parcel. Nil fields are
// left untouched by the store.
type ParcelUpdate struct {
	Name                  *string
	Description           *string
	Quantity              *int
	Price                 *float64
	Weight                *float64
	TrackingNumber        *string
	ToAddressID           *string
	PurchaseDate          *time.Time
	Status                *domain.ParcelStatus
	Images                []string
	ReshipperNote         *string
	ReceivedQuantity      *int
	ReshipperReceivedDate *time.Time
	ReshipperSentDate     *time.Time
}

// IsZero reports whether the update carries no field changes.
func (u ParcelUpdate) IsZero() bool {
	return u.Name == nil && u.Description == nil && u.Quantity == nil &&
		u.Price == nil && u.Weight == nil && u.TrackingNumber == nil &&
		u.ToAddressID == nil && u.PurchaseDate == nil && u.Status == nil &&
		u.Images == nil && u.ReshipperNote == nil && u.ReceivedQuantity == nil &&
		u.ReshipperReceivedDate == nil && u.ReshipperSentDate == nil
}

// ParcelRepository exposes persistence behavior for parcels.
type ParcelRepository interface {
	Create(ctx context.Context, parcel domain.Parcel) error
	GetByID(ctx context.Context, id string) (*domain.Parcel, error)
	// ExistsDuplicate reports whether a non-deleted parcel already exists for
	// the same owner, destination address and tracking number.
	ExistsDuplicate(ctx context.Context, ownerID, toAddressID, trackingNumber string) (bool, error)
	Assign(ctx context.Context, id, reshipperID string) error
	Update(ctx context.Context, id string, update ParcelUpdate) error
	SetDeleted(ctx context.Context, id string, deletedAt time.Time) error
	List(ctx context.Context, filter ParcelFilter, sort ParcelSort, offset, limit int) (*ParcelPage, error)
}
