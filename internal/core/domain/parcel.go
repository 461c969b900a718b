package domain

import "time"

// ParcelStatus enumerates the parcel lifecycle states.
type ParcelStatus string

const (
	ParcelStatusPending    ParcelStatus = "pending"
	ParcelStatusProcessing ParcelStatus = "processing"
	ParcelStatusReceived   ParcelStatus = "received"
	ParcelStatusApproved   ParcelStatus = "approved"
	ParcelStatusRejected   ParcelStatus = "rejected"
	ParcelStatusCancelled  ParcelStatus = "cancelled"
	ParcelStatusSent       ParcelStatus = "sent"
)

// ValidParcelStatus reports whether the supplied value is a known lifecycle state.
func ValidParcelStatus(s ParcelStatus) bool {
	switch s {
	case ParcelStatusPending, ParcelStatusProcessing, ParcelStatusReceived,
		ParcelStatusApproved, ParcelStatusRejected, ParcelStatusCancelled,
		ParcelStatusSent:
		return true
	}
	return false
}

// Parcel represents a shipment entrusted by its owner to the platform,
// optionally relayed through a reshipper.
type Parcel struct {
	ID                    string
	UserID                string
	ReshipperID           *string
	Name                  string
	Description           string
	Quantity              int
	Price                 float64
	Currency              string
	Weight                float64
	TrackingNumber        string
	ToAddressID           string
	Status                ParcelStatus
	Images                []string
	ReshipperNote         *string
	ReceivedQuantity      *int
	PurchaseDate          time.Time
	ReshipperReceivedDate *time.Time
	ReshipperSentDate     *time.Time
	DeliveredDate         *time.Time
	ReferenceID           string
	IsActive              bool
	IsDeleted             bool
	DeletedAt             *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Assigned reports whether a reshipper has been attached to the parcel.
// Assignment is one-way: a non-nil reshipper is never cleared.
func (p Parcel) Assigned() bool {
	return p.ReshipperID != nil && *p.ReshipperID != ""
}

// InHandlingWindow reports whether reshipper-controlled fields may be edited.
// The window is open for every status except pending, received and sent.
func (p Parcel) InHandlingWindow() bool {
	switch p.Status {
	case ParcelStatusPending, ParcelStatusReceived, ParcelStatusSent:
		return false
	}
	return true
}
