package domain

import "time"

// Address is a delivery destination owned by a single user. Parcels reference
// addresses by ID; soft-deleted addresses are never accepted for new parcels.
type Address struct {
	ID         string
	UserID     string
	Label      string
	Line1      string
	Line2      *string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      *string
	IsDefault  bool
	IsDeleted  bool
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
