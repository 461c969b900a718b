package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

// ErrAddressNotFound indicates the address does not exist, is soft-deleted,
// or belongs to another user.
var ErrAddressNotFound = errors.New("address not found")

// AddressInput carries the client-supplied fields for create and update.
type AddressInput struct {
	Label      string
	Line1      string
	Line2      *string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      *string
	IsDefault  bool
}

func (in AddressInput) validate() error {
	if strings.TrimSpace(in.Line1) == "" {
		return validationError("address line is required")
	}
	if strings.TrimSpace(in.City) == "" {
		return validationError("city is required")
	}
	if strings.TrimSpace(in.Country) == "" {
		return validationError("country is required")
	}
	return nil
}

// AddressService covers the owner-scoped address book.
type AddressService struct {
	addresses port.AddressRepository
	now       func() time.Time
}

// NewAddressService constructs an address book service.
func NewAddressService(addresses port.AddressRepository) *AddressService {
	return &AddressService{addresses: addresses, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *AddressService) WithClock(now func() time.Time) *AddressService {
	s.now = now
	return s
}

// Create adds an address to the user's book.
func (s *AddressService) Create(ctx context.Context, ownerID string, in AddressInput) (*domain.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	address := domain.Address{
		ID:         uuid.NewString(),
		UserID:     ownerID,
		Label:      strings.TrimSpace(in.Label),
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      in.Line2,
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
		Phone:      in.Phone,
		IsDefault:  in.IsDefault,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	return &address, nil
}

// List returns the user's non-deleted addresses.
func (s *AddressService) List(ctx context.Context, ownerID string) ([]domain.Address, error) {
	addresses, err := s.addresses.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

// Get returns a single owned, non-deleted address.
func (s *AddressService) Get(ctx context.Context, ownerID, addressID string) (*domain.Address, error) {
	address, err := s.addresses.GetOwnedActive(ctx, addressID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("lookup address: %w", err)
	}
	return address, nil
}

// Update replaces the mutable fields of an owned address.
func (s *AddressService) Update(ctx context.Context, ownerID, addressID string, in AddressInput) (*domain.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	address, err := s.Get(ctx, ownerID, addressID)
	if err != nil {
		return nil, err
	}

	address.Label = strings.TrimSpace(in.Label)
	address.Line1 = strings.TrimSpace(in.Line1)
	address.Line2 = in.Line2
	address.City = strings.TrimSpace(in.City)
	address.State = strings.TrimSpace(in.State)
	address.PostalCode = strings.TrimSpace(in.PostalCode)
	address.Country = strings.TrimSpace(in.Country)
	address.Phone = in.Phone
	address.IsDefault = in.IsDefault

	if err := s.addresses.Update(ctx, *address); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	return address, nil
}

// Delete soft-deletes an owned address. Parcels already pointing at it keep
// their reference.
func (s *AddressService) Delete(ctx context.Context, ownerID, addressID string) error {
	if _, err := s.Get(ctx, ownerID, addressID); err != nil {
		return err
	}

	if err := s.addresses.SetDeleted(ctx, addressID, s.now().UTC()); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}

	return nil
}
