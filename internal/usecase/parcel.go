package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/telemetry"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

const (
	minParcelNameLength = 3
	maxParcelNameLength = 50
	maxDescriptionLen   = 500

	defaultPageSize = 20
	maxPageSize     = 100

	referenceIDLength  = 6
	referenceIDCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var (
	// ErrParcelNotFound indicates the parcel is absent or soft-deleted.
	ErrParcelNotFound = errors.New("parcel not found")
	// ErrUnauthorizedUpdate indicates the actor is neither owner, assigned
	// reshipper, nor admin.
	ErrUnauthorizedUpdate = errors.New("not allowed to update this parcel")
	// ErrUpdateNotAllowed indicates the parcel's current status forbids the
	// requested field changes.
	ErrUpdateNotAllowed = errors.New("update not allowed in current status")
	// ErrInvalidStatusUpdate indicates a status value the acting branch may
	// never set (received via the reshipper path).
	ErrInvalidStatusUpdate = errors.New("invalid status update")
	// ErrInvalidAddress indicates the destination address failed validation.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrParcelAlreadyAssigned indicates the parcel already has a reshipper.
	ErrParcelAlreadyAssigned = errors.New("parcel already assigned")
	// ErrInvalidReshipper indicates the target user is absent or does not hold
	// the reshipper role.
	ErrInvalidReshipper = errors.New("invalid reshipper")
	// ErrParcelExists indicates a non-deleted parcel with the same owner,
	// address and tracking number already exists.
	ErrParcelExists = errors.New("parcel already exists")
	// ErrParcelAlreadyDeleted indicates the parcel was soft-deleted earlier.
	ErrParcelAlreadyDeleted = errors.New("parcel already deleted")
	// ErrParcelReshipping indicates a parcel assigned to a reshipper and not
	// yet received cannot be deleted.
	ErrParcelReshipping = errors.New("parcel is being reshipped")
)

// CreateParcelInput carries the client-supplied fields for parcel creation.
type CreateParcelInput struct {
	Name           string
	Description    string
	Quantity       int
	Price          float64
	Currency       string
	Weight         float64
	TrackingNumber string
	ToAddressID    string
	PurchaseDate   time.Time
}

// OwnerPatch carries the content fields the owner may change while the parcel
// is still pending. Nil fields are untouched.
type OwnerPatch struct {
	Name           *string
	Description    *string
	Quantity       *int
	Price          *float64
	Weight         *float64
	TrackingNumber *string
	ToAddressID    *string
	PurchaseDate   *time.Time
}

func (p *OwnerPatch) hasContent() bool {
	if p == nil {
		return false
	}
	return p.Name != nil || p.Description != nil || p.Quantity != nil ||
		p.Price != nil || p.Weight != nil || p.TrackingNumber != nil ||
		p.ToAddressID != nil || p.PurchaseDate != nil
}

// ReshipperPatch carries the fields the assigned reshipper may change during
// the handling window.
type ReshipperPatch struct {
	Images           []string
	Note             *string
	ReceivedQuantity *int
}

func (p *ReshipperPatch) hasContent() bool {
	if p == nil {
		return false
	}
	return p.Images != nil || p.Note != nil || p.ReceivedQuantity != nil
}

// StatusPatch requests a lifecycle transition. TrackingNumber is honored only
// when the new status is sent.
type StatusPatch struct {
	Value          domain.ParcelStatus
	TrackingNumber *string
}

// UpdateParcelInput is the typed union of the three patch variants. Any
// combination may be present in one call.
type UpdateParcelInput struct {
	Owner     *OwnerPatch
	Reshipper *ReshipperPatch
	Status    *StatusPatch
}

// ParcelListOptions carries filters, sort, and pagination for listing.
type ParcelListOptions struct {
	Status         string
	TrackingNumber string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	MinWeight      *float64
	MaxWeight      *float64
	Search         string
	SortBy         string
	SortOrder      string
	Page           int
	Limit          int
}

// Pagination is the page metadata returned alongside listing results.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// ParcelList is one page of parcels plus pagination metadata.
type ParcelList struct {
	Items      []domain.Parcel
	Pagination Pagination
}

// ParcelService implements the parcel lifecycle: creation, assignment, the
// role-sensitive update flow, soft deletion, and listing.
type ParcelService struct {
	parcels   port.ParcelRepository
	addresses port.AddressRepository
	users     port.UserRepository
	publisher port.EventPublisher
	metrics   *telemetry.Provider
	logger    *zap.Logger
	now       func() time.Time
}

// NewParcelService constructs a parcel workflow service.
func NewParcelService(
	parcels port.ParcelRepository,
	addresses port.AddressRepository,
	users port.UserRepository,
	publisher port.EventPublisher,
	metrics *telemetry.Provider,
	logger *zap.Logger,
) *ParcelService {
	return &ParcelService{
		parcels:   parcels,
		addresses: addresses,
		users:     users,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *ParcelService) WithClock(now func() time.Time) *ParcelService {
	s.now = now
	return s
}

func validateParcelName(name string) error {
	if len(name) < minParcelNameLength || len(name) > maxParcelNameLength {
		return validationError("name must be between %d and %d characters", minParcelNameLength, maxParcelNameLength)
	}
	return nil
}

func validatePurchaseDate(date, now time.Time) error {
	if date.IsZero() {
		return validationError("purchase date is required")
	}
	if date.After(now) {
		return validationError("purchase date cannot be in the future")
	}
	return nil
}

func (s *ParcelService) validateCreate(in CreateParcelInput) error {
	if err := validateParcelName(strings.TrimSpace(in.Name)); err != nil {
		return err
	}
	if len(in.Description) > maxDescriptionLen {
		return validationError("description must be at most %d characters", maxDescriptionLen)
	}
	if in.Quantity < 1 {
		return validationError("quantity must be at least 1")
	}
	if in.Price <= 0 {
		return validationError("price must be a positive number")
	}
	if in.Weight < 0 {
		return validationError("weight cannot be negative")
	}
	return validatePurchaseDate(in.PurchaseDate, s.now().UTC())
}

// resolveAddress enforces the address invariant at creation and update time:
// owned by the parcel owner and not soft-deleted.
func (s *ParcelService) resolveAddress(ctx context.Context, addressID, ownerID string) error {
	if strings.TrimSpace(addressID) == "" {
		return ErrInvalidAddress
	}
	if _, err := s.addresses.GetOwnedActive(ctx, addressID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAddressNotFound
		}
		return fmt.Errorf("lookup address: %w", err)
	}
	return nil
}

func generateReferenceID() (string, error) {
	buf := make([]byte, referenceIDLength-1)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reference id: %w", err)
	}
	chars := make([]byte, referenceIDLength-1)
	for i, b := range buf {
		chars[i] = referenceIDCharset[int(b)%len(referenceIDCharset)]
	}
	return "#" + string(chars), nil
}

// validReferenceID accepts the marker-prefixed form or a bare fixed-length code.
func validReferenceID(ref string) bool {
	return strings.HasPrefix(ref, "#") || len(ref) == referenceIDLength
}

// CreateParcel validates input, guards against duplicates, and persists a new
// pending parcel.
func (s *ParcelService) CreateParcel(ctx context.Context, ownerID string, in CreateParcelInput) (*domain.Parcel, error) {
	if err := s.validateCreate(in); err != nil {
		return nil, err
	}

	if err := s.resolveAddress(ctx, in.ToAddressID, ownerID); err != nil {
		return nil, err
	}

	// Dedup is a soft heuristic, not a storage constraint; concurrent
	// duplicates can slip through and are accepted.
	exists, err := s.parcels.ExistsDuplicate(ctx, ownerID, in.ToAddressID, in.TrackingNumber)
	if err != nil {
		return nil, fmt.Errorf("check duplicate parcel: %w", err)
	}
	if exists {
		return nil, ErrParcelExists
	}

	referenceID, err := generateReferenceID()
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	now := s.now().UTC()
	parcel := domain.Parcel{
		ID:             uuid.NewString(),
		UserID:         ownerID,
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Quantity:       in.Quantity,
		Price:          in.Price,
		Currency:       currency,
		Weight:         in.Weight,
		TrackingNumber: in.TrackingNumber,
		ToAddressID:    in.ToAddressID,
		Status:         domain.ParcelStatusPending,
		PurchaseDate:   in.PurchaseDate,
		ReferenceID:    referenceID,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.parcels.Create(ctx, parcel); err != nil {
		return nil, fmt.Errorf("create parcel: %w", err)
	}

	s.publishCreated(ctx, parcel, now)

	return &parcel, nil
}

func (s *ParcelService) publishCreated(ctx context.Context, parcel domain.Parcel, at time.Time) {
	if s.publisher == nil {
		return
	}
	event := domain.ParcelCreatedEvent{
		ParcelID:    parcel.ID,
		UserID:      parcel.UserID,
		ReferenceID: parcel.ReferenceID,
		CreatedAt:   at,
	}
	if err := s.publisher.PublishParcelCreated(ctx, event); err != nil {
		s.logger.Warn("publish parcel created event failed",
			zap.String("parcel_id", parcel.ID), zap.Error(err))
	}
}

// AssignParcel attaches a reshipper to an unassigned parcel and resets its
// status to pending, re-opening the handling window for the new reshipper.
// Route guards restrict this to admins.
func (s *ParcelService) AssignParcel(ctx context.Context, actorID, parcelID, reshipperID string) (*domain.Parcel, error) {
	parcel, err := s.loadLive(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	reshipper, err := s.users.GetByID(ctx, reshipperID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidReshipper
		}
		return nil, fmt.Errorf("lookup reshipper: %w", err)
	}
	if reshipper.Role != domain.RoleReshipper {
		return nil, ErrInvalidReshipper
	}

	if parcel.Assigned() {
		return nil, ErrParcelAlreadyAssigned
	}

	if err := s.parcels.Assign(ctx, parcelID, reshipperID); err != nil {
		return nil, fmt.Errorf("assign parcel: %w", err)
	}

	pending := domain.ParcelStatusPending
	if parcel.Status != pending {
		if err := s.parcels.Update(ctx, parcelID, port.ParcelUpdate{Status: &pending}); err != nil {
			return nil, fmt.Errorf("reset parcel status: %w", err)
		}
	}

	parcel.ReshipperID = &reshipperID
	parcel.Status = pending

	if s.publisher != nil {
		event := domain.ParcelAssignedEvent{
			ParcelID:    parcel.ID,
			UserID:      parcel.UserID,
			ReshipperID: reshipperID,
			AssignedBy:  actorID,
			AssignedAt:  s.now().UTC(),
		}
		if err := s.publisher.PublishParcelAssigned(ctx, event); err != nil {
			s.logger.Warn("publish parcel assigned event failed",
				zap.String("parcel_id", parcel.ID), zap.Error(err))
		}
	}

	return parcel, nil
}

func (s *ParcelService) loadLive(ctx context.Context, parcelID string) (*domain.Parcel, error) {
	parcel, err := s.parcels.GetByID(ctx, parcelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParcelNotFound
		}
		return nil, fmt.Errorf("lookup parcel: %w", err)
	}
	if parcel.IsDeleted {
		return nil, ErrParcelNotFound
	}
	return parcel, nil
}

// UpdateParcel applies the typed patch under the role- and status-sensitive
// rules. Admins run through both branches with the same status gates as the
// owner and reshipper; the owner branch is evaluated first.
func (s *ParcelService) UpdateParcel(ctx context.Context, actorID string, actorRole domain.Role, parcelID string, in UpdateParcelInput) (*domain.Parcel, error) {
	parcel, err := s.loadLive(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	isOwner := actorID == parcel.UserID
	isReshipper := parcel.ReshipperID != nil && actorID == *parcel.ReshipperID
	isAdmin := actorRole == domain.RoleAdmin

	if !isOwner && !isReshipper && !isAdmin {
		return nil, ErrUnauthorizedUpdate
	}

	if in.Status != nil && !domain.ValidParcelStatus(in.Status.Value) {
		return nil, validationError("unknown status %q", in.Status.Value)
	}

	entryStatus := parcel.Status
	now := s.now().UTC()
	var update port.ParcelUpdate

	// Owner/admin branch: content fields only while pending; may set
	// status=received regardless of current status.
	if isOwner || isAdmin {
		if in.Owner.hasContent() {
			if entryStatus != domain.ParcelStatusPending {
				return nil, ErrUpdateNotAllowed
			}
			if err := s.applyOwnerPatch(ctx, parcel, in.Owner, &update, now); err != nil {
				return nil, err
			}
		}
		if in.Status != nil && in.Status.Value == domain.ParcelStatusReceived {
			received := domain.ParcelStatusReceived
			update.Status = &received
			parcel.Status = received
		}
	} else if in.Owner.hasContent() {
		return nil, ErrUnauthorizedUpdate
	}

	// Reshipper/admin branch: handling fields only inside the window; any
	// status except received, with side effects on sent and on leaving pending.
	if isReshipper || isAdmin {
		if in.Reshipper.hasContent() {
			if !(domain.Parcel{Status: entryStatus}).InHandlingWindow() {
				return nil, ErrUpdateNotAllowed
			}
			applyReshipperPatch(parcel, in.Reshipper, &update)
		}
		if in.Status != nil {
			switch {
			case in.Status.Value == domain.ParcelStatusReceived:
				// Only the owner branch may set received. When the actor also
				// holds owner rights the transition was applied above.
				if !isOwner && !isAdmin {
					return nil, ErrInvalidStatusUpdate
				}
			default:
				status := in.Status.Value
				update.Status = &status
				parcel.Status = status

				if status == domain.ParcelStatusSent {
					update.ReshipperSentDate = &now
					parcel.ReshipperSentDate = &now
					if in.Status.TrackingNumber != nil {
						update.TrackingNumber = in.Status.TrackingNumber
						parcel.TrackingNumber = *in.Status.TrackingNumber
					}
				} else if entryStatus == domain.ParcelStatusPending {
					update.ReshipperReceivedDate = &now
					parcel.ReshipperReceivedDate = &now
				}
			}
		}
	} else if in.Reshipper.hasContent() {
		return nil, ErrUnauthorizedUpdate
	} else if in.Status != nil && in.Status.Value != domain.ParcelStatusReceived {
		// An owner without reshipper rights may only confirm receipt.
		return nil, ErrUpdateNotAllowed
	}

	// A patch that resolved to nothing is a no-op; skip the write so the
	// timestamp is not churned.
	if update.IsZero() {
		return parcel, nil
	}

	if err := s.parcels.Update(ctx, parcelID, update); err != nil {
		return nil, fmt.Errorf("update parcel: %w", err)
	}

	if parcel.Status != entryStatus {
		s.metrics.ParcelTransition(string(parcel.Status))
		s.publishStatusChanged(ctx, *parcel, entryStatus, actorID, now)
	}

	parcel.UpdatedAt = now
	return parcel, nil
}

func (s *ParcelService) applyOwnerPatch(ctx context.Context, parcel *domain.Parcel, patch *OwnerPatch, update *port.ParcelUpdate, now time.Time) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateParcelName(name); err != nil {
			return err
		}
		update.Name = &name
		parcel.Name = name
	}
	if patch.Description != nil {
		if len(*patch.Description) > maxDescriptionLen {
			return validationError("description must be at most %d characters", maxDescriptionLen)
		}
		update.Description = patch.Description
		parcel.Description = *patch.Description
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 1 {
			return validationError("quantity must be at least 1")
		}
		update.Quantity = patch.Quantity
		parcel.Quantity = *patch.Quantity
	}
	if patch.Price != nil {
		if *patch.Price <= 0 {
			return validationError("price must be a positive number")
		}
		update.Price = patch.Price
		parcel.Price = *patch.Price
	}
	if patch.Weight != nil {
		if *patch.Weight < 0 {
			return validationError("weight cannot be negative")
		}
		update.Weight = patch.Weight
		parcel.Weight = *patch.Weight
	}
	if patch.PurchaseDate != nil {
		if err := validatePurchaseDate(*patch.PurchaseDate, now); err != nil {
			return err
		}
		update.PurchaseDate = patch.PurchaseDate
		parcel.PurchaseDate = *patch.PurchaseDate
	}
	if patch.TrackingNumber != nil {
		update.TrackingNumber = patch.TrackingNumber
		parcel.TrackingNumber = *patch.TrackingNumber
	}
	if patch.ToAddressID != nil {
		if err := s.resolveAddress(ctx, *patch.ToAddressID, parcel.UserID); err != nil {
			return err
		}
		update.ToAddressID = patch.ToAddressID
		parcel.ToAddressID = *patch.ToAddressID
	}
	return nil
}

func applyReshipperPatch(parcel *domain.Parcel, patch *ReshipperPatch, update *port.ParcelUpdate) {
	if patch.Images != nil {
		update.Images = patch.Images
		parcel.Images = patch.Images
	}
	if patch.Note != nil {
		update.ReshipperNote = patch.Note
		parcel.ReshipperNote = patch.Note
	}
	if patch.ReceivedQuantity != nil {
		update.ReceivedQuantity = patch.ReceivedQuantity
		parcel.ReceivedQuantity = patch.ReceivedQuantity
	}
}

func (s *ParcelService) publishStatusChanged(ctx context.Context, parcel domain.Parcel, previous domain.ParcelStatus, actorID string, at time.Time) {
	if s.publisher == nil {
		return
	}
	event := domain.ParcelStatusChangedEvent{
		ParcelID:       parcel.ID,
		UserID:         parcel.UserID,
		PreviousStatus: previous,
		NewStatus:      parcel.Status,
		ChangedBy:      actorID,
		ChangedAt:      at,
	}
	if err := s.publisher.PublishParcelStatusChanged(ctx, event); err != nil {
		s.logger.Warn("publish parcel status event failed",
			zap.String("parcel_id", parcel.ID), zap.Error(err))
	}
}

// DeleteParcel soft-deletes an owned parcel after checking the reference code
// and the reshipping guard.
func (s *ParcelService) DeleteParcel(ctx context.Context, actorID, parcelID, referenceID string) error {
	referenceID = strings.TrimSpace(referenceID)
	if !validReferenceID(referenceID) {
		return validationError("reference id format is invalid")
	}

	parcel, err := s.parcels.GetByID(ctx, parcelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrParcelNotFound
		}
		return fmt.Errorf("lookup parcel: %w", err)
	}

	if parcel.UserID != actorID || parcel.ReferenceID != referenceID {
		return ErrParcelNotFound
	}

	if parcel.IsDeleted {
		return ErrParcelAlreadyDeleted
	}

	if parcel.Assigned() && parcel.Status != domain.ParcelStatusReceived {
		return ErrParcelReshipping
	}

	now := s.now().UTC()
	if err := s.parcels.SetDeleted(ctx, parcelID, now); err != nil {
		return fmt.Errorf("delete parcel: %w", err)
	}

	if s.publisher != nil {
		event := domain.ParcelDeletedEvent{
			ParcelID:    parcel.ID,
			UserID:      parcel.UserID,
			ReferenceID: parcel.ReferenceID,
			DeletedAt:   now,
		}
		if err := s.publisher.PublishParcelDeleted(ctx, event); err != nil {
			s.logger.Warn("publish parcel deleted event failed",
				zap.String("parcel_id", parcel.ID), zap.Error(err))
		}
	}

	return nil
}

// GetParcel fetches a single parcel visible to the actor: its owner, its
// assigned reshipper, or an admin.
func (s *ParcelService) GetParcel(ctx context.Context, actorID string, actorRole domain.Role, parcelID string) (*domain.Parcel, error) {
	parcel, err := s.loadLive(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	isOwner := actorID == parcel.UserID
	isReshipper := parcel.ReshipperID != nil && actorID == *parcel.ReshipperID
	if !isOwner && !isReshipper && actorRole != domain.RoleAdmin {
		return nil, ErrParcelNotFound
	}

	return parcel, nil
}

// normalizeSort applies the sort allow-list; anything else silently falls back
// to created_at descending.
func normalizeSort(sortBy, order string) port.ParcelSort {
	field := port.ParcelSortField(sortBy)
	switch field {
	case port.ParcelSortCreatedAt, port.ParcelSortStatus, port.ParcelSortWeight, port.ParcelSortTrackingNumber:
	default:
		return port.ParcelSort{Field: port.ParcelSortCreatedAt, Descending: true}
	}
	return port.ParcelSort{Field: field, Descending: !strings.EqualFold(order, "asc")}
}

// ListParcels pages through the actor's own parcels. The owner scope is set
// here, never client-supplied.
func (s *ParcelService) ListParcels(ctx context.Context, actorID string, opts ParcelListOptions) (*ParcelList, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := port.ParcelFilter{
		OwnerID:        actorID,
		TrackingNumber: opts.TrackingNumber,
		CreatedFrom:    opts.CreatedFrom,
		CreatedTo:      opts.CreatedTo,
		MinWeight:      opts.MinWeight,
		MaxWeight:      opts.MaxWeight,
		Search:         opts.Search,
	}
	if opts.Status != "" {
		status := domain.ParcelStatus(opts.Status)
		if !domain.ValidParcelStatus(status) {
			return nil, validationError("unknown status %q", opts.Status)
		}
		filter.Status = &status
	}

	result, err := s.parcels.List(ctx, filter, normalizeSort(opts.SortBy, opts.SortOrder), (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}

	totalPages := int(math.Ceil(float64(result.TotalItems) / float64(limit)))

	return &ParcelList{
		Items: result.Items,
		Pagination: Pagination{
			CurrentPage: page,
			PageSize:    limit,
			TotalPages:  totalPages,
			TotalItems:  result.TotalItems,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1 && result.TotalItems > 0,
		},
	}, nil
}
