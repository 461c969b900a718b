package usecase

import (
	"context"
	"time"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

type stubUserRepo struct {
	users map[string]domain.User

	createErr error
	updateErr error
}

func newStubUserRepo(users ...domain.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *stubUserRepo) Create(_ context.Context, user domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByProviderID(_ context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	for _, user := range r.users {
		switch provider {
		case domain.AuthProviderGoogle:
			if user.GoogleID != nil && *user.GoogleID == providerID {
				copied := user
				return &copied, nil
			}
		case domain.AuthProviderDiscord:
			if user.DiscordID != nil && *user.DiscordID == providerID {
				copied := user
				return &copied, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	existing, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = existing.PasswordHash
	user.ResetPasswordOTP = existing.ResetPasswordOTP
	user.ResetPasswordOTPExpires = existing.ResetPasswordOTPExpires
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id string, passwordHash string, _ time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.users[id] = user
	return nil
}

func (r *stubUserRepo) SetResetOTP(_ context.Context, id string, otpHash *string, expiresAt *time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.ResetPasswordOTP = otpHash
	user.ResetPasswordOTPExpires = expiresAt
	r.users[id] = user
	return nil
}

func (r *stubUserRepo) SetLastLogin(_ context.Context, id string, at time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LastLogin = &at
	r.users[id] = user
	return nil
}

func (r *stubUserRepo) SetDeleted(_ context.Context, id string, deleted bool, deletedAt *time.Time, reasons []string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsDeleted = deleted
	user.DeletedAt = deletedAt
	user.DeletionReasons = reasons
	r.users[id] = user
	return nil
}

type stubParcelRepo struct {
	parcels map[string]domain.Parcel

	duplicate   bool
	lastUpdate  *port.ParcelUpdate
	listPage    *port.ParcelPage
	listFilter  port.ParcelFilter
	listSort    port.ParcelSort
	listOffset  int
	listLimit   int
	deletedAt   *time.Time
	assignedTo  string
	assignedFor string
}

func newStubParcelRepo(parcels ...domain.Parcel) *stubParcelRepo {
	repo := &stubParcelRepo{parcels: make(map[string]domain.Parcel)}
	for _, p := range parcels {
		repo.parcels[p.ID] = p
	}
	return repo
}

func (r *stubParcelRepo) Create(_ context.Context, parcel domain.Parcel) error {
	r.parcels[parcel.ID] = parcel
	return nil
}

func (r *stubParcelRepo) GetByID(_ context.Context, id string) (*domain.Parcel, error) {
	parcel, ok := r.parcels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := parcel
	return &copied, nil
}

func (r *stubParcelRepo) ExistsDuplicate(_ context.Context, _, _, _ string) (bool, error) {
	return r.duplicate, nil
}

func (r *stubParcelRepo) Assign(_ context.Context, id, reshipperID string) error {
	parcel, ok := r.parcels[id]
	if !ok {
		return repository.ErrNotFound
	}
	parcel.ReshipperID = &reshipperID
	r.parcels[id] = parcel
	r.assignedFor = id
	r.assignedTo = reshipperID
	return nil
}

func (r *stubParcelRepo) Update(_ context.Context, id string, update port.ParcelUpdate) error {
	parcel, ok := r.parcels[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.lastUpdate = &update
	if update.Status != nil {
		parcel.Status = *update.Status
	}
	if update.TrackingNumber != nil {
		parcel.TrackingNumber = *update.TrackingNumber
	}
	if update.ReshipperSentDate != nil {
		parcel.ReshipperSentDate = update.ReshipperSentDate
	}
	if update.ReshipperReceivedDate != nil {
		parcel.ReshipperReceivedDate = update.ReshipperReceivedDate
	}
	r.parcels[id] = parcel
	return nil
}

func (r *stubParcelRepo) SetDeleted(_ context.Context, id string, deletedAt time.Time) error {
	parcel, ok := r.parcels[id]
	if !ok {
		return repository.ErrNotFound
	}
	parcel.IsDeleted = true
	parcel.IsActive = false
	parcel.DeletedAt = &deletedAt
	r.parcels[id] = parcel
	r.deletedAt = &deletedAt
	return nil
}

func (r *stubParcelRepo) List(_ context.Context, filter port.ParcelFilter, sort port.ParcelSort, offset, limit int) (*port.ParcelPage, error) {
	r.listFilter = filter
	r.listSort = sort
	r.listOffset = offset
	r.listLimit = limit
	if r.listPage != nil {
		return r.listPage, nil
	}
	return &port.ParcelPage{}, nil
}

type stubAddressRepo struct {
	addresses map[string]domain.Address
	deletedAt *time.Time
}

func newStubAddressRepo(addresses ...domain.Address) *stubAddressRepo {
	repo := &stubAddressRepo{addresses: make(map[string]domain.Address)}
	for _, a := range addresses {
		repo.addresses[a.ID] = a
	}
	return repo
}

func (r *stubAddressRepo) Create(_ context.Context, address domain.Address) error {
	r.addresses[address.ID] = address
	return nil
}

func (r *stubAddressRepo) GetByID(_ context.Context, id string) (*domain.Address, error) {
	address, ok := r.addresses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := address
	return &copied, nil
}

func (r *stubAddressRepo) GetOwnedActive(_ context.Context, id, ownerID string) (*domain.Address, error) {
	address, ok := r.addresses[id]
	if !ok || address.UserID != ownerID || address.IsDeleted {
		return nil, repository.ErrNotFound
	}
	copied := address
	return &copied, nil
}

func (r *stubAddressRepo) ListByUser(_ context.Context, ownerID string) ([]domain.Address, error) {
	var out []domain.Address
	for _, address := range r.addresses {
		if address.UserID == ownerID && !address.IsDeleted {
			out = append(out, address)
		}
	}
	return out, nil
}

func (r *stubAddressRepo) Update(_ context.Context, address domain.Address) error {
	if _, ok := r.addresses[address.ID]; !ok {
		return repository.ErrNotFound
	}
	r.addresses[address.ID] = address
	return nil
}

func (r *stubAddressRepo) SetDeleted(_ context.Context, id string, deletedAt time.Time) error {
	address, ok := r.addresses[id]
	if !ok {
		return repository.ErrNotFound
	}
	address.IsDeleted = true
	address.DeletedAt = &deletedAt
	r.addresses[id] = address
	r.deletedAt = &deletedAt
	return nil
}

type stubPublisher struct {
	events []string
}

func (p *stubPublisher) record(name string) error {
	p.events = append(p.events, name)
	return nil
}

func (p *stubPublisher) PublishUserRegistered(context.Context, domain.UserRegisteredEvent) error {
	return p.record("user.registered")
}

func (p *stubPublisher) PublishPasswordResetRequested(context.Context, domain.PasswordResetRequestedEvent) error {
	return p.record("user.password.reset_requested")
}

func (p *stubPublisher) PublishAccountDeleted(context.Context, domain.AccountDeletedEvent) error {
	return p.record("user.deleted")
}

func (p *stubPublisher) PublishParcelCreated(context.Context, domain.ParcelCreatedEvent) error {
	return p.record("parcel.created")
}

func (p *stubPublisher) PublishParcelAssigned(context.Context, domain.ParcelAssignedEvent) error {
	return p.record("parcel.assigned")
}

func (p *stubPublisher) PublishParcelStatusChanged(context.Context, domain.ParcelStatusChangedEvent) error {
	return p.record("parcel.status.changed")
}

func (p *stubPublisher) PublishParcelDeleted(context.Context, domain.ParcelDeletedEvent) error {
	return p.record("parcel.deleted")
}

func (p *stubPublisher) has(name string) bool {
	for _, event := range p.events {
		if event == name {
			return true
		}
	}
	return false
}

type stubMailer struct {
	sent    []port.Mail
	sendErr error
}

func (m *stubMailer) Send(_ context.Context, mail port.Mail) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, mail)
	return nil
}

var _ port.UserRepository = (*stubUserRepo)(nil)
var _ port.ParcelRepository = (*stubParcelRepo)(nil)
var _ port.AddressRepository = (*stubAddressRepo)(nil)
var _ port.EventPublisher = (*stubPublisher)(nil)
var _ port.Mailer = (*stubMailer)(nil)
