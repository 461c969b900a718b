package handlers

import (
	"time"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
)

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OAuthCallbackRequest carries the authorization code from the provider redirect.
type OAuthCallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// AuthResponse is returned on successful authentication.
type AuthResponse struct {
	Token   string      `json:"token"`
	User    UserPayload `json:"user"`
	Warning string      `json:"warning,omitempty"`
}

// PasswordResetRequestPayload initiates the reset flow.
type PasswordResetRequestPayload struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmPayload completes the reset flow.
type PasswordResetConfirmPayload struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// VerifyOTPRequest checks a reset code without consuming it.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// VerifyEmailRequest carries the email verification code.
type VerifyEmailRequest struct {
	Code string `json:"code" binding:"required"`
}

// UpdateNameRequest changes the display name.
type UpdateNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateEmailRequest changes the account email.
type UpdateEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdatePasswordRequest changes the password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// DeleteAccountRequest soft-deletes the account.
type DeleteAccountRequest struct {
	Reasons []string `json:"reasons"`
}

// UserPayload is the public view of a user.
type UserPayload struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"emailVerified"`
	Role          string     `json:"role"`
	AvatarURL     *string    `json:"avatarUrl,omitempty"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func newUserPayload(user domain.User) UserPayload {
	return UserPayload{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Role:          string(user.Role),
		AvatarURL:     user.AvatarURL,
		LastLogin:     user.LastLogin,
		CreatedAt:     user.CreatedAt,
	}
}

// CreateParcelRequest defines the payload for parcel creation.
type CreateParcelRequest struct {
	Name           string    `json:"name" binding:"required"`
	Description    string    `json:"description"`
	Quantity       int       `json:"quantity" binding:"required"`
	Price          float64   `json:"price" binding:"required"`
	Currency       string    `json:"currency"`
	Weight         float64   `json:"weight"`
	TrackingNumber string    `json:"trackingNumber"`
	ToAddressID    string    `json:"toAddressId" binding:"required"`
	PurchaseDate   time.Time `json:"purchaseDate" binding:"required"`
}

// UpdateParcelRequest is the typed patch for the update endpoint. Absent
// fields are untouched. The parcel ID normally comes from the URL; the body
// field is a fallback. Tracking numbers travel under two keys:
// parcelTrackingNumber is an owner content edit, trackingNumber belongs to the
// sent transition and is ignored for any other status.
type UpdateParcelRequest struct {
	ParcelID string `json:"parcelId"`

	Name                 *string    `json:"name"`
	Description          *string    `json:"description"`
	Quantity             *int       `json:"quantity"`
	Price                *float64   `json:"price"`
	Weight               *float64   `json:"weight"`
	ParcelTrackingNumber *string    `json:"parcelTrackingNumber"`
	ToAddressID          *string    `json:"toAddressId"`
	PurchaseDate         *time.Time `json:"purchaseDate"`

	Images           []string `json:"images"`
	ReshipperNote    *string  `json:"reshipperNote"`
	ReceivedQuantity *int     `json:"receivedQuantity"`

	Status         *string `json:"status"`
	TrackingNumber *string `json:"trackingNumber"`
}

// AssignParcelRequest attaches a reshipper to a parcel.
type AssignParcelRequest struct {
	ParcelID    string `json:"parcelId" binding:"required"`
	ReshipperID string `json:"reshipperId" binding:"required"`
}

// DeleteParcelRequest soft-deletes a parcel. The parcel ID normally comes
// from the URL; the body field is a fallback.
type DeleteParcelRequest struct {
	ParcelID    string `json:"parcelId"`
	ReferenceID string `json:"referenceId" binding:"required"`
}

// ParcelPayload is the public view of a parcel.
type ParcelPayload struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"userId"`
	ReshipperID           *string    `json:"reshipperId,omitempty"`
	Name                  string     `json:"name"`
	Description           string     `json:"description,omitempty"`
	Quantity              int        `json:"quantity"`
	Price                 float64    `json:"price"`
	Currency              string     `json:"currency"`
	Weight                float64    `json:"weight"`
	TrackingNumber        string     `json:"trackingNumber,omitempty"`
	ToAddressID           string     `json:"toAddressId"`
	Status                string     `json:"status"`
	Images                []string   `json:"images,omitempty"`
	ReshipperNote         *string    `json:"reshipperNote,omitempty"`
	ReceivedQuantity      *int       `json:"receivedQuantity,omitempty"`
	PurchaseDate          time.Time  `json:"purchaseDate"`
	ReshipperReceivedDate *time.Time `json:"reshipperReceivedDate,omitempty"`
	ReshipperSentDate     *time.Time `json:"reshipperSentDate,omitempty"`
	DeliveredDate         *time.Time `json:"deliveredDate,omitempty"`
	ReferenceID           string     `json:"referenceId"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func newParcelPayload(parcel domain.Parcel) ParcelPayload {
	return ParcelPayload{
		ID:                    parcel.ID,
		UserID:                parcel.UserID,
		ReshipperID:           parcel.ReshipperID,
		Name:                  parcel.Name,
		Description:           parcel.Description,
		Quantity:              parcel.Quantity,
		Price:                 parcel.Price,
		Currency:              parcel.Currency,
		Weight:                parcel.Weight,
		TrackingNumber:        parcel.TrackingNumber,
		ToAddressID:           parcel.ToAddressID,
		Status:                string(parcel.Status),
		Images:                parcel.Images,
		ReshipperNote:         parcel.ReshipperNote,
		ReceivedQuantity:      parcel.ReceivedQuantity,
		PurchaseDate:          parcel.PurchaseDate,
		ReshipperReceivedDate: parcel.ReshipperReceivedDate,
		ReshipperSentDate:     parcel.ReshipperSentDate,
		DeliveredDate:         parcel.DeliveredDate,
		ReferenceID:           parcel.ReferenceID,
		CreatedAt:             parcel.CreatedAt,
		UpdatedAt:             parcel.UpdatedAt,
	}
}

func newParcelPayloads(parcels []domain.Parcel) []ParcelPayload {
	payloads := make([]ParcelPayload, 0, len(parcels))
	for _, parcel := range parcels {
		payloads = append(payloads, newParcelPayload(parcel))
	}
	return payloads
}

// AddressRequest defines the payload for address create and update.
type AddressRequest struct {
	Label      string  `json:"label"`
	Line1      string  `json:"line1" binding:"required"`
	Line2      *string `json:"line2"`
	City       string  `json:"city" binding:"required"`
	State      string  `json:"state"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country" binding:"required"`
	Phone      *string `json:"phone"`
	IsDefault  bool    `json:"isDefault"`
}

// AddressPayload is the public view of an address.
type AddressPayload struct {
	ID         string  `json:"id"`
	Label      string  `json:"label,omitempty"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state,omitempty"`
	PostalCode string  `json:"postalCode,omitempty"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone,omitempty"`
	IsDefault  bool    `json:"isDefault"`
}

func newAddressPayload(address domain.Address) AddressPayload {
	return AddressPayload{
		ID:         address.ID,
		Label:      address.Label,
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		State:      address.State,
		PostalCode: address.PostalCode,
		Country:    address.Country,
		Phone:      address.Phone,
		IsDefault:  address.IsDefault,
	}
}

func newAddressPayloads(addresses []domain.Address) []AddressPayload {
	payloads := make([]AddressPayload, 0, len(addresses))
	for _, address := range addresses {
		payloads = append(payloads, newAddressPayload(address))
	}
	return payloads
}
