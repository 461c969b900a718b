package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/transport/http/middleware"
	"github.com/badrkarrachai/WanaShip-Backend/internal/usecase"
)

// ParcelHandler exposes the parcel lifecycle endpoints.
type ParcelHandler struct {
	parcels *usecase.ParcelService
	respond *Responder
	logger  *zap.Logger
}

// NewParcelHandler constructs a ParcelHandler.
func NewParcelHandler(parcels *usecase.ParcelService, respond *Responder, logger *zap.Logger) *ParcelHandler {
	return &ParcelHandler{parcels: parcels, respond: respond, logger: logger}
}

func parcelErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrParcelNotFound, Status: http.StatusNotFound, Code: CodeParcelNotFound, Message: "Parcel not found."},
		{Err: usecase.ErrAddressNotFound, Status: http.StatusNotFound, Code: CodeAddressNotFound, Message: "The delivery address was not found."},
		{Err: usecase.ErrInvalidAddress, Status: http.StatusBadRequest, Code: CodeInvalidAddress, Message: "The delivery address is not valid."},
		{Err: usecase.ErrUnauthorizedUpdate, Status: http.StatusForbidden, Code: CodeUnauthorizedUpdate, Message: "You are not allowed to update this parcel."},
		{Err: usecase.ErrUpdateNotAllowed, Status: http.StatusBadRequest, Code: CodeUpdateNotAllowed, Message: "This parcel cannot be updated in its current status."},
		{Err: usecase.ErrInvalidStatusUpdate, Status: http.StatusBadRequest, Code: CodeInvalidStatusUpdate, Message: "The requested status change is not allowed."},
		{Err: usecase.ErrParcelAlreadyAssigned, Status: http.StatusBadRequest, Code: CodeParcelAlreadyAssigned, Message: "This parcel already has a reshipper assigned."},
		{Err: usecase.ErrInvalidReshipper, Status: http.StatusBadRequest, Code: CodeInvalidReshipper, Message: "The selected user cannot act as a reshipper."},
		{Err: usecase.ErrParcelExists, Status: http.StatusConflict, Code: CodeAlreadyExists, Message: "A parcel with the same destination and tracking number already exists."},
		{Err: usecase.ErrParcelAlreadyDeleted, Status: http.StatusBadRequest, Code: CodeAlreadyDeleted, Message: "This parcel has already been deleted."},
		{Err: usecase.ErrParcelReshipping, Status: http.StatusBadRequest, Code: CodeAlreadyReshipping, Message: "This parcel is with a reshipper and cannot be deleted yet."},
	}
}

// Create handles POST /parcels.
func (h *ParcelHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	var req CreateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Name, quantity, price, destination address and purchase date are required.")
		return
	}

	parcel, err := h.parcels.CreateParcel(c.Request.Context(), userID, usecase.CreateParcelInput{
		Name:           req.Name,
		Description:    req.Description,
		Quantity:       req.Quantity,
		Price:          req.Price,
		Currency:       req.Currency,
		Weight:         req.Weight,
		TrackingNumber: req.TrackingNumber,
		ToAddressID:    req.ToAddressID,
		PurchaseDate:   req.PurchaseDate,
	})
	if err != nil {
		h.respond.MapError(c, err, append(parcelErrorCases(), validationCase(err)))
		return
	}

	h.respond.OK(c, http.StatusCreated, "Parcel created.", newParcelPayload(*parcel))
}

// validationCase turns a plain validation error into an INVALID_INPUT case so
// its message reaches the client instead of the generic 500 fallback.
func validationCase(err error) ErrorCase {
	if err == nil || !usecase.IsValidationError(err) {
		return ErrorCase{}
	}
	return ErrorCase{Err: err, Status: http.StatusBadRequest, Code: CodeInvalidInput, Message: err.Error()}
}

// Update handles PATCH /parcels/:id.
func (h *ParcelHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}
	role := middleware.GetAuthenticatedRole(c)

	var req UpdateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "The request body is not valid.")
		return
	}
	parcelID := c.Param("id")
	if parcelID == "" {
		parcelID = req.ParcelID
	}

	input := buildUpdateInput(req)
	parcel, err := h.parcels.UpdateParcel(c.Request.Context(), userID, role, parcelID, input)
	if err != nil {
		h.respond.MapError(c, err, append(parcelErrorCases(), validationCase(err)))
		return
	}

	h.respond.OK(c, http.StatusOK, "Parcel updated.", newParcelPayload(*parcel))
}

// buildUpdateInput splits the flat request body into the owner, reshipper and
// status patch variants the service expects.
func buildUpdateInput(req UpdateParcelRequest) usecase.UpdateParcelInput {
	var input usecase.UpdateParcelInput

	owner := usecase.OwnerPatch{
		Name:           req.Name,
		Description:    req.Description,
		Quantity:       req.Quantity,
		Price:          req.Price,
		Weight:         req.Weight,
		TrackingNumber: req.ParcelTrackingNumber,
		ToAddressID:    req.ToAddressID,
		PurchaseDate:   req.PurchaseDate,
	}
	if owner != (usecase.OwnerPatch{}) {
		input.Owner = &owner
	}

	if req.Images != nil || req.ReshipperNote != nil || req.ReceivedQuantity != nil {
		input.Reshipper = &usecase.ReshipperPatch{
			Images:           req.Images,
			Note:             req.ReshipperNote,
			ReceivedQuantity: req.ReceivedQuantity,
		}
	}

	if req.Status != nil {
		status := usecase.StatusPatch{Value: domain.ParcelStatus(*req.Status)}
		if status.Value == domain.ParcelStatusSent {
			status.TrackingNumber = req.TrackingNumber
		}
		input.Status = &status
	}

	return input
}

// Assign handles POST /parcels/assign.
func (h *ParcelHandler) Assign(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	var req AssignParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Parcel ID and reshipper ID are required.")
		return
	}

	parcel, err := h.parcels.AssignParcel(c.Request.Context(), userID, req.ParcelID, req.ReshipperID)
	if err != nil {
		h.respond.MapError(c, err, parcelErrorCases())
		return
	}

	h.respond.OK(c, http.StatusOK, "Reshipper assigned.", newParcelPayload(*parcel))
}

// Delete handles DELETE /parcels/:id. The reference ID in the body must match
// the parcel before the soft delete is applied.
func (h *ParcelHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	var req DeleteParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Reference ID is required.")
		return
	}
	parcelID := c.Param("id")
	if parcelID == "" {
		parcelID = req.ParcelID
	}

	if err := h.parcels.DeleteParcel(c.Request.Context(), userID, parcelID, req.ReferenceID); err != nil {
		h.respond.MapError(c, err, append(parcelErrorCases(), validationCase(err)))
		return
	}

	h.respond.OK(c, http.StatusOK, "Parcel deleted.", nil)
}

// Get handles GET /parcels/:id.
func (h *ParcelHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}
	role := middleware.GetAuthenticatedRole(c)

	parcel, err := h.parcels.GetParcel(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		h.respond.MapError(c, err, parcelErrorCases())
		return
	}

	h.respond.OK(c, http.StatusOK, "OK", newParcelPayload(*parcel))
}

// List handles GET /parcels. Filters, sort and pagination come from the query
// string; the owner scope is always the authenticated user.
func (h *ParcelHandler) List(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	opts := usecase.ParcelListOptions{
		Status:         c.Query("status"),
		TrackingNumber: c.Query("trackingNumber"),
		Search:         c.Query("search"),
		SortBy:         c.Query("sortBy"),
		SortOrder:      c.Query("sortOrder"),
	}
	opts.Page, _ = strconv.Atoi(c.Query("page"))
	opts.Limit, _ = strconv.Atoi(c.Query("limit"))
	opts.CreatedFrom = parseTimeQuery(c.Query("createdFrom"))
	opts.CreatedTo = parseTimeQuery(c.Query("createdTo"))
	opts.MinWeight = parseFloatQuery(c.Query("minWeight"))
	opts.MaxWeight = parseFloatQuery(c.Query("maxWeight"))

	list, err := h.parcels.ListParcels(c.Request.Context(), userID, opts)
	if err != nil {
		h.respond.MapError(c, err, append(parcelErrorCases(), validationCase(err)))
		return
	}

	h.respond.OK(c, http.StatusOK, "OK", gin.H{
		"parcels":    newParcelPayloads(list.Items),
		"pagination": list.Pagination,
	})
}

func parseTimeQuery(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

func parseFloatQuery(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
