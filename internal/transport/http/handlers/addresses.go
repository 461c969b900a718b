package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/transport/http/middleware"
	"github.com/badrkarrachai/WanaShip-Backend/internal/usecase"
)

// AddressHandler exposes the address book endpoints.
type AddressHandler struct {
	addresses *usecase.AddressService
	respond   *Responder
	logger    *zap.Logger
}

// NewAddressHandler constructs an AddressHandler.
func NewAddressHandler(addresses *usecase.AddressService, respond *Responder, logger *zap.Logger) *AddressHandler {
	return &AddressHandler{addresses: addresses, respond: respond, logger: logger}
}

func addressErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrAddressNotFound, Status: http.StatusNotFound, Code: CodeAddressNotFound, Message: "Address not found."},
	}
}

func addressInput(req AddressRequest) usecase.AddressInput {
	return usecase.AddressInput{
		Label:      req.Label,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
		IsDefault:  req.IsDefault,
	}
}

// Create handles POST /addresses.
func (h *AddressHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Line 1, city and country are required.")
		return
	}

	address, err := h.addresses.Create(c.Request.Context(), userID, addressInput(req))
	if err != nil {
		h.respond.MapError(c, err, append(addressErrorCases(), validationCase(err)))
		return
	}

	h.respond.OK(c, http.StatusCreated, "Address created.", newAddressPayload(*address))
}

// List handles GET /addresses.
func (h *AddressHandler) List(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	addresses, err := h.addresses.List(c.Request.Context(), userID)
	if err != nil {
		h.respond.MapError(c, err, addressErrorCases())
		return
	}

	h.respond.OK(c, http.StatusOK, "OK", newAddressPayloads(addresses))
}

// Get handles GET /addresses/:id.
func (h *AddressHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	address, err := h.addresses.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respond.MapError(c, err, addressErrorCases())
		return
	}

	h.respond.OK(c, http.StatusOK, "OK", newAddressPayload(*address))
}

// Update handles PUT /addresses/:id.
func (h *AddressHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Line 1, city and country are required.")
		return
	}

	address, err := h.addresses.Update(c.Request.Context(), userID, c.Param("id"), addressInput(req))
	if err != nil {
		h.respond.MapError(c, err, append(addressErrorCases(), validationCase(err)))
		return
	}

	h.respond.OK(c, http.StatusOK, "Address updated.", newAddressPayload(*address))
}

// Delete handles DELETE /addresses/:id.
func (h *AddressHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	if err := h.addresses.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respond.MapError(c, err, addressErrorCases())
		return
	}

	h.respond.OK(c, http.StatusOK, "Address deleted.", nil)
}
