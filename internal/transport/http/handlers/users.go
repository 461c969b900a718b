package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/transport/http/middleware"
	"github.com/badrkarrachai/WanaShip-Backend/internal/usecase"
)

// UserHandler exposes the authenticated profile and account lifecycle
// endpoints.
type UserHandler struct {
	users    *usecase.UserService
	accounts *usecase.AccountService
	respond  *Responder
	logger   *zap.Logger
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *usecase.UserService, accounts *usecase.AccountService, respond *Responder, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, accounts: accounts, respond: respond, logger: logger}
}

func userErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Code: CodeNotFound, Message: "Account not found."},
		{Err: usecase.ErrAccountDisabled, Status: http.StatusForbidden, Code: CodeAccountDisabled, Message: "This account is disabled."},
		{Err: usecase.ErrAccountDeleted, Status: http.StatusForbidden, Code: CodeAccountDeleted, Message: "This account has been deleted."},
	}
}

// UpdateName handles PATCH /users/me/name.
func (h *UserHandler) UpdateName(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	var req UpdateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Name is required.")
		return
	}

	user, err := h.users.UpdateName(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.respond.MapError(c, err, append(userErrorCases(), validationCase(err)))
		return
	}

	h.respond.OK(c, http.StatusOK, "Name updated.", newUserPayload(*user))
}

// UpdateEmail handles PATCH /users/me/email. The new address starts
// unverified and a fresh verification code is mailed.
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Email is required.")
		return
	}

	user, err := h.users.UpdateEmail(c.Request.Context(), userID, req.Email)
	if err != nil {
		h.respond.MapError(c, err, append(userErrorCases(),
			ErrorCase{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Code: CodeAlreadyExists, Message: "An account with this email already exists."},
			validationCase(err),
		))
		return
	}

	h.respond.OK(c, http.StatusOK, "Email updated. Check your inbox for the verification code.", newUserPayload(*user))
}

// UpdatePassword handles PATCH /users/me/password.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Current and new password are required.")
		return
	}

	if err := h.users.UpdatePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.respond.MapError(c, err, append(userErrorCases(),
			ErrorCase{Err: usecase.ErrWrongPassword, Status: http.StatusForbidden, Code: CodeUnauthorized, Message: "The current password is incorrect."},
			ErrorCase{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Code: CodeInvalidInput, Message: "Password must be at least 8 characters long."},
		))
		return
	}

	h.respond.OK(c, http.StatusOK, "Password updated.", nil)
}

// DeleteAccount handles DELETE /users/me. The account is soft-deleted and can
// be recovered inside the recovery window.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	var req DeleteAccountRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.accounts.DeleteAccount(c.Request.Context(), userID, req.Reasons); err != nil {
		h.respond.MapError(c, err, userErrorCases())
		return
	}

	h.respond.OK(c, http.StatusOK, "Account scheduled for deletion.", nil)
}

// RecoverAccount handles POST /users/me/recover.
func (h *UserHandler) RecoverAccount(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	if err := h.accounts.RecoverAccount(c.Request.Context(), userID); err != nil {
		h.respond.MapError(c, err, append(userErrorCases(), ErrorCase{
			Err: usecase.ErrAccountNotDeleted, Status: http.StatusBadRequest, Code: CodeInvalidInput, Message: "This account is not scheduled for deletion.",
		}))
		return
	}

	h.respond.OK(c, http.StatusOK, "Account recovered.", nil)
}
