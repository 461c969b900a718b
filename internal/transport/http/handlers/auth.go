package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/transport/http/middleware"
	"github.com/badrkarrachai/WanaShip-Backend/internal/usecase"
)

// AuthHandler exposes registration, login, password reset and OAuth endpoints.
type AuthHandler struct {
	auth         *usecase.AuthService
	registration *usecase.RegistrationService
	reset        *usecase.PasswordResetService
	oauth        *usecase.OAuthService
	respond      *Responder
	logger       *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(
	auth *usecase.AuthService,
	registration *usecase.RegistrationService,
	reset *usecase.PasswordResetService,
	oauth *usecase.OAuthService,
	respond *Responder,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		registration: registration,
		reset:        reset,
		oauth:        oauth,
		respond:      respond,
		logger:       logger,
	}
}

func authErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "Invalid email or password."},
		{Err: usecase.ErrAccountDisabled, Status: http.StatusForbidden, Code: CodeAccountDisabled, Message: "This account is disabled."},
		{Err: usecase.ErrAccountDeleted, Status: http.StatusForbidden, Code: CodeAccountDeleted, Message: "This account has been deleted."},
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Name, email and password are required.")
		return
	}

	user, err := h.registration.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.logger.Debug("registration rejected", zap.Error(err))
		h.respond.MapError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Code: CodeAlreadyExists, Message: "An account with this email already exists."},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Code: CodeInvalidInput, Message: "Password must be at least 8 characters long."},
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Code: CodeInvalidInput, Message: "Name or email is not valid."},
		})
		return
	}

	h.respond.OK(c, http.StatusCreated, "Account created. Check your inbox for the verification code.", newUserPayload(*user))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Email and password are required.")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respond.MapError(c, err, authErrorCases())
		return
	}

	h.respond.OK(c, http.StatusOK, "Logged in.", AuthResponse{
		Token:   result.Token,
		User:    newUserPayload(result.User),
		Warning: result.Warning,
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	user, warning, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		h.respond.MapError(c, err, append(authErrorCases(), ErrorCase{
			Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Code: CodeNotFound, Message: "Account not found.",
		}))
		return
	}

	payload := newUserPayload(*user)
	h.respond.OK(c, http.StatusOK, "OK", gin.H{"user": payload, "warning": warning})
}

// VerifyEmail handles POST /auth/verify-email.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Verification code is required.")
		return
	}

	if err := h.registration.VerifyEmail(c.Request.Context(), userID, req.Code); err != nil {
		h.respond.MapError(c, err, []ErrorCase{
			{Err: usecase.ErrOTPExpired, Status: http.StatusBadRequest, Code: CodeExpiredOTP, Message: "This code has expired. Request a new one."},
			{Err: usecase.ErrOTPInvalid, Status: http.StatusBadRequest, Code: CodeInvalidOTP, Message: "The code is not valid."},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Code: CodeNotFound, Message: "Account not found."},
		})
		return
	}

	h.respond.OK(c, http.StatusOK, "Email verified.", nil)
}

// ResendVerification handles POST /auth/verify-email/resend.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		h.respond.Fail(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
		return
	}

	if err := h.registration.RequestEmailVerification(c.Request.Context(), userID); err != nil {
		h.respond.MapError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Code: CodeNotFound, Message: "Account not found."},
		})
		return
	}

	h.respond.OK(c, http.StatusOK, "Verification code sent.", nil)
}

// RequestPasswordReset handles POST /auth/password-reset/request. The response
// does not reveal whether the email exists.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Email is required.")
		return
	}

	if err := h.reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		h.respond.MapError(c, err, append(authErrorCases(), ErrorCase{
			Err: usecase.ErrResetMailFailed, Status: http.StatusInternalServerError, Code: CodeInternalError, Message: "Could not send the reset email. Please try again later.",
		}))
		return
	}

	h.respond.OK(c, http.StatusOK, "If an account exists for this email, a reset code has been sent.", nil)
}

// VerifyResetCode handles POST /auth/password-reset/verify. The code is
// checked without being consumed.
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Email and code are required.")
		return
	}

	if err := h.reset.VerifyResetCode(c.Request.Context(), req.Email, req.Code); err != nil {
		h.respond.MapError(c, err, []ErrorCase{
			{Err: usecase.ErrOTPExpired, Status: http.StatusBadRequest, Code: CodeExpiredOTP, Message: "This code has expired. Request a new one."},
			{Err: usecase.ErrOTPInvalid, Status: http.StatusBadRequest, Code: CodeInvalidOTP, Message: "The code is not valid."},
			{Err: usecase.ErrUserNotFound, Status: http.StatusBadRequest, Code: CodeInvalidOTP, Message: "The code is not valid."},
		})
		return
	}

	h.respond.OK(c, http.StatusOK, "Code verified.", nil)
}

// ConfirmPasswordReset handles POST /auth/password-reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirmPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Email, code and new password are required.")
		return
	}

	result, err := h.reset.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		h.respond.MapError(c, err, append(authErrorCases(),
			ErrorCase{Err: usecase.ErrOTPExpired, Status: http.StatusBadRequest, Code: CodeExpiredOTP, Message: "This code has expired. Request a new one."},
			ErrorCase{Err: usecase.ErrOTPInvalid, Status: http.StatusBadRequest, Code: CodeInvalidOTP, Message: "The code is not valid."},
			ErrorCase{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Code: CodeInvalidInput, Message: "Password must be at least 8 characters long."},
			ErrorCase{Err: usecase.ErrUserNotFound, Status: http.StatusBadRequest, Code: CodeInvalidOTP, Message: "The code is not valid."},
		))
		return
	}

	h.respond.OK(c, http.StatusOK, "Password updated.", AuthResponse{
		Token:   result.Token,
		User:    newUserPayload(result.User),
		Warning: result.Warning,
	})
}

// GoogleCallback handles POST /auth/oauth/google.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	h.oauthCallback(c, h.oauth.LoginWithGoogle)
}

// DiscordCallback handles POST /auth/oauth/discord.
func (h *AuthHandler) DiscordCallback(c *gin.Context) {
	h.oauthCallback(c, h.oauth.LoginWithDiscord)
}

func (h *AuthHandler) oauthCallback(c *gin.Context, login func(ctx context.Context, code string) (*usecase.LoginResult, error)) {
	var req OAuthCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond.Fail(c, http.StatusBadRequest, CodeInvalidInput, "Authorization code is required.")
		return
	}

	result, err := login(c.Request.Context(), req.Code)
	if err != nil {
		h.respond.MapError(c, err, append(authErrorCases(), ErrorCase{
			Err: usecase.ErrOAuthExchangeFailed, Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "Could not verify the sign-in with the provider.",
		}))
		return
	}

	h.respond.OK(c, http.StatusOK, "Logged in.", AuthResponse{
		Token:   result.Token,
		User:    newUserPayload(result.User),
		Warning: result.Warning,
	})
}
