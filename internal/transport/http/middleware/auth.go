package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/usecase"
)

// ErrorResponder writes the error half of the uniform response envelope and
// aborts the handler chain. The handlers package's Responder satisfies it;
// middleware rejections go through it so every response shares one surface.
type ErrorResponder interface {
	AbortFail(c *gin.Context, status int, code, message string)
}

// Error codes used by middleware rejections.
const (
	codeUnauthorized      = "UNAUTHORIZED"
	codeForbidden         = "FORBIDDEN"
	codeInternalError     = "INTERNAL_ERROR"
	codeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// RequireAuth validates the Authorization header and stores the caller's
// identity and role on the request context.
func RequireAuth(authService *usecase.AuthService, respond ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respond.AbortFail(c, http.StatusUnauthorized, codeUnauthorized, "Missing authorization header.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respond.AbortFail(c, http.StatusUnauthorized, codeUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'.")
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			respond.AbortFail(c, http.StatusUnauthorized, codeUnauthorized, "Missing access token.")
			return
		}

		claims, err := authService.ParseAccessToken(token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrExpiredAccessToken):
				respond.AbortFail(c, http.StatusUnauthorized, codeUnauthorized, "Access token expired.")
			case errors.Is(err, usecase.ErrInvalidAccessToken):
				respond.AbortFail(c, http.StatusUnauthorized, codeUnauthorized, "Invalid access token.")
			default:
				respond.AbortFail(c, http.StatusInternalServerError, codeInternalError, "Authentication failed.")
			}
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Set("claims", claims)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = claims.UserID
		}

		c.Next()
	}
}

// RequirePermission rejects callers whose role does not grant the capability.
// Unknown roles fail closed.
func RequirePermission(respond ErrorResponder, permission domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(RoleKey)
		if !exists {
			respond.AbortFail(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required.")
			return
		}

		role, ok := roleVal.(domain.Role)
		if !ok || !domain.HasPermission(role, permission) {
			respond.AbortFail(c, http.StatusForbidden, codeForbidden, "You do not have permission to perform this action.")
			return
		}

		c.Next()
	}
}

// RequireRole restricts a route to the given roles.
func RequireRole(respond ErrorResponder, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(RoleKey)
		if !exists {
			respond.AbortFail(c, http.StatusUnauthorized, codeUnauthorized, "Authentication required.")
			return
		}

		role, ok := roleVal.(domain.Role)
		if !ok {
			respond.AbortFail(c, http.StatusInternalServerError, codeInternalError, "Invalid role format.")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		respond.AbortFail(c, http.StatusForbidden, codeForbidden, "You do not have permission to perform this action.")
	}
}

// GetAuthenticatedUserID retrieves the caller's user ID from the context.
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	if id, ok := userID.(string); ok {
		return id, true
	}
	return "", false
}

// GetAuthenticatedRole retrieves the caller's role from the context. An
// absent role comes back as the zero value, which holds no permissions.
func GetAuthenticatedRole(c *gin.Context) domain.Role {
	if roleVal, exists := c.Get(RoleKey); exists {
		if role, ok := roleVal.(domain.Role); ok {
			return role
		}
	}
	return domain.Role("")
}
