package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/config"
	"github.com/badrkarrachai/WanaShip-Backend/internal/transport/http/handlers"
	"github.com/badrkarrachai/WanaShip-Backend/internal/transport/http/middleware"
	"github.com/badrkarrachai/WanaShip-Backend/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	PasswordReset *usecase.PasswordResetService
	OAuth         *usecase.OAuthService
	Users         *usecase.UserService
	Accounts      *usecase.AccountService
	Parcels       *usecase.ParcelService
	Addresses     *usecase.AddressService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Pool        *pgxpool.Pool
	Redis       *redis.Client
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err != nil {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	} else {
		r.Use(metrics.Handler())
	}

	respond := handlers.NewResponder(deps.Config.App.Version)
	if deps.RateLimiter != nil {
		deps.RateLimiter.WithResponder(respond)
	}

	healthHandler := handlers.NewHealthHandler(deps.Pool, deps.Redis, respond)
	r.GET("/healthz", healthHandler.Live)
	r.GET("/readyz", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(deps.Services.Auth, respond)

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(
			deps.Services.Auth,
			deps.Services.Registration,
			deps.Services.PasswordReset,
			deps.Services.OAuth,
			respond,
			deps.Logger,
		)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", withRules(registerRule(deps), authHandler.Register)...)
		authGroup.POST("/login", withRules(loginRule(deps), authHandler.Login)...)
		authGroup.GET("/me", requireAuth, authHandler.Me)
		authGroup.POST("/verify-email", requireAuth, authHandler.VerifyEmail)
		authGroup.POST("/verify-email/resend", requireAuth, authHandler.ResendVerification)
		authGroup.POST("/oauth/google", authHandler.GoogleCallback)
		authGroup.POST("/oauth/discord", authHandler.DiscordCallback)

		resetGroup := authGroup.Group("/password-reset")
		if rule := passwordResetRule(deps); rule != nil {
			resetGroup.Use(rule)
		}
		resetGroup.POST("/request", authHandler.RequestPasswordReset)
		resetGroup.POST("/verify", authHandler.VerifyResetCode)
		resetGroup.POST("/confirm", authHandler.ConfirmPasswordReset)

		userHandler := handlers.NewUserHandler(deps.Services.Users, deps.Services.Accounts, respond, deps.Logger)

		userGroup := api.Group("/users/me")
		userGroup.Use(requireAuth)
		userGroup.PATCH("/name", userHandler.UpdateName)
		userGroup.PATCH("/email", userHandler.UpdateEmail)
		userGroup.PATCH("/password", userHandler.UpdatePassword)
		userGroup.DELETE("", userHandler.DeleteAccount)
		userGroup.POST("/recover", userHandler.RecoverAccount)

		parcelHandler := handlers.NewParcelHandler(deps.Services.Parcels, respond, deps.Logger)

		parcelGroup := api.Group("/parcels")
		parcelGroup.Use(requireAuth)
		parcelGroup.POST("", middleware.RequirePermission(respond, domain.PermissionCreateParcel), parcelHandler.Create)
		parcelGroup.GET("", middleware.RequirePermission(respond, domain.PermissionListParcel), parcelHandler.List)
		parcelGroup.GET("/:id", middleware.RequirePermission(respond, domain.PermissionReadParcel), parcelHandler.Get)
		parcelGroup.PATCH("/:id", middleware.RequirePermission(respond, domain.PermissionUpdateParcel), parcelHandler.Update)
		parcelGroup.DELETE("/:id", middleware.RequirePermission(respond, domain.PermissionDeleteParcel), parcelHandler.Delete)
		parcelGroup.POST("/assign", middleware.RequirePermission(respond, domain.PermissionAssignParcel), parcelHandler.Assign)

		addressHandler := handlers.NewAddressHandler(deps.Services.Addresses, respond, deps.Logger)

		addressGroup := api.Group("/addresses")
		addressGroup.Use(requireAuth)
		addressGroup.POST("", middleware.RequirePermission(respond, domain.PermissionCreateAddress), addressHandler.Create)
		addressGroup.GET("", middleware.RequirePermission(respond, domain.PermissionReadAddress), addressHandler.List)
		addressGroup.GET("/:id", middleware.RequirePermission(respond, domain.PermissionReadAddress), addressHandler.Get)
		addressGroup.PUT("/:id", middleware.RequirePermission(respond, domain.PermissionUpdateAddress), addressHandler.Update)
		addressGroup.DELETE("/:id", middleware.RequirePermission(respond, domain.PermissionDeleteAddress), addressHandler.Delete)
	}

	return r
}

func withRules(rule gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	if rule == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{rule, handler}
}

func loginRule(deps Dependencies) gin.HandlerFunc {
	return ipRule(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts, time.Minute)
}

func registerRule(deps Dependencies) gin.HandlerFunc {
	return ipRule(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts, time.Minute)
}

func passwordResetRule(deps Dependencies) gin.HandlerFunc {
	return ipRule(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts, time.Hour)
}

func ipRule(deps Dependencies, name string, limit int, fallbackWindow time.Duration) gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = fallbackWindow
	}

	return deps.RateLimiter.RateLimit(middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	})
}
