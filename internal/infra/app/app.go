package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/config"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/database"
	kafkainfra "github.com/badrkarrachai/WanaShip-Backend/internal/infra/kafka"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/logger"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/mailer"
	redisinfra "github.com/badrkarrachai/WanaShip-Backend/internal/infra/redis"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/security"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/telemetry"
	postgresrepo "github.com/badrkarrachai/WanaShip-Backend/internal/repository/postgres"
	redisrepo "github.com/badrkarrachai/WanaShip-Backend/internal/repository/redis"
	"github.com/badrkarrachai/WanaShip-Backend/internal/transport/http/middleware"
	"github.com/badrkarrachai/WanaShip-Backend/internal/transport/http/routes"
	"github.com/badrkarrachai/WanaShip-Backend/internal/usecase"
)

// Application bundles the wired service graph and the HTTP engine.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

// New wires configuration into a runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if err := security.ConfigureArgon2(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	tokenGenerator, err := security.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init token generator: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var kafkaProducer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubEventPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubEventPublisher(log)
	}

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, log)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		TTL: rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	otpTTL := time.Duration(cfg.OTP.ExpirationMinutes) * time.Minute

	accountService := usecase.NewAccountService(repos.Users, eventPublisher, cfg.App.RecoveryPeriodDays, log)
	authService := usecase.NewAuthService(repos.Users, accountService, tokenGenerator, log)
	registrationService := usecase.NewRegistrationService(repos.Users, smtpMailer, eventPublisher, cfg.OTP.Length, otpTTL, log)
	passwordResetService := usecase.NewPasswordResetService(repos.Users, smtpMailer, eventPublisher, accountService, tokenGenerator, cfg.OTP.Length, otpTTL, log)
	oauthService := usecase.NewOAuthService(repos.Users, accountService, tokenGenerator, eventPublisher, cfg.OAuth, log)
	userService := usecase.NewUserService(repos.Users, registrationService, log)
	parcelService := usecase.NewParcelService(repos.Parcels, repos.Addresses, repos.Users, eventPublisher, metrics, log)
	addressService := usecase.NewAddressService(repos.Addresses)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Pool:        pool,
		Redis:       redisClient.Client(),
		Services: routes.ServiceSet{
			Auth:          authService,
			Registration:  registrationService,
			PasswordReset: passwordResetService,
			OAuth:         oauthService,
			Users:         userService,
			Accounts:      accountService,
			Parcels:       parcelService,
			Addresses:     addressService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		kafka:  kafkaProducer,
	}, nil
}

// Run serves HTTP traffic until the context is cancelled, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			_ = a.kafka.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting WanaShip API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
