package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/security"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

const (
	minPasswordLength = 8
	minNameLength     = 2
	maxNameLength     = 60
)

var (
	// ErrEmailTaken indicates the email is already registered to a live account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrWeakPassword indicates the password does not meet the length requirement.
	ErrWeakPassword = errors.New("password too short")
	// ErrInvalidInput wraps field validation failures on registration input.
	ErrInvalidInput = errors.New("invalid input")
)

// RegistrationService handles new account onboarding and email verification.
type RegistrationService struct {
	users     port.UserRepository
	mailer    port.Mailer
	publisher port.EventPublisher
	otpLength int
	otpTTL    time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(users port.UserRepository, mailer port.Mailer, publisher port.EventPublisher, otpLength int, otpTTL time.Duration, logger *zap.Logger) *RegistrationService {
	if otpLength <= 0 {
		otpLength = 6
	}
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &RegistrationService{
		users:     users,
		mailer:    mailer,
		publisher: publisher,
		otpLength: otpLength,
		otpTTL:    otpTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	s.now = now
	return s
}

// Register creates a local account, sends the welcome and verification mails
// fire-and-forget, and publishes the registration event.
func (s *RegistrationService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(name) < minNameLength || len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name must be between %d and %d characters", ErrInvalidInput, minNameLength, maxNameLength)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	code, codeHash, err := security.GenerateOTP(s.otpLength)
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}
	expires := now.Add(s.otpTTL)

	user := domain.User{
		ID:                      uuid.NewString(),
		Name:                    name,
		Email:                   email,
		PasswordHash:            passwordHash,
		Role:                    domain.RoleUser,
		IsActivated:             true,
		AuthProvider:            domain.AuthProviderLocal,
		ResetPasswordOTP:        &codeHash,
		ResetPasswordOTPExpires: &expires,
		Preferences:             domain.DefaultPreferences(),
		NotificationSettings:    domain.DefaultNotificationSettings(),
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendWelcome(ctx, user, code)

	if s.publisher != nil {
		event := domain.UserRegisteredEvent{
			UserID:             user.ID,
			Name:               user.Name,
			Email:              user.Email,
			RegisteredAt:       now,
			RegistrationMethod: string(domain.AuthProviderLocal),
		}
		if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
			s.logger.Warn("publish user registered event failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	user.PasswordHash = ""
	return &user, nil
}

func (s *RegistrationService) sendWelcome(ctx context.Context, user domain.User, code string) {
	if s.mailer == nil {
		return
	}

	mail := port.Mail{
		To:      user.Email,
		Subject: "Welcome to WanaShip",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Welcome to WanaShip. Your email verification code is <b>%s</b>. It expires in %d minutes.</p>",
			user.Name, code, int(s.otpTTL.Minutes())),
		Text: fmt.Sprintf("Hi %s, welcome to WanaShip. Your email verification code is %s.", user.Name, code),
	}

	// Delivery is fire-and-forget; registration already succeeded.
	if err := s.mailer.Send(ctx, mail); err != nil {
		s.logger.Warn("welcome mail delivery failed",
			zap.String("user_id", user.ID), zap.Error(err))
	}
}

// RequestEmailVerification issues a fresh verification code for the user.
func (s *RegistrationService) RequestEmailVerification(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.EmailVerified {
		return nil
	}

	code, codeHash, err := security.GenerateOTP(s.otpLength)
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	expires := s.now().UTC().Add(s.otpTTL)

	if err := s.users.SetResetOTP(ctx, user.ID, &codeHash, &expires); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	if s.mailer != nil {
		mail := port.Mail{
			To:      user.Email,
			Subject: "Verify your WanaShip email",
			HTML: fmt.Sprintf("<p>Your verification code is <b>%s</b>. It expires in %d minutes.</p>",
				code, int(s.otpTTL.Minutes())),
			Text: fmt.Sprintf("Your verification code is %s.", code),
		}
		if err := s.mailer.Send(ctx, mail); err != nil {
			s.logger.Warn("verification mail delivery failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return nil
}

// ErrOTPExpired and ErrOTPInvalid translate the tri-state verification outcome
// into errors for flows that cannot continue.
var (
	ErrOTPExpired = errors.New("otp expired")
	ErrOTPInvalid = errors.New("otp invalid")
)

// VerifyEmail consumes the verification code and marks the email verified.
func (s *RegistrationService) VerifyEmail(ctx context.Context, userID, code string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	switch EvaluateResetOTP(*user, code, s.now().UTC()) {
	case OTPExpired:
		return ErrOTPExpired
	case OTPInvalid:
		return ErrOTPInvalid
	}

	// Clear the code before anything else so a replayed request fails.
	if err := s.users.SetResetOTP(ctx, user.ID, nil, nil); err != nil {
		return fmt.Errorf("clear verification code: %w", err)
	}

	user.EmailVerified = true
	if err := s.users.Update(ctx, *user); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	return nil
}
