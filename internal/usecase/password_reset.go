package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/logger"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/security"
	"github.com/badrkarrachai/WanaShip-Backend/internal/repository"
)

// ErrResetMailFailed indicates the reset code could not be delivered. Unlike
// the other transactional mails this one is surfaced to the caller, who may
// retry manually.
var ErrResetMailFailed = errors.New("password reset mail delivery failed")

// PasswordResetService implements the OTP-based password reset flow.
type PasswordResetService struct {
	users     port.UserRepository
	mailer    port.Mailer
	publisher port.EventPublisher
	accounts  *AccountService
	tokens    *security.TokenGenerator
	otpLength int
	otpTTL    time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewPasswordResetService constructs a password reset service.
func NewPasswordResetService(
	users port.UserRepository,
	mailer port.Mailer,
	publisher port.EventPublisher,
	accounts *AccountService,
	tokens *security.TokenGenerator,
	otpLength int,
	otpTTL time.Duration,
	log *zap.Logger,
) *PasswordResetService {
	if otpLength <= 0 {
		otpLength = 6
	}
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &PasswordResetService{
		users:     users,
		mailer:    mailer,
		publisher: publisher,
		accounts:  accounts,
		tokens:    tokens,
		otpLength: otpLength,
		otpTTL:    otpTTL,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	s.now = now
	return s
}

// RequestReset issues a reset code and mails it to the account address. The
// lookup result is not revealed: unknown emails return nil without sending.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if _, err := s.accounts.Gate(*user); err != nil {
		return err
	}

	code, codeHash, err := security.GenerateOTP(s.otpLength)
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}

	now := s.now().UTC()
	expires := now.Add(s.otpTTL)

	if err := s.users.SetResetOTP(ctx, user.ID, &codeHash, &expires); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	mail := port.Mail{
		To:      user.Email,
		Subject: "Your WanaShip password reset code",
		HTML: fmt.Sprintf("<p>Your password reset code is <b>%s</b>. It expires in %d minutes.</p>",
			code, int(s.otpTTL.Minutes())),
		Text: fmt.Sprintf("Your password reset code is %s.", code),
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		s.logger.Error("reset mail delivery failed",
			zap.String("email", logger.MaskEmail(user.Email)), zap.Error(err))
		return ErrResetMailFailed
	}

	if s.publisher != nil {
		event := domain.PasswordResetRequestedEvent{
			UserID:      user.ID,
			RequestedAt: now,
			MaskedEmail: logger.MaskEmail(user.Email),
			ExpiresAt:   expires,
		}
		if err := s.publisher.PublishPasswordResetRequested(ctx, event); err != nil {
			s.logger.Warn("publish password reset event failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return nil
}

// VerifyResetCode checks a supplied code without consuming it, so clients can
// validate before showing the new-password form.
func (s *PasswordResetService) VerifyResetCode(ctx context.Context, email, code string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPInvalid
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	switch EvaluateResetOTP(*user, code, s.now().UTC()) {
	case OTPExpired:
		return ErrOTPExpired
	case OTPInvalid:
		return ErrOTPInvalid
	}

	return nil
}

// ResetPassword consumes the code, replaces the password, and issues a fresh
// access token.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(newPassword) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOTPInvalid
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	warning, err := s.accounts.Gate(*user)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	switch EvaluateResetOTP(*user, code, now) {
	case OTPExpired:
		return nil, ErrOTPExpired
	case OTPInvalid:
		return nil, ErrOTPInvalid
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash, now); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	// Clear the consumed code to prevent replay.
	if err := s.users.SetResetOTP(ctx, user.ID, nil, nil); err != nil {
		return nil, fmt.Errorf("clear reset code: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	sanitized.ResetPasswordOTP = nil
	sanitized.ResetPasswordOTPExpires = nil

	return &LoginResult{Token: token, User: sanitized, Warning: warning}, nil
}
