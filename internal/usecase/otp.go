package usecase

import (
	"time"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/security"
)

// OTPResult is the outcome of checking a one-time code against the hash and
// expiry stored on a user record. Callers must branch on all three variants.
type OTPResult int

const (
	// OTPValid means the code matched and the expiry has not passed.
	OTPValid OTPResult = iota
	// OTPExpired means the expiry timestamp is absent or has passed,
	// regardless of whether the code would otherwise match.
	OTPExpired
	// OTPInvalid means the code did not match the stored hash.
	OTPInvalid
)

// String implements fmt.Stringer for logging.
func (r OTPResult) String() string {
	switch r {
	case OTPValid:
		return "valid"
	case OTPExpired:
		return "expired"
	case OTPInvalid:
		return "invalid"
	}
	return "unknown"
}

// EvaluateResetOTP checks the supplied code against the reset-OTP state on the
// user record. Expiry is checked first so an expired-but-correct code still
// reports expired.
func EvaluateResetOTP(user domain.User, code string, now time.Time) OTPResult {
	if user.ResetPasswordOTPExpires == nil || now.After(*user.ResetPasswordOTPExpires) {
		return OTPExpired
	}
	if user.ResetPasswordOTP == nil || !security.CompareOTP(code, *user.ResetPasswordOTP) {
		return OTPInvalid
	}
	return OTPValid
}
