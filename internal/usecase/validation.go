package usecase

import (
	"errors"
	"fmt"
)

// ValidationError marks a client input problem whose message is safe to
// return verbatim in an API response.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string { return e.msg }

func validationError(format string, args ...any) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err carries a client-safe validation
// message.
func IsValidationError(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
