package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// GenerateNumericCode returns a random numeric string of the given length.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	digits := make([]byte, length)
	for i, b := range buf {
		digits[i] = '0' + (b % 10)
	}

	return string(digits), nil
}

// GenerateOTP produces a one-time numeric code of the given length together
// with its one-way hash. The hash is what gets persisted; the plaintext code
// is delivered out-of-band and never stored.
func GenerateOTP(length int) (code string, hash string, err error) {
	code, err = GenerateNumericCode(length)
	if err != nil {
		return "", "", err
	}
	return code, HashOTP(code), nil
}

// HashOTP calculates a SHA-256 hash of the provided code.
func HashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// CompareOTP reports whether the supplied code hashes to the stored value
// using a constant-time comparison.
func CompareOTP(code, storedHash string) bool {
	if code == "" || storedHash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashOTP(code)), []byte(storedHash)) == 1
}
