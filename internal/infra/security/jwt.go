package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/domain"
)

// ErrTokenExpired indicates the token's expiry has passed.
var ErrTokenExpired = errors.New("jwt: token expired")

// ErrTokenInvalid indicates the token is malformed, unsigned by us, or carries
// a foreign issuer or audience.
var ErrTokenInvalid = errors.New("jwt: token invalid")

// AccessClaims is the claims set carried by WanaShip bearer tokens.
type AccessClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenGenerator mints and verifies HMAC-signed bearer tokens carrying
// identity and role claims.
type TokenGenerator struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenGenerator constructs a TokenGenerator from the JWT settings.
func NewTokenGenerator(secret, issuer, audience string, ttl time.Duration) (*TokenGenerator, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &TokenGenerator{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// WithClock injects a custom clock, primarily for testing.
func (g *TokenGenerator) WithClock(now func() time.Time) *TokenGenerator {
	if now != nil {
		g.now = now
	}
	return g
}

// Generate signs a token for the supplied user and role.
func (g *TokenGenerator) Generate(userID string, role domain.Role) (string, error) {
	issuedAt := g.now()

	claims := AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{g.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(g.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies the token signature, expiry, issuer and audience, returning
// the embedded claims.
func (g *TokenGenerator) Parse(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return g.secret, nil
		},
		jwt.WithIssuer(g.issuer),
		jwt.WithAudience(g.audience),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
