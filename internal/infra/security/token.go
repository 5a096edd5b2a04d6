package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/arklim/user-permission-service/internal/core/port"
)

// ErrInvalidToken is the uniform verification failure. Signature, issuer,
// audience, and expiry problems all collapse into it so the transport
// layer can not leak which check failed.
var ErrInvalidToken = errors.New("invalid token")

const minSecretBytes = 32

// AccessClaims carries identity and permission claims inside the signed
// token. Permissions are a point-in-time snapshot: a role change after
// issuance does not touch an outstanding token.
type AccessClaims struct {
	DisplayName string   `json:"name,omitempty"`
	Permissions []string `json:"permission,omitempty"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the claim set contains code exactly.
func (c *AccessClaims) HasPermission(code string) bool {
	for _, p := range c.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// TokenIssuer issues and verifies HMAC-SHA256 signed access tokens.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	leeway   time.Duration
	clock    port.Clock
}

// TokenIssuerOption customizes a TokenIssuer.
type TokenIssuerOption func(*TokenIssuer)

// WithTokenClock injects a deterministic clock for expiry tests.
func WithTokenClock(clock port.Clock) TokenIssuerOption {
	return func(t *TokenIssuer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithLeeway permits bounded clock skew during verification. Default is
// zero: a token is rejected the instant it expires.
func WithLeeway(leeway time.Duration) TokenIssuerOption {
	return func(t *TokenIssuer) {
		if leeway > 0 {
			t.leeway = leeway
		}
	}
}

// NewTokenIssuer validates the signing configuration. The secret must be
// at least 256 bits.
func NewTokenIssuer(secret, issuer, audience string, ttl time.Duration, opts ...TokenIssuerOption) (*TokenIssuer, error) {
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("token secret must be at least %d bytes, got %d", minSecretBytes, len(secret))
	}
	if issuer == "" {
		return nil, fmt.Errorf("token issuer is required")
	}
	if audience == "" {
		return nil, fmt.Errorf("token audience is required")
	}
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}

	t := &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		clock:    port.SystemClock(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TTL exposes the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue signs a token for the subject carrying the display name and the
// exact permission set. The jti claim reserves space for future
// revocation; nothing consumes it today.
func (t *TokenIssuer) Issue(userID, displayName string, permissions []string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}

	now := t.clock.Now()
	claims := AccessClaims{
		DisplayName: displayName,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify validates signature, issuer, audience, and expiry. Any failure
// is reported uniformly as ErrInvalidToken.
func (t *TokenIssuer) Verify(token string) (*AccessClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(t.leeway),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil || parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
