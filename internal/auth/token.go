package auth

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/insideout/userdb/internal/domain"
)

// TokenLifetime is fixed; a token is never renewed without a fresh login.
const TokenLifetime = time.Hour

var (
	// ErrConfiguration means no signing secret was supplied.
	ErrConfiguration = errors.New("auth: signing secret not configured")
	// ErrInvalidIdentity means the identity lacks a subject id or role.
	ErrInvalidIdentity = errors.New("auth: identity requires subject id and role")
	// ErrMalformedToken covers segment count, encoding and claim structure failures.
	ErrMalformedToken = errors.New("auth: malformed token")
	// ErrInvalidSignature means the token was altered or signed with another secret.
	ErrInvalidSignature = errors.New("auth: invalid token signature")
	// ErrExpiredToken means the signature is good but exp has passed.
	ErrExpiredToken = errors.New("auth: token expired")
)

// Identity is a verified identity record handed over by the credential store.
type Identity struct {
	SubjectID string
	Email     string
	Role      domain.Role
}

// Claims describes the token payload.
type Claims struct {
	ID        string      `json:"id" validate:"required"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role" validate:"required"`
	IssuedAt  int64       `json:"iat"`
	ExpiresAt int64       `json:"exp" validate:"required,gt=0"`
}

// Expiry returns exp as a time.
func (c Claims) Expiry() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c Claims) GetIssuer() (string, error)              { return "", nil }
func (c Claims) GetSubject() (string, error)             { return c.ID, nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// TokenManager issues and verifies HS256 session tokens. It holds no mutable
// state after construction and is safe for concurrent use.
type TokenManager struct {
	secret   []byte
	now      func() time.Time
	validate *validator.Validate
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a manager bound to secret.
func NewTokenManager(secret string, opts ...TokenOption) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrConfiguration
	}
	tm := &TokenManager{
		secret:   []byte(secret),
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// Issue signs a token for identity, valid for TokenLifetime from now.
func (tm *TokenManager) Issue(identity Identity) (string, *Claims, error) {
	if tm == nil || len(tm.secret) == 0 {
		return "", nil, ErrConfiguration
	}
	if identity.SubjectID == "" || identity.Role == "" {
		return "", nil, ErrInvalidIdentity
	}

	issuedAt := tm.now().Unix()
	claims := &Claims{
		ID:        identity.SubjectID,
		Email:     identity.Email,
		Role:      identity.Role,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt + int64(TokenLifetime/time.Second),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks structure, then signature, then claims, then expiry.
func (tm *TokenManager) Verify(token string) (*Claims, error) {
	if tm == nil || len(tm.secret) == 0 {
		return nil, ErrConfiguration
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: empty segment", ErrMalformedToken)
		}
	}

	expected, err := tm.sign(parts[0] + "." + parts[1])
	if err != nil {
		return nil, err
	}
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, ErrInvalidSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: claims encoding: %v", ErrMalformedToken, err)
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: claims json: %v", ErrMalformedToken, err)
	}
	if err := tm.validate.Struct(claims); err != nil {
		return nil, fmt.Errorf("%w: claims structure: %v", ErrMalformedToken, err)
	}

	if claims.ExpiresAt < tm.now().Unix() {
		return nil, ErrExpiredToken
	}
	return &claims, nil
}

func (tm *TokenManager) sign(signingString string) (string, error) {
	sig, err := jwt.SigningMethodHS256.Sign(signingString, tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sig), nil
}

// FailureReason names a verification failure for internal logging only.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "unknown"
	}
}
