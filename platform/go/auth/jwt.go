package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AccessTokenTTL bounds how long an access credential stays valid.
	AccessTokenTTL = 15 * time.Minute
	// RefreshTokenTTL bounds how long a refresh credential stays valid.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken covers every expected verification failure: bad signature,
// malformed payload, expiry, wrong algorithm. Callers must not distinguish
// these cases in responses.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed payload carried by access and refresh tokens.
type Claims struct {
	Role     Role   `json:"role"`
	SchoolID string `json:"schoolId"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256-signed credentials.
type Tokens struct {
	secret        []byte
	refreshSecret []byte
	now           func() time.Time
}

// NewTokens builds a token service from the two signing secrets. The refresh
// secret must differ from the access secret so one class of token can never
// stand in for the other.
func NewTokens(secret, refreshSecret []byte) (*Tokens, error) {
	if len(secret) == 0 || len(refreshSecret) == 0 {
		return nil, errors.New("signing secrets are required")
	}
	return &Tokens{secret: secret, refreshSecret: refreshSecret, now: time.Now}, nil
}

// IssueAccess mints a short-lived access token for the principal.
func (t *Tokens) IssueAccess(userID uuid.UUID, role Role, schoolID uuid.UUID) (string, error) {
	return t.issue(t.secret, userID, role, schoolID, AccessTokenTTL)
}

// IssueRefresh mints a long-lived refresh token for the principal.
func (t *Tokens) IssueRefresh(userID uuid.UUID, role Role, schoolID uuid.UUID) (string, error) {
	return t.issue(t.refreshSecret, userID, role, schoolID, RefreshTokenTTL)
}

func (t *Tokens) issue(secret []byte, userID uuid.UUID, role Role, schoolID uuid.UUID, ttl time.Duration) (string, error) {
	now := t.now().UTC()
	claims := Claims{
		Role:     role,
		SchoolID: schoolID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccess validates an access token and extracts the principal.
func (t *Tokens) VerifyAccess(token string) (Principal, error) {
	return t.verify(t.secret, token)
}

// VerifyRefresh validates a refresh token and extracts the principal.
func (t *Tokens) VerifyRefresh(token string) (Principal, error) {
	return t.verify(t.refreshSecret, token)
}

func (t *Tokens) verify(secret []byte, token string) (Principal, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	schoolID, err := uuid.Parse(claims.SchoolID)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return Principal{}, ErrInvalidToken
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return Principal{
		UserID:    userID,
		Role:      claims.Role,
		SchoolID:  schoolID,
		ExpiresAt: expiresAt,
	}, nil
}
