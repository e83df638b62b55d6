// Package auth issues and verifies bearer tokens for the catalog API.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"musiccatalog/internal/models"
)

var (
	// ErrUnauthorized indicates a missing, malformed or expired token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// DefaultTTL is the lifetime of issued tokens when none is configured.
const DefaultTTL = 10 * time.Minute

// Claims carries the user identity inside a token.
type Claims struct {
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
	UserName    string `json:"userName"`
	Email       string `json:"email"`
	jwt.RegisteredClaims
}

// IssuerConfig configures token signing.
type IssuerConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer creates an Issuer from cfg.
func NewIssuer(cfg IssuerConfig) *Issuer {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// IssueToken signs a token for user and returns it with its expiry.
func (i *Issuer) IssueToken(user *models.User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := i.now()
	expires := now.Add(i.ttl)
	claims := Claims{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		UserName:    user.Username,
		Email:       user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses token and checks signature, expiry, issuer and audience.
func (i *Issuer) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims, nil
}
