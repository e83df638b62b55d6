package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"musiccatalog/internal/models"
	"musiccatalog/internal/store"
)

var dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")

// UserFinder looks up accounts.
type UserFinder interface {
	GetSingleByCondition(ctx context.Context, cond store.Condition[models.User], includes ...string) (*models.User, error)
}

// Authenticator verifies username and password pairs.
type Authenticator struct {
	users UserFinder
}

// NewAuthenticator creates an Authenticator backed by users.
func NewAuthenticator(users UserFinder) *Authenticator {
	return &Authenticator{users: users}
}

// VerifyCredentials returns the matching user or ErrInvalidCredentials.
func (a *Authenticator) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := a.users.GetSingleByCondition(ctx, ByUsername(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ByUsername matches the account with the given username.
func ByUsername(username string) store.Condition[models.User] {
	return store.Equal("username", username, func(u *models.User) bool {
		return u.Username == username
	})
}

// HashPassword hashes a plain text password for storage.
func HashPassword(password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", store.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
