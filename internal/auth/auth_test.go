package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musiccatalog/internal/models"
	"musiccatalog/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(now time.Time) *Issuer {
	i := NewIssuer(IssuerConfig{Secret: testSecret, Issuer: "musiccatalog", Audience: "musiccatalog-clients", TTL: 10 * time.Minute})
	i.now = func() time.Time { return now }
	return i
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(now)
	user := &models.User{ID: 7, Username: "freddie", DisplayName: "Freddie", Email: "freddie@example.com"}

	token, expires, err := issuer.IssueToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(10*time.Minute), expires, time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "freddie", claims.UserName)
	assert.Equal(t, "Freddie", claims.DisplayName)
	assert.Equal(t, "freddie@example.com", claims.Email)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestIssueTokenRequiresUser(t *testing.T) {
	_, _, err := newTestIssuer(time.Now()).IssueToken(nil)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDefaultTTL(t *testing.T) {
	issuer := NewIssuer(IssuerConfig{Secret: testSecret})
	assert.Equal(t, DefaultTTL, issuer.ttl)
}

func TestVerifyRejects(t *testing.T) {
	now := time.Now()
	user := &models.User{ID: 1, Username: "demo"}

	expired, _, err := newTestIssuer(now.Add(-time.Hour)).IssueToken(user)
	require.NoError(t, err)

	otherAudience := NewIssuer(IssuerConfig{Secret: testSecret, Issuer: "musiccatalog", Audience: "someone-else"})
	wrongAudience, _, err := otherAudience.IssueToken(user)
	require.NoError(t, err)

	otherSecret := NewIssuer(IssuerConfig{Secret: "a-completely-different-secret", Issuer: "musiccatalog", Audience: "musiccatalog-clients"})
	wrongSignature, _, err := otherSecret.IssueToken(user)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":           "",
		"garbage":         "not.a.token",
		"expired":         expired,
		"wrong audience":  wrongAudience,
		"wrong signature": wrongSignature,
	}

	issuer := newTestIssuer(now)
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(token)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestParseBearerToken(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"Bearer":          "",
		"Basic abc":       "",
		"Bearer abc":      "abc",
		"bearer  abc ":    "abc",
		"BEARER x.y.z":    "x.y.z",
		"Token something": "",
	}
	for header, want := range tests {
		assert.Equal(t, want, ParseBearerToken(header), "header %q", header)
	}
}

func TestRequireBearer(t *testing.T) {
	issuer := newTestIssuer(time.Now())
	token, _, err := issuer.IssueToken(&models.User{ID: 42, Username: "brian"})
	require.NoError(t, err)

	var seen *Claims
	handler := RequireBearer(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		seen = claims
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/songs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	assert.Nil(t, seen)

	req = httptest.NewRequest(http.MethodGet, "/api/songs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(42), seen.UserID)
}

type fakeUsers struct {
	users []models.User
	err   error
}

func (f fakeUsers) GetSingleByCondition(_ context.Context, cond store.Condition[models.User], _ ...string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.users {
		if cond.Matches(&f.users[i]) {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func TestVerifyCredentials(t *testing.T) {
	hash, err := HashPassword("queen-forever")
	require.NoError(t, err)

	authn := NewAuthenticator(fakeUsers{users: []models.User{
		{ID: 1, Username: "roger", PasswordHash: hash},
	}})
	ctx := context.Background()

	user, err := authn.VerifyCredentials(ctx, " roger ", "queen-forever")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	_, err = authn.VerifyCredentials(ctx, "roger", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = authn.VerifyCredentials(ctx, "john", "queen-forever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = authn.VerifyCredentials(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyCredentialsStorageFailure(t *testing.T) {
	authn := NewAuthenticator(fakeUsers{err: store.ErrStorage})

	_, err := authn.VerifyCredentials(context.Background(), "roger", "pw")
	assert.ErrorIs(t, err, store.ErrStorage)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}

func TestHashPasswordRequiresValue(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, store.ErrValidation)
}
