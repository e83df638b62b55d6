package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"musiccatalog/internal/logging"
)

type contextKey string

const claimsKey contextKey = "claims"

// Verifier validates bearer tokens.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// RequireBearer rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func RequireBearer(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.Verify(ParseBearerToken(r.Header.Get("Authorization")))
			if err != nil {
				logging.WithContext(r.Context()).Debug().Err(err).Msg("Rejected bearer token")
				w.Header().Set("WWW-Authenticate", `Bearer realm="musiccatalog"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": ErrUnauthorized.Error()})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, logging.UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireBearer.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// ParseBearerToken extracts the token from an Authorization header value.
func ParseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
