package main

import (
	"net/http"

	"golang.org/x/time/rate"

	"musiccatalog/internal/auth"
	"musiccatalog/internal/config"
	"musiccatalog/internal/http/middleware"
	"musiccatalog/internal/httpapi"
	"musiccatalog/internal/projection"
	"musiccatalog/internal/store"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store) http.Handler {
	issuer := auth.NewIssuer(auth.IssuerConfig{
		Secret:   cfg.Security.JWTSecret,
		Issuer:   cfg.Security.JWTIssuer,
		Audience: cfg.Security.JWTAudience,
		TTL:      cfg.Security.JWTTTL,
	})

	api := httpapi.New(httpapi.Repositories{
		Songs:     dataStore.Songs,
		Albums:    dataStore.Albums,
		Artists:   dataStore.Artists,
		Genres:    dataStore.Genres,
		Playlists: dataStore.Playlists,
	}, projection.NewMapper(), auth.NewAuthenticator(dataStore.Users), issuer, httpapi.Config{
		BaseURL:      cfg.Server.PublicBaseURL,
		TokenLimiter: rate.NewLimiter(rate.Limit(cfg.Security.TokenRateLimit), cfg.Security.TokenBurst),
		Ready:        dataStore.Ping,
	})

	return chain(api.Routes(),
		middleware.Recovery(),
		middleware.RequestLogging(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
}

// chain applies mws so the first one is outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
