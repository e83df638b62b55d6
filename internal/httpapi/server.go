package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"musiccatalog/internal/auth"
	"musiccatalog/internal/hateoas"
	"musiccatalog/internal/logging"
	"musiccatalog/internal/models"
	"musiccatalog/internal/projection"
	"musiccatalog/internal/relations"
	"musiccatalog/internal/store"
)

// Repository is the persistence contract the handlers need for one entity.
type Repository[T any] interface {
	GetAll(ctx context.Context, includes ...string) ([]*T, error)
	GetSingleByCondition(ctx context.Context, cond store.Condition[T], includes ...string) (*T, error)
	Create(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, entity *T) (*T, error)
	Delete(ctx context.Context, entity *T) error
}

// Repositories groups the catalog repositories.
type Repositories struct {
	Songs     Repository[models.Song]
	Albums    Repository[models.Album]
	Artists   Repository[models.Artist]
	Genres    Repository[models.Genre]
	Playlists Repository[models.Playlist]
}

// CredentialVerifier checks a username and password.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (*models.User, error)
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	IssueToken(user *models.User) (string, time.Time, error)
	Verify(token string) (*auth.Claims, error)
}

// Config holds optional server settings.
type Config struct {
	// BaseURL makes generated links absolute when set.
	BaseURL string
	// TokenLimiter throttles the token endpoint. Nil disables throttling.
	TokenLimiter *rate.Limiter
	// Ready backs /ready. Nil reports ready.
	Ready func(ctx context.Context) error
}

// Server wires HTTP handlers to the catalog repositories.
type Server struct {
	router      *mux.Router
	links       *hateoas.Assembler
	mapper      *projection.Mapper
	repos       Repositories
	credentials CredentialVerifier
	tokens      TokenService
	limiter     *rate.Limiter
	ready       func(ctx context.Context) error
}

// New configures a Server and registers its routes.
func New(repos Repositories, mapper *projection.Mapper, credentials CredentialVerifier, tokens TokenService, cfg Config) *Server {
	router := mux.NewRouter()

	limiter := cfg.TokenLimiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	s := &Server{
		router:      router,
		links:       hateoas.NewAssembler(hateoas.NewRouterURLs(router, cfg.BaseURL)),
		mapper:      mapper,
		repos:       repos,
		credentials: credentials,
		tokens:      tokens,
		limiter:     limiter,
		ready:       cfg.Ready,
	}
	s.registerRoutes()
	return s
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)

	s.router.HandleFunc("/api", s.handleHome).Methods(http.MethodGet).Name("home")
	s.router.HandleFunc("/api/token", s.handleToken).Methods(http.MethodPost).Name("token")

	api := s.router.PathPrefix("/api").Subrouter()
	requireAuth := auth.RequireBearer(s.tokens)

	albumSongs := hateoas.Relation{Parent: hateoas.Albums, Child: hateoas.Songs}
	artistAlbums := hateoas.Relation{Parent: hateoas.Artists, Child: hateoas.Albums}
	genreSongs := hateoas.Relation{Parent: hateoas.Genres, Child: hateoas.Songs}
	genreAlbums := hateoas.Relation{Parent: hateoas.Genres, Child: hateoas.Albums}
	playlistSongs := hateoas.Relation{Parent: hateoas.Playlists, Child: hateoas.Songs}

	registerResource(api, requireAuth, &resource[models.Song, projection.SongRead, projection.SongWrite]{
		kind:  hateoas.Songs,
		repo:  s.repos.Songs,
		pair:  s.mapper.Songs,
		links: s.links,
	})
	registerResource(api, nil, &resource[models.Album, projection.AlbumRead, projection.AlbumWrite]{
		kind:    hateoas.Albums,
		repo:    s.repos.Albums,
		pair:    s.mapper.Albums,
		links:   s.links,
		related: &albumSongs,
	})
	registerResource(api, nil, &resource[models.Artist, projection.ArtistRead, projection.ArtistWrite]{
		kind:    hateoas.Artists,
		repo:    s.repos.Artists,
		pair:    s.mapper.Artists,
		links:   s.links,
		related: &artistAlbums,
	})
	registerResource(api, nil, &resource[models.Genre, projection.GenreRead, projection.GenreWrite]{
		kind:    hateoas.Genres,
		repo:    s.repos.Genres,
		pair:    s.mapper.Genres,
		links:   s.links,
		related: &genreSongs,
	})
	registerResource(api, nil, &resource[models.Playlist, projection.PlaylistRead, projection.PlaylistWrite]{
		kind:    hateoas.Playlists,
		repo:    s.repos.Playlists,
		pair:    s.mapper.Playlists,
		links:   s.links,
		related: &playlistSongs,
	})

	registerChildren(api, &children[models.Album, models.Song, projection.SongRead, projection.SongWrite]{
		rel: albumSongs,
		editor: relations.NewEditor[models.Album, models.Song](s.repos.Albums, s.repos.Songs, models.AlbumSongs,
			func(a *models.Album) *[]models.Song { return &a.Songs }),
		pair:  s.mapper.Songs,
		links: s.links,
	})
	registerChildren(api, &children[models.Artist, models.Album, projection.AlbumRead, projection.AlbumWrite]{
		rel: artistAlbums,
		editor: relations.NewEditor[models.Artist, models.Album](s.repos.Artists, s.repos.Albums, models.ArtistAlbums,
			func(a *models.Artist) *[]models.Album { return &a.Albums }),
		pair:     s.mapper.Albums,
		links:    s.links,
		readOnly: true,
	})
	registerChildren(api, &children[models.Genre, models.Song, projection.SongRead, projection.SongWrite]{
		rel: genreSongs,
		editor: relations.NewEditor[models.Genre, models.Song](s.repos.Genres, s.repos.Songs, models.GenreSongs,
			func(g *models.Genre) *[]models.Song { return &g.Songs }),
		pair:  s.mapper.Songs,
		links: s.links,
	})
	registerChildren(api, &children[models.Genre, models.Album, projection.AlbumRead, projection.AlbumWrite]{
		rel: genreAlbums,
		editor: relations.NewEditor[models.Genre, models.Album](s.repos.Genres, s.repos.Albums, models.GenreAlbums,
			func(g *models.Genre) *[]models.Album { return &g.Albums }),
		pair:  s.mapper.Albums,
		links: s.links,
	})
	registerChildren(api, &children[models.Playlist, models.Song, projection.SongRead, projection.SongWrite]{
		rel: playlistSongs,
		editor: relations.NewEditor[models.Playlist, models.Song](s.repos.Playlists, s.repos.Songs, models.PlaylistSongs,
			func(p *models.Playlist) *[]models.Song { return &p.Songs }),
		pair:  s.mapper.Songs,
		links: s.links,
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps the error taxonomy onto HTTP status codes. Unclassified
// errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.WithContext(r.Context()).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		message = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrConcurrency), errors.Is(err, store.ErrHasDependents):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", store.ErrValidation, err)
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", store.ErrValidation, raw)
	}
	return id, nil
}
