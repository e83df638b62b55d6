// Package projection converts catalog entities to and from their wire shapes.
package projection

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"musiccatalog/internal/models"
	"musiccatalog/internal/store"
)

// Description length bounds, in characters.
const (
	MinDescriptionLength = 1
	MaxDescriptionLength = 15
)

var (
	// ErrIDMismatch indicates the body id disagrees with the path id.
	ErrIDMismatch = fmt.Errorf("%w: id in body does not match path", store.ErrValidation)
	// ErrInvalidDescription indicates a description outside the allowed length.
	ErrInvalidDescription = fmt.Errorf("%w: description must be between %d and %d characters",
		store.ErrValidation, MinDescriptionLength, MaxDescriptionLength)
)

// Pair maps entity E to its read projection R and applies write payload W.
type Pair[E, R, W any] struct {
	id          func(*E) int64
	read        func(*E) R
	reverse     func(R) E
	bodyID      func(W) *int64
	description func(W) string
	apply       func(W, string, *E)
	displayName func(*E) string
}

// ID returns the entity identity.
func (p Pair[E, R, W]) ID(e *E) int64 {
	return p.id(e)
}

// Read projects a single entity.
func (p Pair[E, R, W]) Read(e *E) R {
	return p.read(e)
}

// ReadAll projects entities preserving their order.
func (p Pair[E, R, W]) ReadAll(entities []E) []R {
	out := make([]R, len(entities))
	for i := range entities {
		out[i] = p.read(&entities[i])
	}
	return out
}

// Reverse rebuilds an entity from its read projection.
func (p Pair[E, R, W]) Reverse(r R) E {
	return p.reverse(r)
}

// DisplayName returns the human readable label of an entity.
func (p Pair[E, R, W]) DisplayName(e *E) string {
	return p.displayName(e)
}

// Write validates w and copies its scalar fields onto dst. pathID is the id
// addressed by the request; zero means a new entity.
func (p Pair[E, R, W]) Write(pathID int64, w W, dst *E) error {
	if id := p.bodyID(w); id != nil && pathID != 0 && *id != pathID {
		return fmt.Errorf("%w: body %d, path %d", ErrIDMismatch, *id, pathID)
	}

	description := strings.TrimSpace(p.description(w))
	if n := utf8.RuneCountInString(description); n < MinDescriptionLength || n > MaxDescriptionLength {
		return fmt.Errorf("%w: got %d", ErrInvalidDescription, n)
	}

	p.apply(w, description, dst)
	return nil
}

// Mapper holds the mapping pairs for every catalog entity.
type Mapper struct {
	Songs     Pair[models.Song, SongRead, SongWrite]
	Albums    Pair[models.Album, AlbumRead, AlbumWrite]
	Artists   Pair[models.Artist, ArtistRead, ArtistWrite]
	Genres    Pair[models.Genre, GenreRead, GenreWrite]
	Playlists Pair[models.Playlist, PlaylistRead, PlaylistWrite]
}

// NewMapper builds the mapping pairs once for the lifetime of the process.
func NewMapper() *Mapper {
	return &Mapper{
		Songs: Pair[models.Song, SongRead, SongWrite]{
			id: func(s *models.Song) int64 { return s.ID },
			read: func(s *models.Song) SongRead {
				return SongRead{SongID: s.ID, SongDescription: s.Description, AlbumID: s.AlbumID}
			},
			reverse: func(r SongRead) models.Song {
				return models.Song{ID: r.SongID, Description: r.SongDescription, AlbumID: r.AlbumID}
			},
			bodyID:      func(w SongWrite) *int64 { return w.SongID },
			description: func(w SongWrite) string { return w.SongDescription },
			apply: func(_ SongWrite, description string, s *models.Song) {
				s.Description = description
			},
			displayName: func(s *models.Song) string { return s.Description },
		},
		Albums: Pair[models.Album, AlbumRead, AlbumWrite]{
			id: func(a *models.Album) int64 { return a.ID },
			read: func(a *models.Album) AlbumRead {
				return AlbumRead{AlbumID: a.ID, AlbumDescription: a.Description, ArtistID: a.ArtistID, GenreID: a.GenreID}
			},
			reverse: func(r AlbumRead) models.Album {
				return models.Album{ID: r.AlbumID, Description: r.AlbumDescription, ArtistID: r.ArtistID, GenreID: r.GenreID}
			},
			bodyID:      func(w AlbumWrite) *int64 { return w.AlbumID },
			description: func(w AlbumWrite) string { return w.AlbumDescription },
			apply: func(w AlbumWrite, description string, a *models.Album) {
				a.Description = description
				a.ArtistID = w.ArtistID
			},
			displayName: func(a *models.Album) string { return a.Description },
		},
		Artists: Pair[models.Artist, ArtistRead, ArtistWrite]{
			id: func(a *models.Artist) int64 { return a.ID },
			read: func(a *models.Artist) ArtistRead {
				return ArtistRead{ArtistID: a.ID, ArtistDescription: a.Description}
			},
			reverse: func(r ArtistRead) models.Artist {
				return models.Artist{ID: r.ArtistID, Description: r.ArtistDescription}
			},
			bodyID:      func(w ArtistWrite) *int64 { return w.ArtistID },
			description: func(w ArtistWrite) string { return w.ArtistDescription },
			apply: func(_ ArtistWrite, description string, a *models.Artist) {
				a.Description = description
			},
			displayName: func(a *models.Artist) string { return a.Description },
		},
		Genres: Pair[models.Genre, GenreRead, GenreWrite]{
			id: func(g *models.Genre) int64 { return g.ID },
			read: func(g *models.Genre) GenreRead {
				return GenreRead{GenreID: g.ID, GenreDescription: g.Description}
			},
			reverse: func(r GenreRead) models.Genre {
				return models.Genre{ID: r.GenreID, Description: r.GenreDescription}
			},
			bodyID:      func(w GenreWrite) *int64 { return w.GenreID },
			description: func(w GenreWrite) string { return w.GenreDescription },
			apply: func(_ GenreWrite, description string, g *models.Genre) {
				g.Description = description
			},
			displayName: func(g *models.Genre) string { return g.Description },
		},
		Playlists: Pair[models.Playlist, PlaylistRead, PlaylistWrite]{
			id: func(p *models.Playlist) int64 { return p.ID },
			read: func(p *models.Playlist) PlaylistRead {
				return PlaylistRead{PlaylistID: p.ID, PlaylistDescription: p.Description}
			},
			reverse: func(r PlaylistRead) models.Playlist {
				return models.Playlist{ID: r.PlaylistID, Description: r.PlaylistDescription}
			},
			bodyID:      func(w PlaylistWrite) *int64 { return w.PlaylistID },
			description: func(w PlaylistWrite) string { return w.PlaylistDescription },
			apply: func(_ PlaylistWrite, description string, p *models.Playlist) {
				p.Description = description
			},
			displayName: func(p *models.Playlist) string { return p.Description },
		},
	}
}
