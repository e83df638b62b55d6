package store

import (
	"errors"
	"strings"

	"musiccatalog/internal/models"
)

var errDescriptionRequired = errors.New("description is required")

func requireDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return errDescriptionRequired
	}
	return nil
}

// SongSchema maps models.Song onto the songs table. album_id is maintained
// by the album song collection.
var SongSchema = &Schema[models.Song]{
	Table:   "songs",
	Columns: []string{"description"},
	Derived: []string{"album_id"},
	Fields: func(s *models.Song) []any {
		return []any{&s.Description, &s.AlbumID}
	},
	Values: func(s *models.Song) []any {
		return []any{s.Description}
	},
	ID:      func(s *models.Song) *int64 { return &s.ID },
	Version: func(s *models.Song) *int64 { return &s.Version },
	Validate: func(s *models.Song) error {
		return requireDescription(s.Description)
	},
}

// AlbumSchema maps models.Album onto the albums table. genre_id is maintained
// by the genre album collection.
var AlbumSchema = &Schema[models.Album]{
	Table:   "albums",
	Columns: []string{"description", "artist_id"},
	Derived: []string{"genre_id"},
	Fields: func(a *models.Album) []any {
		return []any{&a.Description, &a.ArtistID, &a.GenreID}
	},
	Values: func(a *models.Album) []any {
		return []any{a.Description, a.ArtistID}
	},
	ID:      func(a *models.Album) *int64 { return &a.ID },
	Version: func(a *models.Album) *int64 { return &a.Version },
	Validate: func(a *models.Album) error {
		return requireDescription(a.Description)
	},
	Relations: []Relation[models.Album]{
		&Collection[models.Album, models.Song]{
			RelationName: models.AlbumSongs,
			JoinTable:    "album_songs",
			ParentColumn: "album_id",
			ChildColumn:  "song_id",
			BackRef:      "album_id",
			SetBackRef:   func(s *models.Song, id *int64) { s.AlbumID = id },
			Child:        SongSchema,
			Items:        func(a *models.Album) *[]models.Song { return &a.Songs },
		},
	},
}

// ArtistSchema maps models.Artist onto the artists table.
var ArtistSchema = &Schema[models.Artist]{
	Table:   "artists",
	Columns: []string{"description"},
	Fields: func(a *models.Artist) []any {
		return []any{&a.Description}
	},
	Values: func(a *models.Artist) []any {
		return []any{a.Description}
	},
	ID:      func(a *models.Artist) *int64 { return &a.ID },
	Version: func(a *models.Artist) *int64 { return &a.Version },
	Validate: func(a *models.Artist) error {
		return requireDescription(a.Description)
	},
	Relations: []Relation[models.Artist]{
		&Owned[models.Artist, models.Album]{
			RelationName: models.ArtistAlbums,
			ForeignKey:   "artist_id",
			Child:        AlbumSchema,
			Items:        func(a *models.Artist) *[]models.Album { return &a.Albums },
		},
	},
}

// GenreSchema maps models.Genre onto the genres table.
var GenreSchema = &Schema[models.Genre]{
	Table:   "genres",
	Columns: []string{"description"},
	Fields: func(g *models.Genre) []any {
		return []any{&g.Description}
	},
	Values: func(g *models.Genre) []any {
		return []any{g.Description}
	},
	ID:      func(g *models.Genre) *int64 { return &g.ID },
	Version: func(g *models.Genre) *int64 { return &g.Version },
	Validate: func(g *models.Genre) error {
		return requireDescription(g.Description)
	},
	Relations: []Relation[models.Genre]{
		&Collection[models.Genre, models.Song]{
			RelationName: models.GenreSongs,
			JoinTable:    "genre_songs",
			ParentColumn: "genre_id",
			ChildColumn:  "song_id",
			Child:        SongSchema,
			Items:        func(g *models.Genre) *[]models.Song { return &g.Songs },
		},
		&Collection[models.Genre, models.Album]{
			RelationName: models.GenreAlbums,
			JoinTable:    "genre_albums",
			ParentColumn: "genre_id",
			ChildColumn:  "album_id",
			BackRef:      "genre_id",
			SetBackRef:   func(a *models.Album, id *int64) { a.GenreID = id },
			Child:        AlbumSchema,
			Items:        func(g *models.Genre) *[]models.Album { return &g.Albums },
		},
	},
}

// PlaylistSchema maps models.Playlist onto the playlists table.
var PlaylistSchema = &Schema[models.Playlist]{
	Table:   "playlists",
	Columns: []string{"description"},
	Fields: func(p *models.Playlist) []any {
		return []any{&p.Description}
	},
	Values: func(p *models.Playlist) []any {
		return []any{p.Description}
	},
	ID:      func(p *models.Playlist) *int64 { return &p.ID },
	Version: func(p *models.Playlist) *int64 { return &p.Version },
	Validate: func(p *models.Playlist) error {
		return requireDescription(p.Description)
	},
	Relations: []Relation[models.Playlist]{
		&Collection[models.Playlist, models.Song]{
			RelationName: models.PlaylistSongs,
			JoinTable:    "playlist_songs",
			ParentColumn: "playlist_id",
			ChildColumn:  "song_id",
			Child:        SongSchema,
			Items:        func(p *models.Playlist) *[]models.Song { return &p.Songs },
		},
	},
}

// UserSchema maps models.User onto the users table.
var UserSchema = &Schema[models.User]{
	Table:   "users",
	Columns: []string{"username", "password_hash", "display_name", "email"},
	Fields: func(u *models.User) []any {
		return []any{&u.Username, &u.PasswordHash, &u.DisplayName, &u.Email}
	},
	Values: func(u *models.User) []any {
		return []any{u.Username, u.PasswordHash, u.DisplayName, u.Email}
	},
	ID:      func(u *models.User) *int64 { return &u.ID },
	Version: func(u *models.User) *int64 { return &u.Version },
	Validate: func(u *models.User) error {
		if strings.TrimSpace(u.Username) == "" {
			return errors.New("username is required")
		}
		if len(u.PasswordHash) == 0 {
			return errors.New("password hash is required")
		}
		return nil
	},
}
