package models

// Relation names accepted by the repositories for eager loading.
const (
	AlbumSongs    = "AlbumSongs"
	ArtistAlbums  = "ArtistAlbums"
	GenreSongs    = "GenreSongs"
	GenreAlbums   = "GenreAlbums"
	PlaylistSongs = "PlaylistSongs"
)

// Entity is implemented by every catalog record with a numeric identity.
type Entity interface {
	GetID() int64
}

// Song is a single track. AlbumID points back at the album listing it, if any.
type Song struct {
	ID          int64  `json:"id" db:"id"`
	Description string `json:"description" db:"description"`
	AlbumID     *int64 `json:"album_id,omitempty" db:"album_id"`
	Version     int64  `json:"version" db:"version"`
}

// Album groups an ordered list of songs. A nil Songs slice means the
// relation was not loaded.
type Album struct {
	ID          int64  `json:"id" db:"id"`
	Description string `json:"description" db:"description"`
	ArtistID    *int64 `json:"artist_id,omitempty" db:"artist_id"`
	GenreID     *int64 `json:"genre_id,omitempty" db:"genre_id"`
	Version     int64  `json:"version" db:"version"`
	Songs       []Song `json:"songs,omitempty"`
}

// Artist owns the albums whose ArtistID references it.
type Artist struct {
	ID          int64   `json:"id" db:"id"`
	Description string  `json:"description" db:"description"`
	Version     int64   `json:"version" db:"version"`
	Albums      []Album `json:"albums,omitempty"`
}

// Genre keeps two independent ordered associations, one for songs and one
// for albums.
type Genre struct {
	ID          int64   `json:"id" db:"id"`
	Description string  `json:"description" db:"description"`
	Version     int64   `json:"version" db:"version"`
	Songs       []Song  `json:"songs,omitempty"`
	Albums      []Album `json:"albums,omitempty"`
}

// Playlist is an ordered list of songs; the same song may appear more than once.
type Playlist struct {
	ID          int64  `json:"id" db:"id"`
	Description string `json:"description" db:"description"`
	Version     int64  `json:"version" db:"version"`
	Songs       []Song `json:"songs,omitempty"`
}

func (s *Song) GetID() int64     { return s.ID }
func (a *Album) GetID() int64    { return a.ID }
func (a *Artist) GetID() int64   { return a.ID }
func (g *Genre) GetID() int64    { return g.ID }
func (p *Playlist) GetID() int64 { return p.ID }
