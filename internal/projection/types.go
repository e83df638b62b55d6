package projection

// SongRead is the public shape of a song.
type SongRead struct {
	SongID          int64  `json:"songId"`
	SongDescription string `json:"songDescription"`
	AlbumID         *int64 `json:"albumId,omitempty"`
}

// SongWrite is accepted on song create and update.
type SongWrite struct {
	SongID          *int64 `json:"songId,omitempty"`
	SongDescription string `json:"songDescription"`
}

// AlbumRead is the public shape of an album.
type AlbumRead struct {
	AlbumID          int64  `json:"albumId"`
	AlbumDescription string `json:"albumDescription"`
	ArtistID         *int64 `json:"artistId,omitempty"`
	GenreID          *int64 `json:"genreId,omitempty"`
}

// AlbumWrite is accepted on album create and update. ArtistID replaces the
// album's artist; genre membership is edited through the genre routes.
type AlbumWrite struct {
	AlbumID          *int64 `json:"albumId,omitempty"`
	AlbumDescription string `json:"albumDescription"`
	ArtistID         *int64 `json:"artistId,omitempty"`
}

type ArtistRead struct {
	ArtistID          int64  `json:"artistId"`
	ArtistDescription string `json:"artistDescription"`
}

type ArtistWrite struct {
	ArtistID          *int64 `json:"artistId,omitempty"`
	ArtistDescription string `json:"artistDescription"`
}

type GenreRead struct {
	GenreID          int64  `json:"genreId"`
	GenreDescription string `json:"genreDescription"`
}

type GenreWrite struct {
	GenreID          *int64 `json:"genreId,omitempty"`
	GenreDescription string `json:"genreDescription"`
}

type PlaylistRead struct {
	PlaylistID          int64  `json:"playlistId"`
	PlaylistDescription string `json:"playlistDescription"`
}

type PlaylistWrite struct {
	PlaylistID          *int64 `json:"playlistId,omitempty"`
	PlaylistDescription string `json:"playlistDescription"`
}
