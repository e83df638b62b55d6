package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"musiccatalog/internal/auth"
	"musiccatalog/internal/models"
	"musiccatalog/internal/relations"
	"musiccatalog/internal/store"
)

const (
	demoUsername = "demo"
	demoPassword = "demo123"
	demoPlaylist = "Demo Mix"
)

type seedAlbum struct {
	Artist string
	Title  string
	Genre  string
	Tracks []string
}

// demoCatalog is written through the same repositories as API traffic, so
// every name must fit the description column.
var demoCatalog = []seedAlbum{
	{Artist: "Queen", Title: "The Game", Genre: "Rock", Tracks: []string{"Play the Game", "Save Me", "Dragon Attack"}},
	{Artist: "Portishead", Title: "Dummy", Genre: "Trip Hop", Tracks: []string{"Mysterons", "Sour Times", "Glory Box"}},
	{Artist: "Massive Attack", Title: "Mezzanine", Genre: "Trip Hop", Tracks: []string{"Angel", "Teardrop", "Inertia Creeps"}},
	{Artist: "Radiohead", Title: "OK Computer", Genre: "Rock", Tracks: []string{"Airbag", "No Surprises", "Lucky"}},
}

func bootstrapDemoData(ctx context.Context, dataStore *store.Store) error {
	if err := ensureDemoUser(ctx, dataStore); err != nil {
		return err
	}
	if err := ensureDemoCatalog(ctx, dataStore); err != nil {
		return err
	}
	return nil
}

func ensureDemoUser(ctx context.Context, dataStore *store.Store) error {
	_, err := dataStore.Users.GetSingleByCondition(ctx, auth.ByUsername(demoUsername))
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("lookup demo user: %w", err)
	}

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}
	if _, err := dataStore.Users.Create(ctx, &models.User{
		Username:     demoUsername,
		PasswordHash: hash,
		DisplayName:  "Demo User",
		Email:        "demo@example.com",
	}); err != nil {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}

	log.Info().Str("username", demoUsername).Msg("Created demo user")
	return nil
}

func ensureDemoCatalog(ctx context.Context, dataStore *store.Store) error {
	existing, err := dataStore.Albums.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("count demo albums: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	albumSongs := relations.NewEditor[models.Album, models.Song](dataStore.Albums, dataStore.Songs, models.AlbumSongs,
		func(a *models.Album) *[]models.Song { return &a.Songs })
	genreAlbums := relations.NewEditor[models.Genre, models.Album](dataStore.Genres, dataStore.Albums, models.GenreAlbums,
		func(g *models.Genre) *[]models.Album { return &g.Albums })
	playlistSongs := relations.NewEditor[models.Playlist, models.Song](dataStore.Playlists, dataStore.Songs, models.PlaylistSongs,
		func(p *models.Playlist) *[]models.Song { return &p.Songs })

	artists := make(map[string]int64)
	genres := make(map[string]int64)

	playlist, err := dataStore.Playlists.Create(ctx, &models.Playlist{Description: demoPlaylist})
	if err != nil {
		return fmt.Errorf("insert demo playlist: %w", err)
	}

	for _, seed := range demoCatalog {
		artistID, ok := artists[seed.Artist]
		if !ok {
			artist, err := dataStore.Artists.Create(ctx, &models.Artist{Description: seed.Artist})
			if err != nil {
				return fmt.Errorf("insert demo artist %q: %w", seed.Artist, err)
			}
			artistID = artist.ID
			artists[seed.Artist] = artistID
		}

		genreID, ok := genres[seed.Genre]
		if !ok {
			genre, err := dataStore.Genres.Create(ctx, &models.Genre{Description: seed.Genre})
			if err != nil {
				return fmt.Errorf("insert demo genre %q: %w", seed.Genre, err)
			}
			genreID = genre.ID
			genres[seed.Genre] = genreID
		}

		album, err := dataStore.Albums.Create(ctx, &models.Album{Description: seed.Title, ArtistID: &artistID})
		if err != nil {
			return fmt.Errorf("insert demo album %q: %w", seed.Title, err)
		}
		if _, err := genreAlbums.Attach(ctx, genreID, album.ID); err != nil {
			return fmt.Errorf("attach demo album %q: %w", seed.Title, err)
		}

		for i, track := range seed.Tracks {
			song, err := dataStore.Songs.Create(ctx, &models.Song{Description: track})
			if err != nil {
				return fmt.Errorf("insert demo song %q: %w", track, err)
			}
			if _, err := albumSongs.Attach(ctx, album.ID, song.ID); err != nil {
				return fmt.Errorf("attach demo song %q: %w", track, err)
			}
			if i == 0 {
				if _, err := playlistSongs.Attach(ctx, playlist.ID, song.ID); err != nil {
					return fmt.Errorf("attach demo playlist song %q: %w", track, err)
				}
			}
		}
	}

	log.Info().Int("albums", len(demoCatalog)).Msg("Seeded demo catalog")
	return nil
}
