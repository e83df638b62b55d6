package relations

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musiccatalog/internal/models"
	"musiccatalog/internal/store"
)

type memRepo[T any] struct {
	rows      map[int64]T
	id        func(*T) int64
	updates   int
	updateErr error
}

func newMemRepo[T any](id func(*T) int64, items ...T) *memRepo[T] {
	m := &memRepo[T]{rows: make(map[int64]T), id: id}
	for i := range items {
		m.rows[id(&items[i])] = items[i]
	}
	return m
}

func (m *memRepo[T]) GetSingleByCondition(_ context.Context, cond store.Condition[T], _ ...string) (*T, error) {
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		row := m.rows[id]
		if cond.Matches(&row) {
			return &row, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memRepo[T]) Update(_ context.Context, entity *T) (*T, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updates++
	m.rows[m.id(entity)] = *entity
	return entity, nil
}

func songID(s *models.Song) int64   { return s.ID }
func genreID(g *models.Genre) int64 { return g.ID }
func albumID(a *models.Album) int64 { return a.ID }

func genreSongs(g *models.Genre) *[]models.Song { return &g.Songs }
func albumSongs(a *models.Album) *[]models.Song { return &a.Songs }

func descriptions(songs []models.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Description
	}
	return out
}

func TestAttachAppendsAndPersists(t *testing.T) {
	genres := newMemRepo(genreID, models.Genre{ID: 1, Description: "Rock"})
	songs := newMemRepo(songID, models.Song{ID: 7, Description: "Killer Queen"})
	editor := NewEditor[models.Genre, models.Song](genres, songs, models.GenreSongs, genreSongs)

	genre, err := editor.Attach(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"Killer Queen"}, descriptions(genre.Songs))
	assert.Equal(t, 1, genres.updates)

	listed, err := editor.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Killer Queen"}, descriptions(listed))
}

func TestAttachAllowsDuplicates(t *testing.T) {
	genres := newMemRepo(genreID, models.Genre{ID: 1, Description: "Rock"})
	songs := newMemRepo(songID, models.Song{ID: 7, Description: "Killer Queen"})
	editor := NewEditor[models.Genre, models.Song](genres, songs, models.GenreSongs, genreSongs)

	_, err := editor.Attach(context.Background(), 1, 7)
	require.NoError(t, err)
	genre, err := editor.Attach(context.Background(), 1, 7)
	require.NoError(t, err)

	assert.Len(t, genre.Songs, 2)
}

func TestAttachMissingEntities(t *testing.T) {
	genres := newMemRepo(genreID, models.Genre{ID: 1, Description: "Rock"})
	songs := newMemRepo(songID, models.Song{ID: 7, Description: "Killer Queen"})
	editor := NewEditor[models.Genre, models.Song](genres, songs, models.GenreSongs, genreSongs)

	_, err := editor.Attach(context.Background(), 2, 7)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = editor.Attach(context.Background(), 1, 8)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Zero(t, genres.updates)
	assert.Empty(t, genres.rows[1].Songs)
}

func TestDetachShiftsLaterChildren(t *testing.T) {
	albums := newMemRepo(albumID, models.Album{
		ID:          3,
		Description: "Singles",
		Songs: []models.Song{
			{ID: 1, Description: "S1"},
			{ID: 2, Description: "S2"},
		},
	})
	editor := NewEditor[models.Album, models.Song](albums, newMemRepo(songID), models.AlbumSongs, albumSongs)

	album, err := editor.Detach(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"S2"}, descriptions(album.Songs))

	first, err := editor.At(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "S2", first.Description)
}

func TestDetachOutOfRange(t *testing.T) {
	seed := models.Album{
		ID:          3,
		Description: "Singles",
		Songs:       []models.Song{{ID: 1, Description: "S1"}, {ID: 2, Description: "S2"}},
	}

	for _, position := range []int{0, -1, 3} {
		albums := newMemRepo(albumID, seed)
		editor := NewEditor[models.Album, models.Song](albums, newMemRepo(songID), models.AlbumSongs, albumSongs)

		_, err := editor.Detach(context.Background(), 3, position)
		assert.ErrorIs(t, err, ErrPositionOutOfRange, "position %d", position)
		assert.ErrorIs(t, err, store.ErrNotFound, "position %d", position)
		assert.Zero(t, albums.updates)
	}

	empty := newMemRepo(albumID, models.Album{ID: 4, Description: "Empty"})
	editor := NewEditor[models.Album, models.Song](empty, newMemRepo(songID), models.AlbumSongs, albumSongs)
	_, err := editor.Detach(context.Background(), 4, 1)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)
}

func TestDetachFailureLeavesStoredCollection(t *testing.T) {
	albums := newMemRepo(albumID, models.Album{
		ID:          3,
		Description: "Singles",
		Songs:       []models.Song{{ID: 1, Description: "S1"}, {ID: 2, Description: "S2"}},
	})
	albums.updateErr = store.ErrConcurrency
	editor := NewEditor[models.Album, models.Song](albums, newMemRepo(songID), models.AlbumSongs, albumSongs)

	_, err := editor.Detach(context.Background(), 3, 1)
	assert.ErrorIs(t, err, store.ErrConcurrency)
	assert.Equal(t, []string{"S1", "S2"}, descriptions(albums.rows[3].Songs))
}

func TestAtOutOfRange(t *testing.T) {
	albums := newMemRepo(albumID, models.Album{ID: 3, Description: "Singles", Songs: []models.Song{{ID: 1}}})
	editor := NewEditor[models.Album, models.Song](albums, newMemRepo(songID), models.AlbumSongs, albumSongs)

	_, err := editor.At(context.Background(), 3, 2)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)
}

func TestCanceledContextIsStorageFault(t *testing.T) {
	albums := newMemRepo(albumID, models.Album{ID: 3, Description: "Singles", Songs: []models.Song{{ID: 1}}})
	editor := NewEditor[models.Album, models.Song](albums, newMemRepo(songID), models.AlbumSongs, albumSongs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := editor.List(ctx, 3)
	assert.ErrorIs(t, err, store.ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = editor.Attach(ctx, 3, 1)
	assert.ErrorIs(t, err, store.ErrStorage)
	assert.Zero(t, albums.updates)
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "1", want: 1},
		{raw: " 12 ", want: 12},
		{raw: "0", want: 0},
		{raw: "-3", want: -3},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "1.5", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParsePosition(tc.raw)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPosition, "raw %q", tc.raw)
			assert.True(t, errors.Is(err, store.ErrValidation), "raw %q", tc.raw)
			assert.False(t, errors.Is(err, store.ErrNotFound), "raw %q", tc.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tc.raw)
		assert.Equal(t, tc.want, got)
	}
}
