package hateoas

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(http.ResponseWriter, *http.Request) {}

func testRouter() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	for _, k := range []Kind{Songs, Albums, Genres} {
		api.HandleFunc("/"+k.Plural, noop).Methods(http.MethodGet).Name(k.Route(ActionList))
		api.HandleFunc("/"+k.Plural, noop).Methods(http.MethodPost).Name(k.Route(ActionCreate))
		api.HandleFunc("/"+k.Plural+"/{id}", noop).Methods(http.MethodGet).Name(k.Route(ActionGet))
		api.HandleFunc("/"+k.Plural+"/{id}", noop).Methods(http.MethodPut).Name(k.Route(ActionUpdate))
		api.HandleFunc("/"+k.Plural+"/{id}", noop).Methods(http.MethodDelete).Name(k.Route(ActionDelete))
	}
	rel := Relation{Parent: Genres, Child: Songs}
	api.HandleFunc("/genres/{id}/songs", noop).Methods(http.MethodGet).Name(rel.Route(ActionList))
	api.HandleFunc("/genres/{id}/songs/{position}", noop).Methods(http.MethodGet).Name(rel.Route(ActionGet))
	api.HandleFunc("/genres/{id}/songs/{position}", noop).Methods(http.MethodDelete).Name(rel.Route(ActionDetach))
	api.HandleFunc("/genres/{id}/songs/{childId}", noop).Methods(http.MethodPut).Name(rel.Route(ActionAttach))
	return router
}

func TestItemLinks(t *testing.T) {
	a := NewAssembler(NewRouterURLs(testRouter(), ""))

	links := a.Item(Songs, 7, nil)
	assert.Equal(t, []Link{
		{Href: "/api/songs/7", Rel: "self", Method: http.MethodGet},
		{Href: "/api/songs/7", Rel: "delete_song", Method: http.MethodDelete},
		{Href: "/api/songs/7", Rel: "update_song", Method: http.MethodPut},
	}, links)
}

func TestItemContextualLink(t *testing.T) {
	a := NewAssembler(NewRouterURLs(testRouter(), "https://music.example.com/"))

	links := a.Item(Genres, 2, a.Related(Relation{Parent: Genres, Child: Songs}, 2))
	require.Len(t, links, 4)
	assert.Equal(t, Link{Href: "https://music.example.com/api/genres/2/songs", Rel: "get_genre_songs", Method: http.MethodGet}, links[3])
	assert.Equal(t, "https://music.example.com/api/genres/2", links[0].Href)
}

func TestCollectionLinks(t *testing.T) {
	a := NewAssembler(NewRouterURLs(testRouter(), ""))

	assert.Equal(t, []Link{
		{Href: "/api/albums", Rel: "self", Method: http.MethodGet},
		{Href: "/api/albums", Rel: "add_new_album", Method: http.MethodPost},
	}, a.Collection(Albums, true))

	assert.Len(t, a.Collection(Albums, false), 1)
}

func TestChildLinks(t *testing.T) {
	a := NewAssembler(NewRouterURLs(testRouter(), ""))
	rel := Relation{Parent: Genres, Child: Songs}

	assert.Equal(t, []Link{
		{Href: "/api/genres/1/songs/1", Rel: "self", Method: http.MethodGet},
		{Href: "/api/genres/1/songs/1", Rel: "remove_song_from_genre", Method: http.MethodDelete},
		{Href: "/api/genres/1/songs/42", Rel: "add_existing_song_to_genre", Method: http.MethodPut},
	}, a.ChildItem(rel, 1, 1, 42))

	assert.Equal(t, []Link{
		{Href: "/api/genres/1/songs", Rel: "self", Method: http.MethodGet},
	}, a.ChildCollection(rel, 1))
}

func TestHomeLinks(t *testing.T) {
	a := NewAssembler(NewRouterURLs(testRouter(), ""))

	links := a.Home(Albums, Songs)
	assert.Equal(t, []Link{
		{Href: "/api/albums", Rel: "album_collection", Method: http.MethodGet},
		{Href: "/api/songs", Rel: "song_collection", Method: http.MethodGet},
	}, links)
}

type failingURLs struct{}

func (failingURLs) BuildURL(string, map[string]string) (string, error) {
	return "", errors.New("no route")
}

func TestLinkFailureYieldsEmptyHref(t *testing.T) {
	a := NewAssembler(failingURLs{})

	links := a.Item(Artists, 1, nil)
	require.Len(t, links, 3)
	for _, l := range links {
		assert.Empty(t, l.Href)
		assert.NotEmpty(t, l.Rel)
	}
}

func TestRouterURLsUnknownRoute(t *testing.T) {
	urls := NewRouterURLs(testRouter(), "")

	_, err := urls.BuildURL("playlists.list", nil)
	assert.Error(t, err)
}
