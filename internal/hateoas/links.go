// Package hateoas assembles the navigation links attached to API responses.
package hateoas

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Link is a single navigable action on a resource.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// Resource wraps a single projection with its links.
type Resource[T any] struct {
	Data        T      `json:"data"`
	DisplayName string `json:"displayName,omitempty"`
	Links       []Link `json:"links"`
}

// Collection wraps a list of resources with links for the list itself.
type Collection[T any] struct {
	Value []T    `json:"value"`
	Links []Link `json:"links"`
}

// Route actions registered for every top level kind.
const (
	ActionList   = "list"
	ActionGet    = "get"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionAttach = "attach"
	ActionDetach = "detach"
)

// Route parameter names.
const (
	ParamID       = "id"
	ParamPosition = "position"
	ParamChildID  = "childId"
)

// Kind names a resource type in singular and plural form.
type Kind struct {
	Singular string
	Plural   string
}

var (
	Songs     = Kind{Singular: "song", Plural: "songs"}
	Albums    = Kind{Singular: "album", Plural: "albums"}
	Artists   = Kind{Singular: "artist", Plural: "artists"}
	Genres    = Kind{Singular: "genre", Plural: "genres"}
	Playlists = Kind{Singular: "playlist", Plural: "playlists"}
)

// Route returns the route name for action on k.
func (k Kind) Route(action string) string {
	return k.Plural + "." + action
}

// Relation names a parent kind and the kind of its children.
type Relation struct {
	Parent Kind
	Child  Kind
}

// Route returns the route name for action on the relation.
func (r Relation) Route(action string) string {
	return r.Parent.Plural + "." + r.Child.Plural + "." + action
}

// URLBuilder reverses a named route into a URL.
type URLBuilder interface {
	BuildURL(route string, params map[string]string) (string, error)
}

// Assembler produces link sets for resources, collections and relation
// members. Link generation never fails a request: a route that cannot be
// reversed yields an empty href and a log entry.
type Assembler struct {
	urls URLBuilder
}

// NewAssembler creates an Assembler over urls.
func NewAssembler(urls URLBuilder) *Assembler {
	return &Assembler{urls: urls}
}

// Item returns self, delete and update links for a single resource plus an
// optional contextual link.
func (a *Assembler) Item(k Kind, id int64, contextual *Link) []Link {
	params := idParams(id)
	links := []Link{
		a.link("self", http.MethodGet, k.Route(ActionGet), params),
		a.link("delete_"+k.Singular, http.MethodDelete, k.Route(ActionDelete), params),
		a.link("update_"+k.Singular, http.MethodPut, k.Route(ActionUpdate), params),
	}
	if contextual != nil {
		links = append(links, *contextual)
	}
	return links
}

// Related returns a GET link to the children of parentID, e.g. get_album_songs.
func (a *Assembler) Related(r Relation, parentID int64) *Link {
	link := a.link("get_"+r.Parent.Singular+"_"+r.Child.Plural, http.MethodGet, r.Route(ActionList), idParams(parentID))
	return &link
}

// Collection returns the links of a list. Top level lists also advertise
// creation.
func (a *Assembler) Collection(k Kind, addNew bool) []Link {
	links := []Link{a.link("self", http.MethodGet, k.Route(ActionList), nil)}
	if addNew {
		links = append(links, a.link("add_new_"+k.Singular, http.MethodPost, k.Route(ActionCreate), nil))
	}
	return links
}

// ChildItem returns the links of the child at position within parentID.
// Reads and removal address the position; re-adding addresses the child id.
func (a *Assembler) ChildItem(r Relation, parentID int64, position int, childID int64) []Link {
	byPosition := map[string]string{
		ParamID:       strconv.FormatInt(parentID, 10),
		ParamPosition: strconv.Itoa(position),
	}
	byChild := map[string]string{
		ParamID:      strconv.FormatInt(parentID, 10),
		ParamChildID: strconv.FormatInt(childID, 10),
	}
	return []Link{
		a.link("self", http.MethodGet, r.Route(ActionGet), byPosition),
		a.link("remove_"+r.Child.Singular+"_from_"+r.Parent.Singular, http.MethodDelete, r.Route(ActionDetach), byPosition),
		a.link("add_existing_"+r.Child.Singular+"_to_"+r.Parent.Singular, http.MethodPut, r.Route(ActionAttach), byChild),
	}
}

// ChildCollection returns the self link of the children listing of parentID.
func (a *Assembler) ChildCollection(r Relation, parentID int64) []Link {
	return []Link{a.link("self", http.MethodGet, r.Route(ActionList), idParams(parentID))}
}

// Home returns one link per top level collection.
func (a *Assembler) Home(kinds ...Kind) []Link {
	links := make([]Link, 0, len(kinds))
	for _, k := range kinds {
		links = append(links, a.link(k.Singular+"_collection", http.MethodGet, k.Route(ActionList), nil))
	}
	return links
}

func (a *Assembler) link(rel, method, route string, params map[string]string) Link {
	href, err := a.urls.BuildURL(route, params)
	if err != nil {
		log.Warn().
			Err(err).
			Str("route", route).
			Str("rel", rel).
			Msg("Failed to build link")
		href = ""
	}
	return Link{Href: href, Rel: rel, Method: method}
}

func idParams(id int64) map[string]string {
	return map[string]string{ParamID: strconv.FormatInt(id, 10)}
}
