package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"musiccatalog/internal/hateoas"
	"musiccatalog/internal/projection"
	"musiccatalog/internal/store"
)

// resource serves the top level CRUD routes of one entity kind.
type resource[E, R, W any] struct {
	kind    hateoas.Kind
	repo    Repository[E]
	pair    projection.Pair[E, R, W]
	links   *hateoas.Assembler
	related *hateoas.Relation
}

func registerResource[E, R, W any](router *mux.Router, wrap func(http.Handler) http.Handler, h *resource[E, R, W]) {
	if wrap == nil {
		wrap = func(next http.Handler) http.Handler { return next }
	}

	base := "/" + h.kind.Plural
	item := base + "/{" + hateoas.ParamID + "}"

	router.Handle(base, wrap(http.HandlerFunc(h.list))).Methods(http.MethodGet).Name(h.kind.Route(hateoas.ActionList))
	router.Handle(base, wrap(http.HandlerFunc(h.create))).Methods(http.MethodPost).Name(h.kind.Route(hateoas.ActionCreate))
	router.Handle(item, wrap(http.HandlerFunc(h.get))).Methods(http.MethodGet).Name(h.kind.Route(hateoas.ActionGet))
	router.Handle(item, wrap(http.HandlerFunc(h.update))).Methods(http.MethodPut).Name(h.kind.Route(hateoas.ActionUpdate))
	router.Handle(item, wrap(http.HandlerFunc(h.delete))).Methods(http.MethodDelete).Name(h.kind.Route(hateoas.ActionDelete))
}

func (h *resource[E, R, W]) envelope(e *E) hateoas.Resource[R] {
	id := h.pair.ID(e)

	var contextual *hateoas.Link
	if h.related != nil {
		contextual = h.links.Related(*h.related, id)
	}

	return hateoas.Resource[R]{
		Data:        h.pair.Read(e),
		DisplayName: h.pair.DisplayName(e),
		Links:       h.links.Item(h.kind, id, contextual),
	}
}

func (h *resource[E, R, W]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	value := make([]hateoas.Resource[R], 0, len(items))
	for _, item := range items {
		value = append(value, h.envelope(item))
	}

	writeJSON(w, http.StatusOK, hateoas.Collection[hateoas.Resource[R]]{
		Value: value,
		Links: h.links.Collection(h.kind, true),
	})
}

func (h *resource[E, R, W]) get(w http.ResponseWriter, r *http.Request) {
	entity, err := h.load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.envelope(entity))
}

func (h *resource[E, R, W]) create(w http.ResponseWriter, r *http.Request) {
	var payload W
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	entity := new(E)
	if err := h.pair.Write(0, payload, entity); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.repo.Create(r.Context(), entity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	body := h.envelope(created)
	if len(body.Links) > 0 && body.Links[0].Href != "" {
		w.Header().Set("Location", body.Links[0].Href)
	}
	writeJSON(w, http.StatusCreated, body)
}

func (h *resource[E, R, W]) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)[hateoas.ParamID])
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload W
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	existing, err := h.repo.GetSingleByCondition(r.Context(), store.ByID[E](id))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.pair.Write(id, payload, existing); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.repo.Update(r.Context(), existing)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.envelope(updated))
}

func (h *resource[E, R, W]) delete(w http.ResponseWriter, r *http.Request) {
	entity, err := h.load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.repo.Delete(r.Context(), entity); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *resource[E, R, W]) load(r *http.Request) (*E, error) {
	id, err := parseID(mux.Vars(r)[hateoas.ParamID])
	if err != nil {
		return nil, err
	}
	return h.repo.GetSingleByCondition(r.Context(), store.ByID[E](id))
}
