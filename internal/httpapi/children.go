package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"musiccatalog/internal/hateoas"
	"musiccatalog/internal/projection"
	"musiccatalog/internal/relations"
)

// children serves the positional routes of a parent's child collection.
// Read only relations expose the listing alone and link to the children's
// own item routes.
type children[P, C, R, W any] struct {
	rel      hateoas.Relation
	editor   *relations.Editor[P, C]
	pair     projection.Pair[C, R, W]
	links    *hateoas.Assembler
	readOnly bool
}

func registerChildren[P, C, R, W any](router *mux.Router, h *children[P, C, R, W]) {
	base := "/" + h.rel.Parent.Plural + "/{" + hateoas.ParamID + "}/" + h.rel.Child.Plural
	router.HandleFunc(base, h.list).Methods(http.MethodGet).Name(h.rel.Route(hateoas.ActionList))
	if h.readOnly {
		return
	}

	byPosition := base + "/{" + hateoas.ParamPosition + "}"
	byChild := base + "/{" + hateoas.ParamChildID + "}"
	router.HandleFunc(byPosition, h.get).Methods(http.MethodGet).Name(h.rel.Route(hateoas.ActionGet))
	router.HandleFunc(byChild, h.attach).Methods(http.MethodPut).Name(h.rel.Route(hateoas.ActionAttach))
	router.HandleFunc(byPosition, h.detach).Methods(http.MethodDelete).Name(h.rel.Route(hateoas.ActionDetach))
}

func (h *children[P, C, R, W]) member(parentID int64, position int, child *C) hateoas.Resource[R] {
	childID := h.pair.ID(child)

	links := h.links.Item(h.rel.Child, childID, nil)
	if !h.readOnly {
		links = h.links.ChildItem(h.rel, parentID, position, childID)
	}

	return hateoas.Resource[R]{
		Data:        h.pair.Read(child),
		DisplayName: h.pair.DisplayName(child),
		Links:       links,
	}
}

func (h *children[P, C, R, W]) collection(parentID int64, items []C) hateoas.Collection[hateoas.Resource[R]] {
	value := make([]hateoas.Resource[R], 0, len(items))
	for i := range items {
		value = append(value, h.member(parentID, i+1, &items[i]))
	}
	return hateoas.Collection[hateoas.Resource[R]]{
		Value: value,
		Links: h.links.ChildCollection(h.rel, parentID),
	}
}

func (h *children[P, C, R, W]) list(w http.ResponseWriter, r *http.Request) {
	parentID, err := parseID(mux.Vars(r)[hateoas.ParamID])
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.editor.List(r.Context(), parentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.collection(parentID, items))
}

func (h *children[P, C, R, W]) get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	parentID, err := parseID(vars[hateoas.ParamID])
	if err != nil {
		writeError(w, r, err)
		return
	}
	position, err := relations.ParsePosition(vars[hateoas.ParamPosition])
	if err != nil {
		writeError(w, r, err)
		return
	}

	child, err := h.editor.At(r.Context(), parentID, position)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.member(parentID, position, child))
}

func (h *children[P, C, R, W]) attach(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	parentID, err := parseID(vars[hateoas.ParamID])
	if err != nil {
		writeError(w, r, err)
		return
	}
	childID, err := parseID(vars[hateoas.ParamChildID])
	if err != nil {
		writeError(w, r, err)
		return
	}

	parent, err := h.editor.Attach(r.Context(), parentID, childID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.collection(parentID, h.editor.Items(parent)))
}

func (h *children[P, C, R, W]) detach(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	parentID, err := parseID(vars[hateoas.ParamID])
	if err != nil {
		writeError(w, r, err)
		return
	}
	position, err := relations.ParsePosition(vars[hateoas.ParamPosition])
	if err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.editor.Detach(r.Context(), parentID, position); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
