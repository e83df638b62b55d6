package hateoas

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gorilla/mux"
)

// RouterURLs reverses named gorilla/mux routes. When a base URL is set the
// returned links are absolute.
type RouterURLs struct {
	router  *mux.Router
	baseURL string
}

// NewRouterURLs creates a URLBuilder for router.
func NewRouterURLs(router *mux.Router, baseURL string) *RouterURLs {
	return &RouterURLs{
		router:  router,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// BuildURL implements URLBuilder.
func (r *RouterURLs) BuildURL(route string, params map[string]string) (string, error) {
	named := r.router.Get(route)
	if named == nil {
		return "", fmt.Errorf("route %q is not registered", route)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, params[k])
	}

	u, err := named.URL(pairs...)
	if err != nil {
		return "", fmt.Errorf("build %q: %w", route, err)
	}
	return r.baseURL + u.String(), nil
}
