package v1

import (
	"net/http"
	"strconv"

	"github.com/vmunix/binge/internal/provider"
)

// listItems returns the children of a directory, read from the cache
// unless refresh is requested. An absent parent means the provider root.
func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	conn, entry, ok := s.loadConnection(w, r)
	if !ok {
		return
	}
	cred, err := provider.ParseCredential(conn.Identity)
	if err != nil {
		writeError(w, http.StatusConflict, "BAD_CREDENTIAL", err.Error())
		return
	}

	parent := queryString(r, "parent")
	force := queryBool(r, "refresh")

	items, err := s.resolver.Resolve(r.Context(), conn, entry.Provider, cred, parent, force)
	if err != nil {
		writeProviderError(w, err)
		return
	}

	resp := make([]itemResponse, len(items))
	for i, item := range items {
		resp[i] = itemToResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	conn, entry, ok := s.loadConnection(w, r)
	if !ok {
		return
	}
	cred, err := provider.ParseCredential(conn.Identity)
	if err != nil {
		writeError(w, http.StatusConflict, "BAD_CREDENTIAL", err.Error())
		return
	}

	itemID := r.PathValue("itemID")
	force := queryBool(r, "refresh")

	item, err := s.resolver.ResolveItem(r.Context(), conn, entry.Provider, cred, itemID, force)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToResponse(item))
}

// search ranks cached items against a free-text query.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	conn, _, ok := s.loadConnection(w, r)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "q is required")
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := s.catalog.Search(conn.ID, query, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	resp := make([]searchResponse, len(results))
	for i, result := range results {
		resp[i] = searchResponse{
			itemResponse: itemToResponse(result.CachedItem),
			Score:        result.Score,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
