// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vmunix/binge/internal/catalog"
	"github.com/vmunix/binge/internal/download"
	"github.com/vmunix/binge/internal/events"
	"github.com/vmunix/binge/internal/provider"
	"github.com/vmunix/binge/internal/splice"
	"github.com/vmunix/binge/internal/storage"
)

// Server is the v1 API server.
type Server struct {
	registry  *provider.Registry
	catalog   *catalog.Store
	resolver  *catalog.Resolver
	downloads *download.Store
	pool      *download.Pool
	bus       *events.Bus
	blobs     storage.Blob
	splicer   *splice.Splicer
	fetcher   download.Fetcher
	log       *slog.Logger
}

// Deps holds everything the API server depends on.
type Deps struct {
	Registry  *provider.Registry
	Catalog   *catalog.Store
	Resolver  *catalog.Resolver
	Downloads *download.Store
	Pool      *download.Pool
	Bus       *events.Bus
	Blobs     storage.Blob
	Splicer   *splice.Splicer
	Fetcher   download.Fetcher
	Logger    *slog.Logger
}

// New creates a new v1 API server.
func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		registry:  deps.Registry,
		catalog:   deps.Catalog,
		resolver:  deps.Resolver,
		downloads: deps.Downloads,
		pool:      deps.Pool,
		bus:       deps.Bus,
		blobs:     deps.Blobs,
		splicer:   deps.Splicer,
		fetcher:   deps.Fetcher,
		log:       log.With("component", "api"),
	}
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Providers
	mux.HandleFunc("GET /api/v1/providers", s.listProviders)

	// Connections
	mux.HandleFunc("POST /api/v1/connections", s.addConnection)
	mux.HandleFunc("GET /api/v1/connections", s.listConnections)
	mux.HandleFunc("POST /api/v1/connections/{id}/setup", s.setupConnection)
	mux.HandleFunc("POST /api/v1/connections/{id}/test", s.testConnection)

	// Catalog
	mux.HandleFunc("GET /api/v1/connections/{id}/items", s.listItems)
	mux.HandleFunc("GET /api/v1/connections/{id}/items/{itemID}", s.getItem)
	mux.HandleFunc("GET /api/v1/connections/{id}/search", s.search)

	// Downloads
	mux.HandleFunc("POST /api/v1/connections/{id}/transcode", s.transcode)
	mux.HandleFunc("GET /api/v1/connections/{id}/downloads", s.listDownloads)
	mux.HandleFunc("GET /api/v1/downloads/{id}", s.getDownload)

	// Playlists
	mux.HandleFunc("POST /api/v1/playlists", s.splicePlaylist)

	// Live progress
	mux.HandleFunc("GET /api/v1/events", s.streamEvents)

	// Blob serving
	mux.HandleFunc("GET /stream/{path...}", s.serveBlob)
}

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	entries := s.registry.List()
	resp := make([]providerResponse, len(entries))
	for i, e := range entries {
		resp[i] = providerToResponse(e.Descriptor)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeProviderError maps domain errors onto HTTP statuses.
func writeProviderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, provider.ErrNotAuthenticated):
		writeError(w, http.StatusConflict, "NOT_AUTHENTICATED", err.Error())
	case errors.Is(err, provider.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "PROVIDER_UNAVAILABLE", err.Error())
	case errors.Is(err, provider.ErrManifestCorrupt), errors.Is(err, provider.ErrManifestIncomplete):
		writeError(w, http.StatusBadGateway, "MANIFEST_ERROR", err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryString extracts an optional string from query string.
func queryString(r *http.Request, name string) *string {
	val := r.URL.Query().Get(name)
	if val == "" {
		return nil
	}
	return &val
}

// queryBool reports whether a query flag is set truthy.
func queryBool(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}
