package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vmunix/binge/internal/catalog"
	"github.com/vmunix/binge/internal/provider"
)

type addConnectionRequest struct {
	ProviderID       string  `json:"provider_id"`
	PreferredProfile *string `json:"preferred_profile,omitempty"`
}

// addConnection creates a connection and starts the provider handshake.
// The returned credential carries the user code to display while the
// handshake is pending.
func (s *Server) addConnection(w http.ResponseWriter, r *http.Request) {
	var req addConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	entry := s.registry.Get(req.ProviderID)
	if entry == nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_PROVIDER", "no such provider: "+req.ProviderID)
		return
	}

	cred, err := entry.Provider.Setup(r.Context(), nil)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	identity, err := json.Marshal(cred)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	conn, err := s.catalog.AddConnection(req.ProviderID, identity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	if req.PreferredProfile != nil {
		if err := s.catalog.SetPreferredProfile(conn.ID, req.PreferredProfile); err != nil {
			writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
			return
		}
		conn.PreferredProfile = req.PreferredProfile
	}

	s.log.Info("connection added", "connection_id", conn.ID, "provider_id", req.ProviderID, "state", cred.Type)
	writeJSON(w, http.StatusCreated, connectionToResponse(conn, &cred))
}

func (s *Server) listConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := s.catalog.ListConnections()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	resp := make([]connectionResponse, len(conns))
	for i, conn := range conns {
		var cred *provider.Credential
		if parsed, err := provider.ParseCredential(conn.Identity); err == nil {
			cred = &parsed
		}
		resp[i] = connectionToResponse(conn, cred)
	}
	writeJSON(w, http.StatusOK, resp)
}

// setupConnection advances the handshake one step and persists the new
// credential state. Polling this endpoint is how a pending quick-connect
// login completes.
func (s *Server) setupConnection(w http.ResponseWriter, r *http.Request) {
	conn, entry, ok := s.loadConnection(w, r)
	if !ok {
		return
	}

	var prev *provider.Credential
	if len(conn.Identity) > 0 {
		parsed, err := provider.ParseCredential(conn.Identity)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "BAD_CREDENTIAL", err.Error())
			return
		}
		prev = &parsed
	}

	cred, err := entry.Provider.Setup(r.Context(), prev)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	identity, err := json.Marshal(cred)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if err := s.catalog.UpdateIdentity(conn.ID, identity); err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	conn.Identity = identity

	s.log.Info("connection setup advanced", "connection_id", conn.ID, "state", cred.Type)
	writeJSON(w, http.StatusOK, connectionToResponse(conn, &cred))
}

// testConnection verifies that the stored credential still works.
func (s *Server) testConnection(w http.ResponseWriter, r *http.Request) {
	conn, entry, ok := s.loadConnection(w, r)
	if !ok {
		return
	}
	cred, err := provider.ParseCredential(conn.Identity)
	if err != nil {
		writeError(w, http.StatusConflict, "BAD_CREDENTIAL", err.Error())
		return
	}
	if err := entry.Provider.Test(r.Context(), cred); err != nil {
		writeProviderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadConnection fetches the connection and its provider entry, writing
// the error response itself on failure.
func (s *Server) loadConnection(w http.ResponseWriter, r *http.Request) (*catalog.Connection, *provider.Entry, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return nil, nil, false
	}
	conn, err := s.catalog.GetConnection(id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "connection not found")
		return nil, nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return nil, nil, false
	}
	entry := s.registry.Get(conn.ProviderID)
	if entry == nil {
		writeError(w, http.StatusConflict, "UNKNOWN_PROVIDER", "no such provider: "+conn.ProviderID)
		return nil, nil, false
	}
	return conn, entry, true
}
