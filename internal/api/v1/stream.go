package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vmunix/binge/internal/hls"
	"github.com/vmunix/binge/internal/splice"
	"github.com/vmunix/binge/internal/storage"
)

// serveBlob serves stored playlists and segments read-only, with the
// content type negotiated from the file extension.
func (s *Server) serveBlob(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("path")
	data, err := s.blobs.Download(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such file")
		return
	}
	if errors.Is(err, storage.ErrInvalidKey) {
		writeError(w, http.StatusBadRequest, "INVALID_PATH", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORAGE_ERROR", err.Error())
		return
	}

	w.Header().Set("Content-Type", hls.ContentType(key))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type spliceRequest struct {
	Name  string       `json:"name"`
	Items []splice.Ref `json:"items"`
}

// splicePlaylist joins downloaded items into one continuous playlist.
func (s *Server) splicePlaylist(w http.ResponseWriter, r *http.Request) {
	var req spliceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "name is required")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_ITEMS", "items is required")
		return
	}

	if err := s.splicer.Splice(r.Context(), req.Name, req.Items); err != nil {
		switch {
		case errors.Is(err, splice.ErrItemNotDownloaded):
			writeError(w, http.StatusConflict, "NOT_DOWNLOADED", err.Error())
		case errors.Is(err, splice.ErrVariantMismatch):
			writeError(w, http.StatusUnprocessableEntity, "VARIANT_MISMATCH", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "SPLICE_ERROR", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"name": req.Name,
		"main": "/stream/playlist/" + req.Name + "/main.m3u8",
	})
}
