package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vmunix/binge/internal/download"
	"github.com/vmunix/binge/internal/provider"
)

type transcodeRequest struct {
	ContentID      string  `json:"content_id"`
	Profile        *string `json:"profile,omitempty"`
	AudioStream    *int    `json:"audio_stream,omitempty"`
	SubtitleStream *int    `json:"subtitle_stream,omitempty"`
}

// transcode requests a provider transcode of a content item and queues
// the segment download. Manifest errors are reported here, once; segment
// failures arrive later on the event stream.
func (s *Server) transcode(w http.ResponseWriter, r *http.Request) {
	conn, entry, ok := s.loadConnection(w, r)
	if !ok {
		return
	}
	var req transcodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if req.ContentID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CONTENT", "content_id is required")
		return
	}
	cred, err := provider.ParseCredential(conn.Identity)
	if err != nil {
		writeError(w, http.StatusConflict, "BAD_CREDENTIAL", err.Error())
		return
	}

	cached, err := s.resolver.ResolveItem(r.Context(), conn, entry.Provider, cred, req.ContentID, false)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	content := cached.Item.Content
	if content == nil {
		writeError(w, http.StatusBadRequest, "NOT_CONTENT", "item is not downloadable content")
		return
	}

	settings, err := entry.SelectProfile(req.Profile, conn.PreferredProfile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "UNKNOWN_PROFILE", err.Error())
		return
	}
	preferred := content.PreferredStreams(req.AudioStream, req.SubtitleStream)

	manifest, err := entry.Provider.Transcode(r.Context(), cred, content, settings, preferred)
	if err != nil {
		writeProviderError(w, err)
		return
	}

	record, err := s.downloads.Create(conn.ID, content.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	job := download.NewJob(record, manifest, s.fetcher, s.blobs, s.bus, s.downloads, s.log)
	if err := s.pool.Submit(job); err != nil {
		info := err.Error()
		if setErr := s.downloads.SetStatus(record.ID, download.StatusFailed, &info); setErr != nil {
			s.log.Error("status update failed", "download_id", record.ID, "error", setErr)
		}
		if errors.Is(err, download.ErrQueueFull) || errors.Is(err, download.ErrPoolClosed) {
			writeError(w, http.StatusServiceUnavailable, "QUEUE_FULL", info)
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", info)
		return
	}

	s.log.Info("download queued", "download_id", record.ID, "connection_id", conn.ID, "content_id", content.ID)
	writeJSON(w, http.StatusAccepted, downloadToResponse(record))
}

func (s *Server) listDownloads(w http.ResponseWriter, r *http.Request) {
	conn, _, ok := s.loadConnection(w, r)
	if !ok {
		return
	}
	records, err := s.downloads.ListByConnection(conn.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	resp := make([]downloadResponse, len(records))
	for i, d := range records {
		resp[i] = downloadToResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getDownload(w http.ResponseWriter, r *http.Request) {
	record, err := s.downloads.Get(r.PathValue("id"))
	if errors.Is(err, download.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "download not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, downloadToResponse(record))
}
