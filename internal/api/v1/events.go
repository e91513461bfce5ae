package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// streamEvents serves download progress as server-sent events. The
// connection_id query parameter may repeat; without it the stream covers
// every connection.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "NO_STREAMING", "response writer does not support streaming")
		return
	}

	var connIDs []int64
	for _, raw := range r.URL.Query()["connection_id"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "bad connection_id: "+raw)
			return
		}
		connIDs = append(connIDs, id)
	}
	if len(connIDs) == 0 {
		conns, err := s.catalog.ListConnections()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
			return
		}
		for _, conn := range conns {
			connIDs = append(connIDs, conn.ID)
		}
	}

	ch := s.bus.Subscribe(connIDs, 64)
	defer s.bus.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				s.log.Error("encode notification", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
