package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jask/ledgerdesk/internal/notify"
)

const keepAliveInterval = 25 * time.Second

func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	if s.Events == nil {
		http.Error(w, "events disabled", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := s.Events.Subscribe(r.PathValue("topic"))
	defer cancel()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case m, ok := <-ch:
			if !ok {
				return
			}
			b, err := json.Marshal(m)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleEventPublish(w http.ResponseWriter, r *http.Request) {
	if s.Events == nil {
		http.Error(w, "events disabled", http.StatusNotFound)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 4<<10))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	m, ok := notify.Decode(body)
	if !ok {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("message needs a type"))
		return
	}
	s.Events.Broadcast(r.PathValue("topic"), m)
	w.WriteHeader(http.StatusNoContent)
}
