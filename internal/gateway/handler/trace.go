package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"kisanmitra/internal/gateway/repository/media"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Service) HandleFlows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	type entry struct {
		Name      string `json:"name"`
		Procedure string `json:"procedure"`
	}
	flows := s.gate.Flows()
	out := make([]entry, 0, len(flows))
	for _, f := range flows {
		out = append(out, entry{Name: f, Procedure: Procedure(f)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"flows": out})
}

// HandleFlowRuns returns the newest run records and per-flow model usage.
// ?limit=N caps the record count (default 50).
func (s *Service) HandleFlowRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := s.runs.List(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	body := map[string]any{"runs": runs}
	if s.usage != nil {
		body["usage"] = s.usage.Snapshot()
	}
	writeJSON(w, http.StatusOK, body)
}

// HandleMedia serves the photo archive for verification. ?key= returns one
// photo; otherwise the keys under ?prefix= are listed.
func (s *Service) HandleMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.media == nil {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	if key := strings.TrimSpace(q.Get("key")); key != "" {
		blob, err := s.media.Get(r.Context(), key)
		switch {
		case errors.Is(err, media.ErrNotFound):
			http.NotFound(w, r)
			return
		case err != nil:
			s.log.Warn("media read failed", zap.String("key", key), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", blob.MIMEType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(blob.Data)
		return
	}
	keys, err := s.media.List(r.Context(), strings.TrimSpace(q.Get("prefix")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}
