package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/poligraft/internal/store"
)

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	asJSON := strings.HasSuffix(slug, ".json")
	slug = strings.TrimSuffix(slug, ".json")

	callback := r.URL.Query().Get("callback")
	if asJSON && callback != "" && !callbackPattern.MatchString(callback) {
		http.Error(w, "invalid callback", http.StatusBadRequest)
		return
	}

	res, err := s.results.GetResultBySlug(r.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		if asJSON {
			writeView(w, http.StatusNotFound, map[string]string{"error": "not found"}, callback)
			return
		}
		renderNotFound(w)
		return
	}
	if err != nil {
		zap.L().Error("api: get result", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	status := http.StatusAccepted
	if res.Processed {
		status = http.StatusOK
	}

	if asJSON {
		writeView(w, status, res.View(), callback)
		return
	}
	renderResult(w, res.View())
}

// writeView writes v as JSON, wrapped as callback(json) when a JSONP
// callback is given.
func writeView(w http.ResponseWriter, status int, v any, callback string) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if callback == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(callback + "("))
	_, _ = w.Write(body)
	_, _ = w.Write([]byte(")"))
}
