// Package api serves the submission form and annotated results over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/poligraft/internal/enrich"
	"github.com/sells-group/poligraft/internal/model"
	"github.com/sells-group/poligraft/internal/queue"
)

// Creator stores new submissions.
type Creator interface {
	Create(ctx context.Context, in enrich.CreateInput) (*model.Result, error)
}

// ResultFinder looks up stored Results by slug.
type ResultFinder interface {
	GetResultBySlug(ctx context.Context, slug string) (*model.Result, error)
}

// Server holds the HTTP handlers' collaborators.
type Server struct {
	creator    Creator
	results    ResultFinder
	dispatcher queue.Dispatcher
}

// NewServer creates a Server. dispatcher may be nil, in which case new
// Results are stored but never processed.
func NewServer(creator Creator, results ResultFinder, dispatcher queue.Dispatcher) *Server {
	return &Server{creator: creator, results: results, dispatcher: dispatcher}
}

// Routes builds the router. allowedOrigins feeds the CORS middleware;
// empty means any origin.
func (s *Server) Routes(allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", s.handleIndex)
	r.Post("/poligraft", s.handleSubmit)
	r.Options("/poligraft", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/{slug}", s.handleResult)

	return r
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
