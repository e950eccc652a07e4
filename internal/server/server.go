package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sreevallabh/duolingo-stats/internal/handlers"
	"github.com/sreevallabh/duolingo-stats/internal/middleware"
	"go.uber.org/zap"
)

// New creates a fully-configured chi router with middleware and handlers
// wired together.
func New(sp handlers.StatsProvider, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()

	// ── Middleware ───────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Negotiate())
	r.Use(middleware.CORSHeaders)
	r.Use(chimw.Recoverer)

	// ── Routes ──────────────────────────────────────────────
	handlers.NewStatsHandler(sp).Routes(r)
	r.NotFound(handlers.NotFound)

	return r
}

// requestLogger logs each HTTP request with method, path, status code,
// duration and request ID.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
				zap.String("remote", r.RemoteAddr),
				zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			)
		})
	}
}
