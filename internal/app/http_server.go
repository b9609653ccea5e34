package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"clockwatch/internal/discord"
)

// HTTPServer returns a configured http.Server exposing the interactions
// endpoint. Call ListenAndServe on the returned server in a goroutine and
// Shutdown it on exit.
func (a *App) HTTPServer() (*http.Server, error) {
	key, err := discord.ParsePublicKey(a.cfg.Discord.PublicKey)
	if err != nil {
		return nil, err
	}
	handler := &discord.Handler{
		Log:       a.log,
		PublicKey: key,
		Bot:       a.Bot(),
		Timeout:   a.cfg.HTTP.InteractionTimeout,
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           newRouter(a.log, handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.log.Info("interactions server configured", slog.String("addr", a.cfg.HTTP.Addr))
	return srv, nil
}

func newRouter(log *slog.Logger, interactions http.Handler) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/interactions", interactions).Methods(http.MethodPost)
	r.Use(func(next http.Handler) http.Handler { return loggingMiddleware(log, next) })
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Int("status", rec.status),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
