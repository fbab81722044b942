// Package server is a small messages API backed by SQLite, used for local
// development and integration tests of the chat client.
package server

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sadamiak/doodle/internal/api"
	"github.com/sadamiak/doodle/internal/core"
)

// Options configures the router.
type Options struct {
	DB *sql.DB
	// Token, when set, is required as a bearer token on the messages API.
	Token  string
	Logger zerolog.Logger
	Clock  core.Clock
}

// NewRouter creates and configures the HTTP router.
func NewRouter(opts Options) *chi.Mux {
	clock := opts.Clock
	if clock == nil {
		clock = core.SystemClock
	}

	r := chi.NewRouter()
	r.Use(recordMetrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	h := &Handler{db: opts.DB, clock: clock, logger: opts.Logger}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(requireToken(opts.Token))
		r.Get(api.MessagesPath, h.ListMessages)
		r.Post(api.MessagesPath, h.PostMessage)
	})

	return r
}

// ListenAndServe serves handler on addr until ctx is done, then shuts down
// gracefully. ready, if non-nil, receives the bound address.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}
	logger.Info().Str("addr", ln.Addr().String()).Msg("starting messages server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
