package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"relayapi/src/auth"
	"relayapi/src/handler"
	"relayapi/src/store"
)

// NewRouter assembles the v1 API. Publish and health are public; the
// consumption endpoints go through the token gate.
func NewRouter(st *store.EventStore, gate *auth.Gate) chi.Router {
	r := chi.NewRouter()

	// === Global Middleware ===
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(CORS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthHandler(st))
		r.Post("/events/publish", handler.PublishHandler(st))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireToken(gate))
			r.Get("/events/stream_ndjson", handler.StreamNDJSONHandler(st))
			r.Get("/events/ws", handler.WSHandler(st))
		})
	})

	return r
}

// StartServer runs the relay until SIGINT/SIGTERM, then drains gracefully.
func StartServer(config *Config, st *store.EventStore, gate *auth.Gate) {
	addr := config.Host + ":" + config.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(st, gate),
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
	if err := st.Close(); err != nil {
		logger.WithError(err).Error("Failed to close event store")
	}
}
