package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"
)

// Routes holds the handlers mounted by NewRouter.
type Routes struct {
	Webhook        http.HandlerFunc
	Status         http.HandlerFunc
	Positions      http.HandlerFunc
	ForgetPosition http.HandlerFunc
	Events         http.HandlerFunc
	LastWebhook    http.HandlerFunc
	EventStream    http.Handler
	AdminAuth      func(http.Handler) http.Handler
}

func NewRouter(routes Routes) http.Handler {
	r := chi.NewRouter()
	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})
	r.Post("/webhook", routes.Webhook)

	// Dashboard routes
	r.Group(func(r chi.Router) {
		if routes.AdminAuth != nil {
			r.Use(routes.AdminAuth)
		}
		r.Get("/api/status", routes.Status)
		r.Get("/api/positions", routes.Positions)
		r.Delete("/api/positions/{ticker}", routes.ForgetPosition)
		r.Get("/api/events", routes.Events)
		r.Get("/api/last-webhook", routes.LastWebhook)
		if routes.EventStream != nil {
			r.Handle("/ws/events", routes.EventStream)
		}
	})

	return r
}

// StartServer serves handler on port until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, port string, handler http.Handler, shutdownTimeout time.Duration) error {
	addr := ":" + port
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
		return err
	}
	return nil
}
