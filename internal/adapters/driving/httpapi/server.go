// Package httpapi exposes the sync, chat, search and process browsing
// services over a JSON REST API with a server-sent-events chat stream.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/custodia-labs/procdocs/internal/core/ports/driving"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// UserIDHeader carries the caller's identity, recorded on new chat sessions.
const UserIDHeader = "X-User-ID"

// Services are the core services served by the API.
type Services struct {
	Sync      driving.SyncReconciler
	Chat      driving.ChatOrchestrator
	Search    driving.SearchService
	Processes driving.ProcessService
}

// Server is the HTTP API.
type Server struct {
	router *chi.Mux
	svc    Services
	now    func() time.Time
}

// NewServer builds the router. A nil service makes its routes answer 503.
func NewServer(svc Services) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(corsHandler())

	s := &Server{
		router: router,
		svc:    svc,
		now:    time.Now,
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Post("/sync", s.sync)
		r.Post("/sync/preview", s.syncPreview)
		r.Get("/sync/status", s.syncStatus)

		r.Post("/chat", s.chat)
		r.Get("/chat/sessions/{id}/messages", s.chatHistory)

		r.Get("/search", s.search)

		r.Get("/processes", s.listProcesses)
		r.Get("/processes/categories", s.categories)
		r.Get("/processes/{id}", s.getProcess)
	})
	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. In-flight chat streams see their request context cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

// corsHandler allows browser clients on any origin.
func corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", UserIDHeader},
		MaxAge:         300,
	})
}
