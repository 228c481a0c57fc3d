package preview

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/builder"
	"github.com/starford/ansuz/internal/storage"
)

// Server rebuilds one manifest on content changes and serves the
// artifact with live-reload events.
type Server struct {
	store       *storage.FS
	builder     *builder.Builder
	broker      *Broker
	manifestRel string
	addr        string
	logger      *slog.Logger

	mu          sync.Mutex
	artifactRel string
	lastSum     [sha256.Size]byte
}

// NewServer creates a preview server for one manifest.
func NewServer(store *storage.FS, b *builder.Builder, manifestRel, addr string, logger *slog.Logger) *Server {
	return &Server{
		store:       store,
		builder:     b,
		broker:      NewBroker(),
		manifestRel: manifestRel,
		addr:        addr,
		logger:      logger,
	}
}

// Run builds once, then serves until ctx is cancelled or a shutdown
// signal arrives. The initial build must succeed; later rebuild
// failures are reported to clients but keep the last good artifact up.
func (s *Server) Run(ctx context.Context) error {
	if err := s.rebuild(ctx, true); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: s.router(),
	}

	s.logger.Info("preview server starting",
		slog.String("address", s.addr),
		slog.String("manifest", s.manifestRel))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return Watch(gCtx, s.store.Root(), s.logger, func() {
			if err := s.rebuild(gCtx, false); err != nil {
				s.logger.Error("rebuild failed", slog.String("error", err.Error()))
				s.broker.Publish(Event{Type: "build.failed", Data: map[string]string{"error": err.Error()}})
			}
		})
	})

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			s.logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		s.broker.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("preview server stopped")
	return nil
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/events", s.broker.ServeHTTP)
	r.Get("/", s.serveArtifact)

	return r
}

func (s *Server) serveArtifact(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	rel := s.artifactRel
	s.mu.Unlock()

	data, err := s.store.Read(rel)
	if err != nil {
		http.Error(w, "artifact not available", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}

// rebuild runs the build and notifies clients only when the artifact
// bytes actually changed, so touch-without-edit saves do not trigger
// browser reloads.
func (s *Server) rebuild(ctx context.Context, initial bool) error {
	rel, err := s.builder.Build(ctx, s.manifestRel)
	if err != nil {
		return err
	}

	data, err := s.store.Read(rel)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(data)

	s.mu.Lock()
	changed := sum != s.lastSum
	s.artifactRel = rel
	s.lastSum = sum
	s.mu.Unlock()

	if changed && !initial {
		s.broker.Publish(Event{Type: "artifact.updated", Data: map[string]string{"artifact": rel}})
	}
	return nil
}
