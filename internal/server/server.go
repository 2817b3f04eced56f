// Package server serves docs pages with live preview blocks.
//
// Pages are assembled per request; every preview block becomes a tracked
// instance in the session store so the browser can post control
// activations (show code, zoom) back and swap in the re-rendered block.
// When the manifest or a file it references changes, the server reloads
// the stories, drops all instances and tells open pages to reload.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/docblocks/internal/config"
	"github.com/conneroisu/docblocks/internal/docs"
	"github.com/conneroisu/docblocks/internal/errors"
	"github.com/conneroisu/docblocks/internal/logging"
	"github.com/conneroisu/docblocks/internal/metrics"
	"github.com/conneroisu/docblocks/internal/preview"
	"github.com/conneroisu/docblocks/internal/registry"
	"github.com/conneroisu/docblocks/internal/session"
	"github.com/conneroisu/docblocks/internal/watcher"
	"github.com/conneroisu/docblocks/internal/websocket"
)

const (
	watchDebounce   = 200 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// Server is the docs preview server.
type Server struct {
	config   *config.Config
	logger   logging.Logger
	errors   *errors.ErrorHandler
	registry *registry.StoryRegistry
	builder  *docs.Builder
	store    *session.Store
	hub      *websocket.Hub
	metrics  *metrics.Metrics
	watcher  *watcher.FileWatcher

	serverMutex sync.Mutex
	httpServer  *http.Server
	started     time.Time
}

// New wires a server from cfg. Nothing is loaded or started yet.
func New(cfg *config.Config, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.WithComponent("server")

	m := metrics.New()
	reg := registry.NewStoryRegistry()
	store := session.NewStore(
		session.WithMaxInstances(cfg.Preview.MaxInstances),
		session.WithLogger(logger),
		session.WithGauge(m.Instances),
		session.WithPreviewOptions(
			preview.WithLogger(logger),
			preview.WithObserver(m.Observer()),
			preview.WithCanvasURL(cfg.Preview.ToolbarBaseURL),
			preview.WithZoomSteps(cfg.Preview.ZoomInStep, cfg.Preview.ZoomOutStep),
		),
	)

	return &Server{
		config:   cfg,
		logger:   logger,
		errors:   errors.NewErrorHandler(logger),
		registry: reg,
		builder:  docs.NewBuilder(nil, reg, store.Create, logger),
		store:    store,
		hub:      websocket.NewHub(cfg.Server.AllowedOrigins, logger),
		metrics:  m,
		started:  time.Now(),
	}
}

// Registry returns the story registry.
func (s *Server) Registry() *registry.StoryRegistry { return s.registry }

// Store returns the session store.
func (s *Server) Store() *session.Store { return s.store }

// Load reads the manifest and replaces the registered stories. Live
// instances are dropped and connected pages are told to reload.
func (s *Server) Load(ctx context.Context) error {
	m, err := docs.Load(s.config.Docs.Manifest, s.registry)
	s.metrics.ObserveReload(err)
	if err != nil {
		s.errors.Handle(ctx, err)
		s.hub.Broadcast(websocket.Message{Type: websocket.MessageError, Content: err.Error()})
		return err
	}

	s.builder.SetManifest(m)
	s.store.Reset()

	if s.watcher != nil {
		if err := s.watcher.SetFiles(m.Files()); err != nil {
			s.logger.Warn(ctx, err, "Failed to update watched files")
		}
	}

	s.logger.Info(ctx, "Loaded manifest",
		"path", m.Path(),
		"stories", s.registry.Count(),
		"pages", len(m.Pages),
	)
	s.hub.Broadcast(websocket.Message{Type: websocket.MessageReload})

	return nil
}

func (s *Server) handleFileChange(ctx context.Context, events []watcher.ChangeEvent) error {
	for _, event := range events {
		s.logger.Debug(ctx, "File changed", "path", event.Path, "type", event.Type.String())
	}
	return s.Load(ctx)
}

// Start loads the manifest, starts the watcher when enabled and serves HTTP
// until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.config.Docs.Watch {
		fw, err := watcher.New(watchDebounce, s.logger)
		if err != nil {
			return err
		}
		fw.AddHandler(s.handleFileChange)
		s.watcher = fw
		defer fw.Stop()
	}

	if err := s.Load(ctx); err != nil {
		return err
	}
	if s.watcher != nil {
		s.watcher.Start(ctx)
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Serving docs", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- errors.Wrap(err, errors.ErrorTypeIO, errors.ErrCodeInternalError, "server error")
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the HTTP server and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	_ = s.hub.Shutdown(ctx)

	s.serverMutex.Lock()
	server := s.httpServer
	s.serverMutex.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
