// Package httpapi exposes the gallery over HTTP: the public catalog views,
// the admin mutations and the local file endpoints used by the local storage
// backend.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/korssa/gong34/internal/admin"
	"github.com/korssa/gong34/internal/catalog"
	"github.com/korssa/gong34/internal/filter"
	"github.com/korssa/gong34/internal/logging"
	"github.com/korssa/gong34/internal/storage"
	"github.com/korssa/gong34/internal/translate"
)

const shutdownTimeout = 5 * time.Second

// Deps are the collaborators the handlers run against.
type Deps struct {
	Catalog   *catalog.Synchronizer
	Engine    *filter.Engine
	Auth      *admin.Authenticator
	Gate      *admin.Gate
	Translate *translate.Suppressor
	Disk      *storage.Disk
	UploadKey string
	MaxUpload int64
}

type Server struct {
	address string
	deps    Deps
	logger  logging.Logger
	router  *mux.Router
	ready   atomic.Bool
}

func NewServer(address string, deps Deps, logger logging.Logger) *Server {
	s := &Server{
		address: address,
		deps:    deps,
		logger:  logger.With("module", "http_server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// SetReady opens the admin routes once the catalog has been loaded.
func (s *Server) SetReady() { s.ready.Store(true) }

func (s *Server) Ready() bool { return s.ready.Load() }

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.identity)

	r.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Error(r.Context(), "unable to write healthcheck", "error", err)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/apps", s.listApps).Methods(http.MethodGet)
	r.HandleFunc("/api/apps/latest", s.latestApp).Methods(http.MethodGet)
	r.HandleFunc("/api/apps/{id}", s.getApp).Methods(http.MethodGet)
	r.HandleFunc("/api/memberships", s.memberships).Methods(http.MethodGet)

	r.Handle("/api/apps", s.requireAdmin(s.createApp)).Methods(http.MethodPost)
	r.Handle("/api/apps/{id}", s.requireAdmin(s.updateApp)).Methods(http.MethodPut)
	r.Handle("/api/apps/{id}", s.requireAdmin(s.deleteApp)).Methods(http.MethodDelete)
	r.Handle("/api/apps/{id}/featured", s.requireAdmin(s.membership(catalog.Featured))).Methods(http.MethodPost, http.MethodPut)
	r.Handle("/api/apps/{id}/event", s.requireAdmin(s.membership(catalog.Event))).Methods(http.MethodPost, http.MethodPut)

	r.HandleFunc("/api/admin/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/tap", s.requireReady(s.tap)).Methods(http.MethodPost)
	r.Handle("/api/admin/logout", s.requireIdentity(s.logout)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/state", s.adminState).Methods(http.MethodGet)

	if s.deps.Disk != nil {
		r.Handle(storage.UploadPath, s.requireUploadKey(s.uploadFile)).Methods(http.MethodPost)
		r.Handle(storage.DeleteFilePath, s.requireUploadKey(s.deleteFile)).Methods(http.MethodDelete)

		files := http.StripPrefix(storage.LocalURLPrefix, http.FileServer(http.Dir(s.deps.Disk.Dir())))
		r.PathPrefix(storage.LocalURLPrefix).Handler(files).Methods(http.MethodGet, http.MethodHead)
	}
	return r
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
