// Package server exposes the changelog loader over a small JSON HTTP API.
//
// # Routes
//
//	POST   /api/load              load changelogs ({"modules": [...], "branch": "...", "force": false})
//	GET    /api/changelogs        current loader state
//	GET    /api/tree/{pkg}        dependency trees for ?old=&new= (scoped names allowed)
//	DELETE /api/cache             clear every cache layer
//	GET    /api/modules           known modules (?category=)
//	GET    /api/branches          selectable branches
//	GET    /healthz               liveness plus store readiness
//
// Every response carries an X-Request-Id header. A request id sent by the
// client is echoed back; otherwise a new one is generated.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/changetower/pkg/catalog"
	"github.com/matzehuels/changetower/pkg/deps"
	"github.com/matzehuels/changetower/pkg/pipeline"
)

// shutdownTimeout bounds graceful shutdown once the serving context ends.
const shutdownTimeout = 10 * time.Second

// Loader is the part of [*pipeline.Loader] the API drives.
type Loader interface {
	Load(ctx context.Context, modules []string, branch string, force bool, onProgress pipeline.ProgressFunc) (pipeline.Outcome, error)
	State() pipeline.State
	ClearCache(ctx context.Context)
}

// Explainer builds dependency trees. [*deps.TreeBuilder] implements it.
type Explainer interface {
	BuildAll(ctx context.Context, pkg, oldVersion, newVersion string) []*deps.Node
}

// Options configures a [Server].
type Options struct {
	Loader    Loader
	Explainer Explainer

	// DefaultBranch is used when a load request names no branch.
	DefaultBranch string

	// StoreReady reports whether the durable store is available.
	StoreReady func() bool

	Logger *log.Logger
}

// Server serves the API.
type Server struct {
	loader        Loader
	explainer     Explainer
	defaultBranch string
	storeReady    func() bool
	logger        *log.Logger
	router        chi.Router
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	s := &Server{
		loader:        opts.Loader,
		explainer:     opts.Explainer,
		defaultBranch: opts.DefaultBranch,
		storeReady:    opts.StoreReady,
		logger:        opts.Logger,
	}
	if s.defaultBranch == "" {
		s.defaultBranch = catalog.DefaultBranch()
	}
	if s.storeReady == nil {
		s.storeReady = func() bool { return false }
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/load", s.handleLoad)
		r.Get("/changelogs", s.handleChangelogs)
		r.Get("/tree/*", s.handleTree)
		r.Delete("/cache", s.handleClearCache)
		r.Get("/modules", s.handleModules)
		r.Get("/branches", s.handleBranches)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
