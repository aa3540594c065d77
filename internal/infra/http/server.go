package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/userdeskio/api/internal/config"
	"github.com/userdeskio/api/internal/infra/http/middleware"
	"github.com/userdeskio/api/pkg/logger"
)

// Server owns the HTTP listener and the middleware stack.
type Server struct {
	cfg     *config.Config
	router  Router
	httpSrv *http.Server
	logger  *logger.Logger
	cleanup []func()
}

// NewServer creates the server with the standard middleware stack applied.
func NewServer(cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		router: NewRouter(),
		logger: log.With("component", "http"),
	}

	s.router.Use(Middleware(middleware.Recovery(log)))
	s.router.Use(Middleware(middleware.RequestID()))
	s.router.Use(Middleware(middleware.Metrics()))
	s.router.Use(Middleware(middleware.Logger(log, "/health", "/health/ready", "/metrics")))
	s.router.Use(Middleware(middleware.BodyLimit(cfg.Server.MaxBodySize)))
	s.router.Use(Middleware(middleware.Decompress()))

	if cfg.RateLimit.Enabled {
		mw, stop := middleware.RateLimit(cfg.RateLimit, log)
		s.router.Use(Middleware(mw))
		s.cleanup = append(s.cleanup, stop)
	}

	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Router returns the routing surface for handler registration.
func (s *Server) Router() Router {
	return s.router
}

// Start serves until the listener closes. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and runs registered cleanups.
func (s *Server) Shutdown(ctx context.Context) error {
	defer func() {
		for _, fn := range s.cleanup {
			fn()
		}
	}()
	return s.httpSrv.Shutdown(ctx)
}
