// Package server exposes the flowchart over HTTP: an HTML page with the fact
// form and the rendered graph, plus a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/model"
	"github.com/ppiankov/arrestflow/internal/pipeline"
	"github.com/ppiankov/arrestflow/internal/view"
	"github.com/ppiankov/arrestflow/internal/worker"
)

// limiterIdle is how long a client's rate limit state is kept after its last request
const limiterIdle = 10 * time.Minute

// Server serves the interactive flowchart
type Server struct {
	pipe    *pipeline.Pipeline
	limiter *worker.Limiter
	logger  *zap.Logger
	cfg     model.ServerConfig
	engine  *gin.Engine
}

// New creates a server over p. It installs the node link builder on p, so
// p must not be shared with renders already in flight.
func New(p *pipeline.Pipeline, cfg model.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	p.SetLink(NodeLink)

	limiter := worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)
	for _, ip := range cfg.TrustedClients {
		limiter.SetClientRate(ip, math.Inf(1), cfg.Burst)
	}

	s := &Server{
		pipe:    p,
		limiter: limiter,
		logger:  logger,
		cfg:     cfg,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger))

	router.GET("/", s.handleIndex)
	router.GET("/click", s.handleClick)
	router.GET("/select/:node", s.handleSelect)
	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := router.Group("/", rateLimit(s.limiter))
	limited.GET("/graph/:format", s.handleGraph)

	api := router.Group("/api")
	api.GET("/view", s.handleView)
	api.POST("/reduce", s.handleReduce)

	return router
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr), zap.String("graph", s.pipe.Fingerprint()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	prune := time.NewTicker(limiterIdle)
	defer prune.Stop()

	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-prune.C:
			if n := s.limiter.Prune(limiterIdle); n > 0 {
				s.logger.Debug("pruned idle clients", zap.Int("count", n), zap.Int("tracked", s.limiter.Len()))
			}
		case <-ctx.Done():
			timeout := s.cfg.ShutdownTimeout
			if timeout <= 0 {
				timeout = 5 * time.Second
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			s.logger.Info("shutting down")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		}
	}
}

// NodeLink points a selectable node at its toggle endpoint, carrying the
// current facts along
func NodeLink(n view.NodeView, current facts.Facts) string {
	if n.Select == nil {
		return ""
	}
	return withFacts("/select/"+url.PathEscape(n.ID), current)
}

// withFacts appends the facts to path as a query string
func withFacts(path string, f facts.Facts) string {
	if q := f.Values().Encode(); q != "" {
		return path + "?" + q
	}
	return path
}
