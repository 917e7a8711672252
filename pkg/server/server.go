// Package server wires the gin engine, middleware and routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"wiki-api/pkg/config"
	"wiki-api/pkg/handlers"
	"wiki-api/pkg/store"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg    *config.Config
	store  store.Store
	logger *zap.Logger
	engine *gin.Engine
}

func New(cfg *config.Config, s store.Store, logger *zap.Logger) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(logger.Named("http")))
	r.Use(Metrics())
	if cfg.SecureHeaders {
		r.Use(secure.New(secure.Config{
			FrameDeny:          true,
			ContentTypeNosniff: true,
			BrowserXssFilter:   true,
			ReferrerPolicy:     "strict-origin-when-cross-origin",
			IsDevelopment:      !cfg.IsProduction(),
		}))
	}

	srv := &Server{cfg: cfg, store: s, logger: logger, engine: r}

	handlers.NewArticleHandler(s, logger).Register(r)
	r.GET("/healthz", srv.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return srv
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusOK, "ok")
}

// Run serves until ctx is cancelled, then drains requests and closes the store.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server started", zap.String("addr", s.cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.closeStore()
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	s.closeStore()
	return err
}

func (s *Server) closeStore() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.store.Close(ctx); err != nil {
		s.logger.Warn("Closing store failed", zap.Error(err))
	}
}
