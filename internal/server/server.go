package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"soulcare/internal/config"
	"soulcare/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Task is a long running component stopped by cancelling its context.
type Task func(ctx context.Context) error

type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	tasks           []Task
}

func New(cfg config.ServerConfig, addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Go registers a task that runs alongside the HTTP listener.
func (s *Server) Go(task Task) {
	s.tasks = append(s.tasks, task)
}

// Run serves until ctx is cancelled or any task fails, then drains
// in-flight requests and waits for every task to return.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, task := range s.tasks {
		task := task
		g.Go(func() error {
			return task(gctx)
		})
	}

	g.Go(func() error {
		logger.WithField("addr", s.httpServer.Addr).Info("Server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
