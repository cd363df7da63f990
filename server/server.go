// Package server exposes the assignment set over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/fleet-pairs/store"
)

// Pairs is what the handlers need from the refresh orchestrator.
type Pairs interface {
	Refresh(ctx context.Context) store.AssignmentSet
	Current(ctx context.Context) store.AssignmentSet
	Latest(ctx context.Context) (store.AssignmentSet, bool)
}

type Server struct {
	pairs  Pairs
	logger zerolog.Logger
	http   *http.Server
}

// writeMargin is added to the pass budget to cover encoding and the store.
const writeMargin = 10 * time.Second

// New builds the server. passBudget is the longest a refresh pass may run;
// /api/pairs and /api/refresh wait for one, so the write timeout is derived
// from it. A zero budget disables the write timeout.
func New(port int, passBudget time.Duration, pairs Pairs, logger zerolog.Logger) *Server {
	var writeTimeout time.Duration
	if passBudget > 0 {
		writeTimeout = passBudget + writeMargin
	}
	s := &Server{
		pairs:  pairs,
		logger: logger.With().Str("component", "server").Logger(),
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/pairs", s.handlePairs)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	return mux
}

// Start listens in the background. Listen errors other than a clean
// shutdown are sent to errc.
func (s *Server) Start(errc chan<- error) {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("server: %w", err)
		}
	}()
	s.logger.Info().Str("addr", s.http.Addr).Msg("server listening")
}

// Shutdown drains in-flight requests for up to 10 seconds.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("server shutdown error")
		return err
	}
	s.logger.Info().Msg("server shut down successfully")
	return nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
