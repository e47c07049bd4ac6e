package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type Server struct {
	handler *Handler
	server  *http.Server
	logger  zerolog.Logger
}

func NewServer(addr string, handler *Handler, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  httpServer,
		logger:  logger.With().Str("component", "web").Logger(),
	}
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", "http://"+s.server.Addr).Msg("starting status server")
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down status server")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}
