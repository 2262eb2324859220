// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	"spurchat/chat"
	"spurchat/config"
	"spurchat/model"
)

const (
	maxBodyBytes    = 10 << 20
	shutdownTimeout = 10 * time.Second
	apiVersion      = "1.0.0"
)

// ChatService is the slice of chat.Service the HTTP layer needs.
type ChatService interface {
	ProcessMessage(ctx context.Context, message, sessionID string) (*chat.Result, error)
	GetConversationHistory(ctx context.Context, sessionID string) ([]model.Message, error)
}

// Options configures the HTTP server.
type Options struct {
	Addr        string
	FrontendURL string
	Development bool
	Logger      zerolog.Logger
}

// OptionsFromConfig builds Options from the [server] configuration.
func OptionsFromConfig(cfg *config.Config, logger zerolog.Logger) Options {
	return Options{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		FrontendURL: cfg.Server.FrontendURL,
		Development: cfg.IsDevelopment(),
		Logger:      logger,
	}
}

// Server is the HTTP front door.
type Server struct {
	svc     ChatService
	opts    Options
	logger  zerolog.Logger
	schema  *gojsonschema.Schema
	handler http.Handler
	http    *http.Server
}

// New builds the server and its routes.
func New(svc ChatService, opts Options) (*Server, error) {
	schema, err := compileMessageSchema()
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}

	s := &Server{
		svc:    svc,
		opts:   opts,
		logger: opts.Logger.With().Str("component", "http").Logger(),
		schema: schema,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/chat/message", s.handleMessage)
	mux.HandleFunc("GET /api/chat/history/{sessionId}", s.handleHistory)
	mux.HandleFunc("/", s.handleNotFound)

	var h http.Handler = mux
	h = recoverer(s.logger, opts.Development, h)
	h = newCORSPolicy(opts.FrontendURL, opts.Development).middleware(h)
	h = requestLogger(s.logger, h)
	s.handler = h

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// generation may retry across two models with backoff
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", listener.Addr().String()).Msg("server listening")
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
