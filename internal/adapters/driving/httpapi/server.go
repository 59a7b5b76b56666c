// Package httpapi serves the chat pipeline over HTTP using gin.
package httpapi

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
	"github.com/custodia-labs/wikichat/internal/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

// SessionCookie is the cookie holding the caller's session ID.
const SessionCookie = "wikichat_session"

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 5 * time.Second

// ErrMissingChatService is returned when no chat service is provided.
var ErrMissingChatService = errors.New("httpapi: chat service is required")

// Ports aggregates the services used by the HTTP server.
type Ports struct {
	// Chat answers questions. Required.
	Chat driving.ChatService

	// Retrieval reports the index size on the health endpoint. Optional.
	Retrieval driving.RetrievalService
}

// Server is the HTTP chat server.
type Server struct {
	ports  *Ports
	engine *gin.Engine
}

// NewServer creates a server and registers its routes.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil || ports.Chat == nil {
		return nil, ErrMissingChatService
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	if !logger.IsVerbose() && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(RequestLogger(), gin.Recovery())
	engine.SetHTMLTemplate(tmpl)

	s := &Server{ports: ports, engine: engine}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/", s.handleAsk)
	s.engine.POST("/ask", s.handleAsk)
	s.engine.POST("/reset", s.handleReset)
	s.engine.GET("/healthz", s.handleHealth)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
