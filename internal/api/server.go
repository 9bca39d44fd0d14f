package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/alienx/bianca/internal/agents"
	"github.com/alienx/bianca/internal/api/auth"
	"github.com/alienx/bianca/internal/router"
)

// Options configures the API server.
type Options struct {
	Port    int
	Planner *router.Planner
	Agents  *agents.Registry

	// DB enables event persistence and the replay endpoints when set.
	DB *sql.DB

	// AuthSecret enables bearer-token auth on the API group when set.
	AuthSecret string
}

// Server represents the API server.
type Server struct {
	echo *echo.Echo
	port int
}

// NewServer creates a new API server.
func NewServer(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo: e,
		port: opts.Port,
	}

	server.setupRoutes(opts)

	return server
}

// setupRoutes configures all API endpoints.
func (s *Server) setupRoutes(opts Options) {
	// Health check endpoint
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	var sink EventSink
	if opts.DB != nil {
		sink = NewDatabaseEventSink(opts.DB)
	}
	streamHandler := NewStreamHandler(opts.Planner, opts.Agents, sink)

	api := s.echo.Group("/api")
	if opts.AuthSecret != "" {
		tokenService := auth.NewTokenService(opts.AuthSecret)
		api.Use(auth.RequireAuth(tokenService))
	}

	api.GET("/test", streamHandler.TestConnection)
	api.POST("/process-stream", streamHandler.ProcessStream)

	if opts.DB != nil {
		eventsHandler := NewConversationEventsHandler(opts.DB)
		api.GET("/conversations/:id/events", eventsHandler.GetConversationEvents)
		api.GET("/conversations/:id/summary", eventsHandler.GetConversationSummary)
	}
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start begins the API server and blocks until interrupted.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			s.echo.Logger.Fatal("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}
