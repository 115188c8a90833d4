package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	apimw "github.com/mediahub/mediahub/internal/api/middleware"
	"github.com/mediahub/mediahub/internal/catalog"
	"github.com/mediahub/mediahub/internal/config"
	"github.com/mediahub/mediahub/internal/session"
	"github.com/mediahub/mediahub/internal/websocket"
	"github.com/mediahub/mediahub/web"
)

// Server handles HTTP requests for MediaHub.
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	sessions  *session.Manager
	hub       *websocket.Hub
	logs      LogsProvider
	logger    zerolog.Logger
	startTime time.Time
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, sessions *session.Manager, hub *websocket.Hub, logs LogsProvider, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		cfg:       cfg,
		sessions:  sessions,
		hub:       hub,
		logs:      logs,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	page, err := catalog.NewPage(templates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes(page)

	return s, nil
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, session.HeaderToken},
		ExposeHeaders: []string{session.HeaderToken},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := s.logger.Debug()
			if v.Error != nil {
				evt = s.logger.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Str("requestId", v.RequestID).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))

	s.echo.Use(apimw.SecurityHeaders())
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes(page *catalog.Page) {
	sessionMW := s.sessions.Middleware(s.cfg.Session.CookieName, s.cfg.Session.SecureCookie)

	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)

	catalog.NewHandlers().RegisterRoutes(api.Group("/catalog", sessionMW))

	NewLogsHandlers(s.logs).RegisterRoutes(api.Group("/system/logs"))

	s.echo.GET("/ws", s.serveWebsocket, sessionMW)

	catalog.NewPageHandlers(page).RegisterRoutes(s.echo.Group("", sessionMW))
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// GET /health
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/v1/status
func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"version":   config.Version,
		"startTime": s.startTime.Format(time.RFC3339),
		"sessions":  s.sessions.Count(),
		"clients":   s.hub.ClientCount(),
	})
}

// GET /ws
func (s *Server) serveWebsocket(c echo.Context) error {
	sess, ok := session.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "no session bound")
	}
	return s.hub.Serve(c, sess.ID)
}
