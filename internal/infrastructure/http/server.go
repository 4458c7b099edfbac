package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/wekeepgrowing/workshop-backend/internal/adapter/handler/http"
	"github.com/wekeepgrowing/workshop-backend/internal/config"
	"github.com/wekeepgrowing/workshop-backend/internal/middleware/auth"
	pkgerrors "github.com/wekeepgrowing/workshop-backend/pkg/errors"
	"github.com/wekeepgrowing/workshop-backend/pkg/logger"
)

type Server struct {
	config  *config.Config
	logger  *zap.Logger
	echo    *echo.Echo
	writeup *handlers.WriteupHandler
}

func NewServer(cfg *config.Config, log *zap.Logger, writeup *handlers.WriteupHandler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = logger.NewEchoZapLogger(log)
	e.Validator = handlers.NewRequestValidator()
	e.HTTPErrorHandler = pkgerrors.NewEchoErrorHandler(log)

	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	if len(cfg.Server.HTTP.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.HTTP.CORSOrigins,
			AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE},
		}))
	}

	s := &Server{
		config:  cfg,
		logger:  log,
		echo:    e,
		writeup: writeup,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	jwtConfig := auth.JWTConfig{
		Secret:    s.config.Service.Supabase.JWTSecret,
		Logger:    s.logger,
		SkipPaths: []string{"/health"},
	}

	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))
	s.writeup.Register(v1)
}
