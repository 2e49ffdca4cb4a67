package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rocketscienceinc/tictactoe-web/internal/config"
	"github.com/rocketscienceinc/tictactoe-web/internal/view"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger   *slog.Logger
	echo     *echo.Echo
	sessions echo.MiddlewareFunc
	game     gameUseCase
}

func New(logger *slog.Logger, conf *config.Config, game gameUseCase) *Server {
	that := &Server{
		logger:   logger.With("component", "rest"),
		echo:     echo.New(),
		sessions: SessionMiddleware(conf.Session.CookieName, conf.Session.TTL),
		game:     game,
	}

	that.echo.HideBanner = true
	that.echo.HidePort = true

	that.echo.Use(middleware.Recover())
	that.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			that.logger.Debug("request",
				"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error)
			return nil
		},
	}))

	that.echo.GET("/ping", that.ping)
	that.echo.StaticFS("/static", view.Static())

	that.echo.GET("/", that.index, that.sessions)
	that.echo.POST("/", that.backToIndex, that.sessions)
	that.echo.POST("/cells/:cell", that.cellForm, that.sessions)
	that.echo.POST("/restart", that.restartForm, that.sessions)

	that.echo.GET("/api/game", that.apiGame, that.sessions)
	that.echo.POST("/api/game/cells/:cell", that.apiMove, that.sessions)
	that.echo.POST("/api/game/restart", that.apiRestart, that.sessions)
	that.echo.DELETE("/api/game", that.apiDelete, that.sessions)

	return that
}

// Handle - mounts an extra GET route behind the session middleware.
func (that *Server) Handle(path string, handler echo.HandlerFunc) {
	that.echo.GET(path, handler, that.sessions)
}

func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	that.echo.ServeHTTP(w, r)
}

// Start - serves until ctx is cancelled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.echo,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
