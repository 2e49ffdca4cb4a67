package rest

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/view"
)

type gameUseCase interface {
	GetGame(ctx context.Context, sessionID string) (*entity.Game, error)
	ApplyMove(ctx context.Context, sessionID string, cell int) (*entity.Game, error)
	Restart(ctx context.Context, sessionID string) (*entity.Game, error)
	DeleteGame(ctx context.Context, sessionID string) error
}

// index - the game page.
func (that *Server) index(ctx echo.Context) error {
	log := that.logger.With("method", "index")

	game, err := that.game.GetGame(ctx.Request().Context(), SessionID(ctx))
	if err != nil {
		log.Error("failed to get game", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	var buf bytes.Buffer
	if err = view.RenderPage(&buf, view.NewBoard(game)); err != nil {
		log.Error("failed to render page", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	ctx.Response().Header().Set(echo.HeaderCacheControl, "no-store")

	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (that *Server) backToIndex(ctx echo.Context) error {
	return ctx.Redirect(http.StatusSeeOther, "/")
}

// cellForm - a click on a cell button. Anything unparseable is a silently ignored move.
func (that *Server) cellForm(ctx echo.Context) error {
	log := that.logger.With("method", "cellForm")

	cell, err := strconv.Atoi(ctx.Param("cell"))
	if err != nil {
		log.Debug("ignoring malformed cell", "cell", ctx.Param("cell"))
		return that.backToIndex(ctx)
	}

	if _, err = that.game.ApplyMove(ctx.Request().Context(), SessionID(ctx), cell); err != nil {
		log.Error("failed to apply move", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	return that.backToIndex(ctx)
}

func (that *Server) restartForm(ctx echo.Context) error {
	if _, err := that.game.Restart(ctx.Request().Context(), SessionID(ctx)); err != nil {
		that.logger.Error("failed to restart game", "method", "restartForm", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	return that.backToIndex(ctx)
}

func (that *Server) apiGame(ctx echo.Context) error {
	game, err := that.game.GetGame(ctx.Request().Context(), SessionID(ctx))
	if err != nil {
		that.logger.Error("failed to get game", "method", "apiGame", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get the game")
	}

	return ctx.JSON(http.StatusOK, view.NewBoard(game))
}

func (that *Server) apiMove(ctx echo.Context) error {
	cell, err := strconv.Atoi(ctx.Param("cell"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cell must be a number")
	}

	game, err := that.game.ApplyMove(ctx.Request().Context(), SessionID(ctx), cell)
	if err != nil {
		that.logger.Error("failed to apply move", "method", "apiMove", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to make turn")
	}

	return ctx.JSON(http.StatusOK, view.NewBoard(game))
}

func (that *Server) apiRestart(ctx echo.Context) error {
	game, err := that.game.Restart(ctx.Request().Context(), SessionID(ctx))
	if err != nil {
		that.logger.Error("failed to restart game", "method", "apiRestart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to restart the game")
	}

	return ctx.JSON(http.StatusOK, view.NewBoard(game))
}

// apiDelete - forgets the session's game; the next read starts a new one.
func (that *Server) apiDelete(ctx echo.Context) error {
	if err := that.game.DeleteGame(ctx.Request().Context(), SessionID(ctx)); err != nil {
		that.logger.Error("failed to delete game", "method", "apiDelete", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete the game")
	}

	return ctx.NoContent(http.StatusNoContent)
}
