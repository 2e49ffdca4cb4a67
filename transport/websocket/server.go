package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/view"
	"github.com/rocketscienceinc/tictactoe-web/transport/rest"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
)

type gameUseCase interface {
	GetGame(ctx context.Context, sessionID string) (*entity.Game, error)
	ApplyMove(ctx context.Context, sessionID string, cell int) (*entity.Game, error)
	Restart(ctx context.Context, sessionID string) (*entity.Game, error)
	Subscribe(sessionID string) (<-chan *entity.Game, func())
}

type Server struct {
	ctx         context.Context
	logger      *slog.Logger
	gameUseCase gameUseCase
	handlers    map[string]handlerFunc
}

// New - sockets are closed when ctx is cancelled.
func New(ctx context.Context, logger *slog.Logger, gameUseCase gameUseCase) *Server {
	that := &Server{
		ctx:         ctx,
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
	}

	that.handlers = map[string]handlerFunc{
		actionGameState:   that.handleGameState,
		actionGameTurn:    that.handleGameTurn,
		actionGameRestart: that.handleGameRestart,
	}

	return that
}

// Handle - upgrades a request that already went through rest.SessionMiddleware.
func (that *Server) Handle(ctx echo.Context) error {
	sessionID := rest.SessionID(ctx)
	log := that.logger.With("sessionID", sessionID)

	conn, err := websocket.Accept(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return nil
	}
	defer conn.CloseNow()

	connCtx, cancel := context.WithCancel(ctx.Request().Context())
	defer cancel()
	stop := context.AfterFunc(that.ctx, cancel)
	defer stop()

	updates, unsubscribe := that.gameUseCase.Subscribe(sessionID)
	defer unsubscribe()

	go that.writeUpdates(connCtx, cancel, conn, updates)

	log.Info("websocket connected")

	err = that.readMessages(connCtx, conn, sessionID)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("websocket closed with error", "error", err)
	}

	if status, reason, ok := that.closeStatus(err); ok {
		conn.Close(status, reason)
	}

	log.Info("websocket disconnected")

	return nil
}

// closeStatus - how to close a socket whose read loop ended with err. ok is false
// when the connection is already broken and only CloseNow is left.
func (that *Server) closeStatus(err error) (websocket.StatusCode, string, bool) {
	switch {
	case err == nil:
		return websocket.StatusNormalClosure, "", true
	case that.ctx.Err() != nil:
		return websocket.StatusGoingAway, "server shutting down", true
	case errors.Is(err, context.Canceled):
		return websocket.StatusInternalError, "update stream closed", true
	default:
		return 0, "", false
	}
}

func (that *Server) readMessages(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	for {
		var msg Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}

			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		reply := that.processMessage(ctx, sessionID, &msg)
		if err := that.send(ctx, conn, reply); err != nil {
			return err
		}
	}
}

// writeUpdates - pushes every change of the session's game, and keeps the connection alive.
func (that *Server) writeUpdates(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, updates <-chan *entity.Game) {
	defer cancel()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case game, ok := <-updates:
			if !ok {
				return
			}

			msg, err := boardMessage(actionGameUpdate, game)
			if err != nil {
				that.logger.Error("failed to build update", "error", err)
				continue
			}

			if err = that.send(ctx, conn, msg); err != nil {
				that.logger.Debug("failed to push update", "error", err)
				return
			}
		case <-ticker.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			pingCancel()

			if err != nil {
				that.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

func (that *Server) send(ctx context.Context, conn *websocket.Conn, msg *Message) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := wsjson.Write(writeCtx, conn, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func boardMessage(action string, game *entity.Game) (*Message, error) {
	board := view.NewBoard(game)

	payload, err := json.Marshal(Payload{Board: &board})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return &Message{Action: action, Payload: payload}, nil
}

func errorMessage(text string) *Message {
	payload, _ := json.Marshal(Payload{Message: text}) //nolint: errchkjson // plain string payload

	return &Message{Action: actionError, Payload: payload}
}
