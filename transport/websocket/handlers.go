package websocket

import (
	"context"
	"errors"
	"fmt"
)

var ErrCellRequired = errors.New("cell is required")

func (that *Server) handleGameState(ctx context.Context, sessionID string, _ *Payload) (*Message, error) {
	game, err := that.gameUseCase.GetGame(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get the game: %w", err)
	}

	return boardMessage(actionGameState, game)
}

// handleGameTurn - always answers with the current board, whether or not the move was taken.
func (that *Server) handleGameTurn(ctx context.Context, sessionID string, payload *Payload) (*Message, error) {
	if payload.Cell == nil {
		return nil, ErrCellRequired
	}

	game, err := that.gameUseCase.ApplyMove(ctx, sessionID, *payload.Cell)
	if err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	return boardMessage(actionGameTurn, game)
}

func (that *Server) handleGameRestart(ctx context.Context, sessionID string, _ *Payload) (*Message, error) {
	game, err := that.gameUseCase.Restart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to restart the game: %w", err)
	}

	return boardMessage(actionGameRestart, game)
}
