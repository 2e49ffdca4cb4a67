package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-web/internal/view"
)

const (
	actionGameState   = "game:state"
	actionGameTurn    = "game:turn"
	actionGameRestart = "game:restart"
	actionGameUpdate  = "game:update"
	actionError       = "error"
)

// Message - envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Cell    *int        `json:"cell,omitempty"`
	Board   *view.Board `json:"board,omitempty"`
	Message string      `json:"message,omitempty"`
}
