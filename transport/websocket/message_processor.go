package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

type handlerFunc func(ctx context.Context, sessionID string, payload *Payload) (*Message, error)

func (that *Server) processMessage(ctx context.Context, sessionID string, msg *Message) *Message {
	log := that.logger.With("method", "processMessage", "action", msg.Action)

	handler, ok := that.handlers[msg.Action]
	if !ok {
		log.Warn("unknown action")
		return errorMessage(fmt.Sprintf("unknown action %q", msg.Action))
	}

	var payload Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.Debug("malformed payload", "error", err)
			return errorMessage("malformed payload")
		}
	}

	reply, err := handler(ctx, sessionID, &payload)
	if err != nil {
		log.Error("failed to handle message", "error", err)
		return errorMessage(err.Error())
	}

	return reply
}
