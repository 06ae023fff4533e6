/*
 * Copyright (c) Joseph Prichard 2023
 */

package realtime

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// applies the business effect of one inbound message for one connection
type HandlerFunc func(connID uuid.UUID, raw []byte)

// tags a client may not send, they only ever flow server to client
var outboundOnly = map[string]struct{}{
	TagRoomUpdate:     {},
	TagGameCreated:    {},
	TagGameStarted:    {},
	TagGameJoined:     {},
	TagRoundStarted:   {},
	TagRoundEnded:     {},
	TagGameEnded:      {},
	TagDrawerSelected: {},
	TagDrawerWord:     {},
	TagScoreUpdated:   {},
	TagRoomCreated:    {},
	TagRoomDeleted:    {},
}

// decodes the envelope of each inbound frame and invokes exactly one handler.
// the dispatch table is closed and built up front, a tag either has a handler
// or the frame is dropped
type Router struct {
	handlers map[string]HandlerFunc
}

func NewRouter(handlers *Handlers) *Router {
	return &Router{
		handlers: map[string]HandlerFunc{
			TagDrawEvent:   handlers.HandleDraw,
			TagClearCanvas: handlers.HandleDraw,
			TagChatMessage: handlers.HandleChat,
			TagRoomJoin:    handlers.HandleRoomJoin,
			TagRoomLeave:   handlers.HandleRoomLeave,
		},
	}
}

// processes a single raw frame to completion. malformed and unknown envelopes
// are logged and dropped, and a failure inside one handler never escapes to
// take down the connection's read loop
func (router *Router) Dispatch(connID uuid.UUID, raw []byte) {
	var envelope Envelope
	err := json.Unmarshal(raw, &envelope)
	if err != nil {
		log.Printf("Dropping malformed message on connection %s: %v", connID, err)
		return
	}

	handler, ok := router.handlers[envelope.EventType]
	if !ok {
		if _, outbound := outboundOnly[envelope.EventType]; outbound {
			log.Printf("Unexpected outbound-only event %q from connection %s", envelope.EventType, connID)
		} else {
			log.Printf("Unknown event type %q from connection %s", envelope.EventType, connID)
		}
		return
	}

	defer func() {
		if panicInfo := recover(); panicInfo != nil {
			log.Printf("Handler for %q panicked on connection %s: %v", envelope.EventType, connID, panicInfo)
		}
	}()
	handler(connID, raw)
}
