/*
 * Copyright (c) Joseph Prichard 2023
 */

package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"sketchbout/game"

	"github.com/google/uuid"
)

// the business effects behind the router's dispatch table. each handler decodes
// its own payload shape, mutates game or membership state, and triggers the
// broadcasts that follow from it
type Handlers struct {
	registry *Registry
	rooms    *game.RoomService
	orch     *game.Orchestrator
	scorer   *game.Scorer
	events   *Dispatcher
}

func NewHandlers(registry *Registry, rooms *game.RoomService, orch *game.Orchestrator, scorer *game.Scorer, events *Dispatcher) *Handlers {
	return &Handlers{
		registry: registry,
		rooms:    rooms,
		orch:     orch,
		scorer:   scorer,
		events:   events,
	}
}

// resolves the room a message applies to, preferring the envelope's room id and
// falling back to the first room the connection belongs to
func (h *Handlers) resolveRoom(connID uuid.UUID, roomID string) string {
	if roomID != "" {
		return roomID
	}
	roomIDs := h.registry.RoomsOf(connID)
	if len(roomIDs) == 0 {
		return ""
	}
	return roomIDs[0]
}

// relays a draw stroke or canvas clear verbatim to the whole room. the sender
// receives its own echo too, clients filter by author identity
func (h *Handlers) HandleDraw(connID uuid.UUID, raw []byte) {
	var msg DrawMsg
	err := json.Unmarshal(raw, &msg)
	if err != nil {
		log.Printf("Dropping undecodable draw message on connection %s: %v", connID, err)
		return
	}

	roomID := h.resolveRoom(connID, msg.RoomID)
	if roomID == "" {
		log.Printf("Dropping draw message from connection %s, no room could be resolved", connID)
		return
	}

	h.registry.Broadcast(roomID, raw)
}

// reports whether any whitespace separated token of the text equals the word,
// ignoring case
func containsWholeWord(text string, word string) bool {
	for _, token := range strings.Fields(text) {
		if strings.EqualFold(token, word) {
			return true
		}
	}
	return false
}

// a chat message doubles as a guess. a message mentioning the secret word as one
// of its tokens is suppressed from chat, while only a message that is exactly
// the word (trimmed, any case) counts as a correct guess. so partial mentions
// are chatted and exact guesses become private scoring events, and a phrase
// like "apple pie" during an "apple" round is neither
func (h *Handlers) HandleChat(connID uuid.UUID, raw []byte) {
	var msg ChatMsg
	err := json.Unmarshal(raw, &msg)
	if err != nil {
		log.Printf("Dropping undecodable chat message on connection %s: %v", connID, err)
		return
	}

	roomID := h.resolveRoom(connID, msg.RoomID)
	if roomID == "" {
		log.Printf("Dropping chat message from connection %s, no room could be resolved", connID)
		return
	}

	g, err := h.orch.ActiveGameForRoom(roomID)
	active := err == nil && g.Word != ""
	if err != nil && !errors.Is(err, game.ErrGameNotFound) {
		log.Printf("Failed to look up active game for room %s: %v", roomID, err)
	}

	if !active || !containsWholeWord(msg.Message, g.Word) {
		h.registry.Broadcast(roomID, raw)
	}

	if active && strings.EqualFold(strings.TrimSpace(msg.Message), g.Word) {
		userID, _, ok := h.registry.Identity(connID)
		if ok && userID != g.DrawerID {
			h.scorer.AwardForCorrectGuess(g, userID)
		}
	}
}

func (h *Handlers) HandleRoomJoin(connID uuid.UUID, raw []byte) {
	var msg RoomJoinMsg
	err := json.Unmarshal(raw, &msg)
	if err != nil {
		log.Printf("Dropping undecodable join message on connection %s: %v", connID, err)
		return
	}

	outcome, err := h.rooms.Join(msg.RoomID, msg.UserID, msg.Password)
	if err != nil {
		log.Printf("Join to room %s failed for user %s: %v", msg.RoomID, msg.UserID, err)
		return
	}
	if outcome != game.JoinOk && outcome != game.JoinAlreadyMember {
		log.Printf("Join to room %s rejected for user %s with outcome %d", msg.RoomID, msg.UserID, outcome)
		return
	}

	err = h.registry.JoinRoom(msg.RoomID, connID)
	if err != nil {
		log.Printf("Failed to register connection %s into room %s: %v", connID, msg.RoomID, err)
		return
	}

	h.events.RoomUpdate(msg.RoomID, msg.UserID, msg.Username, ActionJoined)

	// a joiner mid game is caught up on the game already in flight
	g, err := h.orch.ActiveGameForRoom(msg.RoomID)
	if err == nil {
		h.events.GameJoined(connID, g)
	}
}

func (h *Handlers) HandleRoomLeave(connID uuid.UUID, raw []byte) {
	var msg RoomLeaveMsg
	err := json.Unmarshal(raw, &msg)
	if err != nil {
		log.Printf("Dropping undecodable leave message on connection %s: %v", connID, err)
		return
	}

	h.registry.LeaveRoom(msg.RoomID, connID)

	err = h.rooms.Leave(msg.RoomID, msg.UserID)
	if err != nil {
		log.Printf("Leave of room %s failed for user %s: %v", msg.RoomID, msg.UserID, err)
		return
	}

	h.events.RoomUpdate(msg.RoomID, msg.UserID, msg.Username, ActionLeft)
}
