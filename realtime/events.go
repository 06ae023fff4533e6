/*
 * Copyright (c) Joseph Prichard 2023
 */

package realtime

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// every message on the wire is a flat json object carrying an eventType
// discriminator and a requestId correlation field next to its payload fields.
// the discriminator set is closed, one payload type per tag
const (
	TagRoomJoin    = "RoomJoin"
	TagRoomLeave   = "RoomLeave"
	TagRoomUpdate  = "RoomUpdate"
	TagChatMessage = "ChatMessage"
	TagDrawEvent   = "DrawEvent"
	TagClearCanvas = "ClearCanvas"

	TagGameCreated    = "game:created"
	TagGameStarted    = "game:started"
	TagGameJoined     = "game:joined"
	TagRoundStarted   = "round:started"
	TagRoundEnded     = "round:ended"
	TagGameEnded      = "game:ended"
	TagDrawerSelected = "drawer:selected"
	TagDrawerWord     = "drawer:word"
	TagScoreUpdated   = "score:updated"
	TagRoomCreated    = "room:created"
	TagRoomDeleted    = "room:deleted"
)

// the fields shared by every message, used to pick a handler before the full
// payload shape is known
type Envelope struct {
	EventType string `json:"eventType"`
	RequestID string `json:"requestId"`
}

type RoomJoinMsg struct {
	Envelope
	RoomID   string    `json:"RoomId"`
	UserID   uuid.UUID `json:"UserId"`
	Username string    `json:"Username"`
	Password string    `json:"Password"`
}

type RoomLeaveMsg struct {
	Envelope
	RoomID   string    `json:"RoomId"`
	UserID   uuid.UUID `json:"UserId"`
	Username string    `json:"Username"`
}

type ChatMsg struct {
	Envelope
	RoomID   string    `json:"RoomId"`
	UserID   uuid.UUID `json:"UserId"`
	Username string    `json:"Username"`
	Message  string    `json:"Message"`
}

// draw strokes and canvas clears are relayed verbatim, only the room needs decoding
type DrawMsg struct {
	Envelope
	RoomID string `json:"RoomId"`
}

const (
	ActionJoined = 0
	ActionLeft   = 1
)

type RoomUpdateEvent struct {
	Envelope
	RoomID   string    `json:"RoomId"`
	UserID   uuid.UUID `json:"UserId"`
	Username string    `json:"Username"`
	Action   int       `json:"Action"`
}

type RoomCreatedEvent struct {
	Envelope
	RoomID string `json:"RoomId"`
	Name   string `json:"Name"`
}

type RoomDeletedEvent struct {
	Envelope
	RoomID string `json:"RoomId"`
}

type GameCreatedEvent struct {
	Envelope
	GameID      uuid.UUID `json:"GameId"`
	RoomID      string    `json:"RoomId"`
	TotalRounds int       `json:"TotalRounds"`
	RoundSecs   int       `json:"RoundSecs"`
}

type GameStartedEvent struct {
	Envelope
	GameID uuid.UUID `json:"GameId"`
	RoomID string    `json:"RoomId"`
}

// sent privately to a connection that joins a room with a game already in flight
type GameJoinedEvent struct {
	Envelope
	GameID       uuid.UUID `json:"GameId"`
	RoomID       string    `json:"RoomId"`
	CurrentRound int       `json:"CurrentRound"`
	TotalRounds  int       `json:"TotalRounds"`
	DrawerID     uuid.UUID `json:"DrawerId"`
}

type RoundStartedEvent struct {
	Envelope
	GameID       uuid.UUID `json:"GameId"`
	RoomID       string    `json:"RoomId"`
	CurrentRound int       `json:"CurrentRound"`
}

type RoundEndedEvent struct {
	Envelope
	GameID       uuid.UUID `json:"GameId"`
	RoomID       string    `json:"RoomId"`
	CurrentRound int       `json:"CurrentRound"`
}

type GameEndedEvent struct {
	Envelope
	GameID   uuid.UUID `json:"GameId"`
	RoomID   string    `json:"RoomId"`
	WinnerID uuid.UUID `json:"WinnerId"`
}

type DrawerSelectedEvent struct {
	Envelope
	GameID   uuid.UUID `json:"GameId"`
	RoomID   string    `json:"RoomId"`
	DrawerID uuid.UUID `json:"DrawerId"`
}

// sent only to the drawer's own connections, never broadcast
type DrawerWordEvent struct {
	Envelope
	GameID uuid.UUID `json:"GameId"`
	Word   string    `json:"Word"`
}

type ScoreUpdatedEvent struct {
	Envelope
	GameID       uuid.UUID `json:"GameId"`
	RoomID       string    `json:"RoomId"`
	UserID       uuid.UUID `json:"UserId"`
	PointsGained int       `json:"PointsGained"`
	Total        int       `json:"Total"`
}

func eventOf(tag string) Envelope {
	return Envelope{EventType: tag}
}

func marshalEvent(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal outbound event: %v", err)
		return nil
	}
	return b
}
