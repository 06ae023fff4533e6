/*
 * Copyright (c) Joseph Prichard 2023
 */

package realtime

import (
	"sketchbout/game"

	"github.com/google/uuid"
)

// formats outbound lifecycle events and pushes them through the registry to the
// connections they concern. satisfies game.Notifier
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

func (d *Dispatcher) GameCreated(roomID string, gameID uuid.UUID, totalRounds int, roundSecs int) {
	event := GameCreatedEvent{
		Envelope:    eventOf(TagGameCreated),
		GameID:      gameID,
		RoomID:      roomID,
		TotalRounds: totalRounds,
		RoundSecs:   roundSecs,
	}
	d.registry.Broadcast(roomID, marshalEvent(event))
}

func (d *Dispatcher) GameStarted(roomID string, gameID uuid.UUID) {
	event := GameStartedEvent{Envelope: eventOf(TagGameStarted), GameID: gameID, RoomID: roomID}
	d.registry.Broadcast(roomID, marshalEvent(event))
}

func (d *Dispatcher) RoundStarted(roomID string, gameID uuid.UUID, round int) {
	event := RoundStartedEvent{Envelope: eventOf(TagRoundStarted), GameID: gameID, RoomID: roomID, CurrentRound: round}
	d.registry.Broadcast(roomID, marshalEvent(event))
}

func (d *Dispatcher) RoundEnded(roomID string, gameID uuid.UUID, round int) {
	event := RoundEndedEvent{Envelope: eventOf(TagRoundEnded), GameID: gameID, RoomID: roomID, CurrentRound: round}
	d.registry.Broadcast(roomID, marshalEvent(event))
}

func (d *Dispatcher) GameEnded(roomID string, gameID uuid.UUID, winnerID uuid.UUID) {
	event := GameEndedEvent{Envelope: eventOf(TagGameEnded), GameID: gameID, RoomID: roomID, WinnerID: winnerID}
	d.registry.Broadcast(roomID, marshalEvent(event))
}

func (d *Dispatcher) DrawerSelected(roomID string, gameID uuid.UUID, drawerID uuid.UUID) {
	event := DrawerSelectedEvent{Envelope: eventOf(TagDrawerSelected), GameID: gameID, RoomID: roomID, DrawerID: drawerID}
	d.registry.Broadcast(roomID, marshalEvent(event))
}

// the secret word goes only to the drawer's own connections
func (d *Dispatcher) DrawerWord(drawerID uuid.UUID, gameID uuid.UUID, word string) {
	event := DrawerWordEvent{Envelope: eventOf(TagDrawerWord), GameID: gameID, Word: word}
	payload := marshalEvent(event)
	for _, connID := range d.registry.ConnectionsForUser(drawerID) {
		d.registry.Send(connID, payload)
	}
}

func (d *Dispatcher) ScoreUpdated(roomID string, gameID uuid.UUID, userID uuid.UUID, gained int, total int) {
	event := ScoreUpdatedEvent{
		Envelope:     eventOf(TagScoreUpdated),
		GameID:       gameID,
		RoomID:       roomID,
		UserID:       userID,
		PointsGained: gained,
		Total:        total,
	}
	d.registry.Broadcast(roomID, marshalEvent(event))
}

func (d *Dispatcher) RoomUpdate(roomID string, userID uuid.UUID, username string, action int) {
	event := RoomUpdateEvent{
		Envelope: eventOf(TagRoomUpdate),
		RoomID:   roomID,
		UserID:   userID,
		Username: username,
		Action:   action,
	}
	d.registry.Broadcast(roomID, marshalEvent(event))
}

func (d *Dispatcher) GameJoined(connID uuid.UUID, g game.Game) {
	event := GameJoinedEvent{
		Envelope:     eventOf(TagGameJoined),
		GameID:       g.ID,
		RoomID:       g.RoomID,
		CurrentRound: g.CurrentRound,
		TotalRounds:  g.TotalRounds,
		DrawerID:     g.DrawerID,
	}
	d.registry.Send(connID, marshalEvent(event))
}

func (d *Dispatcher) RoomCreated(room game.Room) {
	event := RoomCreatedEvent{Envelope: eventOf(TagRoomCreated), RoomID: room.ID, Name: room.Name}
	d.registry.Broadcast(room.ID, marshalEvent(event))
}

func (d *Dispatcher) RoomDeleted(roomID string) {
	event := RoomDeletedEvent{Envelope: eventOf(TagRoomDeleted), RoomID: roomID}
	d.registry.Broadcast(roomID, marshalEvent(event))
}
