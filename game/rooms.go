/*
 * Copyright (c) Joseph Prichard 2023
 */

package game

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
)

// generates an 8 character hex code that uniquely identifies a room
func NewRoomCode() (string, error) {
	b := make([]byte, 4)
	_, err := crand.Read(b)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// outcome of a join attempt, mapped by the caller to a user facing response
type JoinOutcome int

const (
	JoinOk JoinOutcome = iota
	JoinAlreadyMember
	JoinRoomFull
	JoinWrongPassword
)

var ErrNotMember = errors.New("user is not a member of the room")

// validates and applies membership changes against room state. validation failures
// are a discriminated outcome rather than an error, errors are reserved for a
// missing room or a failing store
type RoomService struct {
	rooms RoomStore
}

func NewRoomService(rooms RoomStore) *RoomService {
	return &RoomService{rooms: rooms}
}

func (service *RoomService) Create(name string, ownerID uuid.UUID, private bool, password string, capacity int) (Room, error) {
	code, err := NewRoomCode()
	if err != nil {
		return Room{}, err
	}
	if capacity < 2 {
		capacity = 8
	}

	room := Room{
		ID:       code,
		Name:     name,
		OwnerID:  ownerID,
		Private:  private,
		Password: password,
		Capacity: capacity,
		Status:   RoomWaiting,
	}
	err = service.rooms.InsertRoom(room)
	if err != nil {
		return Room{}, err
	}

	outcome, err := service.Join(code, ownerID, password)
	if err != nil {
		_ = service.rooms.DeleteRoom(code)
		return Room{}, err
	}
	if outcome != JoinOk {
		_ = service.rooms.DeleteRoom(code)
		return Room{}, errors.New("owner failed to join their own room")
	}

	room.Members = []uuid.UUID{ownerID}
	return room, nil
}

func (service *RoomService) Get(roomID string) (Room, error) {
	return service.rooms.GetRoom(roomID)
}

func (service *RoomService) Available(offset int, limit int) ([]Room, error) {
	return service.rooms.AvailableRooms(offset, limit)
}

func (service *RoomService) Delete(roomID string) error {
	return service.rooms.DeleteRoom(roomID)
}

// attempts to add the user to the room. joining a room you already belong to is
// reported as its own outcome so callers can treat it as an idempotent success
func (service *RoomService) Join(roomID string, userID uuid.UUID, password string) (JoinOutcome, error) {
	room, err := service.rooms.GetRoom(roomID)
	if err != nil {
		return 0, err
	}

	for _, member := range room.Members {
		if member == userID {
			return JoinAlreadyMember, nil
		}
	}
	if len(room.Members) >= room.Capacity {
		return JoinRoomFull, nil
	}
	if room.Private && room.Password != password {
		return JoinWrongPassword, nil
	}

	err = service.rooms.AddMember(roomID, userID)
	if err != nil {
		return 0, err
	}
	return JoinOk, nil
}

func (service *RoomService) Leave(roomID string, userID uuid.UUID) error {
	room, err := service.rooms.GetRoom(roomID)
	if err != nil {
		return err
	}

	isMember := false
	for _, member := range room.Members {
		if member == userID {
			isMember = true
			break
		}
	}
	if !isMember {
		return ErrNotMember
	}

	return service.rooms.RemoveMember(roomID, userID)
}
