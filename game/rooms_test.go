/*
 * Copyright (c) Joseph Prichard 2024
 */

package game

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRoomService_Create(t *testing.T) {
	store := newMemStore()
	service := NewRoomService(store)
	owner := uuid.New()

	room, err := service.Create("Sketchers", owner, false, "", 4)
	if err != nil {
		t.Fatalf("Failed to create room %v", err)
	}

	if len(room.ID) != 8 {
		t.Fatalf("Expected an 8 character room code, got %q", room.ID)
	}
	if room.Status != RoomWaiting {
		t.Fatalf("A new room must be waiting, got %d", room.Status)
	}
	if len(room.Members) != 1 || room.Members[0] != owner {
		t.Fatalf("The owner must be the first member, got %v", room.Members)
	}

	stored, err := store.GetRoom(room.ID)
	if err != nil {
		t.Fatalf("Created room must be persisted %v", err)
	}
	if len(stored.Members) != 1 {
		t.Fatalf("Owner membership must be persisted, got %v", stored.Members)
	}
}

func TestRoomService_Create_DefaultCapacity(t *testing.T) {
	store := newMemStore()
	service := NewRoomService(store)

	room, err := service.Create("Tiny", uuid.New(), false, "", 1)
	if err != nil {
		t.Fatalf("Failed to create room %v", err)
	}
	if room.Capacity != 8 {
		t.Fatalf("A capacity under 2 must default to 8, got %d", room.Capacity)
	}
}

func TestRoomService_Join_Outcomes(t *testing.T) {
	store := newMemStore()
	service := NewRoomService(store)
	owner := uuid.New()

	room, _ := service.Create("Private", owner, true, "hunter2", 2)

	outcome, err := service.Join(room.ID, owner, "hunter2")
	if err != nil || outcome != JoinAlreadyMember {
		t.Fatalf("Rejoining must report already member, got %d %v", outcome, err)
	}

	outcome, err = service.Join(room.ID, uuid.New(), "wrong")
	if err != nil || outcome != JoinWrongPassword {
		t.Fatalf("A wrong password must be rejected, got %d %v", outcome, err)
	}

	guest := uuid.New()
	outcome, err = service.Join(room.ID, guest, "hunter2")
	if err != nil || outcome != JoinOk {
		t.Fatalf("A valid join must succeed, got %d %v", outcome, err)
	}

	outcome, err = service.Join(room.ID, uuid.New(), "hunter2")
	if err != nil || outcome != JoinRoomFull {
		t.Fatalf("A join over capacity must be rejected, got %d %v", outcome, err)
	}
}

type failingMemberStore struct {
	*memStore
}

func (store *failingMemberStore) AddMember(roomID string, userID uuid.UUID) error {
	return errors.New("membership table is unavailable")
}

func TestRoomService_Create_FailedOwnerJoinLeavesNoRoom(t *testing.T) {
	store := newMemStore()
	service := NewRoomService(&failingMemberStore{store})

	_, err := service.Create("Broken", uuid.New(), false, "", 4)
	if err == nil {
		t.Fatalf("Expected creation to fail when the owner cannot join")
	}

	rooms, _ := store.AvailableRooms(0, 20)
	if len(rooms) != 0 {
		t.Fatalf("A failed creation must not leave an orphaned room behind, got %v", rooms)
	}
}

func TestRoomService_Join_UnknownRoom(t *testing.T) {
	service := NewRoomService(newMemStore())

	_, err := service.Join("missing", uuid.New(), "")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomService_Leave(t *testing.T) {
	store := newMemStore()
	service := NewRoomService(store)
	owner := uuid.New()

	room, _ := service.Create("Leavers", owner, false, "", 4)

	err := service.Leave(room.ID, uuid.New())
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("Leaving a room you never joined must fail, got %v", err)
	}

	err = service.Leave(room.ID, owner)
	if err != nil {
		t.Fatalf("Failed to leave room %v", err)
	}

	stored, _ := store.GetRoom(room.ID)
	if len(stored.Members) != 0 {
		t.Fatalf("Leaving must remove the membership, got %v", stored.Members)
	}
}

func TestNewRoomCode_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewRoomCode()
		if err != nil {
			t.Fatalf("Failed to generate room code %v", err)
		}
		if seen[code] {
			t.Fatalf("Room code %s generated twice", code)
		}
		seen[code] = true
	}
}
