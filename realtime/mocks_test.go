/*
 * Copyright (c) Joseph Prichard 2024
 */

package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"sketchbout/game"

	"github.com/google/uuid"
)

// records every payload written to it, optionally failing each write
type fakeClient struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

func (client *fakeClient) WriteText(payload []byte) error {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.fail {
		return errDeadSocket
	}
	client.frames = append(client.frames, append([]byte(nil), payload...))
	return nil
}

func (client *fakeClient) count() int {
	client.mu.Lock()
	defer client.mu.Unlock()
	return len(client.frames)
}

func (client *fakeClient) last(t *testing.T) []byte {
	t.Helper()
	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.frames) == 0 {
		t.Fatalf("Expected at least one frame written to the client")
	}
	return client.frames[len(client.frames)-1]
}

func (client *fakeClient) tags(t *testing.T) []string {
	t.Helper()
	client.mu.Lock()
	defer client.mu.Unlock()
	tags := make([]string, 0, len(client.frames))
	for _, frame := range client.frames {
		var envelope Envelope
		if err := json.Unmarshal(frame, &envelope); err != nil {
			t.Fatalf("Client received an undecodable frame: %v", err)
		}
		tags = append(tags, envelope.EventType)
	}
	return tags
}

var errDeadSocket = &deadSocketError{}

type deadSocketError struct{}

func (*deadSocketError) Error() string { return "write to a dead socket" }

// in memory store double shared across the handler tests

type scoreKey struct {
	gameID uuid.UUID
	userID uuid.UUID
	round  int
}

type memState struct {
	mu     sync.Mutex
	games  map[uuid.UUID]game.Game
	scores map[scoreKey]game.Score
	rooms  map[string]game.Room
	users  map[uuid.UUID]game.User
}

func newMemState() *memState {
	return &memState{
		games:  make(map[uuid.UUID]game.Game),
		scores: make(map[scoreKey]game.Score),
		rooms:  make(map[string]game.Room),
		users:  make(map[uuid.UUID]game.User),
	}
}

func (state *memState) InsertGame(g game.Game) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.games[g.ID] = g
	return nil
}

func (state *memState) GetGame(id uuid.UUID) (game.Game, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	g, ok := state.games[id]
	if !ok {
		return game.Game{}, game.ErrGameNotFound
	}
	return g, nil
}

func (state *memState) UpdateGame(g game.Game) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.games[g.ID] = g
	return nil
}

func (state *memState) ActiveGameByRoom(roomID string) (game.Game, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	for _, g := range state.games {
		if g.RoomID == roomID && g.Status != game.GameEnd {
			return g, nil
		}
	}
	return game.Game{}, game.ErrGameNotFound
}

func (state *memState) InsertScore(s game.Score) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.scores[scoreKey{s.GameID, s.UserID, s.Round}] = s
	return nil
}

func (state *memState) FindScore(gameID uuid.UUID, userID uuid.UUID, round int) (game.Score, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	s, ok := state.scores[scoreKey{gameID, userID, round}]
	if !ok {
		return game.Score{}, game.ErrScoreNotFound
	}
	return s, nil
}

func (state *memState) TotalPoints(gameID uuid.UUID, userID uuid.UUID) (int, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	total := 0
	for key, s := range state.scores {
		if key.gameID == gameID && key.userID == userID {
			total += s.Points
		}
	}
	return total, nil
}

func (state *memState) TotalsByGame(gameID uuid.UUID) ([]game.PlayerTotal, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	byUser := make(map[uuid.UUID]int)
	for key, s := range state.scores {
		if key.gameID == gameID {
			byUser[key.userID] += s.Points
		}
	}
	totals := make([]game.PlayerTotal, 0, len(byUser))
	for userID, points := range byUser {
		totals = append(totals, game.PlayerTotal{UserID: userID, Points: points})
	}
	return totals, nil
}

func (state *memState) InsertRoom(r game.Room) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.rooms[r.ID] = r
	return nil
}

func (state *memState) GetRoom(id string) (game.Room, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	r, ok := state.rooms[id]
	if !ok {
		return game.Room{}, game.ErrRoomNotFound
	}
	return r, nil
}

func (state *memState) DeleteRoom(id string) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	delete(state.rooms, id)
	return nil
}

func (state *memState) AvailableRooms(offset int, limit int) ([]game.Room, error) {
	return nil, nil
}

func (state *memState) SetRoomStatus(id string, status game.RoomStatus) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	r, ok := state.rooms[id]
	if !ok {
		return game.ErrRoomNotFound
	}
	r.Status = status
	state.rooms[id] = r
	return nil
}

func (state *memState) AddMember(roomID string, userID uuid.UUID) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	r, ok := state.rooms[roomID]
	if !ok {
		return game.ErrRoomNotFound
	}
	r.Members = append(r.Members, userID)
	state.rooms[roomID] = r
	return nil
}

func (state *memState) RemoveMember(roomID string, userID uuid.UUID) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	r, ok := state.rooms[roomID]
	if !ok {
		return game.ErrRoomNotFound
	}
	members := make([]uuid.UUID, 0, len(r.Members))
	for _, member := range r.Members {
		if member != userID {
			members = append(members, member)
		}
	}
	r.Members = members
	state.rooms[roomID] = r
	return nil
}

func (state *memState) InsertUser(u game.User) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.users[u.ID] = u
	return nil
}

func (state *memState) GetUser(id uuid.UUID) (game.User, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	u, ok := state.users[id]
	if !ok {
		return game.User{}, game.ErrUserNotFound
	}
	return u, nil
}

func (state *memState) UpdateStats(results []game.GameResult) error {
	return nil
}

func (state *memState) Leaderboard(limit int, sort string) ([]game.User, error) {
	return nil, nil
}
