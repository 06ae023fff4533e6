/*
 * Copyright (c) Joseph Prichard 2024
 */

package game

import (
	"sync"

	"github.com/google/uuid"
)

// in memory store doubles for the orchestration and scoring tests

type scoreKey struct {
	gameID uuid.UUID
	userID uuid.UUID
	round  int
}

type memStore struct {
	mu     sync.Mutex
	games  map[uuid.UUID]Game
	scores map[scoreKey]Score
	rooms  map[string]Room
	users  map[uuid.UUID]User

	statResults [][]GameResult
}

func newMemStore() *memStore {
	return &memStore{
		games:  make(map[uuid.UUID]Game),
		scores: make(map[scoreKey]Score),
		rooms:  make(map[string]Room),
		users:  make(map[uuid.UUID]User),
	}
}

func (store *memStore) InsertGame(g Game) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.games[g.ID] = g
	return nil
}

func (store *memStore) GetGame(id uuid.UUID) (Game, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	g, ok := store.games[id]
	if !ok {
		return Game{}, ErrGameNotFound
	}
	return g, nil
}

func (store *memStore) UpdateGame(g Game) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	_, ok := store.games[g.ID]
	if !ok {
		return ErrGameNotFound
	}
	store.games[g.ID] = g
	return nil
}

func (store *memStore) ActiveGameByRoom(roomID string) (Game, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, g := range store.games {
		if g.RoomID == roomID && g.Status != GameEnd {
			return g, nil
		}
	}
	return Game{}, ErrGameNotFound
}

func (store *memStore) InsertScore(s Score) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.scores[scoreKey{s.GameID, s.UserID, s.Round}] = s
	return nil
}

func (store *memStore) FindScore(gameID uuid.UUID, userID uuid.UUID, round int) (Score, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	s, ok := store.scores[scoreKey{gameID, userID, round}]
	if !ok {
		return Score{}, ErrScoreNotFound
	}
	return s, nil
}

func (store *memStore) TotalPoints(gameID uuid.UUID, userID uuid.UUID) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	total := 0
	for key, s := range store.scores {
		if key.gameID == gameID && key.userID == userID {
			total += s.Points
		}
	}
	return total, nil
}

func (store *memStore) TotalsByGame(gameID uuid.UUID) ([]PlayerTotal, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	byUser := make(map[uuid.UUID]int)
	for key, s := range store.scores {
		if key.gameID == gameID {
			byUser[key.userID] += s.Points
		}
	}
	totals := make([]PlayerTotal, 0, len(byUser))
	for userID, points := range byUser {
		totals = append(totals, PlayerTotal{UserID: userID, Points: points})
	}
	return totals, nil
}

func (store *memStore) InsertRoom(r Room) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.rooms[r.ID] = r
	return nil
}

func (store *memStore) GetRoom(id string) (Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	r, ok := store.rooms[id]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return r, nil
}

func (store *memStore) DeleteRoom(id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.rooms, id)
	return nil
}

func (store *memStore) AvailableRooms(offset int, limit int) ([]Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	rooms := make([]Room, 0)
	for _, r := range store.rooms {
		if !r.Private && r.Status == RoomWaiting && len(r.Members) < r.Capacity {
			rooms = append(rooms, r)
		}
	}
	return rooms, nil
}

func (store *memStore) SetRoomStatus(id string, status RoomStatus) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	r, ok := store.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}
	r.Status = status
	store.rooms[id] = r
	return nil
}

func (store *memStore) AddMember(roomID string, userID uuid.UUID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	r, ok := store.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	r.Members = append(r.Members, userID)
	store.rooms[roomID] = r
	return nil
}

func (store *memStore) RemoveMember(roomID string, userID uuid.UUID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	r, ok := store.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	members := make([]uuid.UUID, 0, len(r.Members))
	for _, member := range r.Members {
		if member != userID {
			members = append(members, member)
		}
	}
	r.Members = members
	store.rooms[roomID] = r
	return nil
}

func (store *memStore) InsertUser(u User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.users[u.ID] = u
	return nil
}

func (store *memStore) GetUser(id uuid.UUID) (User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	u, ok := store.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (store *memStore) UpdateStats(results []GameResult) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.statResults = append(store.statResults, results)
	for _, result := range results {
		u := store.users[result.UserID]
		u.Points += result.Points
		u.GamesPlayed++
		if result.Win {
			u.GamesWon++
		}
		store.users[result.UserID] = u
	}
	return nil
}

func (store *memStore) Leaderboard(limit int, sort string) ([]User, error) {
	return nil, nil
}

// records every notification in the order it was emitted
type notifyCall struct {
	kind   string
	roomID string
	gameID uuid.UUID
	userID uuid.UUID
	round  int
	word   string
	gained int
	total  int
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (fake *fakeNotifier) record(call notifyCall) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.calls = append(fake.calls, call)
}

func (fake *fakeNotifier) kinds() []string {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	kinds := make([]string, 0, len(fake.calls))
	for _, call := range fake.calls {
		kinds = append(kinds, call.kind)
	}
	return kinds
}

func (fake *fakeNotifier) GameCreated(roomID string, gameID uuid.UUID, totalRounds int, roundSecs int) {
	fake.record(notifyCall{kind: "game:created", roomID: roomID, gameID: gameID})
}

func (fake *fakeNotifier) GameStarted(roomID string, gameID uuid.UUID) {
	fake.record(notifyCall{kind: "game:started", roomID: roomID, gameID: gameID})
}

func (fake *fakeNotifier) RoundStarted(roomID string, gameID uuid.UUID, round int) {
	fake.record(notifyCall{kind: "round:started", roomID: roomID, gameID: gameID, round: round})
}

func (fake *fakeNotifier) RoundEnded(roomID string, gameID uuid.UUID, round int) {
	fake.record(notifyCall{kind: "round:ended", roomID: roomID, gameID: gameID, round: round})
}

func (fake *fakeNotifier) GameEnded(roomID string, gameID uuid.UUID, winnerID uuid.UUID) {
	fake.record(notifyCall{kind: "game:ended", roomID: roomID, gameID: gameID, userID: winnerID})
}

func (fake *fakeNotifier) DrawerSelected(roomID string, gameID uuid.UUID, drawerID uuid.UUID) {
	fake.record(notifyCall{kind: "drawer:selected", roomID: roomID, gameID: gameID, userID: drawerID})
}

func (fake *fakeNotifier) DrawerWord(drawerID uuid.UUID, gameID uuid.UUID, word string) {
	fake.record(notifyCall{kind: "drawer:word", gameID: gameID, userID: drawerID, word: word})
}

func (fake *fakeNotifier) ScoreUpdated(roomID string, gameID uuid.UUID, userID uuid.UUID, gained int, total int) {
	fake.record(notifyCall{kind: "score:updated", roomID: roomID, gameID: gameID, userID: userID, gained: gained, total: total})
}
