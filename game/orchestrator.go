/*
 * Copyright (c) Joseph Prichard 2023
 */

package game

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// owns game and round lifecycle transitions for every active game.
// every transition for one game id runs under that game's own mutex so
// concurrent calls cannot interleave their read-modify-write cycles
type Orchestrator struct {
	games  GameStore
	scores ScoreStore
	rooms  RoomStore
	users  UserStore
	words  *WordBank
	notify Notifier

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewOrchestrator(games GameStore, scores ScoreStore, rooms RoomStore, users UserStore, words *WordBank, notify Notifier) *Orchestrator {
	return &Orchestrator{
		games:  games,
		scores: scores,
		rooms:  rooms,
		users:  users,
		words:  words,
		notify: notify,
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

func (orch *Orchestrator) lockGame(gameID uuid.UUID) *sync.Mutex {
	orch.mu.Lock()
	defer orch.mu.Unlock()

	lock, ok := orch.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		orch.locks[gameID] = lock
	}
	return lock
}

func (orch *Orchestrator) dropLock(gameID uuid.UUID) {
	orch.mu.Lock()
	defer orch.mu.Unlock()
	delete(orch.locks, gameID)
}

// creates a new game for the room in the Starting status, marks the room as playing,
// and seeds a zero value score ledger row for each current member
func (orch *Orchestrator) Create(roomID string, totalRounds int, roundSecs int) (Game, error) {
	room, err := orch.rooms.GetRoom(roomID)
	if err != nil {
		return Game{}, err
	}

	_, err = orch.games.ActiveGameByRoom(roomID)
	if err == nil {
		return Game{}, ErrGameInProgress
	}

	if totalRounds < 1 {
		return Game{}, fmt.Errorf("a game must have at least one round, got %d", totalRounds)
	}
	if roundSecs < 1 {
		return Game{}, fmt.Errorf("a round must last at least one second, got %d", roundSecs)
	}

	g := Game{
		ID:          uuid.New(),
		RoomID:      roomID,
		Status:      Starting,
		TotalRounds: totalRounds,
		RoundSecs:   roundSecs,
		StartedAt:   time.Now(),
	}
	err = orch.games.InsertGame(g)
	if err != nil {
		return Game{}, err
	}

	err = orch.rooms.SetRoomStatus(roomID, RoomPlaying)
	if err != nil {
		log.Printf("Failed to mark room %s as playing: %v", roomID, err)
	}

	for _, member := range room.Members {
		score := Score{GameID: g.ID, UserID: member, Round: 0, Points: 0, AwardedAt: time.Now()}
		err = orch.scores.InsertScore(score)
		if err != nil {
			log.Printf("Failed to seed score ledger for user %s: %v", member, err)
		}
	}

	orch.notify.GameCreated(roomID, g.ID, totalRounds, roundSecs)
	return g, nil
}

// advances the game into the next drawing round. picking a drawer and a word are
// separate calls, a round start on its own assigns neither
func (orch *Orchestrator) StartRound(gameID uuid.UUID) (Game, error) {
	lock := orch.lockGame(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := orch.games.GetGame(gameID)
	if err != nil {
		return Game{}, err
	}
	if g.Status == GameEnd {
		return Game{}, ErrGameOver
	}

	g.CurrentRound++
	g.Status = Drawing
	g.RoundStart = time.Now()

	err = orch.games.UpdateGame(g)
	if err != nil {
		return Game{}, err
	}

	if g.CurrentRound == 1 {
		orch.notify.GameStarted(g.RoomID, g.ID)
	}
	orch.notify.RoundStarted(g.RoomID, g.ID, g.CurrentRound)
	return g, nil
}

// sets the drawer for the current round, the user must exist
func (orch *Orchestrator) AssignDrawer(gameID uuid.UUID, userID uuid.UUID) (Game, error) {
	lock := orch.lockGame(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := orch.games.GetGame(gameID)
	if err != nil {
		return Game{}, err
	}
	if g.Status == GameEnd {
		return Game{}, ErrGameOver
	}

	_, err = orch.users.GetUser(userID)
	if err != nil {
		return Game{}, err
	}

	g.DrawerID = userID
	err = orch.games.UpdateGame(g)
	if err != nil {
		return Game{}, err
	}

	orch.notify.DrawerSelected(g.RoomID, g.ID, userID)
	return g, nil
}

// picks a random word for the current round, optionally from a category, and
// sends it privately to the drawer when one is assigned
func (orch *Orchestrator) SelectWord(gameID uuid.UUID, category string) (Game, error) {
	lock := orch.lockGame(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := orch.games.GetGame(gameID)
	if err != nil {
		return Game{}, err
	}
	if g.Status == GameEnd {
		return Game{}, ErrGameOver
	}

	word := orch.words.Pick(category)
	if word == "" {
		return Game{}, fmt.Errorf("word bank is empty, cannot select a word")
	}

	g.Word = word
	err = orch.games.UpdateGame(g)
	if err != nil {
		return Game{}, err
	}

	if g.DrawerID != uuid.Nil {
		orch.notify.DrawerWord(g.DrawerID, g.ID, word)
	}
	return g, nil
}

// closes the current round, clearing the word and the drawer so no more guesses
// or drawer only data can flow. cascades into the end of the game once the round
// counter has exhausted the total
func (orch *Orchestrator) EndRound(gameID uuid.UUID) (Game, error) {
	lock := orch.lockGame(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := orch.games.GetGame(gameID)
	if err != nil {
		return Game{}, err
	}
	if g.Status == GameEnd {
		return Game{}, ErrGameOver
	}

	endedRound := g.CurrentRound
	g.Status = RoundEnd
	g.Word = ""
	g.DrawerID = uuid.Nil
	g.RoundStart = time.Time{}

	if g.CurrentRound >= g.TotalRounds {
		orch.notify.RoundEnded(g.RoomID, g.ID, endedRound)
		return orch.endGame(g)
	}

	err = orch.games.UpdateGame(g)
	if err != nil {
		return Game{}, err
	}

	orch.notify.RoundEnded(g.RoomID, g.ID, endedRound)
	return g, nil
}

// finishes the game, reverts the room to waiting and applies aggregate stats.
// must be called with the game's lock held
func (orch *Orchestrator) endGame(g Game) (Game, error) {
	g.Status = GameEnd
	g.EndedAt = time.Now()

	err := orch.games.UpdateGame(g)
	if err != nil {
		return Game{}, err
	}

	err = orch.rooms.SetRoomStatus(g.RoomID, RoomWaiting)
	if err != nil {
		log.Printf("Failed to revert room %s to waiting: %v", g.RoomID, err)
	}

	winnerID := orch.applyStats(g.ID)
	orch.dropLock(g.ID)

	orch.notify.GameEnded(g.RoomID, g.ID, winnerID)
	return g, nil
}

// credits a game played to every user on the score ledger and a win to the user
// with the highest total. totals are ordered by user id first so a tie always
// resolves to the same user no matter how the store enumerates rows
func (orch *Orchestrator) applyStats(gameID uuid.UUID) uuid.UUID {
	totals, err := orch.scores.TotalsByGame(gameID)
	if err != nil {
		log.Printf("Failed to load totals for game %s: %v", gameID, err)
		return uuid.Nil
	}
	if len(totals) == 0 {
		return uuid.Nil
	}

	sort.Slice(totals, func(i, j int) bool {
		return totals[i].UserID.String() < totals[j].UserID.String()
	})

	winnerIndex := 0
	for i, total := range totals {
		if total.Points > totals[winnerIndex].Points {
			winnerIndex = i
		}
	}

	results := make([]GameResult, 0, len(totals))
	for i, total := range totals {
		results = append(results, GameResult{
			UserID: total.UserID,
			Points: total.Points,
			Win:    i == winnerIndex,
		})
	}

	err = orch.users.UpdateStats(results)
	if err != nil {
		log.Printf("Failed to update aggregate stats for game %s: %v", gameID, err)
	}
	return totals[winnerIndex].UserID
}

// looks up the room's active game, if any
func (orch *Orchestrator) ActiveGameForRoom(roomID string) (Game, error) {
	return orch.games.ActiveGameByRoom(roomID)
}
