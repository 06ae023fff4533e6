/*
 * Copyright (c) Joseph Prichard 2023
 */

package game

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// lifecycle of a single game bound to one room
type Status int

const (
	Starting Status = iota
	Drawing
	RoundEnd
	GameEnd
)

// lifecycle of a room, as seen by the lobby
type RoomStatus int

const (
	RoomWaiting RoomStatus = iota
	RoomPlaying
	RoomFinished
)

var ErrGameNotFound = errors.New("no game exists for the given id")
var ErrRoomNotFound = errors.New("no room exists for the given id")
var ErrUserNotFound = errors.New("no user exists for the given id")
var ErrScoreNotFound = errors.New("no score record exists for the given keys")
var ErrGameInProgress = errors.New("room already has an active game")
var ErrGameOver = errors.New("game has already ended")

// one play session of a fixed number of rounds within a room
type Game struct {
	ID           uuid.UUID
	RoomID       string
	Status       Status
	CurrentRound int
	TotalRounds  int
	RoundSecs    int
	DrawerID     uuid.UUID // uuid.Nil between rounds
	Word         string    // empty between rounds
	RoundStart   time.Time // zero value when no round is in flight
	StartedAt    time.Time
	EndedAt      time.Time
}

// immutable award record, at most one per (game, user, round)
type Score struct {
	GameID    uuid.UUID
	UserID    uuid.UUID
	Round     int
	Points    int
	AwardedAt time.Time
}

type Room struct {
	ID       string
	Name     string
	OwnerID  uuid.UUID
	Private  bool
	Password string
	Capacity int
	Members  []uuid.UUID
	Status   RoomStatus
}

type User struct {
	ID          uuid.UUID
	Username    string
	Points      int
	GamesPlayed int
	GamesWon    int
}

// total points one user accumulated across a whole game
type PlayerTotal struct {
	UserID uuid.UUID
	Points int
}

// per-user outcome of a finished game, applied to aggregate stats in one batch
type GameResult struct {
	UserID uuid.UUID
	Points int
	Win    bool
}

type GameStore interface {
	InsertGame(g Game) error
	GetGame(id uuid.UUID) (Game, error)
	UpdateGame(g Game) error
	ActiveGameByRoom(roomID string) (Game, error)
}

type ScoreStore interface {
	InsertScore(s Score) error
	FindScore(gameID uuid.UUID, userID uuid.UUID, round int) (Score, error)
	TotalPoints(gameID uuid.UUID, userID uuid.UUID) (int, error)
	TotalsByGame(gameID uuid.UUID) ([]PlayerTotal, error)
}

type RoomStore interface {
	InsertRoom(r Room) error
	GetRoom(id string) (Room, error)
	DeleteRoom(id string) error
	AvailableRooms(offset int, limit int) ([]Room, error)
	SetRoomStatus(id string, status RoomStatus) error
	AddMember(roomID string, userID uuid.UUID) error
	RemoveMember(roomID string, userID uuid.UUID) error
}

type UserStore interface {
	InsertUser(u User) error
	GetUser(id uuid.UUID) (User, error)
	UpdateStats(results []GameResult) error
	Leaderboard(limit int, sort string) ([]User, error)
}

// pushes typed lifecycle events out to the connections affected by a transition,
// implemented by the realtime layer
type Notifier interface {
	GameCreated(roomID string, gameID uuid.UUID, totalRounds int, roundSecs int)
	GameStarted(roomID string, gameID uuid.UUID)
	RoundStarted(roomID string, gameID uuid.UUID, round int)
	RoundEnded(roomID string, gameID uuid.UUID, round int)
	GameEnded(roomID string, gameID uuid.UUID, winnerID uuid.UUID)
	DrawerSelected(roomID string, gameID uuid.UUID, drawerID uuid.UUID)
	DrawerWord(drawerID uuid.UUID, gameID uuid.UUID, word string)
	ScoreUpdated(roomID string, gameID uuid.UUID, userID uuid.UUID, gained int, total int)
}
