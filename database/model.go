/*
 * Copyright (c) Joseph Prichard 2023
 */

package database

// row types mirror the schema one to one, mapping to and from the domain types
// happens at the query layer

type UserRow struct {
	ID          string `db:"id"`
	Username    string `db:"username"`
	Points      int    `db:"points"`
	GamesPlayed int    `db:"games_played"`
	GamesWon    int    `db:"games_won"`
}

type RoomRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	OwnerID     string `db:"owner_id"`
	Private     int    `db:"private"`
	Password    string `db:"password"`
	Capacity    int    `db:"capacity"`
	Status      int    `db:"status"`
	MemberCount int    `db:"member_count"`
}

type GameRow struct {
	ID           string `db:"id"`
	RoomID       string `db:"room_id"`
	Status       int    `db:"status"`
	CurrentRound int    `db:"current_round"`
	TotalRounds  int    `db:"total_rounds"`
	RoundSecs    int    `db:"round_secs"`
	DrawerID     string `db:"drawer_id"`   // empty when no drawer is assigned
	Word         string `db:"word"`        // empty between rounds
	RoundStart   int64  `db:"round_start"` // unix seconds, zero when no round is in flight
	StartedAt    int64  `db:"started_at"`
	EndedAt      int64  `db:"ended_at"`
}

type ScoreRow struct {
	GameID    string `db:"game_id"`
	UserID    string `db:"user_id"`
	Round     int    `db:"round"`
	Points    int    `db:"points"`
	AwardedAt int64  `db:"awarded_at"`
}
