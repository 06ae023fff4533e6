/*
 * Copyright (c) Joseph Prichard 2023
 */

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"sketchbout/game"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// opens a database handle for one of the supported drivers
func Open(driver string, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q, must be sqlite3 or postgres", driver)
	}
	return sqlx.Open(driver, dsn)
}

// creates any missing tables and indexes, rows already present are left untouched
func CreateSchema(db *sqlx.DB) {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			points INTEGER NOT NULL,
			games_played INTEGER NOT NULL,
			games_won INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			private INTEGER NOT NULL,
			password TEXT NOT NULL,
			capacity INTEGER NOT NULL,
			status INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS room_members (
			room_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			PRIMARY KEY (room_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			status INTEGER NOT NULL,
			current_round INTEGER NOT NULL,
			total_rounds INTEGER NOT NULL,
			round_secs INTEGER NOT NULL,
			drawer_id TEXT NOT NULL,
			word TEXT NOT NULL,
			round_start INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS scores (
			game_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			points INTEGER NOT NULL,
			awarded_at INTEGER NOT NULL,
			PRIMARY KEY (game_id, user_id, round)
		);

		CREATE INDEX IF NOT EXISTS idx_games_room ON games (room_id, status);
		CREATE INDEX IF NOT EXISTS idx_scores_game ON scores (game_id);
		CREATE INDEX IF NOT EXISTS idx_users_points ON users (points);`

	_ = db.MustExec(query)
}

// drops every table and rebuilds the schema from scratch, for tests that need
// a clean slate
func ResetSchema(db *sqlx.DB) {
	query := `
		DROP TABLE IF EXISTS "users";
		DROP TABLE IF EXISTS "rooms";
		DROP TABLE IF EXISTS "room_members";
		DROP TABLE IF EXISTS "games";
		DROP TABLE IF EXISTS "scores";`

	_ = db.MustExec(query)
	CreateSchema(db)
}

// implements the game package's store interfaces against a sql database
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func parseID(s string) uuid.UUID {
	if s == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		log.Printf("Malformed uuid %q in database row", s)
		return uuid.Nil
	}
	return id
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(secs int64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

func (store *Store) InsertUser(u game.User) error {
	query := `
		INSERT INTO users (id, username, points, games_played, games_won)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := store.db.Exec(query, u.ID.String(), u.Username, u.Points, u.GamesPlayed, u.GamesWon)
	if err != nil {
		log.Printf("Failed to insert user: %v", err)
		return errors.New("Failed to insert user")
	}
	return nil
}

func (store *Store) GetUser(id uuid.UUID) (game.User, error) {
	var row UserRow
	err := store.db.Get(&row, "SELECT * FROM users WHERE id = $1 LIMIT 1", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return game.User{}, game.ErrUserNotFound
	}
	if err != nil {
		log.Printf("Failed to get user: %v", err)
		return game.User{}, errors.New("Failed to get user")
	}

	user := game.User{
		ID:          parseID(row.ID),
		Username:    row.Username,
		Points:      row.Points,
		GamesPlayed: row.GamesPlayed,
		GamesWon:    row.GamesWon,
	}
	return user, nil
}

// applies the outcome of a finished game to every participant's aggregate stats
// in a single transaction
func (store *Store) UpdateStats(results []game.GameResult) error {
	tx, err := store.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE users
		SET points = points + $1,
			games_played = games_played + 1,
			games_won = games_won + $2
		WHERE id = $3`

	for _, result := range results {
		winInc := 0
		if result.Win {
			winInc = 1
		}
		_, err = tx.Exec(query, result.Points, winInc, result.UserID.String())
		if err != nil {
			log.Printf("Failed to update stats: %v", err)
			return err
		}
	}
	return tx.Commit()
}

var sortColMap = map[string]string{
	"points": "points",
	"wins":   "games_won",
	"games":  "games_played",
}

func (store *Store) Leaderboard(limit int, sort string) ([]game.User, error) {
	if sort == "" {
		sort = "points"
	}
	col, exists := sortColMap[sort]
	if !exists {
		return nil, errors.New("Unknown sort type, must be points, wins, or games")
	}

	query := fmt.Sprintf("SELECT * FROM users ORDER BY %s DESC LIMIT $1", col)

	var rows []UserRow
	err := store.db.Select(&rows, query, limit)
	if err != nil {
		log.Printf("Failed to get leaderboard: %v", err)
		return nil, errors.New("Failed to get leaderboard")
	}

	users := make([]game.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, game.User{
			ID:          parseID(row.ID),
			Username:    row.Username,
			Points:      row.Points,
			GamesPlayed: row.GamesPlayed,
			GamesWon:    row.GamesWon,
		})
	}
	return users, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (store *Store) InsertRoom(r game.Room) error {
	query := `
		INSERT INTO rooms (id, name, owner_id, private, password, capacity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := store.db.Exec(query, r.ID, r.Name, r.OwnerID.String(), boolToInt(r.Private), r.Password, r.Capacity, int(r.Status))
	if err != nil {
		log.Printf("Failed to insert room: %v", err)
		return errors.New("Failed to insert room")
	}
	return nil
}

func (store *Store) roomMembers(roomID string) ([]uuid.UUID, error) {
	var ids []string
	err := store.db.Select(&ids, "SELECT user_id FROM room_members WHERE room_id = $1 ORDER BY user_id", roomID)
	if err != nil {
		return nil, err
	}

	members := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		members = append(members, parseID(id))
	}
	return members, nil
}

func (store *Store) GetRoom(id string) (game.Room, error) {
	var row RoomRow
	err := store.db.Get(&row, "SELECT * FROM rooms WHERE id = $1 LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Room{}, game.ErrRoomNotFound
	}
	if err != nil {
		log.Printf("Failed to get room: %v", err)
		return game.Room{}, errors.New("Failed to get room")
	}

	members, err := store.roomMembers(id)
	if err != nil {
		log.Printf("Failed to get room members: %v", err)
		return game.Room{}, errors.New("Failed to get room members")
	}

	room := game.Room{
		ID:       row.ID,
		Name:     row.Name,
		OwnerID:  parseID(row.OwnerID),
		Private:  row.Private != 0,
		Password: row.Password,
		Capacity: row.Capacity,
		Members:  members,
		Status:   game.RoomStatus(row.Status),
	}
	return room, nil
}

func (store *Store) DeleteRoom(id string) error {
	_, err := store.db.Exec("DELETE FROM room_members WHERE room_id = $1", id)
	if err != nil {
		log.Printf("Failed to delete room members: %v", err)
		return errors.New("Failed to delete room")
	}
	_, err = store.db.Exec("DELETE FROM rooms WHERE id = $1", id)
	if err != nil {
		log.Printf("Failed to delete room: %v", err)
		return errors.New("Failed to delete room")
	}
	return nil
}

// public rooms that are waiting for players and still have free capacity
func (store *Store) AvailableRooms(offset int, limit int) ([]game.Room, error) {
	query := `
		SELECT r.id, r.name, r.owner_id, r.private, r.password, r.capacity, r.status,
			COUNT(m.user_id) AS member_count
		FROM rooms r
		LEFT JOIN room_members m ON m.room_id = r.id
		WHERE r.private = 0 AND r.status = $1
		GROUP BY r.id
		HAVING COUNT(m.user_id) < r.capacity
		ORDER BY r.id
		LIMIT $2 OFFSET $3`

	var rows []RoomRow
	err := store.db.Select(&rows, query, int(game.RoomWaiting), limit, offset)
	if err != nil {
		log.Printf("Failed to get available rooms: %v", err)
		return nil, errors.New("Failed to get available rooms")
	}

	rooms := make([]game.Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, game.Room{
			ID:       row.ID,
			Name:     row.Name,
			OwnerID:  parseID(row.OwnerID),
			Private:  row.Private != 0,
			Capacity: row.Capacity,
			Status:   game.RoomStatus(row.Status),
		})
	}
	return rooms, nil
}

func (store *Store) SetRoomStatus(id string, status game.RoomStatus) error {
	res, err := store.db.Exec("UPDATE rooms SET status = $1 WHERE id = $2", int(status), id)
	if err != nil {
		log.Printf("Failed to set room status: %v", err)
		return errors.New("Failed to set room status")
	}
	count, err := res.RowsAffected()
	if err == nil && count == 0 {
		return game.ErrRoomNotFound
	}
	return nil
}

func (store *Store) AddMember(roomID string, userID uuid.UUID) error {
	_, err := store.db.Exec("INSERT INTO room_members (room_id, user_id) VALUES ($1, $2)", roomID, userID.String())
	if err != nil {
		log.Printf("Failed to add room member: %v", err)
		return errors.New("Failed to add room member")
	}
	return nil
}

func (store *Store) RemoveMember(roomID string, userID uuid.UUID) error {
	_, err := store.db.Exec("DELETE FROM room_members WHERE room_id = $1 AND user_id = $2", roomID, userID.String())
	if err != nil {
		log.Printf("Failed to remove room member: %v", err)
		return errors.New("Failed to remove room member")
	}
	return nil
}

func gameFromRow(row GameRow) game.Game {
	return game.Game{
		ID:           parseID(row.ID),
		RoomID:       row.RoomID,
		Status:       game.Status(row.Status),
		CurrentRound: row.CurrentRound,
		TotalRounds:  row.TotalRounds,
		RoundSecs:    row.RoundSecs,
		DrawerID:     parseID(row.DrawerID),
		Word:         row.Word,
		RoundStart:   fromUnix(row.RoundStart),
		StartedAt:    fromUnix(row.StartedAt),
		EndedAt:      fromUnix(row.EndedAt),
	}
}

func (store *Store) InsertGame(g game.Game) error {
	query := `
		INSERT INTO games (id, room_id, status, current_round, total_rounds, round_secs,
			drawer_id, word, round_start, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := store.db.Exec(query, g.ID.String(), g.RoomID, int(g.Status), g.CurrentRound, g.TotalRounds,
		g.RoundSecs, idString(g.DrawerID), g.Word, toUnix(g.RoundStart), toUnix(g.StartedAt), toUnix(g.EndedAt))
	if err != nil {
		log.Printf("Failed to insert game: %v", err)
		return errors.New("Failed to insert game")
	}
	return nil
}

func (store *Store) GetGame(id uuid.UUID) (game.Game, error) {
	var row GameRow
	err := store.db.Get(&row, "SELECT * FROM games WHERE id = $1 LIMIT 1", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return game.Game{}, game.ErrGameNotFound
	}
	if err != nil {
		log.Printf("Failed to get game: %v", err)
		return game.Game{}, errors.New("Failed to get game")
	}
	return gameFromRow(row), nil
}

func (store *Store) UpdateGame(g game.Game) error {
	query := `
		UPDATE games
		SET status = $1, current_round = $2, drawer_id = $3, word = $4,
			round_start = $5, ended_at = $6
		WHERE id = $7`

	res, err := store.db.Exec(query, int(g.Status), g.CurrentRound, idString(g.DrawerID), g.Word,
		toUnix(g.RoundStart), toUnix(g.EndedAt), g.ID.String())
	if err != nil {
		log.Printf("Failed to update game: %v", err)
		return errors.New("Failed to update game")
	}
	count, err := res.RowsAffected()
	if err == nil && count == 0 {
		return game.ErrGameNotFound
	}
	return nil
}

// the room's newest game that hasn't ended yet, a room has at most one
func (store *Store) ActiveGameByRoom(roomID string) (game.Game, error) {
	query := `
		SELECT * FROM games
		WHERE room_id = $1 AND status != $2
		ORDER BY started_at DESC LIMIT 1`

	var row GameRow
	err := store.db.Get(&row, query, roomID, int(game.GameEnd))
	if errors.Is(err, sql.ErrNoRows) {
		return game.Game{}, game.ErrGameNotFound
	}
	if err != nil {
		log.Printf("Failed to get active game: %v", err)
		return game.Game{}, errors.New("Failed to get active game")
	}
	return gameFromRow(row), nil
}

func (store *Store) InsertScore(s game.Score) error {
	query := `
		INSERT INTO scores (game_id, user_id, round, points, awarded_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := store.db.Exec(query, s.GameID.String(), s.UserID.String(), s.Round, s.Points, toUnix(s.AwardedAt))
	if err != nil {
		log.Printf("Failed to insert score: %v", err)
		return errors.New("Failed to insert score")
	}
	return nil
}

func (store *Store) FindScore(gameID uuid.UUID, userID uuid.UUID, round int) (game.Score, error) {
	query := "SELECT * FROM scores WHERE game_id = $1 AND user_id = $2 AND round = $3 LIMIT 1"

	var row ScoreRow
	err := store.db.Get(&row, query, gameID.String(), userID.String(), round)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Score{}, game.ErrScoreNotFound
	}
	if err != nil {
		log.Printf("Failed to find score: %v", err)
		return game.Score{}, errors.New("Failed to find score")
	}

	score := game.Score{
		GameID:    parseID(row.GameID),
		UserID:    parseID(row.UserID),
		Round:     row.Round,
		Points:    row.Points,
		AwardedAt: fromUnix(row.AwardedAt),
	}
	return score, nil
}

func (store *Store) TotalPoints(gameID uuid.UUID, userID uuid.UUID) (int, error) {
	query := "SELECT COALESCE(SUM(points), 0) FROM scores WHERE game_id = $1 AND user_id = $2"

	var total int
	err := store.db.Get(&total, query, gameID.String(), userID.String())
	if err != nil {
		log.Printf("Failed to sum points: %v", err)
		return 0, errors.New("Failed to sum points")
	}
	return total, nil
}

func (store *Store) TotalsByGame(gameID uuid.UUID) ([]game.PlayerTotal, error) {
	query := `
		SELECT user_id, SUM(points) AS points FROM scores
		WHERE game_id = $1
		GROUP BY user_id
		ORDER BY user_id`

	type totalRow struct {
		UserID string `db:"user_id"`
		Points int    `db:"points"`
	}
	var rows []totalRow
	err := store.db.Select(&rows, query, gameID.String())
	if err != nil {
		log.Printf("Failed to get game totals: %v", err)
		return nil, errors.New("Failed to get game totals")
	}

	totals := make([]game.PlayerTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, game.PlayerTotal{UserID: parseID(row.UserID), Points: row.Points})
	}
	return totals, nil
}
