/*
 * Copyright (c) Joseph Prichard 2023
 */

package servers

import (
	"errors"
	"net/http"

	"sketchbout/game"

	"github.com/google/uuid"
)

// the http face of game orchestration. transitions on a missing game surface as
// a 404, never as a silent no-op
type GamesServer struct {
	orch *game.Orchestrator
}

func NewGamesServer(orch *game.Orchestrator) *GamesServer {
	return &GamesServer{orch: orch}
}

type GameResp struct {
	GameID       uuid.UUID   `json:"GameId"`
	RoomID       string      `json:"RoomId"`
	Status       game.Status `json:"Status"`
	CurrentRound int         `json:"CurrentRound"`
	TotalRounds  int         `json:"TotalRounds"`
	RoundSecs    int         `json:"RoundSecs"`
	DrawerID     uuid.UUID   `json:"DrawerId"`
}

func toGameResp(g game.Game) GameResp {
	return GameResp{
		GameID:       g.ID,
		RoomID:       g.RoomID,
		Status:       g.Status,
		CurrentRound: g.CurrentRound,
		TotalRounds:  g.TotalRounds,
		RoundSecs:    g.RoundSecs,
		DrawerID:     g.DrawerID,
	}
}

func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrGameInProgress), errors.Is(err, game.ErrGameOver):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		WriteError(w, http.StatusBadRequest, err.Error())
	}
}

type CreateGameReq struct {
	RoomID      string `json:"RoomId"`
	TotalRounds int    `json:"TotalRounds"`
	RoundSecs   int    `json:"RoundSecs"`
}

func (server *GamesServer) CreateGame(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	var req CreateGameReq
	err := ReadJson(r, &req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := server.orch.Create(req.RoomID, req.TotalRounds, req.RoundSecs)
	if err != nil {
		writeGameError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	WriteJson(w, toGameResp(g))
}

type GameActionReq struct {
	GameID   uuid.UUID `json:"GameId"`
	UserID   uuid.UUID `json:"UserId"`
	Category string    `json:"Category"`
}

func (server *GamesServer) act(w http.ResponseWriter, r *http.Request, act func(req GameActionReq) (game.Game, error)) {
	EnableCors(&w)

	var req GameActionReq
	err := ReadJson(r, &req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.GameID == uuid.Nil {
		WriteError(w, http.StatusBadRequest, "A game id is required")
		return
	}

	g, err := act(req)
	if err != nil {
		writeGameError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	WriteJson(w, toGameResp(g))
}

func (server *GamesServer) StartRound(w http.ResponseWriter, r *http.Request) {
	server.act(w, r, func(req GameActionReq) (game.Game, error) {
		return server.orch.StartRound(req.GameID)
	})
}

func (server *GamesServer) AssignDrawer(w http.ResponseWriter, r *http.Request) {
	server.act(w, r, func(req GameActionReq) (game.Game, error) {
		if req.UserID == uuid.Nil {
			return game.Game{}, errors.New("A user id is required to assign a drawer")
		}
		return server.orch.AssignDrawer(req.GameID, req.UserID)
	})
}

func (server *GamesServer) SelectWord(w http.ResponseWriter, r *http.Request) {
	server.act(w, r, func(req GameActionReq) (game.Game, error) {
		return server.orch.SelectWord(req.GameID, req.Category)
	})
}

func (server *GamesServer) EndRound(w http.ResponseWriter, r *http.Request) {
	server.act(w, r, func(req GameActionReq) (game.Game, error) {
		return server.orch.EndRound(req.GameID)
	})
}

func (server *GamesServer) GetGame(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	roomID := r.URL.Query().Get("roomId")
	g, err := server.orch.ActiveGameForRoom(roomID)
	if err != nil {
		writeGameError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	WriteJson(w, toGameResp(g))
}
