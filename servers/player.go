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

type PlayerServer struct {
	users game.UserStore
}

func NewPlayerServer(users game.UserStore) *PlayerServer {
	return &PlayerServer{users: users}
}

type CreatePlayerReq struct {
	Username string `json:"Username"`
}

type PlayerResp struct {
	UserID      uuid.UUID `json:"UserId"`
	Username    string    `json:"Username"`
	Points      int       `json:"Points"`
	GamesPlayed int       `json:"GamesPlayed"`
	GamesWon    int       `json:"GamesWon"`
}

func toPlayerResp(user game.User) PlayerResp {
	return PlayerResp{
		UserID:      user.ID,
		Username:    user.Username,
		Points:      user.Points,
		GamesPlayed: user.GamesPlayed,
		GamesWon:    user.GamesWon,
	}
}

// registers a player with a fresh id, identity is not verified in any way
func (server *PlayerServer) Create(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	var req CreatePlayerReq
	err := ReadJson(r, &req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" {
		WriteError(w, http.StatusBadRequest, "A player needs a username")
		return
	}

	user := game.User{ID: uuid.New(), Username: req.Username}
	err = server.users.InsertUser(user)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	WriteJson(w, toPlayerResp(user))
}

func (server *PlayerServer) Get(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "A valid user id is required")
		return
	}

	user, err := server.users.GetUser(userID)
	if errors.Is(err, game.ErrUserNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Cache-Control", "max-age=1800")
	w.WriteHeader(http.StatusOK)
	WriteJson(w, toPlayerResp(user))
}

func (server *PlayerServer) Leaderboard(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	sort := r.URL.Query().Get("sort")

	users, err := server.users.Leaderboard(50, sort)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	resps := make([]PlayerResp, 0, len(users))
	for _, user := range users {
		resps = append(resps, toPlayerResp(user))
	}

	w.Header().Set("Cache-Control", "max-age=3600")
	w.WriteHeader(http.StatusOK)
	WriteJson(w, resps)
}
