/*
 * Copyright (c) Joseph Prichard 2023
 */

package servers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"sketchbout/game"
	"sketchbout/realtime"

	"github.com/google/uuid"
)

// the http face of the room lobby. creation and discovery happen over http,
// everything after joining flows over the socket
type RoomsServer struct {
	rooms  *game.RoomService
	events *realtime.Dispatcher
}

func NewRoomsServer(rooms *game.RoomService, events *realtime.Dispatcher) *RoomsServer {
	return &RoomsServer{rooms: rooms, events: events}
}

type CreateRoomReq struct {
	Name     string    `json:"Name"`
	OwnerID  uuid.UUID `json:"OwnerId"`
	Private  bool      `json:"Private"`
	Password string    `json:"Password"`
	Capacity int       `json:"Capacity"`
}

type RoomResp struct {
	RoomID   string          `json:"RoomId"`
	Name     string          `json:"Name"`
	OwnerID  uuid.UUID       `json:"OwnerId"`
	Private  bool            `json:"Private"`
	Capacity int             `json:"Capacity"`
	Status   game.RoomStatus `json:"Status"`
	Members  []uuid.UUID     `json:"Members"`
}

func toRoomResp(room game.Room) RoomResp {
	return RoomResp{
		RoomID:   room.ID,
		Name:     room.Name,
		OwnerID:  room.OwnerID,
		Private:  room.Private,
		Capacity: room.Capacity,
		Status:   room.Status,
		Members:  room.Members,
	}
}

func (server *RoomsServer) CreateRoom(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	var req CreateRoomReq
	err := ReadJson(r, &req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.OwnerID == uuid.Nil {
		WriteError(w, http.StatusBadRequest, "A room needs a name and an owner")
		return
	}

	room, err := server.rooms.Create(req.Name, req.OwnerID, req.Private, req.Password, req.Capacity)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Created room %s owned by %s", room.ID, room.OwnerID)
	server.events.RoomCreated(room)

	w.WriteHeader(http.StatusOK)
	WriteJson(w, toRoomResp(room))
}

func (server *RoomsServer) GetRoom(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	roomID := r.URL.Query().Get("roomId")
	room, err := server.rooms.Get(roomID)
	if errors.Is(err, game.ErrRoomNotFound) {
		WriteError(w, http.StatusNotFound, "Cannot find room for provided id")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	WriteJson(w, toRoomResp(room))
}

func (server *RoomsServer) GetRooms(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	offset := 0
	offsetStr := r.URL.Query().Get("offset")
	if offsetStr != "" {
		parsedOffset, err := strconv.ParseInt(offsetStr, 10, 32)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Offset parameter must be a 32-bit integer")
			return
		}
		offset = int(parsedOffset)
	}

	rooms, err := server.rooms.Available(offset, 20)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resps := make([]RoomResp, 0, len(rooms))
	for _, room := range rooms {
		resps = append(resps, toRoomResp(room))
	}
	w.WriteHeader(http.StatusOK)
	WriteJson(w, resps)
}

func (server *RoomsServer) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	roomID := r.URL.Query().Get("roomId")
	_, err := server.rooms.Get(roomID)
	if errors.Is(err, game.ErrRoomNotFound) {
		WriteError(w, http.StatusNotFound, "Cannot find room for provided id")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// tell the members first, the broadcast needs the membership indexes intact
	server.events.RoomDeleted(roomID)

	err = server.rooms.Delete(roomID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Deleted room %s", roomID)
	w.WriteHeader(http.StatusOK)
	WriteJson(w, struct{}{})
}
