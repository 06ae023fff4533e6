/*
 * Copyright (c) Joseph Prichard 2024
 */

// a load generator that drives a running server with a room full of chatting
// and drawing clients
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"sketchbout/realtime"
	"sketchbout/servers"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const HOST = "localhost:8080"

func postJson[T any](path string, body any, result *T) {
	u := fmt.Sprintf("http://%s%s", HOST, path)

	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("Failed to marshal json %v", err)
	}
	resp, err := http.Post(u, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading resp body: %s", err)
	}
	err = json.Unmarshal(respBody, result)
	if err != nil {
		log.Fatalf("Failed to unmarshal json %v: %s", err, respBody)
	}
}

func createPlayer(name string) servers.PlayerResp {
	var player servers.PlayerResp
	postJson("/api/players/create", servers.CreatePlayerReq{Username: name}, &player)
	return player
}

func createRoom(owner servers.PlayerResp) servers.RoomResp {
	req := servers.CreateRoomReq{Name: "benchmark", OwnerID: owner.UserID, Capacity: 16}
	var room servers.RoomResp
	postJson("/api/rooms/create", req, &room)
	return room
}

func connect(player servers.PlayerResp) *websocket.Conn {
	u := fmt.Sprintf("ws://%s/api/connect?userId=%s&username=%s", HOST, player.UserID, player.Username)
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return ws
}

func sendEvent(ws *websocket.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("Failed to marshal json %v", err)
	}
	err = ws.WriteMessage(websocket.TextMessage, b)
	if err != nil {
		log.Printf("Failed to send message %v", err)
	}
}

type drawEvent struct {
	realtime.Envelope
	RoomID string `json:"RoomId"`
	X      int    `json:"X"`
	Y      int    `json:"Y"`
}

func runPlayerClient(player servers.PlayerResp, roomID string, wg *sync.WaitGroup) {
	defer wg.Done()

	ws := connect(player)
	defer ws.Close()

	var received atomic.Int64
	go func(ws *websocket.Conn) {
		for {
			_, _, err := ws.ReadMessage()
			if err != nil {
				log.Printf("Server closed connection with err %s", err.Error())
				return
			}
			received.Add(1)
		}
	}(ws)

	join := realtime.RoomJoinMsg{
		Envelope: realtime.Envelope{EventType: realtime.TagRoomJoin},
		RoomID:   roomID,
		UserID:   player.UserID,
		Username: player.Username,
	}
	sendEvent(ws, join)

	// send draw strokes 24 times per second and the occasional chat message
	ticker := time.NewTicker(time.Second / 24)
	defer ticker.Stop()

	deadline := time.Now().Add(30 * time.Second)
	for now := range ticker.C {
		if now.After(deadline) {
			break
		}

		draw := drawEvent{
			Envelope: realtime.Envelope{EventType: realtime.TagDrawEvent},
			RoomID:   roomID,
			X:        rand.Intn(1000),
			Y:        rand.Intn(1000),
		}
		sendEvent(ws, draw)

		if rand.Intn(24) == 0 {
			chat := realtime.ChatMsg{
				Envelope: realtime.Envelope{EventType: realtime.TagChatMessage},
				RoomID:   roomID,
				UserID:   player.UserID,
				Username: player.Username,
				Message:  fmt.Sprintf("guess %d from %s", rand.Intn(100), player.Username),
			}
			sendEvent(ws, chat)
		}
	}

	log.Printf("Player %s received %d messages", player.Username, received.Load())
}

func main() {
	playerCount := 10

	players := make([]servers.PlayerResp, 0, playerCount)
	for i := 0; i < playerCount; i++ {
		players = append(players, createPlayer(fmt.Sprintf("bench-%d-%s", i, uuid.NewString()[:8])))
	}

	room := createRoom(players[0])
	log.Printf("Created room %s for %d players", room.RoomID, playerCount)

	var wg sync.WaitGroup
	wg.Add(playerCount)
	for _, player := range players {
		go runPlayerClient(player, room.RoomID, &wg)
	}
	wg.Wait()
}
