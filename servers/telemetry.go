/*
 * Copyright (c) Joseph Prichard 2024
 */

package servers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// pushes the live connection count to anyone subscribed over a websocket
type TelemetryServer struct {
	upgrade     websocket.Upgrader
	subscribers map[chan int]struct{}
	mu          sync.Mutex
}

func NewTelemetryServer() *TelemetryServer {
	return &TelemetryServer{
		upgrade:     CreateUpgrade(),
		subscribers: make(map[chan int]struct{}),
	}
}

func (server *TelemetryServer) addSubscriber(subscriber chan int) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.subscribers[subscriber] = struct{}{}
}

// idempotent, the channel is closed only on the call that actually removes it
func (server *TelemetryServer) removeSubscriber(subscriber chan int) {
	server.mu.Lock()
	defer server.mu.Unlock()
	if _, ok := server.subscribers[subscriber]; !ok {
		return
	}
	delete(server.subscribers, subscriber)
	close(subscriber)
}

// fans the latest count out to every subscriber
func (server *TelemetryServer) Notify(count int) {
	server.mu.Lock()
	defer server.mu.Unlock()
	for subscriber := range server.subscribers {
		select {
		case subscriber <- count:
		default:
			// a stalled subscriber just misses this update
		}
	}
}

func (server *TelemetryServer) Subscribe(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	subscriber := make(chan int, 1)

	ws, err := server.upgrade.Upgrade(w, r, nil)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to upgrade to websocket")
		return
	}

	// register before the listeners run so their teardown always finds the entry
	server.addSubscriber(subscriber)

	go server.subscriberListener(ws, subscriber)
	go server.socketListener(ws, subscriber)
}

func (server *TelemetryServer) socketListener(ws *websocket.Conn, subscriber chan int) {
	defer func() {
		server.removeSubscriber(subscriber)
		_ = ws.Close()
		if panicInfo := recover(); panicInfo != nil {
			log.Println(panicInfo)
		}
	}()
	// loop until the client sends no more messages
	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			return
		}
	}
}

func (server *TelemetryServer) subscriberListener(ws *websocket.Conn, subscriber chan int) {
	defer func() {
		_ = ws.Close()
		if panicInfo := recover(); panicInfo != nil {
			log.Println(panicInfo)
		}
	}()
	for count := range subscriber {
		type TelemetryResp struct {
			ClientCount int `json:"clientCount"`
		}
		b, err := json.Marshal(TelemetryResp{ClientCount: count})
		if err != nil {
			log.Println("Failed to serialize telemetry resp")
			return
		}

		err = ws.WriteMessage(websocket.TextMessage, b)
		if err != nil {
			log.Printf("Error writing message %s", err)
			return
		}
	}
}
