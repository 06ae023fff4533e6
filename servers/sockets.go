/*
 * Copyright (c) Joseph Prichard 2023
 */

package servers

import (
	"log"
	"net/http"
	"sync"

	"sketchbout/realtime"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wraps a websocket so the registry can push to it from any goroutine, gorilla
// allows only one concurrent writer per connection
type wsClient struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (client *wsClient) WriteText(payload []byte) error {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.ws.WriteMessage(websocket.TextMessage, payload)
}

// accepts websocket connections and pumps their frames through the router.
// one goroutine runs per live connection, a slow or dead client never blocks
// another's message processing
type SocketServer struct {
	upgrade   websocket.Upgrader
	registry  *realtime.Registry
	router    *realtime.Router
	telemetry *TelemetryServer
}

func NewSocketServer(registry *realtime.Registry, router *realtime.Router, telemetry *TelemetryServer) *SocketServer {
	return &SocketServer{
		upgrade:   CreateUpgrade(),
		registry:  registry,
		router:    router,
		telemetry: telemetry,
	}
}

// upgrades the request to a websocket. the caller supplies their identity in the
// query string and it is trusted as given
func (server *SocketServer) Connect(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	query := r.URL.Query()
	username := query.Get("username")
	userID, err := uuid.Parse(query.Get("userId"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "A valid userId query parameter is required")
		return
	}
	if username == "" {
		WriteError(w, http.StatusBadRequest, "A username query parameter is required")
		return
	}

	ws, err := server.upgrade.Upgrade(w, r, nil)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to upgrade to websocket")
		return
	}

	connID := server.registry.Register(&wsClient{ws: ws}, userID, username)
	log.Printf("Connection %s opened for user %s (%s)", connID, username, userID)
	server.telemetry.Notify(server.registry.Count())

	go server.readLoop(ws, connID)
}

// reads frames from the socket and dispatches them in order until the client
// goes away, then tears the connection's registry state down
func (server *SocketServer) readLoop(ws *websocket.Conn, connID uuid.UUID) {
	defer func() {
		server.registry.Unregister(connID)
		_ = ws.Close()
		server.telemetry.Notify(server.registry.Count())
		log.Printf("Connection %s closed", connID)
		if panicInfo := recover(); panicInfo != nil {
			log.Println(panicInfo)
		}
	}()
	for {
		_, buf, err := ws.ReadMessage()
		if err != nil {
			log.Printf("Client closed connection with err %s", err.Error())
			return
		}
		server.router.Dispatch(connID, buf)
	}
}
