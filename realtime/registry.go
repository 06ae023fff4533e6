/*
 * Copyright (c) Joseph Prichard 2023
 */

package realtime

import (
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
)

// a transport session the registry can push payloads to
type Client interface {
	WriteText(payload []byte) error
}

var ErrUnknownConnection = errors.New("no connection is registered for the given id")

type connection struct {
	id       uuid.UUID
	userID   uuid.UUID
	username string
	client   Client
}

// the single source of truth for who is connected, as whom, and in which rooms.
// safe for concurrent use from many connection handling goroutines. room
// membership is kept as two inverse indexes so broadcast targeting and cleanup
// on disconnect are both constant time lookups
type Registry struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]*connection
	byUser map[uuid.UUID]map[uuid.UUID]struct{} // user id to the ids of their live connections
	rooms  map[string]map[uuid.UUID]struct{}    // room id to member connection ids
	joined map[uuid.UUID]map[string]struct{}    // connection id to the ids of its rooms
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[uuid.UUID]*connection),
		byUser: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		rooms:  make(map[string]map[uuid.UUID]struct{}),
		joined: make(map[uuid.UUID]map[string]struct{}),
	}
}

// registers a live connection under a fresh opaque id, making it a valid broadcast target
func (registry *Registry) Register(client Client, userID uuid.UUID, username string) uuid.UUID {
	connID := uuid.New()
	conn := &connection{id: connID, userID: userID, username: username, client: client}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	registry.conns[connID] = conn
	userConns, ok := registry.byUser[userID]
	if !ok {
		userConns = make(map[uuid.UUID]struct{})
		registry.byUser[userID] = userConns
	}
	userConns[connID] = struct{}{}

	return connID
}

// removes the connection from every room it belonged to and drops its identity
// mapping. safe to call more than once for the same connection
func (registry *Registry) Unregister(connID uuid.UUID) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	conn, ok := registry.conns[connID]
	if !ok {
		return
	}

	for roomID := range registry.joined[connID] {
		registry.removeFromRoom(roomID, connID)
	}
	delete(registry.joined, connID)

	userConns := registry.byUser[conn.userID]
	delete(userConns, connID)
	if len(userConns) == 0 {
		delete(registry.byUser, conn.userID)
	}

	delete(registry.conns, connID)
}

func (registry *Registry) JoinRoom(roomID string, connID uuid.UUID) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	_, ok := registry.conns[connID]
	if !ok {
		return ErrUnknownConnection
	}

	members, ok := registry.rooms[roomID]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		registry.rooms[roomID] = members
	}
	members[connID] = struct{}{}

	joined, ok := registry.joined[connID]
	if !ok {
		joined = make(map[string]struct{})
		registry.joined[connID] = joined
	}
	joined[roomID] = struct{}{}

	return nil
}

func (registry *Registry) LeaveRoom(roomID string, connID uuid.UUID) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	registry.removeFromRoom(roomID, connID)

	joined := registry.joined[connID]
	delete(joined, roomID)
	if len(joined) == 0 {
		delete(registry.joined, connID)
	}
}

// must be called with the write lock held
func (registry *Registry) removeFromRoom(roomID string, connID uuid.UUID) {
	members := registry.rooms[roomID]
	delete(members, connID)
	if len(members) == 0 {
		// drop the empty member set so dead rooms don't accumulate
		delete(registry.rooms, roomID)
	}
}

func (registry *Registry) ConnectionsForRoom(roomID string) []uuid.UUID {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	connIDs := make([]uuid.UUID, 0, len(registry.rooms[roomID]))
	for connID := range registry.rooms[roomID] {
		connIDs = append(connIDs, connID)
	}
	return connIDs
}

// a user with several open tabs has several live connections, all are returned
func (registry *Registry) ConnectionsForUser(userID uuid.UUID) []uuid.UUID {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	connIDs := make([]uuid.UUID, 0, len(registry.byUser[userID]))
	for connID := range registry.byUser[userID] {
		connIDs = append(connIDs, connID)
	}
	return connIDs
}

func (registry *Registry) RoomsOf(connID uuid.UUID) []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	roomIDs := make([]string, 0, len(registry.joined[connID]))
	for roomID := range registry.joined[connID] {
		roomIDs = append(roomIDs, roomID)
	}
	return roomIDs
}

func (registry *Registry) Identity(connID uuid.UUID) (uuid.UUID, string, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	conn, ok := registry.conns[connID]
	if !ok {
		return uuid.Nil, "", false
	}
	return conn.userID, conn.username, true
}

func (registry *Registry) Count() int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return len(registry.conns)
}

// best effort push to a single connection. a write to a dead socket is logged
// and swallowed, never surfaced to the caller
func (registry *Registry) Send(connID uuid.UUID, payload []byte) {
	registry.mu.RLock()
	conn, ok := registry.conns[connID]
	registry.mu.RUnlock()

	if !ok {
		return
	}
	err := conn.client.WriteText(payload)
	if err != nil {
		log.Printf("Failed to write to connection %s: %v", connID, err)
	}
}

// sends the payload to a point in time snapshot of the room's members. the
// snapshot is taken under the lock but every network write happens outside it,
// and one dead socket never stops delivery to the rest of the room
func (registry *Registry) Broadcast(roomID string, payload []byte) {
	registry.mu.RLock()
	targets := make([]*connection, 0, len(registry.rooms[roomID]))
	for connID := range registry.rooms[roomID] {
		if conn, ok := registry.conns[connID]; ok {
			targets = append(targets, conn)
		}
	}
	registry.mu.RUnlock()

	for _, conn := range targets {
		err := conn.client.WriteText(payload)
		if err != nil {
			log.Printf("Failed to write to connection %s in room %s: %v", conn.id, roomID, err)
		}
	}
}
