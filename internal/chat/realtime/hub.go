package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"marketplace_chat_service/internal/chat/domain"
)

// Hub local room routing; rooms are named by conversation id
type Hub struct {
	mu        sync.RWMutex
	conns     map[string]*Connection            // connID -> connection
	rooms     map[string]map[string]*Connection // roomID -> connID -> connection
	connRooms map[string]map[string]struct{}    // connID -> roomIDs
}

// NewHub create Hub
func NewHub() *Hub {
	return &Hub{
		conns:     make(map[string]*Connection),
		rooms:     make(map[string]map[string]*Connection),
		connRooms: make(map[string]map[string]struct{}),
	}
}

// Attach track conn for global delivery
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	if h.connRooms[conn.ID] == nil {
		h.connRooms[conn.ID] = make(map[string]struct{})
	}
	h.mu.Unlock()
}

// Detach drop conn from every room
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, conn.ID)
	for roomID := range h.connRooms[conn.ID] {
		room := h.rooms[roomID]
		delete(room, conn.ID)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(h.connRooms, conn.ID)
}

// Join add an attached conn to roomID
func (h *Hub) Join(roomID string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn.ID]; !ok {
		return
	}
	room := h.rooms[roomID]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[roomID] = room
	}
	room[conn.ID] = conn
	h.connRooms[conn.ID][roomID] = struct{}{}
}

// RoomSize members of roomID on this process
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// DeliverRoom write frame to every member of roomID
func (h *Hub) DeliverRoom(roomID string, frame []byte) {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.rooms[roomID]))
	for _, conn := range h.rooms[roomID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		_ = conn.Send(frame)
	}
}

// DeliverAll write frame to every attached connection
func (h *Hub) DeliverAll(frame []byte) {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		_ = conn.Send(frame)
	}
}

// ToRoom local-only notifier
func (h *Hub) ToRoom(_ context.Context, roomID string, ev domain.WSResponse) error {
	frame, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.DeliverRoom(roomID, frame)
	return nil
}

// ToAll local-only notifier
func (h *Hub) ToAll(_ context.Context, ev domain.WSResponse) error {
	frame, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.DeliverAll(frame)
	return nil
}

// Close close every connection
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
