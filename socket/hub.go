package socket

import (
	"context"
	"encoding/json"
	"sync"

	"beleske/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	NoteCreatedType = "NOTE_CREATED"
	NoteUpdatedType = "NOTE_UPDATED"
	NoteDeletedType = "NOTE_DELETED"

	broadcastBuffer = 256
)

type WSMessage struct {
	Type    string       `json:"type"`
	NoteID  uint         `json:"note_id"`
	Payload *NotePayload `json:"payload,omitempty"`
}

// NotePayload is the body of created/updated messages.
type NotePayload struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type roomMessage struct {
	room uint
	msg  WSMessage
}

// Hub fans note events out to the websocket clients of the note's owner.
// Room 0 holds the clients of unowned notes (accounts disabled).
type Hub struct {
	Rooms      map[uint]map[*Client]bool
	Broadcast  chan roomMessage
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
}

type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Room uint
	Send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[uint]map[*Client]bool),
		Broadcast:  make(chan roomMessage, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Publish queues msg for every client in room. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Publish(room uint, msg WSMessage) {
	select {
	case h.Broadcast <- roomMessage{room: room, msg: msg}:
	default:
		logger.Sugar.Warnf("Hub broadcast queue full, dropping %s for note %d", msg.Type, msg.NoteID)
	}
}

// RoomSize reports how many clients are connected to room.
func (h *Hub) RoomSize(room uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[room])
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.Room] == nil {
				h.Rooms[client.Room] = make(map[*Client]bool)
			}
			h.Rooms[client.Room][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.remove(client)

		case rm := <-h.Broadcast:
			payload, err := json.Marshal(rm.msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			// Copy the recipients so no lock is held while sending.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[rm.room]))
			for client := range h.Rooms[rm.room] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					logger.Sugar.Warnf("Client in room %d is lagging, disconnecting", client.Room)
					h.remove(client)
				}
			}
		}
	}
}

// join registers client unless the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters client unless the hub has stopped.
func (h *Hub) leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.Rooms[client.Room][client]; !ok {
		return
	}
	delete(h.Rooms[client.Room], client)
	close(client.Send)
	if len(h.Rooms[client.Room]) == 0 {
		delete(h.Rooms, client.Room)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, clients := range h.Rooms {
		for client := range clients {
			close(client.Send)
		}
		delete(h.Rooms, room)
	}
}
