package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Conn is the slice of the websocket connection the hub needs. Satisfied by
// *websocket.Conn from gofiber/contrib and by fakes in tests.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one authenticated realtime connection.
type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

// Event is the envelope every realtime payload travels in.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// MessagePayload is the legacy send_message body, republished unchanged under
// a receive_message event.
type MessagePayload struct {
	ConversationID string    `json:"conversation_id"`
	Content        string    `json:"content"`
	SenderID       uuid.UUID `json:"sender_id"`
}

// Hub groups connections into per-conversation rooms and fans events out to
// them. Join, Remove and Publish are safe to call concurrently; a removal
// during an in-flight publish cannot corrupt the tables.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[*Client]struct{}
	joined map[*Client]map[uuid.UUID]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]map[*Client]struct{}),
		joined: make(map[*Client]map[uuid.UUID]struct{}),
	}
}

// Join adds the client to the room for conversationID. Joining twice is a
// no-op. No membership check against the conversation's participants is made
// here; the request surface enforces that on every lifecycle operation.
func (h *Hub) Join(client *Client, conversationID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[conversationID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[conversationID] = room
	}
	room[client] = struct{}{}

	if h.joined[client] == nil {
		h.joined[client] = make(map[uuid.UUID]struct{})
	}
	h.joined[client][conversationID] = struct{}{}

	log.Printf("Client %s joined room %s", client.UserID, conversationID)
}

// Remove takes the client out of every room it joined. Called on disconnect;
// no explicit leave event exists.
func (h *Hub) Remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	for conversationID := range h.joined[client] {
		room := h.rooms[conversationID]
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	delete(h.joined, client)
}

// Publish delivers event to every connection currently in the conversation's
// room, the sender included. Best-effort: a connection whose write fails is
// closed and evicted, and the event is simply lost for it.
func (h *Hub) Publish(conversationID uuid.UUID, event Event) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[conversationID]))
	for client := range h.rooms[conversationID] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		if err := client.Conn.WriteJSON(event); err != nil {
			log.Printf("Error sending event to client %s: %v", client.UserID, err)
			client.Conn.Close()
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
		}
	}
}

// RoomSize reports how many connections are joined to a conversation's room.
func (h *Hub) RoomSize(conversationID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}
