package hub

import (
	"log"
	"sync"
)

// Client is one connected channel subscriber. Send is drained by the
// transport goroutine; publishes to a full buffer are dropped rather
// than blocking the broadcaster.
type Client struct {
	ID   string
	Send chan []byte
}

func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 16
	}
	return &Client{ID: id, Send: make(chan []byte, buffer)}
}

// Hub is a named-group broadcast registry. Groups exist only while
// they have members; delivery is at-most-once with no replay.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[string]*Client
}

func New() *Hub {
	return &Hub{groups: make(map[string]map[string]*Client)}
}

func (h *Hub) Subscribe(group string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]*Client)
		h.groups[group] = members
	}
	members[client.ID] = client
}

// Unsubscribe removes the client from the group and closes its Send
// channel once it belongs to no group. Safe to call on disconnect
// regardless of how the connection ended.
func (h *Hub) Unsubscribe(group string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok {
		return
	}
	if _, ok := members[client.ID]; !ok {
		return
	}
	delete(members, client.ID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
	if !h.memberAnywhere(client.ID) {
		close(client.Send)
	}
}

func (h *Hub) memberAnywhere(clientID string) bool {
	for _, members := range h.groups {
		if _, ok := members[clientID]; ok {
			return true
		}
	}
	return false
}

func (h *Hub) Publish(group string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.groups[group] {
		select {
		case client.Send <- payload:
		default:
			log.Printf("hub drop group=%s client=%s", group, client.ID)
		}
	}
}

func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
