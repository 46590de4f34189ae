package server

import (
	"encoding/json"
	"sync"
)

// Hub fans a session's updates out to its websocket clients.
type Hub struct {
	mu              sync.Mutex
	clients         map[*Client]struct{}
	broadcastStatus chan statusResponse
	broadcastSearch chan searchPayload
	broadcastReset  chan statusResponse
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:         make(map[*Client]struct{}),
		broadcastStatus: make(chan statusResponse, 32),
		broadcastSearch: make(chan searchPayload, 32),
		broadcastReset:  make(chan statusResponse, 8),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.closeAll()
			return
		case payload := <-h.broadcastStatus:
			h.fanOut(wsMessage{Type: "status", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastSearch:
			h.fanOut(wsMessage{Type: "search", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastReset:
			h.fanOut(wsMessage{Type: "reset", Payload: mustMarshal(payload)})
		}
	}
}

func (h *Hub) fanOut(msg wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.sendJSON(msg)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// The publish methods never block; updates are dropped when Run falls
// behind, and the next status carries the full state anyway.

func (h *Hub) PublishStatus(payload statusResponse) {
	select {
	case h.broadcastStatus <- payload:
	default:
	}
}

func (h *Hub) PublishSearch(payload searchPayload) {
	select {
	case h.broadcastSearch <- payload:
	default:
	}
}

func (h *Hub) PublishReset(payload statusResponse) {
	select {
	case h.broadcastReset <- payload:
	default:
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Send delivers msg to c unless c is already gone.
func (h *Hub) Send(c *Client, msg wsMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		c.sendJSON(msg)
	}
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}
