package server

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubFansOutAndDropsWhenFull(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go h.Run(done)
	defer close(done)

	c := &Client{hub: h, send: make(chan []byte, 4)}
	h.Register(c)
	if !h.HasClients() {
		t.Fatalf("client should be registered")
	}
	h.PublishSearch(searchPayload{Depth: 3})

	select {
	case data := <-c.send:
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "search" {
			t.Fatalf("unexpected message %s %v", data, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no message delivered")
	}

	for i := 0; i < 100; i++ {
		h.PublishStatus(statusResponse{})
	}
}

func TestHubSendSkipsUnregisteredClients(t *testing.T) {
	h := NewHub()
	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.Register(c)
	h.Unregister(c)
	h.Send(c, wsMessage{Type: "status"})
	if _, ok := <-c.send; ok {
		t.Fatalf("send channel should be closed and empty")
	}
	if h.HasClients() {
		t.Fatalf("client should be gone")
	}
}

func TestHubRunClosesClientsWhenDone(t *testing.T) {
	h := NewHub()
	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.Register(c)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		h.Run(done)
		close(finished)
	}()
	close(done)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return")
	}
	if _, ok := <-c.send; ok {
		t.Fatalf("client channel should be closed")
	}
}
