package server

import (
	"sync"
)

// Command is a client message staged for the next simulation tick.
type Command struct {
	Session string
	Msg     ClientMessage
}

// Hub tracks connected sessions and bridges the network goroutines to the
// single simulation goroutine: inbound messages are staged under commandsMu
// and drained in order at the next tick; outbound snapshots fan out to every
// subscriber's send queue.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber

	commandsMu sync.Mutex
	pending    []Command

	// departures are sessions that disconnected since the last drain, so the
	// tick loop can despawn their entities.
	departures []string
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]*subscriber)}
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[s.id] = s
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[s.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subscribers, s.id)
	h.mu.Unlock()

	h.commandsMu.Lock()
	h.departures = append(h.departures, s.id)
	h.commandsMu.Unlock()
}

func (h *Hub) stage(cmd Command) {
	h.commandsMu.Lock()
	defer h.commandsMu.Unlock()
	h.pending = append(h.pending, cmd)
}

// Drain returns the staged commands and departed sessions accumulated since
// the previous call. Called once per tick from the simulation goroutine.
func (h *Hub) Drain() (cmds []Command, departed []string) {
	h.commandsMu.Lock()
	defer h.commandsMu.Unlock()
	cmds, h.pending = h.pending, nil
	departed, h.departures = h.departures, nil
	return cmds, departed
}

// SendTo queues a message for one session.
func (h *Hub) SendTo(session string, data []byte) bool {
	h.mu.Lock()
	s := h.subscribers[session]
	h.mu.Unlock()
	return s.Send(data)
}

// Broadcast queues a message for every session, disconnecting any whose send
// queue is full.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	stale := make([]*subscriber, 0)
	for _, s := range h.subscribers {
		if !s.Send(data) {
			stale = append(stale, s)
		}
	}
	h.mu.Unlock()

	for _, s := range stale {
		h.unregister(s)
		s.close()
	}
}

// Sessions returns the number of connected sessions.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
