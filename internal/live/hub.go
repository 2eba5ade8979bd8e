// Package live fans out tournament events to connected scoreboards.
//
// Scoreboards subscribe to one round (or to AllRounds) and receive a JSON Event whenever a
// round is seated, a table changes state or the ranking is rebuilt. The HTTP layer streams
// them as Server-Sent Events; the Hub itself knows nothing about the transport.
package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// AllRounds subscribes a client to every round's events.
const AllRounds = 0

// EventType names what happened.
type EventType string

const (
	RoundGenerated EventType = "round_generated"
	TableFinished  EventType = "table_finished"
	TableStatus    EventType = "table_status"
	RankingUpdated EventType = "ranking_updated"
)

// Event is the payload pushed to subscribers.
type Event struct {
	Type   EventType `json:"type"`
	Round  int       `json:"round,omitempty"`
	Table  int       `json:"table,omitempty"`
	Status string    `json:"status,omitempty"`
	At     time.Time `json:"at"`
}

// Client is one subscriber. Send is closed when the client is unregistered.
type Client struct {
	Round int
	Send  chan []byte
}

// NewClient returns a client for round with a small outgoing buffer.
func NewClient(round int) *Client {
	return &Client{Round: round, Send: make(chan []byte, 16)}
}

type message struct {
	round int
	data  []byte
}

// Hub tracks subscribers by round. All map mutations happen on the Run goroutine.
type Hub struct {
	clients map[int]map[*Client]bool

	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a Hub; start it with Run.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int]map[*Client]bool),
		broadcast:  make(chan message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then closes every
// remaining client. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for round, clients := range h.clients {
				for c := range clients {
					close(c.Send)
				}
				delete(h.clients, round)
			}
			h.mu.Unlock()
			close(h.done)
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.Round] == nil {
				h.clients[c.Round] = make(map[*Client]bool)
			}
			h.clients[c.Round][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			h.deliver(h.clients[msg.round], msg.data)
			if msg.round != AllRounds {
				h.deliver(h.clients[AllRounds], msg.data)
			}
			h.mu.Unlock()
		}
	}
}

// deliver sends data to each client without blocking; a client whose buffer is full is
// dropped. Caller holds mu.
func (h *Hub) deliver(clients map[*Client]bool, data []byte) {
	for c := range clients {
		select {
		case c.Send <- data:
		default:
			h.drop(c)
		}
	}
}

// drop removes c and closes its channel. Caller holds mu.
func (h *Hub) drop(c *Client) {
	clients, ok := h.clients[c.Round]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.Send)
	if len(clients) == 0 {
		delete(h.clients, c.Round)
	}
}

// Publish encodes ev and queues it for ev.Round's subscribers and AllRounds subscribers.
// If the queue is full the event is discarded rather than stalling the caller.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- message{round: ev.Round, data: data}:
	default:
	}
}

// Register starts delivering events to c. On a stopped hub c.Send is closed at once.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
}

// Unregister stops delivering to c and closes c.Send.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Subscribers returns how many clients are watching round (not counting AllRounds).
func (h *Hub) Subscribers(round int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[round])
}
