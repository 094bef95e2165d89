package realtime

import (
	"context"
	"sync"

	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/logger"
)

// Message types pushed to connected displays. Every push is a hint; clients
// re-fetch the authoritative document over HTTP, except playback state which
// is carried inline so screens update without an extra round trip.
const (
	MessageTypeQueueChanged    = "queue.changed"
	MessageTypePlaybackState   = "playback.state"
	MessageTypeSettingsChanged = "settings.changed"
	MessageTypeRankingsChanged = "rankings.changed"
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
)

// Message is the envelope sent over every websocket and fanout channel.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub tracks connected websocket clients and fans messages out to them.
// All client bookkeeping happens on the Run goroutine; the mutex only
// guards reads from other goroutines.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logg       *logger.Logger
}

// NewHub builds a hub. Call Run before registering clients.
func NewHub(logg *logger.Logger) (*Hub, error) {
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logg:       logg,
	}, nil
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		// Registration changes take priority over pending broadcasts so a
		// joining screen never misses the message that prompted it to join.
		select {
		case client := <-h.register:
			h.addClient(client)
			continue
		case client := <-h.unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.closeAll(ctx)
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.fanOut(ctx, message)
		}
	}
}

// Broadcast queues a message for every connected client. Never blocks; if
// the hub is saturated the message is dropped and the drop logged, since
// every consumer can recover state by polling.
func (h *Hub) Broadcast(ctx context.Context, message Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logg.Warn(ctx, "realtime broadcast buffer full, dropping "+message.Type)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

func (h *Hub) fanOut(ctx context.Context, message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Slow consumer; drop it rather than stall everyone else.
			delete(h.clients, client)
			close(client.send)
			h.logg.Warn(ctx, "dropping slow realtime client")
		}
	}
}

func (h *Hub) closeAll(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.logg.Info(ctx, "realtime hub stopped")
}
