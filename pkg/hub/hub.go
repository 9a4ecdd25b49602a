package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Handler receives every text frame a client sends.
type Handler func(c *Client, frame []byte)

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithOnMessage sets the inbound frame handler.
func WithOnMessage(fn Handler) Option {
	return func(h *Hub) { h.onMessage = fn }
}

// WithOnConnect sets a hook run on the hub goroutine after a client
// registers.
func WithOnConnect(fn func(*Client)) Option {
	return func(h *Hub) { h.onConnect = fn }
}

// WithOnDisconnect sets a hook run on the hub goroutine after a client
// leaves.
func WithOnDisconnect(fn func(*Client)) Option {
	return func(h *Hub) { h.onDisconnect = fn }
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	name   string
	logger *slog.Logger

	onMessage    Handler
	onConnect    func(*Client)
	onDisconnect func(*Client)

	// Registered clients, owned by Run
	clients map[*Client]bool
	mu      sync.RWMutex

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	done      chan struct{}
	closeOnce sync.Once
	running   atomic.Bool
}

// New creates a hub. Call Run in a goroutine to start it.
func New(name string, opts ...Option) *Hub {
	h := &Hub{
		name:       name,
		logger:     slog.Default(),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "hub", "hub", name)
	return h
}

// Run is the hub's main loop. It returns after Close, closing every
// client's send queue so their pumps shut down.
func (h *Hub) Run() {
	h.running.Store(true)
	defer h.running.Store(false)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client connected", "clients", count)
			if h.onConnect != nil {
				h.onConnect(client)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			if ok {
				h.logger.Debug("client disconnected", "clients", count)
				if h.onDisconnect != nil {
					h.onDisconnect(client)
				}
			}

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Too slow to keep up
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("dropped slow client")
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Close stops Run and disconnects every client. Safe to call more than
// once.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Broadcast queues a message for every connected client. It never blocks:
// when the queue is full the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.logger.Warn("broadcast queue full, dropping message")
	}
}

// Send broadcasts a typed envelope.
func (h *Hub) Send(typ string, payload any) error {
	data, err := Encode(typ, payload)
	if err != nil {
		return err
	}
	h.Broadcast(Message{Data: data})
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsRunning reports whether Run is active.
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}
