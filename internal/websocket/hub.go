package websocket

import (
	"encoding/json"
	"sync"

	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/metrics"
	"github.com/rs/zerolog/log"
)

type delivery struct {
	recipients []uint
	data       []byte
}

// Hub tracks live feed connections per user and fans out published posts.
// All map mutation happens on the Run goroutine.
type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	publish    chan *delivery
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopOnce   sync.Once
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan *delivery, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for _, conns := range h.clients {
				for client := range conns {
					client.Close()
					metrics.FeedConnections.Dec()
				}
			}
			h.clients = make(map[uint]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			conns, ok := h.clients[client.userID]
			if !ok {
				conns = make(map[*Client]bool)
				h.clients[client.userID] = conns
			}
			conns[client] = true
			h.mu.Unlock()
			metrics.FeedConnections.Inc()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case d := <-h.publish:
			h.mu.Lock()
			for _, userID := range d.recipients {
				for client := range h.clients[userID] {
					select {
					case client.send <- d.data:
					default:
						// slow consumer
						h.removeLocked(client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}
	client.Close()
	metrics.FeedConnections.Dec()
}

// Stop closes every connection and blocks until Run has returned.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes a client; it is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PublishPost sends a post.created message to every open connection of the
// recipients.
func (h *Hub) PublishPost(post *domain.Post, recipientIDs []uint) {
	msg, err := NewMessage(MessageTypePostCreated, newPostCreatedPayload(post))
	if err != nil {
		log.Error().Err(err).Uint("post_id", post.ID).Msg("failed to build feed message")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Uint("post_id", post.ID).Msg("failed to marshal feed message")
		return
	}

	select {
	case h.publish <- &delivery{recipients: recipientIDs, data: data}:
	case <-h.done:
	}
}

// ConnectionCount returns the number of open feed connections of a user.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
