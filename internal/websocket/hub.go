package websocket

import (
	"context"
	"sync"

	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/fitnessapi"
)

// Chatter answers chat messages on behalf of a user.
type Chatter interface {
	Chat(ctx context.Context, userID domain.UserID, message string) (*fitnessapi.ChatReply, error)
}

// Hub tracks connected chat clients and closes them on shutdown.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	stopOnce   sync.Once
	chatter    Chatter
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.RWMutex
}

func NewHub(chatter Chatter) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		chatter:    chatter,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.stopped {
				client.Close()
			} else {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()
		}
	}
}

// Stop cancels in-flight chat calls, closes every client and blocks until
// Run has returned. Concurrent and repeated calls are safe.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()
		close(h.stop)
	})
	<-h.done
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister is safe to call after the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
