// events/hub.go
package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ViniZap4/moodlog-server/domain"
)

const (
	MoodRecorded = "mood_recorded"
	MoodsCleared = "moods_cleared"
)

type Message struct {
	Type  string        `json:"type"`
	Entry *domain.Entry `json:"entry,omitempty"`
}

type subscriber struct {
	id string
	ch chan Message
}

// Hub fans store changes out to stream subscribers. Run owns the subscriber
// set; a subscriber whose buffer is full misses the message.
type Hub struct {
	clients    map[string]subscriber
	broadcast  chan Message
	register   chan subscriber
	unregister chan string
	done       chan struct{}
	mu         sync.RWMutex
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]subscriber),
		broadcast:  make(chan Message, 256),
		register:   make(chan subscriber),
		unregister: make(chan string),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "events").Logger(),
	}
}

// Run blocks until ctx is cancelled, then closes every subscriber channel.
// Start it before handing the hub to anything that subscribes.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, sub := range h.clients {
				close(sub.ch)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case sub := <-h.register:
			h.mu.Lock()
			h.clients[sub.id] = sub
			h.mu.Unlock()
			h.log.Debug().Str("subscriber", sub.id).Msg("subscriber registered")

		case id := <-h.unregister:
			h.mu.Lock()
			if sub, ok := h.clients[id]; ok {
				delete(h.clients, id)
				close(sub.ch)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for id, sub := range h.clients {
				select {
				case sub.ch <- msg:
				default:
					h.log.Warn().Str("subscriber", id).Str("type", msg.Type).Msg("subscriber too slow, dropping event")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a message without blocking. The message is dropped when
// the queue is full, which is also what happens if Run was never started.
func (h *Hub) Broadcast(msgType string, entry *domain.Entry) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- Message{Type: msgType, Entry: entry}:
	default:
		h.log.Warn().Str("type", msgType).Msg("broadcast queue full, dropping event")
	}
}

// Subscribe registers a new listener. Run must be running (or already
// stopped) for Subscribe to return. The channel is closed after cancel is
// called or the hub stops.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	sub := subscriber{id: uuid.NewString(), ch: make(chan Message, 16)}
	select {
	case h.register <- sub:
	case <-h.done:
		close(sub.ch)
		return sub.ch, func() {}
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			select {
			case h.unregister <- sub.id:
			case <-h.done:
			}
		})
	}
	return sub.ch, cancel
}

// Subscribers reports the current number of listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
