// Package loop runs one terminal game session per connection: input, world
// update and drawing at a fixed frame rate.
package loop

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// EventType identifies a hub notification.
type EventType int

const (
	EventServerShutdown EventType = iota
)

// Event is sent from the hub to a session.
type Event struct {
	Type EventType
}

// Handle is a session's registration with the hub.
type Handle struct {
	ID       int
	Username string
	Events   chan Event
}

// Hub tracks live sessions so the process can notify them before shutting down.
// Each session owns its own world; the hub shares nothing else.
type Hub struct {
	mu       sync.RWMutex
	sessions map[int]*Handle
	nextID   int
	logger   *log.Logger
}

// NewHub creates an empty hub. A nil logger uses the default logger.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		sessions: make(map[int]*Handle),
		nextID:   1,
		logger:   logger,
	}
}

// Register adds a session.
func (h *Hub) Register(username string) *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()

	handle := &Handle{
		ID:       h.nextID,
		Username: username,
		Events:   make(chan Event, 4),
	}
	h.nextID++
	h.sessions[handle.ID] = handle
	h.logger.Debug("session registered", "id", handle.ID, "user", username, "sessions", len(h.sessions))
	return handle
}

// Unregister removes a session. Unknown ids are ignored.
func (h *Hub) Unregister(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[id]; !ok {
		return
	}
	delete(h.sessions, id)
	h.logger.Debug("session unregistered", "id", id, "sessions", len(h.sessions))
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown notifies every session and waits for them to unregister, up to timeout.
// It reports whether all sessions left in time.
func (h *Hub) Shutdown(timeout time.Duration) bool {
	h.mu.RLock()
	for _, handle := range h.sessions {
		select {
		case handle.Events <- Event{Type: EventServerShutdown}:
		default:
		}
	}
	h.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if n := h.Count(); n == 0 {
			return true
		}
		select {
		case <-deadline:
			h.logger.Warn("shutdown timed out", "sessions", h.Count())
			return false
		case <-ticker.C:
		}
	}
}
