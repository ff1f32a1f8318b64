// Package ws implements the live connection registry and fan-out for the
// messenger. The registry maps a user id to at most one open channel and is
// a volatile cache of reachability only; the store stays the single source
// of truth for membership and message state.
package ws

import (
	"sync"

	"github.com/google/uuid"

	"direct_messenger/pkg/logger"
)

// Hub is the process-local connection registry. Admission, dismissal and
// routing run concurrently from different handler goroutines, so every
// access to the map goes through the mutex.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	log     logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
		log:     log,
	}
}

// Admit installs the channel for the user, replacing and closing any prior
// channel. At most one channel per user is reachable; there is no
// multi-device fan-out.
func (h *Hub) Admit(client *Client) {
	h.mu.Lock()
	previous := h.clients[client.UserID]
	h.clients[client.UserID] = client
	h.mu.Unlock()

	if previous != nil && previous != client {
		h.log.Info("Replacing live channel", "user_id", client.UserID)
		previous.Close()
	}
}

// Dismiss removes the registry entry only if it still refers to the
// disconnecting channel, so a stale disconnect never evicts a newer
// channel for the same user. It reports whether the entry was removed.
func (h *Hub) Dismiss(client *Client) bool {
	h.mu.Lock()
	current, ok := h.clients[client.UserID]
	if ok && current == client {
		delete(h.clients, client.UserID)
	} else {
		ok = false
	}
	h.mu.Unlock()

	client.Close()
	return ok
}

// Route pushes an event to the user's channel if one is registered. The
// delivery contract is at-most-once, best-effort: no channel means the
// event is silently dropped, and a failed push is treated as offline.
func (h *Hub) Route(userID uuid.UUID, event ServerEvent) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return
	}
	client.Push(event)
}

// IsOnline reports whether a channel is currently registered for the user.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Count returns the number of registered channels.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll closes every registered channel, used on server shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
