package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"direct_messenger/pkg/logger"
)

// fakeConn records every JSON frame written to it.
type fakeConn struct {
	mu     sync.Mutex
	events []ServerEvent
	closed bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if event, ok := v.(ServerEvent); ok {
		c.events = append(c.events, event)
	}
	return nil
}

func (c *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) waitForEvents(t *testing.T, n int) []ServerEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.events) >= n {
			out := make([]ServerEvent, len(c.events))
			copy(out, c.events)
			c.mu.Unlock()
			return out
		}
		c.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events", n)
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHubRouteDeliversToRegisteredClient(t *testing.T) {
	t.Parallel()

	log := logger.New("error")
	hub := NewHub(log)
	userID := uuid.New()
	conn := &fakeConn{}
	client := NewClient(userID, conn, log)
	hub.Admit(client)

	convID := uuid.New()
	hub.Route(userID, TypingEvent(uuid.New(), convID))

	events := conn.waitForEvents(t, 1)
	if events[0].Type != ServerEventTyping {
		t.Errorf("event type = %q, want %q", events[0].Type, ServerEventTyping)
	}
	if events[0].ConversationID != convID.String() {
		t.Errorf("conversation id = %q, want %q", events[0].ConversationID, convID)
	}
}

func TestHubRouteToAbsentUserIsNoOp(t *testing.T) {
	t.Parallel()

	hub := NewHub(logger.New("error"))
	// Must not panic or block.
	hub.Route(uuid.New(), TypingEvent(uuid.New(), uuid.New()))
}

func TestHubAdmitReplacesPreviousChannel(t *testing.T) {
	t.Parallel()

	log := logger.New("error")
	hub := NewHub(log)
	userID := uuid.New()

	oldConn := &fakeConn{}
	oldClient := NewClient(userID, oldConn, log)
	hub.Admit(oldClient)

	newConn := &fakeConn{}
	newClient := NewClient(userID, newConn, log)
	hub.Admit(newClient)

	if hub.Count() != 1 {
		t.Errorf("Count = %d, want 1", hub.Count())
	}

	// Replacement closes the old channel's pump and connection.
	deadline := time.Now().Add(2 * time.Second)
	for !oldConn.isClosed() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !oldConn.isClosed() {
		t.Error("previous connection was not closed on replacement")
	}

	hub.Route(userID, TypingEvent(uuid.New(), uuid.New()))
	newConn.waitForEvents(t, 1)
}

func TestHubDismissIgnoresStaleChannel(t *testing.T) {
	t.Parallel()

	log := logger.New("error")
	hub := NewHub(log)
	userID := uuid.New()

	oldClient := NewClient(userID, &fakeConn{}, log)
	hub.Admit(oldClient)

	newClient := NewClient(userID, &fakeConn{}, log)
	hub.Admit(newClient)

	// The old channel's disconnect arrives after the reconnect. It must not
	// evict the new channel, and the caller must be told nothing was removed.
	if hub.Dismiss(oldClient) {
		t.Error("stale dismiss reported removal")
	}
	if !hub.IsOnline(userID) {
		t.Error("stale dismiss evicted the live channel")
	}

	if !hub.Dismiss(newClient) {
		t.Error("dismissing the live channel reported no removal")
	}
	if hub.IsOnline(userID) {
		t.Error("user still registered after dismissing the live channel")
	}
}

func TestClientPushAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	log := logger.New("error")
	client := NewClient(uuid.New(), &fakeConn{}, log)
	client.Close()

	if client.Push(TypingEvent(uuid.New(), uuid.New())) {
		t.Error("Push on a closed client reported delivery")
	}
}

func TestHubCloseAll(t *testing.T) {
	t.Parallel()

	log := logger.New("error")
	hub := NewHub(log)

	conns := []*fakeConn{{}, {}}
	for _, conn := range conns {
		hub.Admit(NewClient(uuid.New(), conn, log))
	}

	hub.CloseAll()

	if hub.Count() != 0 {
		t.Errorf("Count after CloseAll = %d, want 0", hub.Count())
	}
	deadline := time.Now().Add(2 * time.Second)
	for _, conn := range conns {
		for !conn.isClosed() && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if !conn.isClosed() {
			t.Error("connection not closed by CloseAll")
		}
	}
}
