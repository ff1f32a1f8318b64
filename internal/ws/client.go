package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"direct_messenger/pkg/logger"
)

const (
	sendBufferSize = 64
	writeTimeout   = 10 * time.Second
	pingInterval   = 25 * time.Second
)

// Conn is the subset of *websocket.Conn the client needs; tests substitute
// a fake.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Client owns the write side of one live channel. All writes go through the
// buffered send channel and a single write pump goroutine, so routing never
// blocks on a peer's I/O.
type Client struct {
	UserID uuid.UUID

	conn Conn
	send chan ServerEvent
	done chan struct{}
	once sync.Once
	log  logger.Logger
}

func NewClient(userID uuid.UUID, conn Conn, log logger.Logger) *Client {
	c := &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan ServerEvent, sendBufferSize),
		done:   make(chan struct{}),
		log:    log,
	}

	go c.writePump()
	return c
}

// Push queues an event for delivery. It never blocks: a full buffer or a
// closed client drops the event, which the delivery contract treats as
// "offline".
func (c *Client) Push(event ServerEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- event:
		return true
	default:
		c.log.Warn("Dropping event for slow client", "user_id", c.UserID, "event", event.Type)
		return false
	}
}

// Close stops the write pump and closes the underlying connection. Safe to
// call multiple times.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case event := <-c.send:
			if err := c.conn.WriteJSON(event); err != nil {
				c.log.Debug("Write to client failed", "user_id", c.UserID, "error", err)
				c.Close()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.log.Debug("Ping to client failed", "user_id", c.UserID, "error", err)
				c.Close()
				return
			}
		}
	}
}
