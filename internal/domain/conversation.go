package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation holds exactly two participants. The pair is immutable after
// creation and at most one conversation exists per unordered pair.
type Conversation struct {
	ID            uuid.UUID      `json:"id"`
	Participants  [2]uuid.UUID   `json:"participants"`
	LastMessageID *uuid.UUID     `json:"last_message_id,omitempty"`
	UnreadCount   map[string]int `json:"unread_count"`
	CreatedAt     time.Time      `json:"created_at"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}

// Peer returns the other participant. The caller must have verified
// membership first.
func (c *Conversation) Peer(userID uuid.UUID) uuid.UUID {
	if c.Participants[0] == userID {
		return c.Participants[1]
	}
	return c.Participants[0]
}

// UnreadFor returns the unread counter for the given participant.
func (c *Conversation) UnreadFor(userID uuid.UUID) int {
	if c.UnreadCount == nil {
		return 0
	}
	return c.UnreadCount[userID.String()]
}
