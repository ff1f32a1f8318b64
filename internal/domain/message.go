package domain

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID             uuid.UUID      `json:"id"`
	ConversationID uuid.UUID      `json:"conversation_id"`
	SenderID       uuid.UUID      `json:"sender_id"`
	SenderName     string         `json:"sender_name"`
	Content        *string        `json:"content,omitempty"`
	Type           string         `json:"type"`
	FileURL        *string        `json:"file_url,omitempty"`
	ReplyTo        *ReplySnapshot `json:"reply_to,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	Status         string         `json:"status"`
}

// ReplySnapshot is captured from the referenced message at send time and is
// never re-derived, even if the original message or its sender changes later.
type ReplySnapshot struct {
	ID         uuid.UUID `json:"id"`
	Content    *string   `json:"content,omitempty"`
	SenderName string    `json:"sender_name"`
	Type       string    `json:"type"`
}

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
	MessageTypeVoice = "voice"
	MessageTypeFile  = "file"
)

const (
	MessageStatusSent = "sent"
	MessageStatusRead = "read"
)

// ValidMessageType reports whether t is one of the known message type tags.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeVoice, MessageTypeFile:
		return true
	}
	return false
}
