package ws

import (
	"github.com/google/uuid"

	"direct_messenger/internal/domain"
)

// Client event kinds received on an admitted channel.
const (
	ClientEventMessage = "message"
	ClientEventTyping  = "typing"
	ClientEventRead    = "read"
)

// Server event kinds pushed to admitted channels.
const (
	ServerEventNewMessage   = "new_message"
	ServerEventTyping       = "typing"
	ServerEventMessagesRead = "messages_read"
)

// ClientEvent is a structured event received from a connected client. All
// fields except Type are optional at the wire level; each handler checks
// the fields it needs and skips the event when they are missing.
type ClientEvent struct {
	Type           string  `json:"type"`
	ConversationID string  `json:"conversation_id,omitempty"`
	Content        *string `json:"content,omitempty"`
	MsgType        string  `json:"msg_type,omitempty"`
	ReplyTo        string  `json:"reply_to,omitempty"`
	FileURL        *string `json:"file_url,omitempty"`
}

// ServerEvent is an event pushed to a client channel.
type ServerEvent struct {
	Type           string          `json:"type"`
	Message        *domain.Message `json:"message,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	ConversationID string          `json:"conversation_id,omitempty"`
}

func NewMessageEvent(msg *domain.Message) ServerEvent {
	return ServerEvent{Type: ServerEventNewMessage, Message: msg}
}

func TypingEvent(userID, conversationID uuid.UUID) ServerEvent {
	return ServerEvent{
		Type:           ServerEventTyping,
		UserID:         userID.String(),
		ConversationID: conversationID.String(),
	}
}

func MessagesReadEvent(conversationID uuid.UUID) ServerEvent {
	return ServerEvent{
		Type:           ServerEventMessagesRead,
		ConversationID: conversationID.String(),
	}
}
