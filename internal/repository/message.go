package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"direct_messenger/internal/domain"
	"direct_messenger/internal/store"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListByConversation(ctx context.Context, convID uuid.UUID) ([]*domain.Message, error)
	MarkReadExceptSender(ctx context.Context, convID, readerID uuid.UUID) (int64, error)
}

type messageRepository struct {
	store store.Store
	log   logger.Logger
}

func NewMessageRepository(s store.Store, log logger.Logger) MessageRepository {
	return &messageRepository{store: s, log: log}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	doc := store.Doc{
		"id":              msg.ID.String(),
		"conversation_id": msg.ConversationID.String(),
		"sender_id":       msg.SenderID.String(),
		"sender_name":     msg.SenderName,
		"content":         encodeStringPtr(msg.Content),
		"type":            msg.Type,
		"file_url":        encodeStringPtr(msg.FileURL),
		"reply_to":        replyToDoc(msg.ReplyTo),
		"timestamp":       encodeTime(msg.Timestamp),
		"status":          msg.Status,
	}

	if err := r.store.Insert(ctx, store.CollectionMessages, doc); err != nil {
		r.log.Error("Failed to insert message", "error", err, "message_id", msg.ID)
		return err
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	doc, err := r.store.Get(ctx, store.CollectionMessages, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, apperrors.ErrMessageNotFound
		}
		r.log.Error("Failed to get message", "error", err, "message_id", id)
		return nil, err
	}
	return docToMessage(doc), nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, convID uuid.UUID) ([]*domain.Message, error) {
	docs, err := r.store.Find(ctx, store.CollectionMessages,
		store.Filter{"conversation_id": convID.String()},
		&store.FindOptions{SortField: "timestamp", SortAsc: true, Limit: 1000},
	)
	if err != nil {
		r.log.Error("Failed to list messages", "error", err, "conversation_id", convID)
		return nil, err
	}

	messages := make([]*domain.Message, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, docToMessage(doc))
	}
	return messages, nil
}

// MarkReadExceptSender flips every message in the conversation that was not
// sent by readerID to the read status.
func (r *messageRepository) MarkReadExceptSender(ctx context.Context, convID, readerID uuid.UUID) (int64, error) {
	updated, err := r.store.UpdateMany(ctx, store.CollectionMessages,
		store.Filter{
			"conversation_id": convID.String(),
			"sender_id":       store.Ne(readerID.String()),
		},
		store.Doc{"status": domain.MessageStatusRead},
	)
	if err != nil {
		r.log.Error("Failed to mark messages read", "error", err, "conversation_id", convID)
		return 0, err
	}
	return updated, nil
}

func replyToDoc(reply *domain.ReplySnapshot) any {
	if reply == nil {
		return nil
	}
	return map[string]any{
		"id":          reply.ID.String(),
		"content":     encodeStringPtr(reply.Content),
		"sender_name": reply.SenderName,
		"type":        reply.Type,
	}
}

func docToReply(v any) *domain.ReplySnapshot {
	var m map[string]any
	switch value := v.(type) {
	case map[string]any:
		m = value
	case store.Doc:
		m = value
	default:
		return nil
	}

	return &domain.ReplySnapshot{
		ID:         decodeUUID(m["id"]),
		Content:    decodeStringPtr(m["content"]),
		SenderName: decodeString(m["sender_name"]),
		Type:       decodeString(m["type"]),
	}
}

func docToMessage(doc store.Doc) *domain.Message {
	return &domain.Message{
		ID:             decodeUUID(doc["id"]),
		ConversationID: decodeUUID(doc["conversation_id"]),
		SenderID:       decodeUUID(doc["sender_id"]),
		SenderName:     decodeString(doc["sender_name"]),
		Content:        decodeStringPtr(doc["content"]),
		Type:           decodeString(doc["type"]),
		FileURL:        decodeStringPtr(doc["file_url"]),
		ReplyTo:        docToReply(doc["reply_to"]),
		Timestamp:      decodeTime(doc["timestamp"]),
		Status:         decodeString(doc["status"]),
	}
}
