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

type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	GetByPair(ctx context.Context, a, b uuid.UUID) (*domain.Conversation, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)
	SetLastMessage(ctx context.Context, convID, messageID uuid.UUID) error
	IncrementUnread(ctx context.Context, convID, userID uuid.UUID, delta int) error
	ResetUnread(ctx context.Context, convID, userID uuid.UUID) error
}

type conversationRepository struct {
	store store.Store
	log   logger.Logger
}

func NewConversationRepository(s store.Store, log logger.Logger) ConversationRepository {
	return &conversationRepository{store: s, log: log}
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	unread := make(map[string]any, 2)
	for userID, count := range conv.UnreadCount {
		unread[userID] = count
	}

	doc := store.Doc{
		"id":              conv.ID.String(),
		"participants":    []string{conv.Participants[0].String(), conv.Participants[1].String()},
		"last_message_id": nil,
		"unread_count":    unread,
		"created_at":      encodeTime(conv.CreatedAt),
	}

	if err := r.store.Insert(ctx, store.CollectionConversations, doc); err != nil {
		r.log.Error("Failed to insert conversation", "error", err, "conversation_id", conv.ID)
		return err
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	doc, err := r.store.Get(ctx, store.CollectionConversations, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to get conversation", "error", err, "conversation_id", id)
		return nil, err
	}
	return docToConversation(doc), nil
}

// GetByPair matches the unordered participant pair via an array
// contains-all filter, so GetByPair(a, b) and GetByPair(b, a) resolve to the
// same conversation.
func (r *conversationRepository) GetByPair(ctx context.Context, a, b uuid.UUID) (*domain.Conversation, error) {
	doc, err := r.store.FindOne(ctx, store.CollectionConversations, store.Filter{
		"participants": store.All(a.String(), b.String()),
	})
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to find conversation by pair", "error", err)
		return nil, err
	}
	return docToConversation(doc), nil
}

func (r *conversationRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	docs, err := r.store.Find(ctx, store.CollectionConversations,
		store.Filter{"participants": store.All(userID.String())},
		&store.FindOptions{SortField: "created_at", SortAsc: true, Limit: 100},
	)
	if err != nil {
		r.log.Error("Failed to list conversations", "error", err, "user_id", userID)
		return nil, err
	}

	conversations := make([]*domain.Conversation, 0, len(docs))
	for _, doc := range docs {
		conversations = append(conversations, docToConversation(doc))
	}
	return conversations, nil
}

func (r *conversationRepository) SetLastMessage(ctx context.Context, convID, messageID uuid.UUID) error {
	err := r.store.Update(ctx, store.CollectionConversations, convID.String(), store.Doc{
		"last_message_id": messageID.String(),
	})
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to set last message", "error", err, "conversation_id", convID)
		return err
	}
	return nil
}

func (r *conversationRepository) IncrementUnread(ctx context.Context, convID, userID uuid.UUID, delta int) error {
	err := r.store.Increment(ctx, store.CollectionConversations, convID.String(),
		"unread_count."+userID.String(), delta)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to increment unread counter", "error", err, "conversation_id", convID, "user_id", userID)
		return err
	}
	return nil
}

func (r *conversationRepository) ResetUnread(ctx context.Context, convID, userID uuid.UUID) error {
	err := r.store.Update(ctx, store.CollectionConversations, convID.String(), store.Doc{
		"unread_count." + userID.String(): 0,
	})
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to reset unread counter", "error", err, "conversation_id", convID, "user_id", userID)
		return err
	}
	return nil
}

func docToConversation(doc store.Doc) *domain.Conversation {
	conv := &domain.Conversation{
		ID:            decodeUUID(doc["id"]),
		LastMessageID: decodeUUIDPtr(doc["last_message_id"]),
		UnreadCount:   decodeIntMap(doc["unread_count"]),
		CreatedAt:     decodeTime(doc["created_at"]),
	}

	participants := decodeStringSlice(doc["participants"])
	for i, p := range participants {
		if i > 1 {
			break
		}
		if id, err := uuid.Parse(p); err == nil {
			conv.Participants[i] = id
		}
	}
	return conv
}
