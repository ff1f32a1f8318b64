package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"direct_messenger/internal/domain"
	"direct_messenger/internal/repository"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"
)

type ChatService interface {
	GetOrCreateConversation(ctx context.Context, userID, otherUserID uuid.UUID) (*ConversationView, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]*ConversationView, error)
	ListMessages(ctx context.Context, convID, requesterID uuid.UUID) ([]*domain.Message, error)
	SendMessage(ctx context.Context, convID, senderID uuid.UUID, input SendMessageInput) (*domain.Message, error)
	MarkRead(ctx context.Context, convID, userID uuid.UUID) error
	Peer(ctx context.Context, convID, userID uuid.UUID) (uuid.UUID, error)
}

// ConversationView is a conversation joined with resolved participant
// profiles and the last-message snapshot, from one participant's viewpoint.
type ConversationView struct {
	ID           uuid.UUID       `json:"id"`
	Participants []*domain.User  `json:"participants"`
	LastMessage  *domain.Message `json:"last_message,omitempty"`
	UnreadCount  int             `json:"unread_count"`
}

type SendMessageInput struct {
	Content *string
	Type    string
	ReplyTo *uuid.UUID
	FileURL *string
}

type chatService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	log      logger.Logger
}

func NewChatService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	log logger.Logger,
) ChatService {
	return &chatService{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		userRepo: userRepo,
		log:      log,
	}
}

// GetOrCreateConversation resolves the conversation for the unordered pair,
// creating it with zeroed counters on first contact. Symmetric in argument
// order. Concurrent first contacts can race into duplicates because the
// store has no atomic insert-if-absent; the lookup always picks one winner
// afterwards.
func (s *chatService) GetOrCreateConversation(ctx context.Context, userID, otherUserID uuid.UUID) (*ConversationView, error) {
	if userID == otherUserID {
		return nil, fmt.Errorf("%w: cannot start a conversation with yourself", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, err
	}

	conv, err := s.convRepo.GetByPair(ctx, userID, otherUserID)
	if err == nil {
		return s.buildView(ctx, conv, userID), nil
	}
	if err != apperrors.ErrConversationNotFound {
		return nil, err
	}

	conv = &domain.Conversation{
		ID:           uuid.New(),
		Participants: [2]uuid.UUID{userID, otherUserID},
		UnreadCount: map[string]int{
			userID.String():      0,
			otherUserID.String(): 0,
		},
		CreatedAt: time.Now(),
	}

	if err := s.convRepo.Create(ctx, conv); err != nil {
		s.log.Error("Failed to create conversation", "error", err)
		return nil, err
	}

	s.log.Info("Conversation created", "conversation_id", conv.ID)
	return s.buildView(ctx, conv, userID), nil
}

func (s *chatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]*ConversationView, error) {
	conversations, err := s.convRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*ConversationView, 0, len(conversations))
	for _, conv := range conversations {
		views = append(views, s.buildView(ctx, conv, userID))
	}
	return views, nil
}

// ListMessages returns the conversation history for a participant. As a
// side effect it marks all peer messages as read and resets the requester's
// unread counter, so it is not safe to call speculatively.
func (s *chatService) ListMessages(ctx context.Context, convID, requesterID uuid.UUID) ([]*domain.Message, error) {
	if err := s.MarkRead(ctx, convID, requesterID); err != nil {
		return nil, err
	}
	return s.msgRepo.ListByConversation(ctx, convID)
}

func (s *chatService) SendMessage(ctx context.Context, convID, senderID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	msgType := input.Type
	if msgType == "" {
		msgType = domain.MessageTypeText
	}
	if !domain.ValidMessageType(msgType) {
		return nil, fmt.Errorf("%w: unknown message type %q", apperrors.ErrValidation, msgType)
	}

	conv, err := s.convRepo.GetByID(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, apperrors.ErrNotParticipant
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		SenderID:       senderID,
		SenderName:     sender.DisplayName,
		Content:        input.Content,
		Type:           msgType,
		FileURL:        input.FileURL,
		ReplyTo:        s.resolveReply(ctx, input.ReplyTo),
		Timestamp:      time.Now(),
		Status:         domain.MessageStatusSent,
	}

	if err := s.msgRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	// The insert above and the two conversation updates below are separate
	// store operations; a crash in between leaves the counter understated.
	if err := s.convRepo.SetLastMessage(ctx, convID, message.ID); err != nil {
		return nil, err
	}
	if err := s.convRepo.IncrementUnread(ctx, convID, conv.Peer(senderID), 1); err != nil {
		return nil, err
	}

	return message, nil
}

// MarkRead flips every peer message in the conversation to read and resets
// the caller's unread counter. Membership is verified on this path too.
func (s *chatService) MarkRead(ctx context.Context, convID, userID uuid.UUID) error {
	conv, err := s.convRepo.GetByID(ctx, convID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return apperrors.ErrNotParticipant
	}

	if _, err := s.msgRepo.MarkReadExceptSender(ctx, convID, userID); err != nil {
		return err
	}
	return s.convRepo.ResetUnread(ctx, convID, userID)
}

// Peer verifies membership and returns the other participant of the
// conversation.
func (s *chatService) Peer(ctx context.Context, convID, userID uuid.UUID) (uuid.UUID, error) {
	conv, err := s.convRepo.GetByID(ctx, convID)
	if err != nil {
		return uuid.Nil, err
	}
	if !conv.HasParticipant(userID) {
		return uuid.Nil, apperrors.ErrNotParticipant
	}
	return conv.Peer(userID), nil
}

// resolveReply captures an immutable snapshot of the referenced message. A
// reference that no longer resolves is silently omitted, not an error.
func (s *chatService) resolveReply(ctx context.Context, replyTo *uuid.UUID) *domain.ReplySnapshot {
	if replyTo == nil {
		return nil
	}

	original, err := s.msgRepo.GetByID(ctx, *replyTo)
	if err != nil {
		s.log.Debug("Reply reference did not resolve", "message_id", *replyTo)
		return nil
	}

	return &domain.ReplySnapshot{
		ID:         original.ID,
		Content:    original.Content,
		SenderName: original.SenderName,
		Type:       original.Type,
	}
}

func (s *chatService) buildView(ctx context.Context, conv *domain.Conversation, viewerID uuid.UUID) *ConversationView {
	view := &ConversationView{
		ID:           conv.ID,
		Participants: make([]*domain.User, 0, 2),
		UnreadCount:  conv.UnreadFor(viewerID),
	}

	for _, participantID := range conv.Participants {
		user, err := s.userRepo.GetByID(ctx, participantID)
		if err != nil {
			s.log.Warn("Participant profile did not resolve", "user_id", participantID, "conversation_id", conv.ID)
			continue
		}
		user.PasswordHash = ""
		view.Participants = append(view.Participants, user)
	}

	if conv.LastMessageID != nil {
		if msg, err := s.msgRepo.GetByID(ctx, *conv.LastMessageID); err == nil {
			view.LastMessage = msg
		}
	}

	return view
}

// ClassifyUpload maps a declared content type to a message type tag. It
// trusts the declared type and never inspects file bytes; unknown types
// degrade to the generic file tag.
func ClassifyUpload(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return domain.MessageTypeImage
	case strings.HasPrefix(contentType, "video/"):
		return domain.MessageTypeVideo
	case strings.HasPrefix(contentType, "audio/"):
		return domain.MessageTypeVoice
	default:
		return domain.MessageTypeFile
	}
}
