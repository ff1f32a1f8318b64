package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"direct_messenger/internal/service"
	"direct_messenger/pkg/logger"
)

type ChatHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log,
	}
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	conversations, err := h.chatService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversations)
}

func (h *ChatHandler) CreateOrGetConversation(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	otherUserID, err := uuid.Parse(c.Param("otherUserID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	conversation, err := h.chatService.GetOrCreateConversation(c.Request.Context(), userID, otherUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// ListMessages marks all peer messages as read and resets the caller's
// unread counter before returning the history.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	convID, err := uuid.Parse(c.Param("conversationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation ID"})
		return
	}

	messages, err := h.chatService.ListMessages(c.Request.Context(), convID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

type SendMessageRequest struct {
	Content *string `json:"content"`
	Type    string  `json:"type"`
	ReplyTo *string `json:"reply_to"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	convID, err := uuid.Parse(c.Param("conversationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation ID"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	input := service.SendMessageInput{
		Content: req.Content,
		Type:    req.Type,
	}
	if req.ReplyTo != nil {
		if replyID, err := uuid.Parse(*req.ReplyTo); err == nil {
			input.ReplyTo = &replyID
		}
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), convID, userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}
