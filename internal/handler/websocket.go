package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"direct_messenger/internal/domain"
	"direct_messenger/internal/service"
	"direct_messenger/internal/ws"
	"direct_messenger/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by the CORS layer for the REST surface
	},
}

type WebSocketHandler struct {
	authService service.AuthService
	userService service.UserService
	chatService service.ChatService
	hub         *ws.Hub
	log         logger.Logger
}

func NewWebSocketHandler(
	authService service.AuthService,
	userService service.UserService,
	chatService service.ChatService,
	hub *ws.Hub,
	log logger.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		authService: authService,
		userService: userService,
		chatService: chatService,
		hub:         hub,
		log:         log,
	}
}

// Handle upgrades the connection and runs its event loop. The browser
// WebSocket API cannot set an Authorization header, so the session token
// travels in the query string.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	user, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := ws.NewClient(user.ID, conn, h.log)
	h.hub.Admit(client)

	ctx := context.Background()
	if err := h.userService.SetOnline(ctx, user.ID, true); err != nil {
		h.log.Warn("Failed to mark user online", "error", err, "user_id", user.ID)
	}
	h.log.Info("Live channel admitted", "user_id", user.ID)

	defer func() {
		// Only the channel that actually owns the registry entry flips the
		// user offline; a replaced channel must not clobber its successor.
		if h.hub.Dismiss(client) {
			if err := h.userService.SetOnline(ctx, user.ID, false); err != nil {
				h.log.Warn("Failed to mark user offline", "error", err, "user_id", user.ID)
			}
		}
		h.log.Info("Live channel closed", "user_id", user.ID)
	}()

	// Events are read and handled one at a time, which keeps per-sender
	// message order stable through persistence and fan-out.
	for {
		var event ws.ClientEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Live channel read error", "error", err, "user_id", user.ID)
			}
			return
		}

		h.dispatch(ctx, user.ID, event)
	}
}

// dispatch handles one client event. Malformed or unauthorized events are
// skipped without closing the connection and without an error event back to
// the sender; unknown kinds are ignored.
func (h *WebSocketHandler) dispatch(ctx context.Context, userID uuid.UUID, event ws.ClientEvent) {
	convID, err := uuid.Parse(event.ConversationID)
	if err != nil {
		h.log.Debug("Event with invalid conversation id skipped", "user_id", userID, "event", event.Type)
		return
	}

	switch event.Type {
	case ws.ClientEventMessage:
		h.handleMessage(ctx, userID, convID, event)
	case ws.ClientEventTyping:
		h.handleTyping(ctx, userID, convID)
	case ws.ClientEventRead:
		h.handleRead(ctx, userID, convID)
	default:
		h.log.Debug("Unknown event kind ignored", "user_id", userID, "event", event.Type)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, userID, convID uuid.UUID, event ws.ClientEvent) {
	input := service.SendMessageInput{
		Content: event.Content,
		Type:    event.MsgType,
		FileURL: event.FileURL,
	}
	if input.Type == "" {
		input.Type = domain.MessageTypeText
	}
	if event.ReplyTo != "" {
		if replyID, err := uuid.Parse(event.ReplyTo); err == nil {
			input.ReplyTo = &replyID
		}
	}

	message, err := h.chatService.SendMessage(ctx, convID, userID, input)
	if err != nil {
		h.log.Debug("Message event discarded", "error", err, "user_id", userID, "conversation_id", convID)
		return
	}

	peerID, err := h.chatService.Peer(ctx, convID, userID)
	if err != nil {
		return
	}

	// Echo to the sender's own channel for UI confirmation, then push to
	// the peer if currently connected.
	out := ws.NewMessageEvent(message)
	h.hub.Route(userID, out)
	h.hub.Route(peerID, out)
}

func (h *WebSocketHandler) handleTyping(ctx context.Context, userID, convID uuid.UUID) {
	peerID, err := h.chatService.Peer(ctx, convID, userID)
	if err != nil {
		h.log.Debug("Typing event discarded", "error", err, "user_id", userID, "conversation_id", convID)
		return
	}

	h.hub.Route(peerID, ws.TypingEvent(userID, convID))
}

func (h *WebSocketHandler) handleRead(ctx context.Context, userID, convID uuid.UUID) {
	if err := h.chatService.MarkRead(ctx, convID, userID); err != nil {
		h.log.Debug("Read event discarded", "error", err, "user_id", userID, "conversation_id", convID)
		return
	}

	peerID, err := h.chatService.Peer(ctx, convID, userID)
	if err != nil {
		return
	}

	h.hub.Route(peerID, ws.MessagesReadEvent(convID))
}
