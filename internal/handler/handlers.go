package handler

import (
	"github.com/gin-gonic/gin"

	"direct_messenger/internal/config"
	"direct_messenger/internal/service"
	"direct_messenger/internal/ws"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	User      *UserHandler
	Chat      *ChatHandler
	Upload    *UploadHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, hub *ws.Hub, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(cfg),
		Auth:      NewAuthHandler(services.Auth, log),
		User:      NewUserHandler(services.User, log),
		Chat:      NewChatHandler(services.Chat, log),
		Upload:    NewUploadHandler(services.Chat, cfg.Upload, log),
		WebSocket: NewWebSocketHandler(services.Auth, services.User, services.Chat, hub, log),
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
}
