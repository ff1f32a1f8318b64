package service

import (
	"direct_messenger/internal/config"
	"direct_messenger/internal/repository"
	"direct_messenger/pkg/logger"
)

type Services struct {
	Auth AuthService
	User UserService
	Chat ChatService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Services {
	return &Services{
		Auth: NewAuthService(repos.User, cfg.JWT, log),
		User: NewUserService(repos.User, log),
		Chat: NewChatService(repos.Conversation, repos.Message, repos.User, log),
	}
}
