package repository

import (
	"direct_messenger/internal/store"
	"direct_messenger/pkg/logger"
)

type Repositories struct {
	User         UserRepository
	Conversation ConversationRepository
	Message      MessageRepository
}

func NewRepositories(s store.Store, log logger.Logger) *Repositories {
	return &Repositories{
		User:         NewUserRepository(s, log),
		Conversation: NewConversationRepository(s, log),
		Message:      NewMessageRepository(s, log),
	}
}
