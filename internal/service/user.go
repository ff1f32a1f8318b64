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

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListOthers(ctx context.Context, selfID uuid.UUID) ([]*domain.User, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error
	SetOnline(ctx context.Context, id uuid.UUID, online bool) error
}

type userService struct {
	userRepo repository.UserRepository
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, log logger.Logger) UserService {
	return &userService{userRepo: userRepo, log: log}
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ListOthers(ctx context.Context, selfID uuid.UUID) ([]*domain.User, error) {
	users, err := s.userRepo.ListOthers(ctx, selfID)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		user.PasswordHash = ""
	}
	return users, nil
}

func (s *userService) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return fmt.Errorf("%w: display name is required", apperrors.ErrValidation)
	}
	if len(displayName) > 100 {
		return fmt.Errorf("%w: display name is too long (max 100 characters)", apperrors.ErrValidation)
	}
	return s.userRepo.UpdateDisplayName(ctx, id, displayName)
}

// SetOnline records connection-lifecycle presence changes along with the
// last-seen timestamp.
func (s *userService) SetOnline(ctx context.Context, id uuid.UUID, online bool) error {
	return s.userRepo.SetOnline(ctx, id, online, time.Now())
}
