package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"direct_messenger/internal/domain"
	"direct_messenger/internal/store"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListOthers(ctx context.Context, selfID uuid.UUID) ([]*domain.User, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error
	SetOnline(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error
}

type userRepository struct {
	store store.Store
	log   logger.Logger
}

func NewUserRepository(s store.Store, log logger.Logger) UserRepository {
	return &userRepository{store: s, log: log}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	doc := store.Doc{
		"id":           user.ID.String(),
		"username":     user.Username,
		"password":     user.PasswordHash,
		"display_name": user.DisplayName,
		"avatar":       encodeStringPtr(user.Avatar),
		"is_online":    user.IsOnline,
		"last_seen":    encodeTimePtr(user.LastSeen),
		"created_at":   encodeTime(user.CreatedAt),
	}

	if err := r.store.Insert(ctx, store.CollectionUsers, doc); err != nil {
		r.log.Error("Failed to insert user", "error", err, "username", user.Username)
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	doc, err := r.store.Get(ctx, store.CollectionUsers, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get user by id", "error", err, "user_id", id)
		return nil, err
	}
	return docToUser(doc), nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	doc, err := r.store.FindOne(ctx, store.CollectionUsers, store.Filter{"username": username})
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get user by username", "error", err, "username", username)
		return nil, err
	}
	return docToUser(doc), nil
}

func (r *userRepository) ListOthers(ctx context.Context, selfID uuid.UUID) ([]*domain.User, error) {
	docs, err := r.store.Find(ctx, store.CollectionUsers,
		store.Filter{"id": store.Ne(selfID.String())},
		&store.FindOptions{SortField: "created_at", SortAsc: true, Limit: 100},
	)
	if err != nil {
		r.log.Error("Failed to list users", "error", err)
		return nil, err
	}

	users := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, docToUser(doc))
	}
	return users, nil
}

func (r *userRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error {
	err := r.store.Update(ctx, store.CollectionUsers, id.String(), store.Doc{
		"display_name": displayName,
	})
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to update display name", "error", err, "user_id", id)
		return err
	}
	return nil
}

func (r *userRepository) SetOnline(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error {
	err := r.store.Update(ctx, store.CollectionUsers, id.String(), store.Doc{
		"is_online": online,
		"last_seen": encodeTime(lastSeen),
	})
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to update online status", "error", err, "user_id", id)
		return err
	}
	return nil
}

func docToUser(doc store.Doc) *domain.User {
	return &domain.User{
		ID:           decodeUUID(doc["id"]),
		Username:     decodeString(doc["username"]),
		PasswordHash: decodeString(doc["password"]),
		DisplayName:  decodeString(doc["display_name"]),
		Avatar:       decodeStringPtr(doc["avatar"]),
		IsOnline:     decodeBool(doc["is_online"]),
		LastSeen:     decodeTimePtr(doc["last_seen"]),
		CreatedAt:    decodeTime(doc["created_at"]),
	}
}
