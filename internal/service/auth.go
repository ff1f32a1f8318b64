package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"direct_messenger/internal/config"
	"direct_messenger/internal/domain"
	"direct_messenger/internal/repository"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/jwt"
	"direct_messenger/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, username, password, displayName string) (*TokenResponse, error)
	Login(ctx context.Context, username, password string) (*TokenResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*domain.User, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWTConfig
	log      logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg config.JWTConfig, log logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
		log:      log,
	}
}

func (s *authService) Register(ctx context.Context, username, password, displayName string) (*TokenResponse, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)

	if username == "" {
		return nil, fmt.Errorf("%w: username is required", apperrors.ErrValidation)
	}
	if len(username) > 50 {
		return nil, fmt.Errorf("%w: username is too long (max 50 characters)", apperrors.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", apperrors.ErrValidation)
	}
	if len(password) < 4 {
		return nil, fmt.Errorf("%w: password must be at least 4 characters", apperrors.ErrValidation)
	}
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", apperrors.ErrValidation)
	}
	if len(displayName) > 100 {
		return nil, fmt.Errorf("%w: display name is too long (max 100 characters)", apperrors.ErrValidation)
	}

	// The store also has a uniqueness index on username; this check turns
	// the common case into a clean Conflict.
	if existing, _ := s.userRepo.GetByUsername(ctx, username); existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("Failed to hash password", "error", err)
		return nil, errors.New("failed to hash password")
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(passwordHash),
		DisplayName:  displayName,
		IsOnline:     false,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if strings.Contains(err.Error(), "duplicate") {
			return nil, apperrors.ErrUserAlreadyExists
		}
		s.log.Error("Failed to create user", "error", err, "username", username)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := jwt.GenerateAccessToken(user.ID, user.Username, s.jwtCfg.Secret, s.jwtCfg.TTL, s.jwtCfg.Issuer)
	if err != nil {
		s.log.Error("Failed to generate access token", "error", err)
		return nil, errors.New("failed to generate access token")
	}

	user.PasswordHash = ""
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	username = strings.TrimSpace(username)

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		// Same error for unknown user and wrong password.
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := jwt.GenerateAccessToken(user.ID, user.Username, s.jwtCfg.Secret, s.jwtCfg.TTL, s.jwtCfg.Issuer)
	if err != nil {
		s.log.Error("Failed to generate access token", "error", err)
		return nil, errors.New("failed to generate access token")
	}

	now := time.Now()
	if err := s.userRepo.SetOnline(ctx, user.ID, true, now); err != nil {
		s.log.Warn("Failed to mark user online", "error", err, "user_id", user.ID)
	}
	user.IsOnline = true
	user.LastSeen = &now

	user.PasswordHash = ""
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := jwt.ValidateToken(tokenString, s.jwtCfg.Secret)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	return user, nil
}

// Logout marks the user offline. The token itself stays valid until its
// expiry; invalidation is client-side only.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.SetOnline(ctx, userID, false, time.Now())
}
