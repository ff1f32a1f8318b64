package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "direct_messenger/pkg/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token, err := GenerateAccessToken(userID, "alice", "secret", time.Hour, "issuer")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ValidateToken(token, "secret")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %v, want %v", claims.UserID, userID)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q, want alice", claims.Username)
	}
	if claims.Issuer != "issuer" {
		t.Errorf("issuer = %q, want issuer", claims.Issuer)
	}
}

func TestValidateTokenRejections(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	good, err := GenerateAccessToken(userID, "alice", "secret", time.Hour, "issuer")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	expired, err := GenerateAccessToken(userID, "alice", "secret", -time.Minute, "issuer")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	tests := []struct {
		name   string
		token  string
		secret string
		want   error
	}{
		{"wrong secret", good, "other", apperrors.ErrInvalidToken},
		{"garbage", "not.a.token", "secret", apperrors.ErrInvalidToken},
		{"expired", expired, "secret", apperrors.ErrTokenExpired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ValidateToken(tt.token, tt.secret)
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateToken = %v, want %v", err, tt.want)
			}
		})
	}
}
