package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := AuthConfig{
		OrganizerEmail:        "organizer@example.com",
		OrganizerPasswordHash: string(hash),
		JWTSecret:             "test-secret",
	}

	t.Run("issues an organizer token", func(t *testing.T) {
		svc := NewAuthService(cfg).(*authService)
		issued := time.Now().Truncate(time.Second)
		svc.now = func() time.Time { return issued }

		tokenString, err := svc.Login(ctx, LoginInput{Email: "Organizer@Example.com", Password: "s3cret"})
		require.NoError(t, err)

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)
		assert.Equal(t, jwt.SigningMethodHS256.Alg(), token.Method.Alg())
		assert.Equal(t, RoleOrganizer, claims["role"])
		assert.Equal(t, cfg.OrganizerEmail, claims["sub"])
		assert.Equal(t, float64(issued.Add(24*time.Hour).Unix()), claims["exp"])
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := NewAuthService(cfg).Login(ctx, LoginInput{Email: cfg.OrganizerEmail, Password: "guess"})
		require.ErrorIs(t, err, ErrAuthInvalidCredentials)
	})

	t.Run("wrong email", func(t *testing.T) {
		_, err := NewAuthService(cfg).Login(ctx, LoginInput{Email: "someone@example.com", Password: "s3cret"})
		require.ErrorIs(t, err, ErrAuthInvalidCredentials)
	})

	t.Run("no organizer configured", func(t *testing.T) {
		_, err := NewAuthService(AuthConfig{JWTSecret: "x"}).Login(ctx, LoginInput{Email: "a", Password: "b"})
		require.ErrorIs(t, err, ErrAuthNotConfigured)
	})
}
