package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tournament-draws/utils"
	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleOrganizer = "organizer"

	tokenTTL = 24 * time.Hour
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (string, error)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthConfig struct {
	OrganizerEmail        string
	OrganizerPasswordHash string
	JWTSecret             string
}

type authService struct {
	cfg AuthConfig
	now func() time.Time
}

func NewAuthService(cfg AuthConfig) AuthService {
	return &authService{cfg: cfg, now: time.Now}
}

// Login checks the organizer credentials and issues a signed HS256 token.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, error) {
	if s.cfg.OrganizerEmail == "" || s.cfg.OrganizerPasswordHash == "" {
		return "", ErrAuthNotConfigured
	}
	if !strings.EqualFold(strings.TrimSpace(input.Email), s.cfg.OrganizerEmail) {
		return "", ErrAuthInvalidCredentials
	}

	ok, err := utils.CheckPasswordHash(input.Password, s.cfg.OrganizerPasswordHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrAuthInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":  s.cfg.OrganizerEmail,
		"role": RoleOrganizer,
		"exp":  now.Add(tokenTTL).Unix(),
		"iat":  now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
