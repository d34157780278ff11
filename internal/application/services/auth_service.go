package services

import (
	"context"
	"log"

	"github.com/ticketdesk/backend/pkg/auth"
	"github.com/ticketdesk/backend/pkg/errors"
	"github.com/ticketdesk/backend/pkg/models"
)

// UserStore is the user lookup surface for authentication
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.SystemUser, error)
	FindByID(ctx context.Context, id int64) (*models.SystemUser, error)
}

// AuthService handles login and session validation
type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Login verifies credentials and issues a JWT. Lookup misses and bad
// passwords return the same error so callers cannot probe for emails.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *auth.UserSession, error) {
	if email == "" || password == "" {
		return "", nil, errors.NewValidationError("credentials", "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.NewInternalError("failed to look up user", err)
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		log.Printf("🔒 Failed login attempt for %s", email)
		return "", nil, errors.NewUnauthorizedError("invalid email or password")
	}

	session := &auth.UserSession{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}
	token, err := auth.GenerateToken(*session)
	if err != nil {
		return "", nil, errors.NewInternalError("failed to generate token", err)
	}
	return token, session, nil
}

// ValidateSession parses and verifies a bearer token
func (s *AuthService) ValidateSession(tokenString string) (*auth.UserSession, error) {
	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		return nil, errors.NewUnauthorizedError("invalid or expired token")
	}
	return &claims.User, nil
}
