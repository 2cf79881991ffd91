package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	maxEmail       = 255
	minPassword    = 6
	maxDisplayName = 100
)

// SignUpInput is a new account request
type SignUpInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// AuthResult is a signed-in user with its session token
type AuthResult struct {
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
	Session auth.Session `json:"session"`
}

// SignUp creates an email/password account with its profile and returns a
// session for it.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.DisplayName)

	v := &validator{}
	v.check(email != "", "email is required")
	v.check(utf8.RuneCountInString(email) <= maxEmail, "email must be at most %d characters", maxEmail)
	if email != "" {
		_, err := mail.ParseAddress(email)
		v.check(err == nil, "email is not a valid address")
	}
	v.check(len(in.Password) >= minPassword, "password must be at least %d characters", minPassword)
	v.check(name != "", "display name is required")
	v.check(utf8.RuneCountInString(name) <= maxDisplayName, "display name must be at most %d characters", maxDisplayName)
	if err := v.err(); err != nil {
		return nil, err
	}

	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.initUser(ctx, user, name); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID}).Info("User signed up")
	return s.session(user)
}

// SignIn checks email and password and returns a new session
func (s *Service) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup email: %w", err)
	}
	if user == nil || user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

// Authenticate verifies a bearer token
func (s *Service) Authenticate(token string) (auth.Session, error) {
	return s.issuer.Verify(token)
}

// CurrentUser returns the user behind a session
func (s *Service) CurrentUser(ctx context.Context, session auth.Session) (*models.User, error) {
	user, err := s.Users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) session(user *models.User) (*AuthResult, error) {
	token, session, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, Session: session}, nil
}
