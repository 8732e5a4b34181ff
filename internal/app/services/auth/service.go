// Package auth implements registration, login, and session token handling.
package auth

import (
	"context"
	stderrors "errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/itemvault/itemvault/internal/app/domain/user"
	"github.com/itemvault/itemvault/internal/app/storage"
	"github.com/itemvault/itemvault/internal/errors"
	"github.com/itemvault/itemvault/pkg/logger"
)

const minPasswordLength = 6

// Login failures share one message so responses cannot be used to enumerate
// registered emails.
const invalidCredentials = "Invalid email or password"

// Session is the payload returned by Register and Login.
type Session struct {
	Token string      `json:"token"`
	User  user.Public `json:"user"`
}

// Service validates credentials and issues session tokens.
type Service struct {
	users  storage.UserStore
	tokens *TokenManager
	log    *logger.Logger
}

// New constructs an auth service.
func New(users storage.UserStore, tokens *TokenManager, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Service{users: users, tokens: tokens, log: log}
}

// Register creates a user after validating input and uniqueness, then issues
// a session token. The returned payload never contains the password hash.
func (s *Service) Register(ctx context.Context, username, email, password, confirmPassword string) (Session, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" || confirmPassword == "" {
		return Session{}, errors.Validation("All fields are required")
	}
	if password != confirmPassword {
		return Session{}, errors.Validation("Passwords do not match")
	}
	if len(password) < minPasswordLength {
		return Session{}, errors.Validation("Password must be at least 6 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, errors.Validation("Invalid email address")
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return Session{}, errors.Conflict("Username already taken")
	} else if !stderrors.Is(err, storage.ErrNotFound) {
		return Session{}, errors.Internal("user lookup failed", err)
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return Session{}, errors.Conflict("Email already registered")
	} else if !stderrors.Is(err, storage.ErrNotFound) {
		return Session{}, errors.Internal("user lookup failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, errors.Internal("hash password", err)
	}

	created, err := s.users.CreateUser(ctx, user.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return Session{}, errors.Internal("create user", err)
	}

	token, err := s.tokens.IssueToken(created.ID)
	if err != nil {
		return Session{}, errors.Internal("issue token", err)
	}

	s.log.WithField("user_id", created.ID).WithField("username", created.Username).Info("user registered")
	return Session{Token: token, User: created.Public()}, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, errors.Unauthorized(invalidCredentials)
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return Session{}, errors.Unauthorized(invalidCredentials)
		}
		return Session{}, errors.Internal("user lookup failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, errors.Unauthorized(invalidCredentials)
	}

	token, err := s.tokens.IssueToken(u.ID)
	if err != nil {
		return Session{}, errors.Internal("issue token", err)
	}

	s.log.WithField("user_id", u.ID).Info("user logged in")
	return Session{Token: token, User: u.Public()}, nil
}

// VerifyToken exposes token verification for the HTTP middleware.
func (s *Service) VerifyToken(token string) (string, error) {
	return s.tokens.VerifyToken(token)
}
