// Package profile manages the active user: login, logout, registration and
// profile edits.
package profile

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domain "github.com/lunaredge/storefront/internal/app/domain/profile"
	"github.com/lunaredge/storefront/internal/app/services/auth"
	"github.com/lunaredge/storefront/internal/app/state"
	"github.com/lunaredge/storefront/pkg/logger"
)

// Service orchestrates the auth client and the session profile state.
type Service struct {
	state state.ProfileState
	auth  *auth.Client
	log   *logger.Logger
}

// New constructs a profile service.
func New(st state.ProfileState, authClient *auth.Client, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("profile")
	}
	return &Service{state: st, auth: authClient, log: log}
}

// Current returns the active user, if any.
func (s *Service) Current() (domain.User, bool) {
	return s.state.User()
}

// Login authenticates remotely and activates the returned user for the
// session. A previously persisted address book is kept when the remote
// profile carries none and the local one belongs to the same email or to
// an anonymous pre-login profile.
func (s *Service) Login(ctx context.Context, email, password string) auth.Result {
	if s.auth == nil {
		return auth.Result{Message: "authentication service is not configured"}
	}
	result := s.auth.Login(ctx, email, password)
	if !result.Success || result.User == nil {
		return result
	}

	user := result.User.Clone()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if len(user.Addresses) == 0 {
		if existing, ok := s.state.User(); ok && (existing.Email == "" || existing.Email == user.Email) {
			user.Addresses = existing.Addresses
		}
	}
	s.state.SetUser(user)
	s.log.WithField("email", user.Email).Info("user logged in")
	return result
}

// Register creates a remote account and activates it locally on success.
func (s *Service) Register(ctx context.Context, username, email, password string) auth.Result {
	if s.auth == nil {
		return auth.Result{Message: "authentication service is not configured"}
	}
	result := s.auth.Register(ctx, username, email, password)
	if !result.Success || result.User == nil {
		return result
	}

	user := result.User.Clone()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.state.SetUser(user)
	s.log.WithField("email", user.Email).Info("user registered")
	return result
}

// Logout clears the active user and its persisted entry.
func (s *Service) Logout() {
	s.state.ClearUser()
	s.log.Info("user logged out")
}

// Update edits the profile's display fields. Name and email are required;
// the address book is untouched.
func (s *Service) Update(name, email, avatarURI string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	var fields []string
	if name == "" {
		fields = append(fields, "name")
	}
	if email == "" {
		fields = append(fields, "email")
	}
	if len(fields) > 0 {
		return domain.User{}, &domain.ValidationError{Fields: fields}
	}

	user, ok := s.state.User()
	if !ok {
		user = domain.User{ID: uuid.NewString()}
	}
	user.Name = name
	user.Email = email
	user.AvatarURI = strings.TrimSpace(avatarURI)
	s.state.SetUser(user)

	s.log.WithField("email", email).Info("profile updated")
	return user, nil
}
