package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"smartthingies/internal/domain"
)

type Credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
	Remember bool
}

type Registration struct {
	FullName string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// SessionScreen backs the login, register and logout actions.
type SessionScreen struct {
	auth     *AuthStore
	api      AuthService
	kv       KeyValueStore
	notifier Notifier
	logger   *slog.Logger
	validate *validator.Validate
}

func NewSessionScreen(auth *AuthStore, api AuthService, kv KeyValueStore, notifier Notifier, logger *slog.Logger) *SessionScreen {
	return &SessionScreen{
		auth:     auth,
		api:      api,
		kv:       kv,
		notifier: notifier,
		logger:   logger.With("screen", "session"),
		validate: validator.New(),
	}
}

func (s *SessionScreen) Login(ctx context.Context, c Credentials) (domain.User, error) {
	c.Email = strings.TrimSpace(c.Email)
	if err := s.validate.Struct(c); err != nil || strings.TrimSpace(c.Password) == "" {
		verr := &domain.ValidationError{Field: "credentials", Reason: "Please enter your email and password."}
		notify(ctx, s.notifier, s.logger, verr.Reason)
		return domain.User{}, verr
	}

	user, err := s.api.Login(ctx, c.Email, c.Password)
	if err != nil {
		s.logger.Error("login failed", "error", err)
		notify(ctx, s.notifier, s.logger, "Login failed: "+userMessage(err))
		return domain.User{}, err
	}

	s.auth.SetUser(*user)

	if c.Remember {
		s.persist(ctx, KeyUserEmail, c.Email)
	}
	s.persist(ctx, KeyIsLoggedIn, "true")

	s.logger.Info("signed in")
	return *user, nil
}

func (s *SessionScreen) Register(ctx context.Context, r Registration) (domain.User, error) {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	if err := s.validate.Struct(r); err != nil {
		verr := &domain.ValidationError{Field: "registration", Reason: "Please fill out all fields."}
		notify(ctx, s.notifier, s.logger, verr.Reason)
		return domain.User{}, verr
	}

	user, err := s.api.Register(ctx, r.FullName, r.Email, r.Password)
	if err != nil {
		s.logger.Error("registration failed", "error", err)
		notify(ctx, s.notifier, s.logger, "Registration error: "+userMessage(err))
		return domain.User{}, err
	}

	s.auth.SetUser(*user)
	s.persist(ctx, KeyIsLoggedIn, "true")

	s.logger.Info("registered")
	return *user, nil
}

// Logout removes the persisted login flag and clears the signed-in user together.
// If the flag cannot be removed nothing is cleared, so memory and storage never
// disagree. A remembered email is kept for the next login.
func (s *SessionScreen) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyIsLoggedIn); err != nil {
		s.logger.Error("clearing login flag", "error", err)
		notify(ctx, s.notifier, s.logger, "Could not log out. Please try again.")
		return fmt.Errorf("logging out: %w", err)
	}

	s.auth.Clear()
	s.logger.Info("signed out")
	return nil
}

// RememberedEmail returns the email saved by a "remember me" login, if any.
func (s *SessionScreen) RememberedEmail(ctx context.Context) string {
	v, _, err := s.kv.Get(ctx, KeyUserEmail)
	if err != nil {
		s.logger.Warn("reading remembered email", "error", err)
		return ""
	}
	return v
}

// WasLoggedIn reports the persisted login flag. The user record itself is not
// persisted, so a restarted client still has to log in again.
func (s *SessionScreen) WasLoggedIn(ctx context.Context) bool {
	v, _, err := s.kv.Get(ctx, KeyIsLoggedIn)
	if err != nil {
		s.logger.Warn("reading login flag", "error", err)
		return false
	}
	return v == "true"
}

func (s *SessionScreen) persist(ctx context.Context, key, value string) {
	if err := s.kv.Set(ctx, key, value); err != nil {
		s.logger.Warn("persisting session flag", "key", key, "error", err)
	}
}
