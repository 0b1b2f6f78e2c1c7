// Package account wraps the authentication endpoints in the small amount
// of client-side policy the surfaces share: field validation before the
// request goes out, and the three-step password-change wizard.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"moia/internal/api"
)

// Client is the slice of the API client the account service needs.
type Client interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, info api.RegisterInfo) error
	Authenticated(ctx context.Context) bool
	CheckUser(ctx context.Context, identifier string) (string, error)
	VerifyPhrase(ctx context.Context, phrase, token string) error
	UpdatePassword(ctx context.Context, identifier, newPassword string) error
	ClearCookies() error
}

// Validation failures reported before any request is made.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

// RegisterForm carries the registration fields as entered, including the
// confirmation that never leaves the client.
type RegisterForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	SecurityPhrase  string
}

type Service struct {
	client Client
	log    zerolog.Logger
}

func NewService(client Client, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("component", "account").Logger(),
	}
}

// Login validates the credentials locally and authenticates. Backend field
// errors (wrong password, unknown user) pass through as *api.FieldError.
func (s *Service) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	if !looksLikeEmail(email) {
		return ErrInvalidEmail
	}
	if err := s.client.Login(ctx, email, password); err != nil {
		return err
	}
	s.log.Info().Str("email", email).Msg("logged in")
	return nil
}

// Register validates the form and creates the account. A successful
// registration leaves an authenticated session behind, same as login.
func (s *Service) Register(ctx context.Context, form RegisterForm) error {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	if form.Username == "" || form.Email == "" || form.Password == "" || form.SecurityPhrase == "" {
		return fmt.Errorf("all registration fields are required")
	}
	if !looksLikeEmail(form.Email) {
		return ErrInvalidEmail
	}
	if len(form.Password) < 6 {
		return ErrPasswordTooShort
	}
	if form.Password != form.ConfirmPassword {
		return ErrPasswordMismatch
	}
	err := s.client.Register(ctx, api.RegisterInfo{
		Username:       form.Username,
		Email:          form.Email,
		Password:       form.Password,
		SecurityPhrase: form.SecurityPhrase,
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("email", form.Email).Msg("account created")
	return nil
}

// Authenticated reports whether the stored session is still valid.
func (s *Service) Authenticated(ctx context.Context) bool {
	return s.client.Authenticated(ctx)
}

// Logout drops the persisted session cookies. Purely local.
func (s *Service) Logout() error {
	if err := s.client.ClearCookies(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Info().Msg("logged out")
	return nil
}

// ChangePassword runs the recovery wizard: resolve the account, prove the
// security phrase, then set the new password. The phrase token from step
// one is consumed by step two; a wrong phrase stops the wizard before any
// password change.
func (s *Service) ChangePassword(ctx context.Context, identifier, phrase, newPassword string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || phrase == "" || newPassword == "" {
		return fmt.Errorf("identifier, security phrase and new password are required")
	}
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}

	token, err := s.client.CheckUser(ctx, identifier)
	if err != nil {
		return fmt.Errorf("resolve account: %w", err)
	}
	if err := s.client.VerifyPhrase(ctx, phrase, token); err != nil {
		return fmt.Errorf("verify security phrase: %w", err)
	}
	if err := s.client.UpdatePassword(ctx, identifier, newPassword); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.log.Info().Str("account", identifier).Msg("password changed")
	return nil
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
