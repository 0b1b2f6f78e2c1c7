package account

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"moia/internal/api"
)

type scriptedClient struct {
	loginErr    error
	registerErr error
	checkToken  string
	checkErr    error
	verifyErr   error
	updateErr   error
	clearErr    error

	loginCalls    int
	registerInfo  *api.RegisterInfo
	verifiedToken string
	verifiedWith  string
	updatedTo     string
	cleared       bool
}

func (c *scriptedClient) Login(ctx context.Context, email, password string) error {
	c.loginCalls++
	return c.loginErr
}

func (c *scriptedClient) Register(ctx context.Context, info api.RegisterInfo) error {
	c.registerInfo = &info
	return c.registerErr
}

func (c *scriptedClient) Authenticated(ctx context.Context) bool { return true }

func (c *scriptedClient) CheckUser(ctx context.Context, identifier string) (string, error) {
	return c.checkToken, c.checkErr
}

func (c *scriptedClient) VerifyPhrase(ctx context.Context, phrase, token string) error {
	c.verifiedWith = phrase
	c.verifiedToken = token
	return c.verifyErr
}

func (c *scriptedClient) UpdatePassword(ctx context.Context, identifier, newPassword string) error {
	c.updatedTo = newPassword
	return c.updateErr
}

func (c *scriptedClient) ClearCookies() error {
	c.cleared = true
	return c.clearErr
}

func TestLoginValidation(t *testing.T) {
	client := &scriptedClient{}
	svc := NewService(client, zerolog.Nop())
	ctx := context.Background()

	cases := []struct {
		name            string
		email, password string
		want            error
	}{
		{"missing email", "", "secret", ErrMissingCredentials},
		{"missing password", "a@b.com", "", ErrMissingCredentials},
		{"bad email", "not-an-email", "secret", ErrInvalidEmail},
		{"no tld", "a@b", "secret", ErrInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Login(ctx, tc.email, tc.password); !errors.Is(err, tc.want) {
				t.Errorf("Login(%q, %q) = %v, want %v", tc.email, tc.password, err, tc.want)
			}
		})
	}
	if client.loginCalls != 0 {
		t.Errorf("invalid input must not reach the backend, got %d calls", client.loginCalls)
	}

	if err := svc.Login(ctx, "  a@b.com ", "secret"); err != nil {
		t.Errorf("valid login: %v", err)
	}
	if client.loginCalls != 1 {
		t.Errorf("login calls = %d, want 1", client.loginCalls)
	}
}

func TestLoginPassesThroughFieldErrors(t *testing.T) {
	fieldErr := &api.FieldError{Field: "password", Message: "wrong password", Status: 401}
	client := &scriptedClient{loginErr: fieldErr}
	svc := NewService(client, zerolog.Nop())

	err := svc.Login(context.Background(), "a@b.com", "nope")
	var fe *api.FieldError
	if !errors.As(err, &fe) || fe.Field != "password" {
		t.Fatalf("err = %v, want the backend field error unchanged", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	client := &scriptedClient{}
	svc := NewService(client, zerolog.Nop())
	ctx := context.Background()

	base := RegisterForm{
		Username:        "ana",
		Email:           "ana@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		SecurityPhrase:  "blue elephant",
	}

	short := base
	short.Password, short.ConfirmPassword = "abc", "abc"
	if err := svc.Register(ctx, short); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password: %v", err)
	}

	mismatch := base
	mismatch.ConfirmPassword = "different1"
	if err := svc.Register(ctx, mismatch); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("mismatched passwords: %v", err)
	}

	if client.registerInfo != nil {
		t.Fatal("invalid forms must not reach the backend")
	}

	if err := svc.Register(ctx, base); err != nil {
		t.Fatalf("valid form: %v", err)
	}
	if client.registerInfo == nil || client.registerInfo.SecurityPhrase != "blue elephant" {
		t.Errorf("sent registration = %+v", client.registerInfo)
	}
	if client.registerInfo.Username != "ana" || client.registerInfo.Email != "ana@example.com" {
		t.Errorf("sent registration = %+v", client.registerInfo)
	}
}

func TestChangePasswordWizard(t *testing.T) {
	client := &scriptedClient{checkToken: "tok-123"}
	svc := NewService(client, zerolog.Nop())

	err := svc.ChangePassword(context.Background(), "ana@example.com", "blue elephant", "newsecret")
	if err != nil {
		t.Fatal(err)
	}
	if client.verifiedToken != "tok-123" {
		t.Errorf("step two must consume the token from step one, got %q", client.verifiedToken)
	}
	if client.verifiedWith != "blue elephant" {
		t.Errorf("verified phrase = %q", client.verifiedWith)
	}
	if client.updatedTo != "newsecret" {
		t.Errorf("updated password = %q", client.updatedTo)
	}
}

func TestChangePasswordStopsOnWrongPhrase(t *testing.T) {
	client := &scriptedClient{checkToken: "tok-123", verifyErr: errors.New("phrase mismatch")}
	svc := NewService(client, zerolog.Nop())

	err := svc.ChangePassword(context.Background(), "ana@example.com", "wrong", "newsecret")
	if err == nil {
		t.Fatal("expected the wizard to fail")
	}
	if client.updatedTo != "" {
		t.Error("a failed phrase check must not update the password")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	client := &scriptedClient{}
	svc := NewService(client, zerolog.Nop())
	if err := svc.Logout(); err != nil {
		t.Fatal(err)
	}
	if !client.cleared {
		t.Error("logout must drop the stored cookies")
	}
}
