package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/workflo/identity/internal/application"
	"github.com/workflo/identity/internal/oauth"
)

func googleStub(email string, verified bool) *stubProvider {
	return &stubProvider{
		name: "google",
		info: &oauth.UserInfo{
			Provider:      "google",
			Subject:       "sub-123",
			Email:         email,
			Name:          "Ada Lovelace",
			EmailVerified: verified,
		},
	}
}

func TestOAuthLoginNewUserWithProviderVerifiedEmail(t *testing.T) {
	f := newFixture(googleStub("new@x.com", true))

	res, err := f.svc.OAuthLogin(context.Background(), application.OAuthLoginCommand{Provider: "google", Code: "valid-code"})
	if err != nil {
		t.Fatalf("OAuthLogin: %v", err)
	}
	if !res.IsNewUser {
		t.Error("expected IsNewUser=true")
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Error("provider-verified new account must receive tokens immediately")
	}
	if res.DisplayName != "Ada Lovelace" {
		t.Errorf("display name not surfaced: %q", res.DisplayName)
	}
	if f.email.count() != 0 {
		t.Error("no verification email for a provider-verified account")
	}

	u, err := f.repo.GetByEmailHash(context.Background(), f.hasher.HashEmail("new@x.com"))
	if err != nil {
		t.Fatalf("persisted user: %v", err)
	}
	if !u.EmailVerified {
		t.Error("provider assertion must mark the new user verified")
	}
	if _, hasLocal := u.PasswordHash(); hasLocal {
		t.Error("oauth account must carry no local password hash")
	}
}

func TestOAuthLoginProviderNameIsCaseInsensitive(t *testing.T) {
	f := newFixture(googleStub("new@x.com", true))
	if _, err := f.svc.OAuthLogin(context.Background(), application.OAuthLoginCommand{Provider: "GOOGLE", Code: "valid-code"}); err != nil {
		t.Fatalf("OAuthLogin with upper-case provider: %v", err)
	}
}

func TestOAuthLoginUnknownProvider(t *testing.T) {
	f := newFixture(googleStub("new@x.com", true))
	_, err := f.svc.OAuthLogin(context.Background(), application.OAuthLoginCommand{Provider: "facebook", Code: "valid-code"})
	if !errors.Is(err, oauth.ErrUnknownProvider) {
		t.Fatalf("got %v, want ErrUnknownProvider", err)
	}
	if f.repo.count() != 0 {
		t.Error("unknown provider must be rejected before any adapter or repository call")
	}
}

func TestOAuthLoginProviderFailurePropagates(t *testing.T) {
	providerErr := errors.New("provider rejected the code")
	f := newFixture(&stubProvider{name: "google", err: providerErr})

	_, err := f.svc.OAuthLogin(context.Background(), application.OAuthLoginCommand{Provider: "google", Code: "bad-code"})
	if !errors.Is(err, providerErr) {
		t.Fatalf("provider failure must propagate, got %v", err)
	}
	if f.repo.count() != 0 {
		t.Error("failed exchange must not create users")
	}
}

func TestOAuthLoginExistingUser(t *testing.T) {
	f := newFixture(googleStub("a@x.com", true))
	_, tok := f.register(t, "a@x.com", "Password1!")
	f.verifyUser(t, tok)

	res, err := f.svc.OAuthLogin(context.Background(), application.OAuthLoginCommand{Provider: "google", Code: "valid-code"})
	if err != nil {
		t.Fatalf("OAuthLogin: %v", err)
	}
	if res.IsNewUser {
		t.Error("existing account must report IsNewUser=false")
	}
	if f.repo.count() != 1 {
		t.Errorf("no second user may be created, got %d", f.repo.count())
	}
}

func TestOAuthLoginNewUserWithoutProviderVerification(t *testing.T) {
	f := newFixture(googleStub("new@x.com", false))

	_, err := f.svc.OAuthLogin(context.Background(), application.OAuthLoginCommand{Provider: "google", Code: "valid-code"})
	if !errors.Is(err, application.ErrEmailNotVerified) {
		t.Fatalf("got %v, want ErrEmailNotVerified", err)
	}

	// The account exists but stays gated.
	u, err := f.repo.GetByEmailHash(context.Background(), f.hasher.HashEmail("new@x.com"))
	if err != nil {
		t.Fatalf("persisted user: %v", err)
	}
	if u.EmailVerified {
		t.Error("unvouched email must not be marked verified")
	}

	// A retry hits the pre-existing branch but the account is still
	// unverified; it must stay gated rather than pick up tokens.
	_, err = f.svc.OAuthLogin(context.Background(), application.OAuthLoginCommand{Provider: "google", Code: "valid-code"})
	if !errors.Is(err, application.ErrEmailNotVerified) {
		t.Fatalf("retry got %v, want ErrEmailNotVerified", err)
	}

	// Clearing the verification flow unlocks the account.
	if err := f.svc.ResendVerification(context.Background(), application.ResendVerificationCommand{Email: "new@x.com"}); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	f.verifyUser(t, f.email.lastToken())

	res, err := f.svc.OAuthLogin(context.Background(), application.OAuthLoginCommand{Provider: "google", Code: "valid-code"})
	if err != nil {
		t.Fatalf("OAuthLogin after verification: %v", err)
	}
	if res.IsNewUser {
		t.Error("account already existed, IsNewUser must be false")
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Error("verified account must receive tokens")
	}
}

func TestOAuthLoginValidation(t *testing.T) {
	f := newFixture(googleStub("new@x.com", true))

	if _, err := f.svc.OAuthLogin(context.Background(), application.OAuthLoginCommand{Code: "x"}); !errors.Is(err, application.ErrProviderRequired) {
		t.Errorf("got %v, want ErrProviderRequired", err)
	}
	if _, err := f.svc.OAuthLogin(context.Background(), application.OAuthLoginCommand{Provider: "google"}); !errors.Is(err, application.ErrCodeRequired) {
		t.Errorf("got %v, want ErrCodeRequired", err)
	}
}
