package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func newGitHubTestProvider(t *testing.T, userBody, emailsBody string) *GitHubProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer"}`)
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, userBody)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, emailsBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewGitHubProvider("client-id", "client-secret", "")
	p.cfg.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	p.userURL = srv.URL + "/user"
	p.emailsURL = srv.URL + "/user/emails"
	return p
}

func TestGitHubPublicEmailCarriesVerifiedFlag(t *testing.T) {
	p := newGitHubTestProvider(t,
		`{"id":7,"email":"Ada@X.com","name":"Ada Lovelace","login":"ada"}`,
		`[{"email":"ada@x.com","primary":true,"verified":true}]`,
	)

	info, err := p.Authenticate(context.Background(), "code", "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if info.Email != "Ada@X.com" {
		t.Errorf("email = %q, want the profile address", info.Email)
	}
	// The verified flag comes from the emails listing, matched
	// case-insensitively against the public profile address.
	if !info.EmailVerified {
		t.Error("public profile email must pick up verified=true from the emails listing")
	}
	if info.Subject != "7" {
		t.Errorf("subject = %q, want 7", info.Subject)
	}
}

func TestGitHubUnverifiedPublicEmail(t *testing.T) {
	p := newGitHubTestProvider(t,
		`{"id":7,"email":"ada@x.com","name":"Ada Lovelace","login":"ada"}`,
		`[{"email":"ada@x.com","primary":true,"verified":false}]`,
	)

	info, err := p.Authenticate(context.Background(), "code", "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if info.EmailVerified {
		t.Error("unverified address must not be reported verified")
	}
}

func TestGitHubPrivateEmailFallsBackToPrimary(t *testing.T) {
	p := newGitHubTestProvider(t,
		`{"id":7,"email":"","name":"","login":"ada"}`,
		`[{"email":"old@x.com","primary":false,"verified":true},{"email":"ada@x.com","primary":true,"verified":true}]`,
	)

	info, err := p.Authenticate(context.Background(), "code", "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if info.Email != "ada@x.com" {
		t.Errorf("email = %q, want the primary address", info.Email)
	}
	if !info.EmailVerified {
		t.Error("verified flag must follow the primary address")
	}
	if info.Name != "ada" {
		t.Errorf("name = %q, want login fallback", info.Name)
	}
}

func TestGitHubNoUsableEmail(t *testing.T) {
	p := newGitHubTestProvider(t,
		`{"id":7,"email":"","name":"","login":"ada"}`,
		`[]`,
	)

	if _, err := p.Authenticate(context.Background(), "code", ""); err == nil {
		t.Fatal("account without any email must be rejected")
	}
}
