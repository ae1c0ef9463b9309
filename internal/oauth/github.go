package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

// GitHubProvider exchanges authorization codes against GitHub's OAuth API.
// The user endpoint never reports whether an address is verified, and omits
// the email entirely when it is private, so the adapter always consults the
// emails listing: for the verified flag when the profile email is public,
// and for the primary address when it is not.
type GitHubProvider struct {
	cfg       oauth2.Config
	userURL   string
	emailsURL string
}

func NewGitHubProvider(clientID, clientSecret, redirectURL string) *GitHubProvider {
	return &GitHubProvider{
		cfg: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		userURL:   githubUserURL,
		emailsURL: githubEmailsURL,
	}
}

func (p *GitHubProvider) Name() string { return "github" }

func (p *GitHubProvider) Authenticate(ctx context.Context, code, redirectURI string) (*UserInfo, error) {
	cfg := p.cfg
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github code exchange: %w", err)
	}
	client := cfg.Client(ctx, tok)

	var user struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Login string `json:"login"`
	}
	if err := getJSON(client, p.userURL, &user); err != nil {
		return nil, fmt.Errorf("github user: %w", err)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(client, p.emailsURL, &emails); err != nil {
		return nil, fmt.Errorf("github emails: %w", err)
	}

	email := user.Email
	verified := false
	for _, e := range emails {
		if email == "" {
			if e.Primary {
				email, verified = e.Email, e.Verified
				break
			}
			continue
		}
		if strings.EqualFold(e.Email, email) {
			verified = e.Verified
			break
		}
	}
	if email == "" {
		return nil, fmt.Errorf("github account has no usable email")
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &UserInfo{
		Provider:      p.Name(),
		Subject:       strconv.FormatInt(user.ID, 10),
		Email:         email,
		Name:          name,
		EmailVerified: verified,
	}, nil
}

func getJSON(client *http.Client, url string, dest any) error {
	res, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(dest)
}

var _ Provider = (*GitHubProvider)(nil)
