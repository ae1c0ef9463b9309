package application

import "time"

// Commands are immutable value objects: one per business transaction,
// built by the transport layer and handed to exactly one handler.

type RegisterCommand struct {
	Email           string
	Password        string
	PasswordConfirm string
}

type LoginCommand struct {
	Email      string
	Password   string
	RememberMe bool
}

type LogoutCommand struct {
	RefreshToken string
}

type RefreshTokenCommand struct {
	RefreshToken string
}

type OAuthLoginCommand struct {
	Provider    string
	Code        string
	RedirectURI string
}

type VerifyEmailCommand struct {
	Token string
}

type ResendVerificationCommand struct {
	Email string
}

// RegisterResult deliberately carries no tokens: registration never yields
// an authenticated session.
type RegisterResult struct {
	UserID                    string
	EmailVerificationRequired bool
}

// TokenPair is the issued session artifact for Login, RefreshToken, and
// OAuthLogin.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type LoginResult struct {
	UserID string
	Tokens TokenPair
}

type OAuthLoginResult struct {
	UserID    string
	Tokens    TokenPair
	IsNewUser bool
	// DisplayName is ephemeral provider PII surfaced to the caller only;
	// it is never written to any persisted store.
	DisplayName string
}
