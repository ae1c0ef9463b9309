package application

import "errors"

// Domain rule violations. These are expected, user-facing failures with
// stable messages; transports map them to status codes without rewording.
var (
	ErrEmailExists          = errors.New("user with this email already exists")
	ErrPasswordBreached     = errors.New("password has appeared in a known data breach")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDeactivated   = errors.New("account is deactivated")
	ErrEmailNotVerified     = errors.New("please verify your email before logging in")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrRefreshTokenInvalid  = errors.New("invalid or expired refresh token")
	ErrUserInactive         = errors.New("user not found or inactive")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyVerified = errors.New("email is already verified")
)

// Input validation failures, caught before any service call.
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrProviderRequired = errors.New("oauth provider is required")
	ErrCodeRequired     = errors.New("authorization code is required")
	ErrTokenRequired    = errors.New("token is required")
)

// IsDomainError reports whether err is one of the expected, user-facing
// failures rather than a dependency fault.
func IsDomainError(err error) bool {
	for _, e := range []error{
		ErrEmailExists, ErrPasswordBreached, ErrInvalidCredentials,
		ErrAccountDeactivated, ErrEmailNotVerified, ErrInvalidRefreshToken,
		ErrRefreshTokenInvalid, ErrUserInactive, ErrUserNotFound,
		ErrEmailAlreadyVerified, ErrEmailRequired, ErrPasswordRequired,
		ErrPasswordMismatch, ErrProviderRequired, ErrCodeRequired,
		ErrTokenRequired,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
