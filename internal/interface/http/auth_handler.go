package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/workflo/identity/internal/application"
	"github.com/workflo/identity/internal/oauth"
	"github.com/workflo/identity/internal/token"
	"github.com/workflo/identity/pkg/response"
	"github.com/workflo/identity/pkg/validation"
)

// AuthHandler translates HTTP requests into identity commands. It owns no
// business logic: every decision lives in the application service.
type AuthHandler struct {
	Service *application.Service
	Logger  *logrus.Logger
}

func NewAuthHandler(service *application.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Service: service, Logger: logger}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required,pwd"`
		PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Service.Register(c.Request.Context(), application.RegisterCommand{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		h.fail(c, err, map[error]int{
			application.ErrEmailExists:      http.StatusConflict,
			application.ErrPasswordBreached: http.StatusBadRequest,
		})
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"user_id":                     res.UserID,
		"email_verification_required": res.EmailVerificationRequired,
	}, "registered; verification email sent")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required"`
		RememberMe bool   `json:"remember_me"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Service.Login(c.Request.Context(), application.LoginCommand{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		h.fail(c, err, map[error]int{
			application.ErrInvalidCredentials: http.StatusUnauthorized,
			application.ErrAccountDeactivated: http.StatusForbidden,
			application.ErrEmailNotVerified:   http.StatusForbidden,
		})
		return
	}
	response.Success(c, http.StatusOK, tokenBody(res), "logged in")
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req) // logout tolerates any payload

	_ = h.Service.Logout(c.Request.Context(), application.LogoutCommand{RefreshToken: req.RefreshToken})
	response.Success[any](c, http.StatusOK, nil, "logged out")
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Service.RefreshToken(c.Request.Context(), application.RefreshTokenCommand{RefreshToken: req.RefreshToken})
	if err != nil {
		h.fail(c, err, map[error]int{
			application.ErrInvalidRefreshToken: http.StatusUnauthorized,
			application.ErrRefreshTokenInvalid: http.StatusUnauthorized,
			application.ErrUserInactive:        http.StatusUnauthorized,
		})
		return
	}
	response.Success(c, http.StatusOK, tokenBody(res), "token refreshed")
}

// OAuthLogin POST /api/auth/oauth
func (h *AuthHandler) OAuthLogin(c *gin.Context) {
	var req struct {
		Provider    string `json:"provider" binding:"required"`
		Code        string `json:"code" binding:"required"`
		RedirectURI string `json:"redirect_uri"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Service.OAuthLogin(c.Request.Context(), application.OAuthLoginCommand{
		Provider:    req.Provider,
		Code:        req.Code,
		RedirectURI: req.RedirectURI,
	})
	if err != nil {
		if errors.Is(err, oauth.ErrUnknownProvider) {
			response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		h.fail(c, err, map[error]int{
			application.ErrAccountDeactivated: http.StatusForbidden,
		})
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user_id":       res.UserID,
		"access_token":  res.Tokens.AccessToken,
		"refresh_token": res.Tokens.RefreshToken,
		"expires_at":    res.Tokens.ExpiresAt,
		"is_new_user":   res.IsNewUser,
		"display_name":  res.DisplayName,
	}, "logged in")
}

// VerifyEmail POST /api/auth/verify
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Service.VerifyEmail(c.Request.Context(), application.VerifyEmailCommand{Token: req.Token}); err != nil {
		h.fail(c, err, map[error]int{
			application.ErrUserNotFound:       http.StatusNotFound,
			token.ErrVerificationTokenInvalid: http.StatusBadRequest,
		})
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"verified": true}, "email verified")
}

// ResendVerification POST /api/auth/verify/resend
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Service.ResendVerification(c.Request.Context(), application.ResendVerificationCommand{Email: req.Email}); err != nil {
		h.fail(c, err, map[error]int{
			application.ErrUserNotFound:         http.StatusNotFound,
			application.ErrEmailAlreadyVerified: http.StatusConflict,
		})
		return
	}
	response.Success[any](c, http.StatusOK, nil, "verification email sent")
}

// fail maps a command error onto a status code: explicit mappings first,
// then 400 for remaining domain errors, 500 for dependency faults.
func (h *AuthHandler) fail(c *gin.Context, err error, statuses map[error]int) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.Status(http.StatusRequestTimeout)
		c.Abort()
		return
	}
	for target, status := range statuses {
		if errors.Is(err, target) {
			response.Error[any](c, status, target.Error(), nil)
			return
		}
	}
	if application.IsDomainError(err) {
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if h.Logger != nil {
		h.Logger.WithError(err).Error("identity command failed")
	}
	response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
}

func tokenBody(res *application.LoginResult) gin.H {
	return gin.H{
		"user_id":       res.UserID,
		"access_token":  res.Tokens.AccessToken,
		"refresh_token": res.Tokens.RefreshToken,
		"expires_at":    res.Tokens.ExpiresAt,
	}
}
