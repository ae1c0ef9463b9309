package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/workflo/identity/internal/interface/http"
	"github.com/workflo/identity/internal/interface/middleware"
	"github.com/workflo/identity/internal/token"
	"github.com/workflo/identity/pkg/response"
)

// IdentityModule mounts the seven identity commands. All dependencies come
// in through the constructor; there is no ambient wiring.
type IdentityModule struct {
	Handler *handlers.AuthHandler
	Tokens  *token.Service
}

func NewIdentityModule(h *handlers.AuthHandler, tokens *token.Service) *IdentityModule {
	return &IdentityModule{Handler: h, Tokens: tokens}
}

func (m *IdentityModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", m.Handler.Register)
	rg.POST("/auth/login", m.Handler.Login)
	rg.POST("/auth/logout", m.Handler.Logout)
	rg.POST("/auth/refresh", m.Handler.Refresh)
	rg.POST("/auth/oauth", m.Handler.OAuthLogin)
	rg.POST("/auth/verify", m.Handler.VerifyEmail)
	rg.POST("/auth/verify/resend", m.Handler.ResendVerification)

	// Probe endpoint for clients to confirm their access token still parses.
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	{
		auth.GET("/auth/me", func(c *gin.Context) {
			response.Success(c, http.StatusOK, gin.H{"user_id": c.GetString(middleware.CtxUserIDKey)}, "authenticated")
		})
	}
}
