package middleware

import (
	"context"
	"strings"

	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/response"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/gin-gonic/gin"
)

const ClientCtx = "client"

type AuthService interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type AuthMiddlewareProvider struct {
	log     logger.Log
	service AuthService
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
	}
}

// AuthMiddleware resolves the bearer token to a user and stores it under ClientCtx.
func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		h.log.Debug("missing bearer token", "path", c.FullPath())
		response.Unauthorized(c)
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), token)
	if err != nil {
		h.log.Debug("authentication failed", "path", c.FullPath(), "error", err.Error())
		response.Unauthorized(c)
		return
	}

	c.Set(ClientCtx, user)
	c.Next()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	raw, exists := c.Get(ClientCtx)
	if !exists {
		return nil, false
	}
	user, ok := raw.(*models.User)
	return user, ok
}
