package auth

import (
	"context"
	"net/http"

	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/middleware"
	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/response"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*models.AccessToken, error)
	Login(ctx context.Context, email, password string) (*models.AccessToken, error)
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthHandler struct {
	AuthService AuthService
	log         logger.Log
}

func NewAuthHandler(l logger.Log, auth AuthService) *AuthHandler {
	return &AuthHandler{
		AuthService: auth,
		log:         l,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, err := h.AuthService.Register(c.Request.Context(), input.Email, input.Username, input.Password)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, err := h.AuthService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UserByID(c *gin.Context) {
	id, ok := response.ParamID(c, "user_id")
	if !ok {
		return
	}
	user, err := h.AuthService.User(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
