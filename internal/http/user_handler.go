package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/service"
)

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	tokens   *service.TokenIssuer
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, userServ *service.UserService, tokens *service.TokenIssuer) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		tokens:   tokens,
	}
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp maneja POST /users.
func (h *UserHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sign up request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.userServ.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrPasswordTooShort),
			errors.Is(err, service.ErrPasswordTooLong),
			errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("sign up failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not create user"})
		}
		return
	}

	h.respondWithSession(c, res)
}

// Login maneja POST /users/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.userServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not login"})
		}
		return
	}

	h.respondWithSession(c, res)
}

// AccessToken maneja GET /users/me/access-token; requiere SessionMiddleware.
func (h *UserHandler) AccessToken(c *gin.Context) {
	user, ok := GetSessionUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUserNotFound})
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(user.ID)
	if err != nil {
		h.logger.Error("access token issue failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not issue access token"})
		return
	}

	c.Header(headerAccessToken, accessToken)
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

func (h *UserHandler) respondWithSession(c *gin.Context, res service.AuthResult) {
	c.Header(headerRefreshToken, res.RefreshToken)
	c.Header(headerAccessToken, res.AccessToken)
	c.JSON(http.StatusOK, res.User)
}
