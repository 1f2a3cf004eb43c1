package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/service"
)

const (
	headerAccessToken  = "x-access-token"
	headerRefreshToken = "x-refresh-token"
	headerUserID       = "_id"

	ctxUserIDKey       = "auth_user_id"
	ctxSessionUserKey  = "auth_session_user"
	ctxRefreshTokenKey = "auth_refresh_token"

	msgUserNotFound   = "User not found"
	msgSessionInvalid = "Refresh token expired or the session is not valid"

	msgSessionLookupFailed = "could not load session"
)

// AccessTokenMiddleware valida el access token de x-access-token y guarda el id del usuario.
func AccessTokenMiddleware(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "tokens not configured"})
			return
		}

		userID, err := tokens.VerifyAccessToken(strings.TrimSpace(c.GetHeader(headerAccessToken)))
		if err != nil {
			authRejectionsTotal.WithLabelValues("access").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

// SessionMiddleware valida el refresh token de x-refresh-token contra las sesiones del usuario _id.
func SessionMiddleware(logger *zap.Logger, users *service.UserService, sessions *service.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken := strings.TrimSpace(c.GetHeader(headerRefreshToken))
		userID := strings.TrimSpace(c.GetHeader(headerUserID))

		user, err := users.FindByIDAndToken(c.Request.Context(), userID, refreshToken)
		if err != nil {
			if !errors.Is(err, service.ErrUserNotFound) {
				logger.Error("session lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msgSessionLookupFailed})
				return
			}
			authRejectionsTotal.WithLabelValues("session").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUserNotFound})
			return
		}

		if !sessions.IsSessionValid(user, refreshToken) {
			authRejectionsTotal.WithLabelValues("session").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgSessionInvalid})
			return
		}

		c.Set(ctxUserIDKey, user.ID)
		c.Set(ctxSessionUserKey, user)
		c.Set(ctxRefreshTokenKey, refreshToken)
		c.Next()
	}
}

// GetUserID obtiene el id del usuario autenticado desde el contexto.
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ctxUserIDKey)
	return userID, userID != ""
}

// GetSessionUser obtiene el usuario resuelto por SessionMiddleware.
func GetSessionUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(ctxSessionUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

// GetRefreshToken obtiene el refresh token validado por SessionMiddleware.
func GetRefreshToken(c *gin.Context) string {
	return c.GetString(ctxRefreshTokenKey)
}
