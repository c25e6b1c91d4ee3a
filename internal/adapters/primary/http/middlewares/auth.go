package middlewares

import (
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// userIDKey ключ в контексте gin, под которым лежит идентификатор пользователя
const userIDKey = "auth.user_id"

// UserIDHeader заголовок с идентификатором пользователя, проставляется
// API-шлюзом после проверки токена
const UserIDHeader = "X-User-ID"

// Auth извлекает идентификатор пользователя из заголовка.
// Проверка подписи токена происходит уровнем выше, на шлюзе.
func Auth(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user id"})
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			log.Warn("invalid user id header", "value", raw, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID достаёт идентификатор пользователя, проставленный Auth
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
