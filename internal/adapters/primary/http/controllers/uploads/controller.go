package uploads

import (
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/Nandan222001/ask-anything/internal/adapters/primary/http/middlewares"
	"github.com/Nandan222001/ask-anything/internal/ports/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// presignTTL время жизни ссылки на прямую загрузку
const presignTTL = 5 * time.Minute

type Controller struct {
	ObjectStore storage.IObjectStore
	Log         *slog.Logger
}

func New(objectStore storage.IObjectStore, log *slog.Logger) *Controller {
	return &Controller{
		ObjectStore: objectStore,
		Log:         log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1", middlewares.Auth(c.Log))
	api.POST("/uploads/sign", c.sign)
}

// sign выдаёт presigned URL для прямой загрузки клиентом в обход сервера.
// Путь генерируется сервером, клиент его не выбирает.
func (c *Controller) sign(ctx *gin.Context) {
	userID, ok := middlewares.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id"})
		return
	}

	path := fmt.Sprintf("uploads/%s/%s.jpg", userID, uuid.New())
	url, err := c.ObjectStore.PresignedPut(ctx.Request.Context(), path, presignTTL)
	if err != nil {
		c.Log.Error("failed to presign upload", "error", err, "user_id", userID)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"url":        url,
		"path":       path,
		"expires_in": int(presignTTL.Seconds()),
	})
}
