package explanations

import (
	"errors"
	"io"
	"net/http"

	"log/slog"

	"github.com/Nandan222001/ask-anything/internal/adapters/primary/http/middlewares"
	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/Nandan222001/ask-anything/internal/usecases/explain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	Service *explain.Service
	Log     *slog.Logger
}

func New(service *explain.Service, log *slog.Logger) *Controller {
	return &Controller{
		Service: service,
		Log:     log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1", middlewares.Auth(c.Log))

	api.POST("/explanations", c.create)
	api.GET("/explanations", c.list)
	api.GET("/explanations/:id", c.getByID)
	api.POST("/explanations/:id/favorite", c.toggleFavorite)
	api.DELETE("/explanations/:id", c.delete)
	api.POST("/explanations/:id/messages", c.sendMessage)
	api.GET("/explanations/:id/messages", c.getHistory)
	api.GET("/usage", c.usage)
}

// create принимает multipart с полем image и опциональными prompt, mode, language
func (c *Controller) create(ctx *gin.Context) {
	userID, ok := middlewares.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id"})
		return
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image file"})
		return
	}
	defer file.Close()
	imageBytes, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image file"})
		return
	}

	mode := domain.AnalysisMode(ctx.DefaultPostForm("mode", string(domain.ModeStandard)))
	if mode != domain.ModeStandard && mode != domain.ModeDeveloper {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "mode must be standard or developer"})
		return
	}

	explanation, err := c.Service.Create(ctx.Request.Context(), explain.CreateParams{
		UserID:     userID,
		ImageBytes: imageBytes,
		Prompt:     ctx.PostForm("prompt"),
		Mode:       mode,
		Language:   ctx.PostForm("language"),
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, explanation)
}

func (c *Controller) list(ctx *gin.Context) {
	userID, ok := middlewares.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id"})
		return
	}

	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	filter := domain.ListFilter{
		Page:          query.Page,
		Limit:         query.Limit,
		Search:        query.Search,
		FavoritesOnly: query.Favorites,
	}
	if query.Category != "" {
		category := domain.Category(query.Category)
		if !category.IsValid() {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		filter.Category = &category
	}

	page, err := c.Service.List(ctx.Request.Context(), userID, filter)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, page)
}

func (c *Controller) getByID(ctx *gin.Context) {
	userID, explanationID, ok := c.pathIDs(ctx)
	if !ok {
		return
	}

	explanation, err := c.Service.GetByID(ctx.Request.Context(), explanationID, userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, explanation)
}

func (c *Controller) toggleFavorite(ctx *gin.Context) {
	userID, explanationID, ok := c.pathIDs(ctx)
	if !ok {
		return
	}

	favorite, err := c.Service.ToggleFavorite(ctx.Request.Context(), explanationID, userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"favorite": favorite})
}

func (c *Controller) delete(ctx *gin.Context) {
	userID, explanationID, ok := c.pathIDs(ctx)
	if !ok {
		return
	}

	if err := c.Service.Delete(ctx.Request.Context(), explanationID, userID); err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (c *Controller) sendMessage(ctx *gin.Context) {
	userID, explanationID, ok := c.pathIDs(ctx)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	message, err := c.Service.SendMessage(ctx.Request.Context(), explanationID, userID, req.Text)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, message)
}

func (c *Controller) getHistory(ctx *gin.Context) {
	userID, explanationID, ok := c.pathIDs(ctx)
	if !ok {
		return
	}

	messages, err := c.Service.GetHistory(ctx.Request.Context(), explanationID, userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": messages})
}

func (c *Controller) usage(ctx *gin.Context) {
	userID, ok := middlewares.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id"})
		return
	}

	status, err := c.Service.GetUsageStatus(ctx.Request.Context(), userID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, status)
}

// pathIDs достаёт идентификатор пользователя и :id из пути, отвечая ошибкой сам
func (c *Controller) pathIDs(ctx *gin.Context) (userID, explanationID uuid.UUID, ok bool) {
	userID, ok = middlewares.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id"})
		return uuid.Nil, uuid.Nil, false
	}
	explanationID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid explanation id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, explanationID, true
}

// respondError переводит доменные ошибки в HTTP-статусы
func (c *Controller) respondError(ctx *gin.Context, err error) {
	var quotaErr *domain.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		ctx.JSON(http.StatusTooManyRequests, gin.H{
			"error":    "daily quota exceeded",
			"used":     quotaErr.Used,
			"limit":    quotaErr.Limit,
			"reset_at": quotaErr.ResetAt,
		})
	case errors.Is(err, domain.ErrInvalidImage), errors.Is(err, domain.ErrImageConstraint), errors.Is(err, domain.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrUploadFailed), errors.Is(err, domain.ErrAnalysisFailed):
		c.Log.Error("upstream dependency failed", "error", err, "path", ctx.FullPath())
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "upstream service unavailable"})
	default:
		c.Log.Error("request failed", "error", err, "path", ctx.FullPath())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
