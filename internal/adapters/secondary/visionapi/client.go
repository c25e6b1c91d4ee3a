package visionapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Nandan222001/ask-anything/internal/ports/vision"
)

const chatCompletions = "chat/completions"

// truncateString обрезает строку до указанной длины
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Client клиент для OpenAI-совместимого vision-API
type Client struct {
	cfg        *Config
	HTTPClient *http.Client
	Log        *slog.Logger
}

// NewClient создаёт новый клиент для работы с vision-API
func NewClient(cfg *Config, log *slog.Logger) *Client {
	transport := &http.Transport{}

	if cfg.ShouldSkipSSL() {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		cfg: cfg,
		HTTPClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		Log: log,
	}
}

// buildURL собирает полный URL из BaseURL, ApiVersion и endpoint
func (c *Client) buildURL(endpoint string) string {
	baseURL := strings.TrimSuffix(c.cfg.BaseURL, "/")
	return baseURL + "/" + path.Join(c.cfg.ApiVersion, endpoint)
}

// setHeaders устанавливает стандартные заголовки для запросов к API
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)
	}
}

// Analyze отправляет изображение с системным и пользовательским промптом.
// Сначала основная модель; на 5xx/таймауте один переход на fallback-модель.
// 4xx от провайдера возвращается как vision.BadRequestError без смены модели.
func (c *Client) Analyze(ctx context.Context, params vision.AnalyzeParams) (*vision.Reply, error) {
	detail := string(params.Detail)
	if detail == "" {
		detail = string(vision.DetailHigh)
	}

	messages := []chatMessage{
		{Role: "system", Content: params.SystemPrompt},
		{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: params.UserPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: params.ImageURL, Detail: detail}},
			},
		},
	}

	reply, err := c.complete(ctx, c.cfg.Model, messages, params.MaxTokens)
	if err == nil {
		return reply, nil
	}

	var badReq *vision.BadRequestError
	if errors.As(err, &badReq) {
		return nil, badReq
	}

	if c.cfg.FallbackModel == "" || c.cfg.FallbackModel == c.cfg.Model {
		return nil, err
	}

	c.Log.Warn("primary vision model failed, trying fallback",
		"error", err,
		"primary", c.cfg.Model,
		"fallback", c.cfg.FallbackModel)

	reply, fallbackErr := c.complete(ctx, c.cfg.FallbackModel, messages, params.MaxTokens)
	if fallbackErr != nil {
		// Возвращаем первичную ошибку, fallback только в лог
		c.Log.Debug("fallback vision model failed",
			"error", fallbackErr,
			"model", c.cfg.FallbackModel)
		return nil, err
	}

	return reply, nil
}

// Chat отправляет текстовый диалог без изображения
func (c *Client) Chat(ctx context.Context, history []vision.ChatMessage) (*vision.Reply, error) {
	messages := make([]chatMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	reply, err := c.complete(ctx, c.cfg.Model, messages, 0)
	if err == nil {
		return reply, nil
	}

	var badReq *vision.BadRequestError
	if errors.As(err, &badReq) {
		return nil, badReq
	}

	if c.cfg.FallbackModel == "" || c.cfg.FallbackModel == c.cfg.Model {
		return nil, err
	}

	reply, fallbackErr := c.complete(ctx, c.cfg.FallbackModel, messages, 0)
	if fallbackErr != nil {
		return nil, err
	}
	return reply, nil
}

// complete выполняет один запрос chat-completions
func (c *Client) complete(ctx context.Context, model string, messages []chatMessage, maxTokens int) (*vision.Reply, error) {
	reqBody := chatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.buildURL(chatCompletions)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	rawJSON := string(body)

	if resp.StatusCode != http.StatusOK {
		c.Log.Debug("vision API returned non-200 status",
			"status_code", resp.StatusCode,
			"model", model,
			"body_preview", truncateString(rawJSON, 200),
		)
		apiErr := fmt.Errorf("vision API error [status=%d, model=%s]: %s",
			resp.StatusCode, model, truncateString(rawJSON, 500))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, &vision.BadRequestError{Err: apiErr}
		}
		return nil, apiErr
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		c.Log.Debug("failed to unmarshal vision API response",
			"error", err,
			"status_code", resp.StatusCode,
			"body_preview", truncateString(rawJSON, 200),
		)
		return nil, fmt.Errorf("vision API unmarshal failed [status=%d]: %w", resp.StatusCode, err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("vision API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("vision API returned no choices")
	}

	respModel := chatResp.Model
	if respModel == "" {
		respModel = model
	}

	return &vision.Reply{
		Text:       chatResp.Choices[0].Message.Content,
		TokensUsed: chatResp.Usage.TotalTokens,
		Model:      respModel,
	}, nil
}
