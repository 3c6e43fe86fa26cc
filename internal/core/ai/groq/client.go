package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rcip-agent/internal/core/ai/provider"
	"rcip-agent/internal/infrastructure/config"
	"rcip-agent/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client talks to the Groq OpenAI-compatible chat-completions API.
type Client struct {
	config *config.GroqConfig
	client *resty.Client
}

// NewClient creates a Groq client from configuration.
func NewClient(cfg *config.GroqConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Generate implements provider.TextGenerator.
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	start := time.Now()

	body := map[string]interface{}{
		"model":    c.config.Model,
		"messages": req.Messages,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	} else if c.config.MaxTokens > 0 {
		body["max_tokens"] = c.config.MaxTokens
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	if len(req.Stop) > 0 {
		body["stop"] = req.Stop
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")

	common.LogAICall(c.config.Model, time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("failed to send request to groq: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("groq API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse groq response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		common.LogWarn("groq returned no usable choices",
			zap.String("model", c.config.Model),
		)
		return nil, provider.ErrEmptyCompletion
	}

	out := &provider.Response{Content: result.Choices[0].Message.Content}
	out.Usage.PromptTokens = result.Usage.PromptTokens
	out.Usage.CompletionTokens = result.Usage.CompletionTokens
	out.Usage.TotalTokens = result.Usage.TotalTokens

	return out, nil
}

// Model implements provider.TextGenerator.
func (c *Client) Model() string { return c.config.Model }

// Timeout implements provider.TextGenerator.
func (c *Client) Timeout() time.Duration { return c.config.Timeout }
