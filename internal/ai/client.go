package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"werewolf-toolbox/internal/models"
)

var ErrMissingCredentials = errors.New("AI seat has no endpoint or API key")

// UserTurn is the second message of every exchange.
const UserTurn = "Make your decision now. Output ONLY JSON."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenAI-compatible chat-completion endpoint.
type Client struct {
	http *resty.Client
}

// NewClient creates a client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

// Complete sends the system prompt and returns the raw message content.
func (c *Client) Complete(ctx context.Context, cfg *models.AIConfig, system string) (string, error) {
	if cfg == nil || cfg.APIKey == "" || cfg.BaseURL == "" {
		return "", ErrMissingCredentials
	}

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(cfg.APIKey).
		SetBody(chatRequest{
			Model: cfg.Model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: UserTurn},
			},
			Temperature: cfg.Temperature,
		}).
		SetResult(&out).
		Post(strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat completion failed: %s", resp.Status())
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
