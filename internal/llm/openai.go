package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIConfig holds configuration for the OpenAI-compatible client.
// The defaults target OpenRouter, which proxies many models behind the
// OpenAI chat-completions wire format.
type OpenAIConfig struct {
	APIKey      string
	Model       string        // default: anthropic/claude-3.5-sonnet
	BaseURL     string        // default: https://openrouter.ai/api/v1
	MaxTokens   int           // default: 1024
	Temperature float64       // default: 0.1
	Timeout     time.Duration // default: 60s

	// Optional OpenRouter attribution headers.
	SiteURL  string // sent as HTTP-Referer
	SiteName string // sent as X-Title
}

// OpenAIClient implements TextGenerator against an OpenAI-compatible
// chat completions endpoint.
type OpenAIClient struct {
	cfg            OpenAIConfig
	client         *http.Client
	circuitBreaker *CircuitBreaker
}

// NewOpenAIClient creates a client with the given configuration.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = "anthropic/claude-3.5-sonnet"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAIClient{
		cfg:            cfg,
		client:         &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: NewCircuitBreaker("openai"),
	}
}

// chatRequest is the request body for POST /chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response body from POST /chat/completions.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends a single-turn completion and returns the response text
// plus token usage.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (Completion, error) {
	result, err := c.circuitBreaker.Execute(ctx, func() (Completion, error) {
		return c.complete(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return Completion{}, fmt.Errorf("openai circuit breaker open: %w", err)
		}
		return Completion{}, err
	}
	return result, nil
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string) (Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	}
	if c.cfg.SiteName != "" {
		req.Header.Set("X-Title", c.cfg.SiteName)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Completion{}, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var respData chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return Completion{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(respData.Choices) == 0 {
		return Completion{}, fmt.Errorf("provider returned no choices")
	}

	return Completion{
		Text: respData.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     respData.Usage.PromptTokens,
			CompletionTokens: respData.Usage.CompletionTokens,
		},
	}, nil
}

// Model returns the configured model identifier.
func (c *OpenAIClient) Model() string { return c.cfg.Model }

// MaxTokens returns the configured completion token budget.
func (c *OpenAIClient) MaxTokens() int { return c.cfg.MaxTokens }

// Temperature returns the configured sampling temperature.
func (c *OpenAIClient) Temperature() float64 { return c.cfg.Temperature }

// Compile-time assertion.
var _ TextGenerator = (*OpenAIClient)(nil)
