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

// OllamaConfig holds configuration for the Ollama client, used for local
// model inference without an API key.
type OllamaConfig struct {
	BaseURL     string        // default: http://localhost:11434
	Model       string        // default: qwen2.5:7b
	MaxTokens   int           // default: 1024
	Temperature float64       // default: 0.1
	Timeout     time.Duration // default: 60s
}

// OllamaClient implements TextGenerator against the Ollama /api/generate
// endpoint.
type OllamaClient struct {
	cfg            OllamaConfig
	client         *http.Client
	circuitBreaker *CircuitBreaker
}

// NewOllamaClient creates a client with the given configuration.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "qwen2.5:7b"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OllamaClient{
		cfg:            cfg,
		client:         &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: NewCircuitBreaker("ollama"),
	}
}

// generateRequest is the request body for POST /api/generate.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

// generateResponse is the response body from POST /api/generate.
type generateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Complete sends a completion request to Ollama and returns the response
// text plus token usage.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (Completion, error) {
	result, err := c.circuitBreaker.Execute(ctx, func() (Completion, error) {
		return c.complete(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return Completion{}, fmt.Errorf("ollama circuit breaker open: %w", err)
		}
		return Completion{}, err
	}
	return result, nil
}

func (c *OllamaClient) complete(ctx context.Context, prompt string) (Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqBody := generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			NumPredict:  c.cfg.MaxTokens,
			Temperature: c.cfg.Temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Completion{}, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var respData generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return Completion{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return Completion{
		Text: respData.Response,
		Usage: Usage{
			PromptTokens:     respData.PromptEvalCount,
			CompletionTokens: respData.EvalCount,
		},
	}, nil
}

// Model returns the configured model identifier.
func (c *OllamaClient) Model() string { return c.cfg.Model }

// MaxTokens returns the configured completion token budget.
func (c *OllamaClient) MaxTokens() int { return c.cfg.MaxTokens }

// Temperature returns the configured sampling temperature.
func (c *OllamaClient) Temperature() float64 { return c.cfg.Temperature }

// Compile-time assertion.
var _ TextGenerator = (*OllamaClient)(nil)
