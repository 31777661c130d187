// Package llm is the provider boundary: text-completion clients reached over
// the network, wrapped in circuit breaker protection and per-request
// timeouts. Enrichment prompts use single-string completion style (not chat
// history).
package llm

import "context"

// Usage reports token consumption for one completion, when the provider
// returns it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Completion is the result of one text-completion call.
type Completion struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// TextGenerator is the interface for LLM text completion. The sampling
// parameters are exposed because they are part of the cache fingerprint of
// every request made through the generator.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
	Model() string
	MaxTokens() int
	Temperature() float64
}
