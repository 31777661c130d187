package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GerritGeeraerts/data-explorer/internal/config"
)

func TestNewTextGenerator(t *testing.T) {
	gen, err := NewTextGenerator(config.LLMConfig{Provider: "openai", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, gen)
	assert.Equal(t, "m", gen.Model())

	gen, err = NewTextGenerator(config.LLMConfig{})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, gen, "empty provider defaults to openai")

	gen, err = NewTextGenerator(config.LLMConfig{Provider: "ollama"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, gen)

	_, err = NewTextGenerator(config.LLMConfig{Provider: "bard"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bard")
}
