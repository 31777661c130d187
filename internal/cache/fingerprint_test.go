package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterministic(t *testing.T) {
	req := Request{
		Prompt:      "Describe the column 'status'.",
		Model:       "anthropic/claude-3.5-sonnet",
		MaxTokens:   1024,
		Temperature: 0.1,
	}

	assert.Equal(t, req.Fingerprint(), req.Fingerprint())
	assert.Len(t, req.Fingerprint(), 64, "hex SHA-256")
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Request{Prompt: "p", Model: "m", MaxTokens: 100, Temperature: 0.1}

	edits := []Request{
		{Prompt: "p!", Model: "m", MaxTokens: 100, Temperature: 0.1},
		{Prompt: "p", Model: "m2", MaxTokens: 100, Temperature: 0.1},
		{Prompt: "p", Model: "m", MaxTokens: 200, Temperature: 0.1},
		{Prompt: "p", Model: "m", MaxTokens: 100, Temperature: 0.2},
	}
	for _, edited := range edits {
		assert.NotEqual(t, base.Fingerprint(), edited.Fingerprint(),
			"any change to request content must change the fingerprint: %+v", edited)
	}
}

func TestFingerprintNoFieldConcatenationCollision(t *testing.T) {
	// "ab"+"c" vs "a"+"bc" must not collide: the encoding delimits fields.
	a := Request{Prompt: "ab", Model: "c"}
	b := Request{Prompt: "a", Model: "bc"}
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
