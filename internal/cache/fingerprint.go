package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Request identifies one LLM call for caching purposes. The fingerprint
// covers every part of the request that can change the response, so any edit
// to a prompt template, model swap, or sampling change produces a cache miss.
type Request struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// fingerprintVersion is baked into the hash so a future change to the
// fingerprint encoding invalidates old entries instead of colliding with them.
const fingerprintVersion = "v1"

// Fingerprint returns the deterministic hex SHA-256 identity of the request.
// Pure function of the request content: identical requests hash identically
// across processes and runs.
func (r Request) Fingerprint() string {
	// json.Marshal of a struct emits fields in declaration order, so the
	// encoding is canonical.
	payload, err := json.Marshal(r)
	if err != nil {
		// Request contains only scalars; Marshal cannot fail. Keep the
		// fallback deterministic anyway.
		payload = []byte(r.Model + "\x00" + r.Prompt)
	}
	sum := sha256.Sum256(append([]byte(fingerprintVersion+"\x00"), payload...))
	return fmt.Sprintf("%x", sum)
}
