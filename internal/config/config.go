// Package config provides configuration management for data-explorer.
// Settings come from environment variables with the EXPLORER_ prefix, with
// sensible defaults for everything except the provider API key. An optional
// YAML file can override the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for a pipeline run.
type Config struct {
	Profile ProfileConfig `yaml:"profile"`
	Shrink  ShrinkConfig  `yaml:"shrink"`
	LLM     LLMConfig     `yaml:"llm"`
	Cache   CacheConfig   `yaml:"cache"`
	Output  OutputConfig  `yaml:"output"`
}

// ProfileConfig bounds the profiling stage.
type ProfileConfig struct {
	FileLimit    int `yaml:"file_limit"`    // max JSON files to load (default: 1000)
	SampleValues int `yaml:"sample_values"` // example values recorded per column (default: 5)
}

// ShrinkConfig bounds the shrink stage.
type ShrinkConfig struct {
	MaxValueCounts int `yaml:"max_value_counts"` // K, retained entries per field (default: 10)
	MaxTextChars   int `yaml:"max_text_chars"`   // char budget for text fields (default: 1000)
}

// LLMConfig configures the provider boundary.
type LLMConfig struct {
	Provider          string        `yaml:"provider"`            // openai or ollama (default: openai)
	BaseURL           string        `yaml:"base_url"`            // empty: provider default (OpenRouter / local Ollama)
	APIKey            string        `yaml:"api_key"`             // provider API key
	Model             string        `yaml:"model"`               // default: anthropic/claude-3.5-sonnet
	MaxTokens         int           `yaml:"max_tokens"`          // default: 1024
	Temperature       float64       `yaml:"temperature"`         // default: 0.1
	Timeout           time.Duration `yaml:"timeout"`             // per-call timeout (default: 60s)
	Concurrency       int           `yaml:"concurrency"`         // parallel field enrichments (default: 4)
	RequestsPerSecond float64       `yaml:"requests_per_second"` // outbound rate limit (default: 2)
	SiteURL           string        `yaml:"site_url"`            // optional OpenRouter HTTP-Referer
	SiteName          string        `yaml:"site_name"`           // optional OpenRouter X-Title
}

// CacheConfig selects and locates the enrichment cache store.
type CacheConfig struct {
	Engine      string `yaml:"engine"`       // sqlite or postgres (default: sqlite)
	Path        string `yaml:"path"`         // sqlite file path (default: .explorer-cache.db)
	PostgresDSN string `yaml:"postgres_dsn"` // DSN when engine is postgres
}

// OutputConfig locates the stage artifacts.
type OutputConfig struct {
	Dir string `yaml:"dir"` // artifact directory (default: report)
}

// LoadConfig builds a Config from environment variables and defaults.
func LoadConfig() (*Config, error) {
	return buildBaseConfig(), nil
}

// LoadConfigFromFile builds the base Config and overlays values from a YAML
// file. File values take precedence over environment variables.
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := buildBaseConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func buildBaseConfig() *Config {
	return &Config{
		Profile: ProfileConfig{
			FileLimit:    getEnvInt("EXPLORER_FILE_LIMIT", 1000),
			SampleValues: getEnvInt("EXPLORER_SAMPLE_VALUES", 5),
		},
		Shrink: ShrinkConfig{
			MaxValueCounts: getEnvInt("EXPLORER_SHRINK_MAX_VALUE_COUNTS", 10),
			MaxTextChars:   getEnvInt("EXPLORER_SHRINK_MAX_TEXT_CHARS", 1000),
		},
		LLM: LLMConfig{
			Provider:          getEnv("EXPLORER_LLM_PROVIDER", "openai"),
			BaseURL:           getEnv("EXPLORER_LLM_BASE_URL", ""),
			APIKey:            getEnv("EXPLORER_LLM_API_KEY", os.Getenv("OPENROUTER_API_KEY")),
			Model:             getEnv("EXPLORER_LLM_MODEL", "anthropic/claude-3.5-sonnet"),
			MaxTokens:         getEnvInt("EXPLORER_LLM_MAX_TOKENS", 1024),
			Temperature:       getEnvFloat("EXPLORER_LLM_TEMPERATURE", 0.1),
			Timeout:           getEnvDuration("EXPLORER_LLM_TIMEOUT", 60*time.Second),
			Concurrency:       getEnvInt("EXPLORER_LLM_CONCURRENCY", 4),
			RequestsPerSecond: getEnvFloat("EXPLORER_LLM_REQUESTS_PER_SECOND", 2),
			SiteURL:           getEnv("EXPLORER_SITE_URL", ""),
			SiteName:          getEnv("EXPLORER_SITE_NAME", ""),
		},
		Cache: CacheConfig{
			Engine:      getEnv("EXPLORER_CACHE_ENGINE", "sqlite"),
			Path:        getEnv("EXPLORER_CACHE_PATH", ".explorer-cache.db"),
			PostgresDSN: getEnv("EXPLORER_CACHE_POSTGRES_DSN", ""),
		},
		Output: OutputConfig{
			Dir: getEnv("EXPLORER_OUTPUT_DIR", "report"),
		},
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value when absent or unparseable.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value when absent or unparseable.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (e.g. "90s") or
// returns a default value when absent or unparseable.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
