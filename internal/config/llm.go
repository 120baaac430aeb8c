package config

import (
	"fmt"
	"time"
)

// Supported providers. Both speak the OpenAI chat completions dialect.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
)

// Supported engines: the hand-rolled HTTP client or the go-openai SDK.
const (
	EngineHTTP = "http"
	EngineSDK  = "sdk"
)

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{ProviderGroq, ProviderOpenAI}

// ValidEngines lists all supported LLM engines.
var ValidEngines = []string{EngineHTTP, EngineSDK}

// LLMConfig configures the chat completion client.
type LLMConfig struct {
	Provider        string  `yaml:"provider"` // groq, openai
	Engine          string  `yaml:"engine"`   // http, sdk
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	BaseURL         string  `yaml:"base_url"`
	Timeout         string  `yaml:"timeout"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float64 `yaml:"temperature"`
	ReasoningEffort string  `yaml:"reasoning_effort"` // low, medium, high
	MaxRetries      int     `yaml:"max_retries"`
}

// DefaultLLMConfig returns the Groq defaults. Model and BaseURL stay empty
// so they follow the provider, which an API key in the environment may switch.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:        ProviderGroq,
		Engine:          EngineHTTP,
		Timeout:         "120s",
		MaxTokens:       4096,
		Temperature:     0.7,
		ReasoningEffort: "low",
		MaxRetries:      3,
	}
}

// DefaultBaseURL returns the API base for a provider.
func DefaultBaseURL(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	default:
		return "https://api.groq.com/openai/v1"
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return "openai/gpt-oss-20b"
	}
}

// ResolvedBaseURL returns the configured base URL or the provider default.
func (c LLMConfig) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL(c.Provider)
}

// ResolvedModel returns the configured model or the provider default.
func (c LLMConfig) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel(c.Provider)
}

// GetTimeout returns the LLM timeout as a duration.
func (c LLMConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// Validate checks that the LLM section can build a client.
func (c LLMConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GROQ_API_KEY or OPENAI_API_KEY, or llm.api_key)")
	}
	if !contains(ValidProviders, c.Provider) {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.Provider, ValidProviders)
	}
	if c.Engine != "" && !contains(ValidEngines, c.Engine) {
		return fmt.Errorf("invalid LLM engine: %s (valid: %v)", c.Engine, ValidEngines)
	}
	switch c.ReasoningEffort {
	case "", "low", "medium", "high":
	default:
		return fmt.Errorf("invalid reasoning effort: %s", c.ReasoningEffort)
	}
	return nil
}
