package llm

import (
	"fmt"

	"fileagent/internal/config"
	"fileagent/internal/logging"
)

// NewClientFromConfig creates a chat client for the configured engine.
// Options passed by the caller override those derived from cfg.
func NewClientFromConfig(cfg config.LLMConfig, opts ...Option) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.ResolvedBaseURL()
	model := cfg.ResolvedModel()

	httpCfg := HTTPConfig{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		BaseURL:  baseURL,
		Timeout:  cfg.GetTimeout(),
		Defaults: Defaults{
			Model:           model,
			MaxTokens:       cfg.MaxTokens,
			Temperature:     cfg.Temperature,
			ReasoningEffort: cfg.ReasoningEffort,
		},
	}

	retry := DefaultRetryConfig()
	if cfg.MaxRetries >= 0 {
		retry.MaxAttempts = cfg.MaxRetries + 1
	}
	all := append([]Option{WithRetryConfig(retry)}, opts...)

	switch cfg.Engine {
	case config.EngineHTTP, "":
		logging.Boot("LLM client: provider=%s engine=http model=%s base=%s", cfg.Provider, model, baseURL)
		return NewHTTPClient(httpCfg, all...), nil
	case config.EngineSDK:
		logging.Boot("LLM client: provider=%s engine=sdk model=%s base=%s", cfg.Provider, model, baseURL)
		return NewSDKClient(httpCfg, all...), nil
	default:
		return nil, fmt.Errorf("unknown engine: %s (valid: %v)", cfg.Engine, config.ValidEngines)
	}
}
