package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_LLM(t *testing.T) {
	t.Run("GROQ_API_KEY sets provider if empty", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GROQ_API_KEY", "gsk-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gsk-key", cfg.LLM.APIKey)
		assert.Equal(t, ProviderGroq, cfg.LLM.Provider)
	})

	t.Run("GROQ_API_KEY does not override existing provider", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GROQ_API_KEY", "gsk-key")

		cfg := &Config{LLM: LLMConfig{Provider: "custom"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gsk-key", cfg.LLM.APIKey)
		assert.Equal(t, "custom", cfg.LLM.Provider)
	})

	t.Run("OPENAI_API_KEY switches provider", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-key")

		cfg := &Config{LLM: LLMConfig{Provider: ProviderGroq}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "sk-key", cfg.LLM.APIKey)
		assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	})

	t.Run("Precedence: GROQ beats OPENAI", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GROQ_API_KEY", "gsk-key")
		t.Setenv("OPENAI_API_KEY", "sk-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gsk-key", cfg.LLM.APIKey)
		assert.Equal(t, ProviderGroq, cfg.LLM.Provider)
	})
}

func TestEnvOverrides_Misc(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("FILEAGENT_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("FILEAGENT_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("FILEAGENT_ENGINE", EngineSDK)
	t.Setenv("FILEAGENT_DB", "/tmp/cal.db")
	t.Setenv("FILEAGENT_KNOWLEDGE", "https://example.com/faq")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.BaseURL)
	assert.Equal(t, EngineSDK, cfg.LLM.Engine)
	assert.Equal(t, "/tmp/cal.db", cfg.Calendar.DatabasePath)
	assert.Equal(t, "https://example.com/faq", cfg.Knowledge.Source)
}
