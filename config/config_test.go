package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OpsaAI/OpsaAI/config"
)

func TestSelectProviderHuggingFaceWinsOverOllama(t *testing.T) {
	cfg := config.Config{
		Environment: config.EnvLocal,
		HuggingFace: config.HuggingFaceConfig{APIKey: "hf_test"},
		Ollama:      config.OllamaConfig{BaseURL: "http://localhost:11434"},
	}
	assert.Equal(t, config.ProviderHuggingFace, config.SelectProvider(cfg))
}

func TestSelectProviderOllamaRequiresLocalEnvironment(t *testing.T) {
	cfg := config.Config{
		Environment: config.EnvLocal,
		Ollama:      config.OllamaConfig{BaseURL: "http://localhost:11434"},
	}
	assert.Equal(t, config.ProviderOllama, config.SelectProvider(cfg))

	cfg.Environment = config.EnvHosted
	assert.Equal(t, config.ProviderMock, config.SelectProvider(cfg))

	cfg.Environment = config.EnvProduction
	assert.Equal(t, config.ProviderMock, config.SelectProvider(cfg))
}

func TestSelectProviderDefaultsToMock(t *testing.T) {
	assert.Equal(t, config.ProviderMock, config.SelectProvider(config.Config{Environment: config.EnvLocal}))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPSA_ADDR", "")
	t.Setenv("OPSA_ENV", "")
	t.Setenv("HUGGINGFACE_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "")

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, config.EnvLocal, cfg.Environment)
	assert.Equal(t, "meta-llama/Llama-3.1-8B-Instruct", cfg.HuggingFace.Model)
	assert.Equal(t, "https://router.huggingface.co/v1", cfg.HuggingFace.BaseURL)
	assert.Equal(t, "llama3", cfg.Ollama.Model)
	assert.Equal(t, config.ProviderMock, cfg.Provider)
}

func TestLoadResolvesProviderFromEnvironment(t *testing.T) {
	t.Setenv("OPSA_ENV", config.EnvHosted)
	t.Setenv("HUGGINGFACE_API_KEY", "hf_test")
	t.Setenv("OLLAMA_BASE_URL", "")

	cfg := config.Load()
	assert.Equal(t, config.ProviderHuggingFace, cfg.Provider)
}
