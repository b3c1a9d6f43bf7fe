package config

import "os"

// ProviderKind identifies one of the configurable AI backends.
type ProviderKind string

const (
	ProviderHuggingFace ProviderKind = "huggingface"
	ProviderOllama      ProviderKind = "ollama"
	ProviderMock        ProviderKind = "mock"
)

// Environment classifiers. Only EnvLocal makes an Ollama endpoint eligible.
const (
	EnvProduction = "production"
	EnvHosted     = "hosted"
	EnvLocal      = "local"
)

type HuggingFaceConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

// Config is read once at startup and immutable for the process lifetime.
type Config struct {
	Addr        string
	Environment string

	HuggingFace HuggingFaceConfig
	Ollama      OllamaConfig

	// Provider is the statically selected backend, resolved by SelectProvider.
	Provider ProviderKind
}

func Load() Config {
	cfg := Config{
		Addr:        getEnv("OPSA_ADDR", ":8080"),
		Environment: getEnv("OPSA_ENV", EnvLocal),
		HuggingFace: HuggingFaceConfig{
			APIKey:  os.Getenv("HUGGINGFACE_API_KEY"),
			Model:   getEnv("HUGGINGFACE_MODEL", "meta-llama/Llama-3.1-8B-Instruct"),
			BaseURL: getEnv("HUGGINGFACE_BASE_URL", "https://router.huggingface.co/v1"),
		},
		Ollama: OllamaConfig{
			BaseURL: os.Getenv("OLLAMA_BASE_URL"),
			Model:   getEnv("OLLAMA_MODEL", "llama3"),
		},
	}
	cfg.Provider = SelectProvider(cfg)
	return cfg
}

// SelectProvider resolves the active AI backend once at startup. A Hugging
// Face API key always wins; an Ollama endpoint only counts in a local
// environment; everything else runs in mock mode.
func SelectProvider(cfg Config) ProviderKind {
	if cfg.HuggingFace.APIKey != "" {
		return ProviderHuggingFace
	}
	if cfg.Environment == EnvLocal && cfg.Ollama.BaseURL != "" {
		return ProviderOllama
	}
	return ProviderMock
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
