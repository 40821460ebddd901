package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  HTTPServerConfig `json:"server"`
	Metrics MetricsConfig    `json:"metrics"`
	Mongo   MongoConfig      `json:"mongo"`
	Bundles BundleConfig     `json:"bundles"`
	LLM     LLMConfig        `json:"llm"`
}

type HTTPServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

type MetricsConfig struct {
	Addr string `json:"addr"`
}

// MongoConfig is optional: an empty URI switches the service to the in-memory
// stores.
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

type BundleConfig struct {
	Dir string `json:"dir"`
}

// LLMConfig carries one section per supported backend. A backend with no
// credentials is skipped at startup; Primary names the backend tried first.
type LLMConfig struct {
	Primary string `json:"primary"`

	OpenAI    OpenAIConfig    `json:"openai"`
	Anthropic AnthropicConfig `json:"anthropic"`
	Ollama    OllamaConfig    `json:"ollama"`
}

type OpenAIConfig struct {
	APIKey  string `json:"-"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

type AnthropicConfig struct {
	APIKey  string `json:"-"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

type OllamaConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// Load builds the configuration from environment variables. Every setting has
// a local default except the LLM credentials; main fails the startup when not
// a single backend is usable.
func Load() *Config {
	return &Config{
		Server: HTTPServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 2*time.Minute),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Minute),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ":2112"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("MONGO_DB", "iacforge"),
		},
		Bundles: BundleConfig{
			Dir: getEnv("BUNDLE_DIR", "./bundles"),
		},
		LLM: LLMConfig{
			Primary: getEnv("LLM_PRIMARY", "openai"),
			OpenAI: OpenAIConfig{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				BaseURL: getEnv("OPENAI_BASE_URL", ""),
				Model:   getEnv("OPENAI_MODEL", ""),
			},
			Anthropic: AnthropicConfig{
				APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL: getEnv("ANTHROPIC_BASE_URL", ""),
				Model:   getEnv("ANTHROPIC_MODEL", ""),
			},
			Ollama: OllamaConfig{
				BaseURL: getEnv("OLLAMA_URL", ""),
				Model:   getEnv("OLLAMA_MODEL", ""),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
