package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Supported generation providers.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
)

// Config aggregates every setting of the service.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Chat   ChatConfig
	Log    LogConfig
}

// Load reads configuration from the process environment. Call godotenv
// beforehand to pick up a .env file.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Server = server
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with. A missing
// credential is not an error here: AI calls fail closed at runtime instead.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderArk, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid AI_PROVIDER value %q: want %s, %s or %s", c.AI.Provider, ProviderGemini, ProviderArk, ProviderOpenAI)
	}

	if c.Chat.HistoryMaxTurns < 0 {
		return fmt.Errorf("invalid CHAT_HISTORY_MAX_TURNS value %d: must not be negative", c.Chat.HistoryMaxTurns)
	}
	if c.Chat.HistoryMaxChars < 0 {
		return fmt.Errorf("invalid CHAT_HISTORY_MAX_CHARS value %d: must not be negative", c.Chat.HistoryMaxChars)
	}
	if c.Chat.RequestTimeout < 0 {
		return fmt.Errorf("invalid CHAT_REQUEST_TIMEOUT value %s: must not be negative", c.Chat.RequestTimeout)
	}
	return nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// loadServerConfig resolves the listen address from PORT.
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the generation endpoint.
type AIConfig struct {
	Provider string `env:"AI_PROVIDER" envDefault:"gemini"`

	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	APIKey      string   `env:"ARK_API_KEY"`
	AccessKey   string   `env:"ARK_ACCESS_KEY"`
	SecretKey   string   `env:"ARK_SECRET_KEY"`
	Model       string   `env:"ARK_MODEL"`
	BaseURL     string   `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region      string   `env:"ARK_REGION" envDefault:"cn-beijing"`
	Temperature *float64 `env:"ARK_TEMPERATURE"`
	TopP        *float64 `env:"ARK_TOP_P"`
	MaxTokens   *int     `env:"ARK_MAX_TOKENS"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
}

// CredentialEnv names the variable holding the selected provider's key.
func (c AIConfig) CredentialEnv() string {
	switch c.Provider {
	case ProviderArk:
		return "ARK_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GOOGLE_API_KEY"
	}
}

// SetCredential stores an operator-supplied key for the selected provider.
func (c *AIConfig) SetCredential(key string) {
	key = strings.TrimSpace(key)
	switch c.Provider {
	case ProviderArk:
		c.APIKey = key
	case ProviderOpenAI:
		c.OpenAIAPIKey = key
	default:
		c.GoogleAPIKey = key
	}
}

// Enabled reports whether the selected provider has the credentials it needs.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderGemini:
		return c.GoogleAPIKey != ""
	default:
		return false
	}
}

// NewChatModel builds an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Model == "" || (c.APIKey == "" && (c.AccessKey == "" || c.SecretKey == "")) {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_MODEL and ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

// ChatConfig controls prompt assembly and session lifetime.
type ChatConfig struct {
	HistoryMaxTurns int           `env:"CHAT_HISTORY_MAX_TURNS" envDefault:"0"`
	HistoryMaxChars int           `env:"CHAT_HISTORY_MAX_CHARS" envDefault:"0"`
	RequestTimeout  time.Duration `env:"CHAT_REQUEST_TIMEOUT" envDefault:"0s"`
	SessionTTL      time.Duration `env:"CHAT_SESSION_TTL" envDefault:"30m"`
	IncludeDate     bool          `env:"CHAT_INCLUDE_DATE" envDefault:"false"`
	KnowledgeFile   string        `env:"CHAT_KNOWLEDGE_FILE"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}
