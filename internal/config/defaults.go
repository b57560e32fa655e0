package config

import (
	"time"

	"github.com/nunnai/marketmentor/internal/format"
)

// Environment variables holding credentials. Keys are never read from the
// config file.
const (
	EnvOpenRouterKey       = "OPENROUTER_API_KEY"
	EnvOpenRouterScreenKey = "OPENROUTER_DIF_API_KEY"
	EnvOpenAIKey           = "OPENAI_API_KEY"
	EnvGoogleKey           = "GOOGLE_API_KEY"
	EnvSearchEngineID      = "CUSTOM_SEARCH_ENGINE_ID"
	EnvYouKey              = "YDC_API_KEY"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".mentor.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
			PublicDir:      "public",
			TermsFile:      "mentor_tos.txt",
			PrivacyFile:    "mentor_privacy.txt",
			RequestTimeout: 120 * time.Second,
			HistoryDB:      "data/mentor.db",
		},
		LLM: LLMConfig{
			Provider:          ProviderOpenRouter,
			AnswerModel:       "anthropic/claude-3.5-sonnet",
			RelevanceModel:    "openai/gpt-4o",
			RejectionModel:    "anthropic/claude-3.5-sonnet",
			AnswerMaxTokens:   8192,
			AnswerTimeout:     60 * time.Second,
			RequestsPerMinute: 60,
			CacheSize:         1000,
			Referer:           "https://marketmentor.com",
			Title:             "Market Mentor",
		},
		Search: SearchConfig{
			ScreenResults: 5,
			YouResults:    15,
			GoogleResults: 10,
		},
		Widget: WidgetConfig{
			Mode:            ModeBackend,
			Endpoint:        "http://localhost:8080/ask",
			SocketEndpoint:  "ws://localhost:8080/ws",
			Timeout:         60 * time.Second,
			DirectProvider:  ProviderOpenAI,
			DirectModel:     "gpt-3.5-turbo",
			DirectMaxTokens: 150,
		},
		Footer: format.DefaultFooter,
	}
}
