package config

import (
	"time"

	"github.com/nunnai/marketmentor/internal/format"
)

// ProviderType identifies a chat completion API.
type ProviderType string

const (
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderOpenAI     ProviderType = "openai"
)

// WidgetMode selects where the widget clients send questions.
type WidgetMode string

const (
	// ModeBackend posts to the mentor backend's /ask endpoint.
	ModeBackend WidgetMode = "backend"
	// ModeDirect calls a completion API without the backend pipeline.
	ModeDirect WidgetMode = "direct"
	// ModeSocket keeps a websocket open to the backend's /ws endpoint.
	ModeSocket WidgetMode = "socket"
)

// Config is the top-level mentor configuration, corresponding to .mentor.yml.
type Config struct {
	Server ServerConfig  `yaml:"server" koanf:"server"`
	LLM    LLMConfig     `yaml:"llm" koanf:"llm"`
	Search SearchConfig  `yaml:"search" koanf:"search"`
	Widget WidgetConfig  `yaml:"widget" koanf:"widget"`
	Footer format.Footer `yaml:"footer" koanf:"footer"`
}

// ServerConfig holds the HTTP backend settings.
type ServerConfig struct {
	Port           int           `yaml:"port" koanf:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins" koanf:"allowed_origins"`
	PublicDir      string        `yaml:"public_dir" koanf:"public_dir"`
	TermsFile      string        `yaml:"terms_file" koanf:"terms_file"`
	PrivacyFile    string        `yaml:"privacy_file" koanf:"privacy_file"`
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
	// HistoryDB is the SQLite question log. Empty disables it.
	HistoryDB string `yaml:"history_db" koanf:"history_db"`
}

// LLMConfig selects the models used by the answering pipeline.
type LLMConfig struct {
	Provider          ProviderType  `yaml:"provider" koanf:"provider"`
	AnswerModel       string        `yaml:"answer_model" koanf:"answer_model"`
	RelevanceModel    string        `yaml:"relevance_model" koanf:"relevance_model"`
	RejectionModel    string        `yaml:"rejection_model" koanf:"rejection_model"`
	AnswerMaxTokens   int           `yaml:"answer_max_tokens" koanf:"answer_max_tokens"`
	AnswerTimeout     time.Duration `yaml:"answer_timeout" koanf:"answer_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	CacheSize         int           `yaml:"cache_size" koanf:"cache_size"`
	Referer           string        `yaml:"referer" koanf:"referer"`
	Title             string        `yaml:"title" koanf:"title"`
}

// SearchConfig sets how many hits each engine contributes.
type SearchConfig struct {
	ScreenResults int  `yaml:"screen_results" koanf:"screen_results"`
	YouResults    int  `yaml:"you_results" koanf:"you_results"`
	GoogleResults int  `yaml:"google_results" koanf:"google_results"`
	GoogleRecent  bool `yaml:"google_recent" koanf:"google_recent"`
}

// WidgetConfig configures the terminal widget clients (ask, chat).
type WidgetConfig struct {
	Mode            WidgetMode    `yaml:"mode" koanf:"mode"`
	Endpoint        string        `yaml:"endpoint" koanf:"endpoint"`
	SocketEndpoint  string        `yaml:"socket_endpoint" koanf:"socket_endpoint"`
	Timeout         time.Duration `yaml:"timeout" koanf:"timeout"`
	DirectProvider  ProviderType  `yaml:"direct_provider" koanf:"direct_provider"`
	DirectModel     string        `yaml:"direct_model" koanf:"direct_model"`
	DirectMaxTokens int           `yaml:"direct_max_tokens" koanf:"direct_max_tokens"`
}
