package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nesting levels: MENTOR_SERVER__PORT -> server.port.
const EnvPrefix = "MENTOR_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (MENTOR_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOpenRouter: true,
	ProviderOpenAI:     true,
}

var validModes = map[WidgetMode]bool{
	ModeBackend: true,
	ModeDirect:  true,
	ModeSocket:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid llm.provider %q: must be one of openrouter, openai", c.LLM.Provider)
	}
	if c.LLM.AnswerModel == "" {
		return fmt.Errorf("llm.answer_model is required")
	}
	if c.LLM.AnswerMaxTokens < 0 {
		return fmt.Errorf("llm.answer_max_tokens must be non-negative")
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("llm.requests_per_minute must be non-negative")
	}

	if c.Search.ScreenResults < 0 || c.Search.YouResults < 0 || c.Search.GoogleResults < 0 {
		return fmt.Errorf("search result counts must be non-negative")
	}

	if !validModes[c.Widget.Mode] {
		return fmt.Errorf("invalid widget.mode %q: must be one of backend, direct, socket", c.Widget.Mode)
	}
	if c.Widget.Mode == ModeBackend && c.Widget.Endpoint == "" {
		return fmt.Errorf("widget.endpoint is required in backend mode")
	}
	if c.Widget.Mode == ModeSocket && c.Widget.SocketEndpoint == "" {
		return fmt.Errorf("widget.socket_endpoint is required in socket mode")
	}
	if c.Widget.Mode == ModeDirect && !validProviders[c.Widget.DirectProvider] {
		return fmt.Errorf("invalid widget.direct_provider %q", c.Widget.DirectProvider)
	}
	if c.Widget.Timeout < 0 {
		return fmt.Errorf("widget.timeout must be non-negative")
	}

	return nil
}

// APIKeyEnvVar returns the environment variable holding the API key of the
// given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenRouter:
		return EnvOpenRouterKey
	case ProviderOpenAI:
		return EnvOpenAIKey
	default:
		return ""
	}
}

// BackendSecrets lists the credentials the backend reads at startup.
var BackendSecrets = []string{
	EnvOpenRouterKey,
	EnvOpenRouterScreenKey,
	EnvGoogleKey,
	EnvSearchEngineID,
	EnvYouKey,
}

// MissingEnv returns the names in vars that are unset or empty.
func MissingEnv(vars ...string) []string {
	var missing []string
	for _, v := range vars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	return missing
}
