package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
)

// modelPresets are the suggested answering models per provider.
var modelPresets = map[ProviderType][]string{
	ProviderOpenRouter: {
		"anthropic/claude-3.5-sonnet",
		"anthropic/claude-3.5-haiku",
		"openai/gpt-4o",
		"openai/gpt-4o-mini",
	},
	ProviderOpenAI: {
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-3.5-turbo",
	},
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to Market Mentor! Let's configure your deployment.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{string(ProviderOpenRouter), string(ProviderOpenAI)},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.LLM.Provider = ProviderType(providerStr)

	// 2. Answering model.
	modelPrompt := promptui.Select{
		Label: "Select answering model",
		Items: modelPresets[cfg.LLM.Provider],
	}
	_, model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model selection: %w", err)
	}
	cfg.LLM.AnswerModel = model
	cfg.LLM.RejectionModel = model
	if cfg.LLM.Provider == ProviderOpenAI {
		cfg.LLM.RelevanceModel = "gpt-4o"
	}

	// 3. Port.
	portPrompt := promptui.Prompt{
		Label:    "Backend port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)
	cfg.Widget.Endpoint = fmt.Sprintf("http://localhost:%d/ask", cfg.Server.Port)
	cfg.Widget.SocketEndpoint = fmt.Sprintf("ws://localhost:%d/ws", cfg.Server.Port)

	// 4. Allowed origins.
	originsPrompt := promptui.Prompt{
		Label:   "Allowed CORS origins (comma-separated)",
		Default: strings.Join(cfg.Server.AllowedOrigins, ","),
	}
	originsStr, err := originsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("allowed origins: %w", err)
	}
	if origins := splitAndTrim(originsStr); len(origins) > 0 {
		cfg.Server.AllowedOrigins = origins
	}

	// 5. Widget mode.
	modePrompt := promptui.Select{
		Label: "Widget mode for `mentor ask` and `mentor chat`",
		Items: []string{
			"backend: send questions to this server's /ask endpoint",
			"direct: call the completion API without the search pipeline",
			"socket: keep a websocket open to this server's /ws endpoint",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("widget mode: %w", err)
	}
	cfg.Widget.Mode = []WidgetMode{ModeBackend, ModeDirect, ModeSocket}[modeIdx]

	// 6. Widget timeout.
	timeoutPrompt := promptui.Prompt{
		Label:   "Widget request timeout",
		Default: cfg.Widget.Timeout.String(),
		Validate: func(s string) error {
			_, err := time.ParseDuration(s)
			return err
		},
	}
	timeoutStr, err := timeoutPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("widget timeout: %w", err)
	}
	cfg.Widget.Timeout, _ = time.ParseDuration(timeoutStr)

	for _, v := range requiredEnv(cfg) {
		if os.Getenv(v) == "" {
			fmt.Printf("\nNote: Set %s in your environment (or .env) before running mentor serve.", v)
		}
	}
	fmt.Println()

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// requiredEnv lists the credentials the configured deployment needs.
func requiredEnv(cfg *Config) []string {
	vars := []string{APIKeyEnvVar(cfg.LLM.Provider), EnvGoogleKey, EnvSearchEngineID, EnvYouKey}
	if cfg.Widget.Mode == ModeDirect {
		if v := APIKeyEnvVar(cfg.Widget.DirectProvider); v != vars[0] {
			vars = append(vars, v)
		}
	}
	return vars
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if n <= 0 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
