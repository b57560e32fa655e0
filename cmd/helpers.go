package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/config"
	"github.com/nunnai/marketmentor/internal/llm"
	"github.com/nunnai/marketmentor/internal/logging"
	"github.com/nunnai/marketmentor/internal/mentor"
	"github.com/nunnai/marketmentor/internal/search"
	"github.com/nunnai/marketmentor/internal/widget"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `mentor init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the logger for long-running commands. Interactive
// commands only want errors on stderr unless --verbose is set.
func newLogger(interactive bool) (*zap.Logger, error) {
	if interactive && !verbose {
		return logging.Quiet(), nil
	}
	return logging.New(verbose)
}

// createLLMProvider creates a chat provider, rate limited unless
// requests_per_minute is 0. keyEnv overrides the provider's default API key
// variable when non-empty.
func createLLMProvider(cfg *config.Config, provider config.ProviderType, model, keyEnv string) (llm.Provider, error) {
	p, err := llm.NewProvider(string(provider), model, keyEnv,
		llm.WithAttribution(cfg.LLM.Referer, cfg.LLM.Title),
	)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.RequestsPerMinute <= 0 {
		return p, nil
	}
	return llm.NewRateLimitedProvider(p, cfg.LLM.RequestsPerMinute), nil
}

// createSearchers builds both search clients from the environment.
func createSearchers(cfg *config.Config) (you, google search.Searcher) {
	var gopts []search.Option
	if cfg.Search.GoogleRecent {
		gopts = append(gopts, search.WithRecent())
	}
	you = search.NewYouSearcher(os.Getenv(config.EnvYouKey))
	google = search.NewGoogleSearcher(os.Getenv(config.EnvGoogleKey), os.Getenv(config.EnvSearchEngineID), gopts...)
	return you, google
}

// createMentor wires the answering pipeline. The relevance screen uses its
// own OpenRouter key when one is configured.
func createMentor(cfg *config.Config, logger *zap.Logger) (*mentor.Mentor, error) {
	answer, err := createLLMProvider(cfg, cfg.LLM.Provider, cfg.LLM.AnswerModel, "")
	if err != nil {
		return nil, fmt.Errorf("creating answer provider: %w", err)
	}

	var screen llm.Provider
	if cfg.LLM.Provider == config.ProviderOpenRouter && os.Getenv(config.EnvOpenRouterScreenKey) != "" {
		screen, err = createLLMProvider(cfg, cfg.LLM.Provider, cfg.LLM.RelevanceModel, config.EnvOpenRouterScreenKey)
		if err != nil {
			return nil, fmt.Errorf("creating relevance provider: %w", err)
		}
	}

	you, google := createSearchers(cfg)

	return mentor.New(mentor.Deps{
		Answer: answer,
		Screen: screen,
		You:    you,
		Google: google,
	}, mentorConfig(cfg), logger)
}

func mentorConfig(cfg *config.Config) mentor.Config {
	return mentor.Config{
		AnswerModel:     cfg.LLM.AnswerModel,
		RelevanceModel:  cfg.LLM.RelevanceModel,
		RejectionModel:  cfg.LLM.RejectionModel,
		AnswerMaxTokens: cfg.LLM.AnswerMaxTokens,
		AnswerTimeout:   cfg.LLM.AnswerTimeout,
		ScreenResults:   cfg.Search.ScreenResults,
		YouResults:      cfg.Search.YouResults,
		GoogleResults:   cfg.Search.GoogleResults,
		CacheSize:       cfg.LLM.CacheSize,
	}
}

// createTransport picks where the widget clients send questions.
func createTransport(cfg *config.Config) (widget.Transport, error) {
	switch cfg.Widget.Mode {
	case config.ModeDirect:
		p, err := createLLMProvider(cfg, cfg.Widget.DirectProvider, cfg.Widget.DirectModel, "")
		if err != nil {
			return nil, fmt.Errorf("creating direct provider: %w", err)
		}
		return widget.NewCompletionTransport(p, cfg.Widget.DirectModel, cfg.Widget.DirectMaxTokens), nil
	case config.ModeSocket:
		return widget.NewSocketTransport(cfg.Widget.SocketEndpoint, nil), nil
	default:
		return widget.NewBackendTransport(cfg.Widget.Endpoint, nil), nil
	}
}
