package mentor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/nunnai/marketmentor/internal/llm"
)

// DefaultCacheSize bounds the number of remembered relevance decisions.
const DefaultCacheSize = 1000

// Relevance asks a model whether a question belongs to the supplier domain.
// Decisions are cached by question and snippets; failed checks are not.
type Relevance struct {
	provider llm.Provider
	model    string
	cache    *lru.Cache[string, bool]
	logger   *zap.Logger
}

// NewRelevance creates a checker backed by p. size <= 0 uses DefaultCacheSize.
func NewRelevance(p llm.Provider, model string, size int, logger *zap.Logger) (*Relevance, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, bool](size)
	if err != nil {
		return nil, fmt.Errorf("creating relevance cache: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relevance{provider: p, model: model, cache: cache, logger: logger}, nil
}

// CacheKey is the md5 of the normalized question and the snippets.
func CacheKey(question, snippets string) string {
	h := md5.New()
	h.Write([]byte(strings.TrimSpace(strings.ToLower(question))))
	h.Write([]byte{0})
	h.Write([]byte(snippets))
	return hex.EncodeToString(h.Sum(nil))
}

// Check reports whether question is on topic given search snippets. Any
// failure or unrecognised reply counts as off topic.
func (r *Relevance) Check(ctx context.Context, question, snippets string) bool {
	key := CacheKey(question, snippets)
	if v, ok := r.cache.Get(key); ok {
		r.logger.Debug("relevance cache hit", zap.Bool("decision", v))
		return v
	}

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		Model: r.model,
		Messages: []llm.Message{
			llm.System(relevanceSystemPrompt),
			llm.User(relevancePrompt(question, snippets)),
		},
		Temperature: 0.1,
		TopP:        1,
		MaxTokens:   50,
	})
	if err != nil {
		r.logger.Error("relevance check failed", zap.Error(err))
		return false
	}

	decision, explanation := parseDecision(resp.Content)
	r.logger.Info("relevance check decided",
		zap.Bool("decision", decision),
		zap.String("explanation", explanation),
	)
	r.cache.Add(key, decision)
	return decision
}

// Len returns the number of cached decisions.
func (r *Relevance) Len() int { return r.cache.Len() }

func parseDecision(content string) (bool, string) {
	content = strings.TrimSpace(content)
	lower := strings.ToLower(content)
	switch {
	case strings.HasPrefix(lower, "true"):
		return true, strings.TrimSpace(content[len("true"):])
	case strings.HasPrefix(lower, "false"):
		return false, strings.TrimSpace(content[len("false"):])
	default:
		return false, "unexpected response format"
	}
}
