// Package mentor answers supplier questions: it screens the question for
// relevance, gathers web search context and asks the answering model.
package mentor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tiktoken-go/tokenizer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/nunnai/marketmentor/internal/llm"
	"github.com/nunnai/marketmentor/internal/search"
)

// ErrEmptyQuestion is returned for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

var banner = strings.Repeat("=", 80)

const defaultProcessTimeout = 3 * time.Minute

// Route records how a question was handled.
type Route string

const (
	// RouteKeyword means the keyword screen accepted the question.
	RouteKeyword Route = "keyword"
	// RouteModel means the model screen accepted the question.
	RouteModel Route = "model"
	// RouteRejected means the question was judged off topic.
	RouteRejected Route = "rejected"
)

// Answer is the result of processing one question.
type Answer struct {
	Text  string
	Route Route
	// Failed is set when Text is the generation failure notice.
	Failed bool
}

// Config tunes the pipeline.
type Config struct {
	AnswerModel     string
	RelevanceModel  string
	RejectionModel  string
	AnswerMaxTokens int
	AnswerTimeout   time.Duration
	// ProcessTimeout bounds one shared pipeline run. Zero means
	// defaultProcessTimeout.
	ProcessTimeout time.Duration
	// ScreenResults is the number of hits fetched for the relevance check.
	ScreenResults int
	YouResults    int
	GoogleResults int
	CacheSize     int
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		AnswerModel:     "anthropic/claude-3.5-sonnet",
		RelevanceModel:  "openai/gpt-4o",
		RejectionModel:  "anthropic/claude-3.5-sonnet",
		AnswerMaxTokens: 8192,
		AnswerTimeout:   60 * time.Second,
		ScreenResults:   5,
		YouResults:      15,
		GoogleResults:   10,
		CacheSize:       DefaultCacheSize,
	}
}

// Deps are the external services the pipeline talks to.
type Deps struct {
	// Answer generates answers and rejections.
	Answer llm.Provider
	// Screen runs the relevance check. Nil falls back to Answer.
	Screen llm.Provider
	You    search.Searcher
	Google search.Searcher
}

// Mentor processes questions. It is safe for concurrent use; identical
// questions in flight at the same time share one pipeline run.
type Mentor struct {
	deps      Deps
	cfg       Config
	relevance *Relevance
	codec     tokenizer.Codec
	logger    *zap.Logger
	group     singleflight.Group
}

// New creates a Mentor.
func New(deps Deps, cfg Config, logger *zap.Logger) (*Mentor, error) {
	if deps.Answer == nil {
		return nil, errors.New("answer provider is required")
	}
	if deps.You == nil || deps.Google == nil {
		return nil, errors.New("both search engines are required")
	}
	if deps.Screen == nil {
		deps.Screen = deps.Answer
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rel, err := NewRelevance(deps.Screen, cfg.RelevanceModel, cfg.CacheSize, logger)
	if err != nil {
		return nil, err
	}

	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		logger.Warn("tokenizer unavailable, estimating token counts", zap.Error(err))
		codec = nil
	}

	return &Mentor{deps: deps, cfg: cfg, relevance: rel, codec: codec, logger: logger}, nil
}

// Process answers question. The only error is ErrEmptyQuestion or a
// cancelled ctx; model and search failures are folded into the answer text.
//
// The shared run is detached from any single caller, so one caller giving up
// does not fail the others waiting on the same question.
func (m *Mentor) Process(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}

	ch := m.group.DoChan(Normalize(question), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.processTimeout())
		defer cancel()
		return m.process(runCtx, question)
	})

	select {
	case <-ctx.Done():
		return Answer{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			m.logger.Debug("joined in-flight question")
		}
		if res.Err != nil {
			return Answer{}, res.Err
		}
		return res.Val.(Answer), nil
	}
}

func (m *Mentor) processTimeout() time.Duration {
	if m.cfg.ProcessTimeout > 0 {
		return m.cfg.ProcessTimeout
	}
	return defaultProcessTimeout
}

func (m *Mentor) process(ctx context.Context, question string) (Answer, error) {
	log := m.logger.With(zap.String("question", question))
	log.Info("processing new question")

	route := RouteKeyword
	if kw, ok := KeywordRelevant(question); ok {
		log.Info("keyword relevance check passed", zap.String("keyword", kw))
	} else {
		log.Info("keyword relevance check failed, asking model")
		snippets := search.Text(ctx, m.deps.You, question, m.cfg.ScreenResults, m.logger)
		if !m.relevance.Check(ctx, question, snippets) {
			log.Info("question rejected as off topic")
			return Answer{Text: m.reject(ctx, question), Route: RouteRejected}, ctx.Err()
		}
		route = RouteModel
	}

	combined, err := m.gather(ctx, question)
	if err != nil {
		return Answer{}, err
	}

	text, failed := m.generate(ctx, question, combined)
	return Answer{Text: text, Route: route, Failed: failed}, nil
}

type section struct {
	title string
	body  string
}

// gather runs both searches in parallel and joins them under banners.
func (m *Mentor) gather(ctx context.Context, question string) (string, error) {
	query := searchPrefix + question
	sections := []section{
		{title: "YOU.COM SEARCH RESULTS"},
		{title: "GOOGLE SEARCH RESULTS (STANDARD)"},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sections[0].body = search.Text(gctx, m.deps.You, query, m.cfg.YouResults, m.logger)
		return nil
	})
	g.Go(func() error {
		sections[1].body = search.Text(gctx, m.deps.Google, query, m.cfg.GoogleResults, m.logger)
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("gathering context: %w", err)
	}

	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = fmt.Sprintf("%s\n%s\n%s\n%s", banner, s.title, banner, s.body)
	}
	return strings.Join(parts, "\n\n"), nil
}

// generate asks the answering model. On failure it returns GenerationFailed.
func (m *Mentor) generate(ctx context.Context, question, combined string) (string, bool) {
	system := SystemPrompt(combined)

	timeout := m.cfg.AnswerTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := m.deps.Answer.Complete(ctx, llm.CompletionRequest{
		Model: m.cfg.AnswerModel,
		Messages: []llm.Message{
			llm.System(system),
			llm.User(question),
		},
		Temperature: 0.7,
		TopP:        1,
		MaxTokens:   m.cfg.AnswerMaxTokens,
	})
	if err != nil {
		m.logger.Error("answer generation failed", zap.Error(err))
		return GenerationFailed, true
	}

	m.logUsage(system, combined, question, resp)
	return resp.Content, false
}

func (m *Mentor) logUsage(system, combined, question string, resp *llm.CompletionResponse) {
	in := resp.InputTokens
	if in == 0 {
		in = m.countTokens(system) + m.countTokens(question)
	}
	out := resp.OutputTokens
	if out == 0 {
		out = m.countTokens(resp.Content)
	}
	model := resp.Model
	if model == "" {
		model = m.cfg.AnswerModel
	}

	m.logger.Info("answer generated",
		zap.Int("system_prompt_len", len(system)),
		zap.Int("context_len", len(combined)),
		zap.Int("question_len", len(question)),
		zap.Int("response_len", len(resp.Content)),
		zap.Int("input_tokens", in),
		zap.Int("output_tokens", out),
		zap.Float64("estimated_cost_usd", llm.EstimateCost(model, in, out)),
	)
}

func (m *Mentor) countTokens(s string) int {
	if m.codec != nil {
		if ids, _, err := m.codec.Encode(s); err == nil {
			return len(ids)
		}
	}
	return llm.EstimateTokens(s)
}

// reject produces the playful off-topic reply, or FallbackRejection.
func (m *Mentor) reject(ctx context.Context, question string) string {
	resp, err := m.deps.Answer.Complete(ctx, llm.CompletionRequest{
		Model: m.cfg.RejectionModel,
		Messages: []llm.Message{
			llm.System(rejectionSystemPrompt),
			llm.User(rejectionPrompt(question)),
		},
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   150,
	})
	if err != nil {
		m.logger.Error("rejection generation failed", zap.Error(err))
		return FallbackRejection
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return FallbackRejection
	}
	return text
}

// CachedDecisions reports how many relevance decisions are cached.
func (m *Mentor) CachedDecisions() int { return m.relevance.Len() }
