package llm

import (
	"context"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

const defaultMaxTokens = 4096

// ChatProvider implements Provider on top of any OpenAI-compatible chat
// completions API (OpenRouter or OpenAI itself).
type ChatProvider struct {
	client *openai.Client
	model  string
	name   string
}

type options struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
}

// Option customizes a ChatProvider.
type Option func(*options)

// WithBaseURL points the provider at a different API root.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithAttribution sets the HTTP-Referer and X-Title headers OpenRouter uses
// for app rankings.
func WithAttribution(referer, title string) Option {
	return func(o *options) {
		if referer != "" {
			o.headers["HTTP-Referer"] = referer
		}
		if title != "" {
			o.headers["X-Title"] = title
		}
	}
}

// NewOpenRouterProvider creates a provider for the OpenRouter API.
func NewOpenRouterProvider(apiKey string, model string, opts ...Option) *ChatProvider {
	return newChatProvider("openrouter", OpenRouterBaseURL, apiKey, model, opts)
}

// NewOpenAIProvider creates a provider for the OpenAI API.
func NewOpenAIProvider(apiKey string, model string, opts ...Option) *ChatProvider {
	return newChatProvider("openai", "", apiKey, model, opts)
}

func newChatProvider(name, baseURL, apiKey, model string, opts []Option) *ChatProvider {
	o := options{baseURL: baseURL, headers: map[string]string{}}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := openai.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if len(o.headers) > 0 {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *httpClient
		wrapped.Transport = &headerTransport{base: base, headers: o.headers}
		httpClient = &wrapped
	}
	cfg.HTTPClient = httpClient

	return &ChatProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		name:   name,
	}
}

func (p *ChatProvider) Name() string {
	return p.name
}

// Model returns the default model of this provider.
func (p *ChatProvider) Model() string {
	return p.model
}

func (p *ChatProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	var messages []openai.ChatCompletionMessage
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
	}

	resp, err := p.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, err
	}

	var content, finishReason string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = string(resp.Choices[0].FinishReason)
	}

	return &CompletionResponse{
		Content:      content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		FinishReason: finishReason,
	}, nil
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
