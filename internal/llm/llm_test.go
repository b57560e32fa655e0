package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider is a test provider that records calls and returns canned responses.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []CompletionRequest
	Response *CompletionResponse
	Err      error
	ProvName string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		Response: &CompletionResponse{
			Content:      "mock response",
			InputTokens:  10,
			OutputTokens: 20,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func TestMockProviderRecordsCalls(t *testing.T) {
	mock := NewMockProvider("test")

	resp, err := mock.Complete(context.Background(), CompletionRequest{
		Model:    "test-model",
		Messages: []Message{User("hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, "mock response", resp.Content)
	assert.Equal(t, 1, mock.CallCount())
}

func newChatServer(t *testing.T, status int, body string, seen func(r *http.Request, req map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if seen != nil {
			seen(r, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const chatOK = `{"id":"c1","object":"chat.completion","model":"anthropic/claude-3.5-sonnet",
"choices":[{"index":0,"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}],
"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`

func TestChatProviderComplete(t *testing.T) {
	var gotReq *http.Request
	var gotBody map[string]any
	srv := newChatServer(t, http.StatusOK, chatOK, func(r *http.Request, req map[string]any) {
		gotReq = r
		gotBody = req
	})

	p := NewOpenRouterProvider("sk-test", "anthropic/claude-3.5-sonnet",
		WithBaseURL(srv.URL),
		WithAttribution("https://marketmentor.com", "Market Mentor"),
	)

	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages:    []Message{System("sys"), User("hi")},
		Temperature: 0.7,
		MaxTokens:   150,
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", resp.Content)
	assert.Equal(t, 12, resp.InputTokens)
	assert.Equal(t, 3, resp.OutputTokens)
	assert.Equal(t, "stop", resp.FinishReason)

	require.NotNil(t, gotReq)
	assert.Equal(t, "/chat/completions", gotReq.URL.Path)
	assert.Equal(t, "https://marketmentor.com", gotReq.Header.Get("HTTP-Referer"))
	assert.Equal(t, "Market Mentor", gotReq.Header.Get("X-Title"))
	assert.Equal(t, "Bearer sk-test", gotReq.Header.Get("Authorization"))
	assert.Equal(t, "anthropic/claude-3.5-sonnet", gotBody["model"])
	assert.Equal(t, float64(150), gotBody["max_tokens"])
}

func TestChatProviderDefaultsMaxTokens(t *testing.T) {
	var gotBody map[string]any
	srv := newChatServer(t, http.StatusOK, chatOK, func(_ *http.Request, req map[string]any) {
		gotBody = req
	})

	p := NewOpenAIProvider("sk-test", "gpt-3.5-turbo", WithBaseURL(srv.URL))
	_, err := p.Complete(context.Background(), CompletionRequest{Messages: []Message{User("hi")}})
	require.NoError(t, err)
	assert.Equal(t, float64(defaultMaxTokens), gotBody["max_tokens"])
	assert.Equal(t, "gpt-3.5-turbo", gotBody["model"])
	assert.Equal(t, "openai", p.Name())
}

func TestStatusCodeFromAPIError(t *testing.T) {
	srv := newChatServer(t, http.StatusTooManyRequests,
		`{"error":{"message":"slow down","type":"rate_limit","code":429}}`, nil)

	p := NewOpenRouterProvider("sk-test", "m", WithBaseURL(srv.URL))
	_, err := p.Complete(context.Background(), CompletionRequest{Messages: []Message{User("hi")}})
	require.Error(t, err)
	code, ok := StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestStatusCodeFromUnstructuredError(t *testing.T) {
	srv := newChatServer(t, http.StatusBadGateway, `upstream exploded`, nil)

	p := NewOpenRouterProvider("sk-test", "m", WithBaseURL(srv.URL))
	_, err := p.Complete(context.Background(), CompletionRequest{Messages: []Message{User("hi")}})
	code, ok := StatusCode(err)
	assert.True(t, ok, "err %v", err)
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestStatusCodeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewOpenRouterProvider("sk-test", "m", WithBaseURL(url))
	_, err := p.Complete(context.Background(), CompletionRequest{Messages: []Message{User("hi")}})
	require.Error(t, err)
	_, ok := StatusCode(err)
	assert.False(t, ok, "transport failure should not carry a status")
}

func TestFactoryReturnsErrorForMissingAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	for _, p := range []string{"openrouter", "openai"} {
		_, err := NewProvider(p, "some-model", "")
		assert.Error(t, err, "provider %q with missing API key", p)
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	_, err := NewProvider("unknown", "some-model", "")
	assert.Error(t, err)
}

func TestFactoryCreatesOpenRouterProvider(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	provider, err := NewProvider("openrouter", "anthropic/claude-3.5-sonnet", "")
	require.NoError(t, err)
	assert.Equal(t, "openrouter", provider.Name())
}

func TestFactoryUsesCustomKeyEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENROUTER_DIF_API_KEY", "other-key")
	provider, err := NewProvider("openrouter", "openai/gpt-4o", "OPENROUTER_DIF_API_KEY")
	require.NoError(t, err)
	require.IsType(t, &ChatProvider{}, provider)
	assert.Equal(t, "openai/gpt-4o", provider.(*ChatProvider).Model())
}

func TestRateLimiterPassesThrough(t *testing.T) {
	mock := NewMockProvider("test")
	rl := NewRateLimitedProvider(mock, 60)

	resp, err := rl.Complete(context.Background(), CompletionRequest{Messages: []Message{User("hello")}})
	require.NoError(t, err)
	assert.Equal(t, "mock response", resp.Content)
	assert.Equal(t, "test", rl.Name())
}

func TestRateLimiterLimitsRequests(t *testing.T) {
	mock := NewMockProvider("test")
	// Allow only 2 requests per minute.
	rl := NewRateLimitedProvider(mock, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	req := CompletionRequest{Messages: []Message{User("hello")}}
	for i := 0; i < 2; i++ {
		_, err := rl.Complete(ctx, req)
		require.NoError(t, err, "request %d", i)
	}

	// The third blocks until the context times out.
	_, err := rl.Complete(ctx, req)
	assert.Error(t, err)
	assert.Equal(t, 2, mock.CallCount())
}

func TestEstimateCostAccuracy(t *testing.T) {
	// claude-3.5-sonnet: $3/1M input, $15/1M output
	assert.InDelta(t, 18.0, EstimateCost("anthropic/claude-3.5-sonnet", 1_000_000, 1_000_000), 0.01)
}

func TestEstimateCostUnknownModel(t *testing.T) {
	assert.Zero(t, EstimateCost("unknown-model", 1000, 500))
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hi", 1},
		{"hello world!!", 3},
		{"a longer piece of text that has more characters", 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.text), "EstimateTokens(%q)", tt.text)
	}
}

func TestRoles(t *testing.T) {
	assert.Equal(t, Role("system"), System("x").Role)
	assert.Equal(t, Role("user"), User("x").Role)
	assert.Equal(t, Role("assistant"), RoleAssistant)
}
