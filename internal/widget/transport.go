package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nunnai/marketmentor/internal/llm"
)

// DefaultEndpoint is the backend answer endpoint used by the CLI clients.
const DefaultEndpoint = "http://localhost:8080/ask"

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Response *string `json:"response"`
}

var errMissingResponse = errors.New("answer body has no response field")

// BackendTransport posts the question as JSON to the answer endpoint.
type BackendTransport struct {
	endpoint string
	client   *http.Client
}

// NewBackendTransport creates a transport for endpoint. A nil client uses
// http.DefaultClient; the Controller's deadline bounds each request.
func NewBackendTransport(endpoint string, client *http.Client) *BackendTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &BackendTransport{endpoint: endpoint, client: client}
}

func (t *BackendTransport) Ask(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("encoding question: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting question: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Code: resp.StatusCode}
	}

	var out askResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding answer: %w", err)
	}
	if out.Response == nil {
		return "", errMissingResponse
	}
	return *out.Response, nil
}

// NoAnswer is returned by CompletionTransport when the model produced no choices.
const NoAnswer = "Sorry, I couldn't find an answer."

// CompletionTransport sends the question straight to a completion API,
// bypassing the backend. Credentials live in the provider.
type CompletionTransport struct {
	provider  llm.Provider
	model     string
	maxTokens int
}

// NewCompletionTransport creates a direct transport. An empty model uses the
// provider default.
func NewCompletionTransport(p llm.Provider, model string, maxTokens int) *CompletionTransport {
	return &CompletionTransport{provider: p, model: model, maxTokens: maxTokens}
}

func (t *CompletionTransport) Ask(ctx context.Context, question string) (string, error) {
	resp, err := t.provider.Complete(ctx, llm.CompletionRequest{
		Model:     t.model,
		Messages:  []llm.Message{llm.User(question)},
		MaxTokens: t.maxTokens,
	})
	if err != nil {
		if code, ok := llm.StatusCode(err); ok {
			return "", fmt.Errorf("%s completion: %w", t.provider.Name(), &StatusError{Code: code})
		}
		return "", fmt.Errorf("%s completion: %w", t.provider.Name(), err)
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return NoAnswer, nil
	}
	return answer, nil
}
