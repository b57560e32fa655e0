package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// YouBaseURL is the You.com web search endpoint.
const YouBaseURL = "https://api.ydc-index.io/search"

const youMaxResults = 20

// YouSearcher queries the You.com search API.
type YouSearcher struct {
	apiKey string
	opts   options
}

// NewYouSearcher creates a You.com searcher authenticated with apiKey.
func NewYouSearcher(apiKey string, opts ...Option) *YouSearcher {
	return &YouSearcher{apiKey: apiKey, opts: buildOptions(YouBaseURL, opts)}
}

func (s *YouSearcher) Name() string { return "you.com" }

func (s *YouSearcher) NoResults() string { return "No relevant You.com search results found." }

type youResponse struct {
	Hits []struct {
		Title       string   `json:"title"`
		URL         string   `json:"url"`
		Description *string  `json:"description"`
		Snippets    []string `json:"snippets"`
	} `json:"hits"`
}

func (s *YouSearcher) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("you.com: %w", errMissingKey)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("num_web_results", strconv.Itoa(min(n, youMaxResults)))
	params.Set("safesearch", "moderate")
	params.Set("country", "US")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating you.com request: %w", err)
	}
	req.Header.Set("X-API-Key", s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.opts.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("you.com request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("you.com API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data youResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding you.com response: %w", err)
	}

	hits := data.Hits
	if n >= 0 && len(hits) > n {
		hits = hits[:n]
	}
	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		desc := "No Description"
		if h.Description != nil {
			desc = *h.Description
		}
		results = append(results, Result{
			Title:       orDefault(h.Title, "No Title"),
			URL:         orDefault(h.URL, "No URL"),
			Description: desc,
			Snippet:     strings.Join(h.Snippets, " "),
		})
	}
	return results, nil
}
