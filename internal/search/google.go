package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// GoogleBaseURL is the Custom Search JSON API endpoint.
const GoogleBaseURL = "https://www.googleapis.com/customsearch/v1"

// GoogleSearcher queries a Google Programmable Search Engine.
type GoogleSearcher struct {
	apiKey   string
	engineID string
	opts     options
}

// NewGoogleSearcher creates a searcher for the engine cx authenticated with apiKey.
func NewGoogleSearcher(apiKey, cx string, opts ...Option) *GoogleSearcher {
	return &GoogleSearcher{apiKey: apiKey, engineID: cx, opts: buildOptions(GoogleBaseURL, opts)}
}

func (s *GoogleSearcher) Name() string { return "google" }

func (s *GoogleSearcher) NoResults() string { return "No relevant search results found." }

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (s *GoogleSearcher) Search(ctx context.Context, query string, n int) ([]Result, error) {
	if s.apiKey == "" || s.engineID == "" {
		return nil, fmt.Errorf("google: %w", errMissingKey)
	}

	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("cx", s.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(n))
	params.Set("gl", "us")
	params.Set("lr", "lang_en")
	if s.opts.recent {
		params.Set("dateRestrict", "d365")
		params.Set("sort", "date")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating google request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.opts.client.Do(req)
	if err != nil {
		// The request URL carries the key; keep it out of logs.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("google request failed: %w", uerr.Err)
		}
		return nil, fmt.Errorf("google request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("google API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding google response: %w", err)
	}

	results := make([]Result, 0, len(data.Items))
	for _, it := range data.Items {
		results = append(results, Result{
			Title:   orDefault(it.Title, "No Title"),
			URL:     orDefault(it.Link, "No Link"),
			Snippet: orDefault(it.Snippet, "No Snippet"),
		})
	}
	return results, nil
}
