// Package search queries web search APIs for answer context.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultHTTPTimeout = 30 * time.Second

var errMissingKey = errors.New("API key is not configured")

// Result is a single search hit.
type Result struct {
	Title string
	URL   string
	// Description is only set by engines that return one.
	Description string
	Snippet     string
}

// String renders the hit as the labelled block fed to the model.
func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nURL: %s\n", r.Title, r.URL)
	if r.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", r.Description)
	}
	fmt.Fprintf(&b, "Snippet: %s", r.Snippet)
	return b.String()
}

// Searcher is a web search backend.
type Searcher interface {
	// Name identifies the engine in logs and context banners.
	Name() string
	// NoResults is the text used when a query returns nothing.
	NoResults() string
	Search(ctx context.Context, query string, n int) ([]Result, error)
}

// Option customizes a searcher.
type Option func(*options)

type options struct {
	baseURL string
	client  *http.Client
	recent  bool
}

// WithBaseURL points the searcher at a different API root.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithRecent restricts results to the last year, newest first. Only the
// Google engine honours it.
func WithRecent() Option {
	return func(o *options) { o.recent = true }
}

func buildOptions(baseURL string, opts []Option) options {
	o := options{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Text runs query against s and returns the hits joined by blank lines. It
// never fails: errors become an "(Error: ...)" line and an empty hit list
// becomes s.NoResults().
func Text(ctx context.Context, s Searcher, query string, n int, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("engine", s.Name()))
	log.Info("performing search", zap.String("query", query), zap.Int("limit", n))

	results, err := s.Search(ctx, query, n)
	if err != nil {
		log.Error("search failed", zap.Error(err))
		return fmt.Sprintf("(Error: %s)", err)
	}
	if len(results) == 0 {
		log.Info("no relevant search results")
		return s.NoResults()
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.String()
	}
	log.Info("search completed", zap.Int("results", len(results)))
	return strings.Join(parts, "\n\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
