package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/math-tutor/backend/internal/search/web"
)

const webConfidence = 0.75

// Searcher runs a web search for a question. Satisfied by the web
// search client.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]web.SearchResult, error)
}

// WebSearchAdapter answers from web search results when neither
// knowledge base has the question.
type WebSearchAdapter struct {
	searcher   Searcher
	maxResults int
}

func NewWebSearchAdapter(searcher Searcher, maxResults int) *WebSearchAdapter {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &WebSearchAdapter{searcher: searcher, maxResults: maxResults}
}

func (a *WebSearchAdapter) Name() string { return "websearch" }

func (a *WebSearchAdapter) Attempt(ctx context.Context, question string) (*AdapterResult, error) {
	results, err := a.searcher.Search(ctx, question, a.maxResults)
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	top := results[0]

	content := strings.TrimSpace(top.Content)
	if content == "" {
		content = strings.TrimSpace(top.Snippet)
	}
	if content == "" {
		return nil, nil
	}

	answer := fmt.Sprintf("Based on %s:\n\n%s", top.Title, content)

	return &AdapterResult{
		Answer:     answer,
		Confidence: webConfidence,
		Route:      RouteWeb,
		Component:  a.Name(),
		SourceInfo: top.URL,
	}, nil
}
