package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/math-tutor/backend/pkg/logger"
)

type Client struct {
	serpAPIKey string
	httpClient *http.Client
	textBudget int
}

type SearchResult struct {
	Title   string
	URL     string
	Snippet string
	Content string
}

// NewClient builds a search client. textBudget caps the characters of
// extracted content kept per result.
func NewClient(serpAPIKey string, textBudget int) *Client {
	if textBudget <= 0 {
		textBudget = 500
	}
	return &Client{
		serpAPIKey: serpAPIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		textBudget: textBudget,
	}
}

// Search runs a math-oriented web search. With a SerpAPI key it uses
// the API; otherwise it falls back to scraping Google results from
// math education sites.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	logger.Info("Performing web search", zap.String("query", query))

	mathQuery := fmt.Sprintf("math %s step by step solution", query)

	if c.serpAPIKey != "" {
		return c.searchWithSerpAPI(ctx, mathQuery, maxResults)
	}

	return c.searchWithGoogle(ctx, mathQuery, maxResults)
}

func (c *Client) searchWithSerpAPI(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	baseURL := "https://serpapi.com/search"
	params := url.Values{}
	params.Add("q", query)
	params.Add("api_key", c.serpAPIKey)
	params.Add("num", fmt.Sprintf("%d", maxResults))

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s?%s", baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var searchResp struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}

	err = json.Unmarshal(body, &searchResp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]SearchResult, 0, len(searchResp.OrganicResults))
	for _, r := range searchResp.OrganicResults {
		content, err := c.scrapeContent(r.Link)
		if err != nil {
			logger.Warn("Failed to scrape content", zap.String("url", r.Link), zap.Error(err))
			content = c.truncate(r.Snippet)
		}

		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
			Content: content,
		})
	}

	logger.Info("Web search completed", zap.Int("results", len(results)))

	return results, nil
}

func (c *Client) searchWithGoogle(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	searchQuery := url.QueryEscape(fmt.Sprintf("site:mathworld.wolfram.com OR site:khanacademy.org OR site:math.stackexchange.com %s", query))
	searchURL := fmt.Sprintf("https://www.google.com/search?q=%s&num=%d", searchQuery, maxResults)

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	results := make([]SearchResult, 0)
	doc.Find("div.g").Each(func(i int, s *goquery.Selection) {
		if i >= maxResults {
			return
		}

		title := s.Find("h3").Text()
		link, _ := s.Find("a").Attr("href")
		snippet := s.Find("div.VwiC3b").Text()

		if title != "" && link != "" {
			content, err := c.scrapeContent(link)
			if err != nil {
				content = c.truncate(snippet)
			}

			results = append(results, SearchResult{
				Title:   title,
				URL:     link,
				Snippet: snippet,
				Content: content,
			})
		}
	})

	logger.Info("Google search completed", zap.Int("results", len(results)))

	return results, nil
}

func (c *Client) scrapeContent(urlStr string) (string, error) {
	resp, err := c.httpClient.Get(urlStr)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, footer, header").Remove()
	text := strings.TrimSpace(doc.Find("body").Text())
	return c.truncate(text), nil
}

// truncate keeps text within the budget, cutting at a sentence
// boundary when one exists inside it.
func (c *Client) truncate(text string) string {
	if len(text) <= c.textBudget {
		return text
	}

	// Segment only the candidate window, not the whole page.
	window := text
	if len(window) > c.textBudget*4 {
		window = cutAtRune(window, c.textBudget*4)
	}

	doc, err := prose.NewDocument(window,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return cutAtRune(text, c.textBudget)
	}

	var b strings.Builder
	for _, sent := range doc.Sentences() {
		if b.Len()+len(sent.Text)+1 > c.textBudget {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sent.Text)
	}
	if b.Len() == 0 {
		return cutAtRune(text, c.textBudget)
	}
	return b.String()
}

// cutAtRune cuts s to at most n bytes without splitting a UTF-8
// sequence.
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
