package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"lifegraph/backend/pkg/logger"
)

// duckDuckGoSearch implements Search against the DuckDuckGo HTML endpoint
// (free, no API key needed)
type duckDuckGoSearch struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewSearch creates the web search tool. baseURL overrides the DuckDuckGo
// endpoint, mainly for tests.
func NewSearch(baseURL string) Search {
	if baseURL == "" {
		baseURL = "https://html.duckduckgo.com/html/"
	}
	return &duckDuckGoSearch{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		logger:     logger.Named("tools.search"),
	}
}

func (s *duckDuckGoSearch) Name() string {
	return ToolWebSearch
}

func (s *duckDuckGoSearch) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit < 1 {
		limit = 5
	}

	searchURL := fmt.Sprintf("%s?q=%s", s.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}

	var results []SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a")
		href, _ := link.Attr("href")

		result := SearchResult{
			Title:   strings.TrimSpace(link.Text()),
			URL:     unwrapRedirect(href),
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		}
		if result.Title != "" && result.URL != "" {
			results = append(results, result)
		}
		return len(results) < limit
	})

	s.logger.Debug("Web search completed",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// unwrapRedirect extracts the destination from DuckDuckGo's redirect links
// (the real URL is carried in the uddg query parameter)
func unwrapRedirect(href string) string {
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := parsed.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	if strings.HasPrefix(href, "/") {
		return ""
	}
	return href
}
