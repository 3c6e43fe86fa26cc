package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"rcip-agent/internal/infrastructure/config"
	"rcip-agent/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Page is the text extracted from one recipe page.
type Page struct {
	URL  string
	Text string
}

// Scraper fetches a page and reduces it to plain text.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Page, error)
}

// page chrome stripped before text extraction.
var skipElements = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
	"header": true,
}

// HTTPScraper fetches pages over HTTP with a browser user agent.
type HTTPScraper struct {
	config *config.ScrapeConfig
	client *resty.Client
}

// NewHTTPScraper creates the scraping collaborator.
func NewHTTPScraper(cfg *config.ScrapeConfig) *HTTPScraper {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	return &HTTPScraper{
		config: cfg,
		client: client,
	}
}

// Scrape implements Scraper. Script/style/navigation subtrees are dropped,
// short lines are filtered out, and the result is capped to max_lines to
// bound upstream token usage.
func (s *HTTPScraper) Scrape(ctx context.Context, url string) (*Page, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(url)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode())
	}

	text := ExtractText(resp.String(), s.config.MaxLines)

	common.LogInfo("page scraped",
		zap.String("url", url),
		zap.Int("text_length", len(text)),
	)

	return &Page{URL: url, Text: text}, nil
}

// ExtractText reduces an HTML document to newline-separated text lines,
// keeping only lines longer than 20 runes and at most maxLines of them.
func ExtractText(page string, maxLines int) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) > 20 {
			lines = append(lines, line)
		}
		if len(lines) >= maxLines {
			break
		}
	}

	return strings.Join(lines, "\n")
}
