package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"rcip-agent/internal/infrastructure/config"
	"rcip-agent/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Searcher finds candidate recipe page URLs for a dish name.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// DuckDuckGo queries the DuckDuckGo HTML endpoint, which needs no API key.
type DuckDuckGo struct {
	config *config.SearchConfig
	client *resty.Client
}

// NewDuckDuckGo creates the search collaborator.
func NewDuckDuckGo(cfg *config.SearchConfig) *DuckDuckGo {
	client := resty.New().
		SetBaseURL("https://html.duckduckgo.com").
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	return &DuckDuckGo{
		config: cfg,
		client: client,
	}
}

// Search implements Searcher. It returns up to max_results page URLs for
// "<query> recipe with photos step by step".
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]string, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":  fmt.Sprintf("%s recipe with photos step by step", query),
			"kl": d.config.Region,
		}).
		Get("/html/")

	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode())
	}

	urls := parseResultLinks(resp.String(), d.config.MaxResults)

	common.LogInfo("search finished",
		zap.String("query", query),
		zap.Int("results", len(urls)),
	)

	return urls, nil
}

// parseResultLinks extracts result anchors (class result__a) and decodes the
// uddg redirect parameter DuckDuckGo wraps targets in.
func parseResultLinks(page string, max int) []string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var urls []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(urls) >= max {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			if href := attr(n, "href"); href != "" {
				if target := decodeRedirect(href); target != "" {
					urls = append(urls, target)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return urls
}

func decodeRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
