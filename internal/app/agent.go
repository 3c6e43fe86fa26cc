package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"rcip-agent/internal/core/convert"
	"rcip-agent/internal/core/scrape"
	"rcip-agent/internal/core/search"
	"rcip-agent/internal/infrastructure/config"
	"rcip-agent/internal/pkg/common"

	"go.uber.org/zap"
)

// Agent composes the collaborators around the conversion pipeline: search
// finds candidate pages, scrape extracts their text, and the pipeline turns
// the best text into a persisted RCIP record.
type Agent struct {
	config   *config.Config
	searcher search.Searcher
	scraper  scrape.Scraper
	pipeline *convert.Pipeline
}

// NewAgent wires an agent from its collaborators.
func NewAgent(cfg *config.Config, searcher search.Searcher, scraper scrape.Scraper, pipeline *convert.Pipeline) *Agent {
	return &Agent{
		config:   cfg,
		searcher: searcher,
		scraper:  scraper,
		pipeline: pipeline,
	}
}

// ProcessRecipe runs the full cycle for one recipe name:
// search → scrape → convert → persist.
func (a *Agent) ProcessRecipe(ctx context.Context, name string) (*convert.Result, error) {
	common.LogInfo("processing recipe", zap.String("recipe", name))

	urls, err := a.searcher.Search(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no recipe pages found for %q", name)
	}

	page := a.firstUsablePage(ctx, urls)
	if page == nil {
		return nil, fmt.Errorf("failed to extract recipe text for %q", name)
	}

	return a.pipeline.Convert(ctx, convert.Request{
		Name:      name,
		RawText:   page.Text,
		SourceURL: page.URL,
	})
}

// firstUsablePage scrapes candidates in order and returns the first whose
// text is long enough to be a real recipe page.
func (a *Agent) firstUsablePage(ctx context.Context, urls []string) *scrape.Page {
	for _, url := range urls {
		page, err := a.scraper.Scrape(ctx, url)
		if err != nil {
			common.LogWarn("scrape failed, trying next result",
				zap.String("url", url),
				zap.Error(err),
			)
			continue
		}
		if len(page.Text) >= a.config.Scrape.MinTextLength {
			return page
		}
		common.LogDebug("page text too short, trying next result",
			zap.String("url", url),
			zap.Int("text_length", len(page.Text)),
		)
	}
	return nil
}

// ProcessBatch converts every named recipe. The list is an explicit argument
// so batch and interactive modes share no hidden state.
func (a *Agent) ProcessBatch(ctx context.Context, names []string) []convert.BatchResult {
	common.LogInfo("batch processing started",
		zap.Int("recipes", len(names)),
		zap.Int("workers", a.config.Batch.Workers),
	)

	reqs := make([]convert.Request, 0, len(names))
	for _, name := range names {
		page := a.lookupPage(ctx, name)
		if page == nil {
			reqs = append(reqs, convert.Request{Name: name})
			continue
		}
		reqs = append(reqs, convert.Request{
			Name:      name,
			RawText:   page.Text,
			SourceURL: page.URL,
		})
	}

	return a.pipeline.ConvertBatch(ctx, reqs, a.config.Batch.Workers)
}

func (a *Agent) lookupPage(ctx context.Context, name string) *scrape.Page {
	urls, err := a.searcher.Search(ctx, name)
	if err != nil || len(urls) == 0 {
		common.LogWarn("search yielded no pages",
			zap.String("recipe", name),
			zap.Error(err),
		)
		return nil
	}
	return a.firstUsablePage(ctx, urls)
}

// LoadRecipeList reads a newline-separated recipe name list.
func LoadRecipeList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipe list: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recipe list: %w", err)
	}

	return names, nil
}
