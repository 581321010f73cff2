package fetch

import (
	"context"
	"fmt"
	"time"

	"dailynews/internal/core"
	"dailynews/internal/feeds"
	"dailynews/internal/github"
	"dailynews/internal/relevance"
)

// Dispatcher routes each registry source to the fetcher for its type.
type Dispatcher struct {
	feeds  *feeds.Fetcher
	github *github.Client
	pages  *PageFetcher
	readme *ReadmeFetcher
	scorer *relevance.Scorer
	now    func() time.Time
}

// NewDispatcher wires the fetchers together. The feed fetcher receives
// per-item content and page-image callbacks backed by the page and
// README fetchers.
func NewDispatcher(scorer *relevance.Scorer, client *github.Client, loc *time.Location) *Dispatcher {
	pages := NewPageFetcher()
	readme := NewReadmeFetcher(client, pages)

	d := &Dispatcher{
		github: client,
		pages:  pages,
		readme: readme,
		scorer: scorer,
		now:    func() time.Time { return time.Now().In(loc) },
	}
	d.feeds = feeds.New(scorer, d.itemContent, pages.FetchImage)
	return d
}

// Fetch returns the candidate articles for one source. Unknown source
// types are an error; fetch failures bubble up for the driver to soften.
func (d *Dispatcher) Fetch(ctx context.Context, cfg *core.SourceConfig) ([]*core.Article, error) {
	switch cfg.Type {
	case "rss", "atom", "curated_rss", "rsshub", "link", "code":
		return d.feeds.Fetch(ctx, cfg)
	case "github_md_folder":
		articles, err := d.github.FetchMarkdownFolder(ctx, cfg, d.now())
		if err != nil {
			return nil, err
		}
		return d.cull(articles, cfg), nil
	case "github_json":
		articles, err := d.github.FetchDailyJSON(ctx, cfg, d.now())
		if err != nil {
			return nil, err
		}
		return d.cull(articles, cfg), nil
	}
	return nil, fmt.Errorf("unknown source type %q for %s", cfg.Type, cfg.Title)
}

// cull applies the focus pre-score and the per-source top-K to articles
// produced outside the feed path, so every source honors output_count.
func (d *Dispatcher) cull(articles []*core.Article, cfg *core.SourceConfig) []*core.Article {
	for _, a := range articles {
		a.FocusScore = d.scorer.Score(a)
	}
	return d.scorer.SelectTop(articles, cfg.OutputLimit())
}

// itemContent serves the feed fetcher's link/code entries.
func (d *Dispatcher) itemContent(ctx context.Context, url, kind string) (string, string, error) {
	if kind == "code" {
		text, err := d.readme.FetchReadme(ctx, url)
		return text, "", err
	}
	summary, cover := d.pages.FetchPage(ctx, url)
	return summary, cover, nil
}
