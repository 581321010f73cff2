// Package feeds fetches syndicated sources (rss, atom, curated_rss,
// rsshub) and normalizes entries into articles.
package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"dailynews/internal/core"
	"dailynews/internal/logger"
	"dailynews/internal/media"
	"dailynews/internal/relevance"
)

// UserAgent mimics a desktop browser; several feed hosts reject default
// client strings.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// FreshnessWindow drops entries older than a day and a half.
const FreshnessWindow = 36 * time.Hour

// minSummaryChars rejects stub entries with no usable body.
const minSummaryChars = 10

// ContentFunc fetches per-item content for sources whose feed entries
// only carry links ("link" pages, "code" repositories). It returns the
// plain-text summary and a cover URL.
type ContentFunc func(ctx context.Context, url, kind string) (summary, cover string, err error)

// PageImageFunc fetches an article page and extracts its primary image,
// used as the last resort of the cover extraction chain.
type PageImageFunc func(ctx context.Context, url string) string

// Fetcher parses syndicated feeds into scored, culled candidate lists.
type Fetcher struct {
	parser  *gofeed.Parser
	scorer  *relevance.Scorer
	content ContentFunc
	pageImg PageImageFunc
	now     func() time.Time
}

// New builds a feed fetcher. content and pageImg may be nil for sources
// that never need them.
func New(scorer *relevance.Scorer, content ContentFunc, pageImg PageImageFunc) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = UserAgent
	return &Fetcher{
		parser:  parser,
		scorer:  scorer,
		content: content,
		pageImg: pageImg,
		now:     time.Now,
	}
}

// Fetch parses the source's feed and returns the focus-culled candidate
// list, at most OutputLimit articles.
func (f *Fetcher) Fetch(ctx context.Context, cfg *core.SourceConfig) ([]*core.Article, error) {
	feed, err := f.parser.ParseURLWithContext(cfg.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", cfg.Title, err)
	}

	origin := core.OriginRaw
	if cfg.IsCurated() {
		origin = core.OriginCurated
	}

	now := f.now()
	inputLimit := cfg.InputLimit()
	var candidates []*core.Article
	for _, item := range feed.Items {
		if len(candidates) >= inputLimit {
			break
		}

		published := resolveDate(item, feed, now)
		if now.Sub(published) > FreshnessWindow {
			continue
		}

		link := resolveLink(item)
		if link == "" {
			logger.Warn("feed item has no link, skipping", "source", cfg.Title, "title", item.Title)
			continue
		}

		summary, cover := f.itemContent(ctx, cfg, item, link)
		if len([]rune(summary)) < minSummaryChars {
			continue
		}

		article := &core.Article{
			Title:      item.Title,
			Summary:    summary,
			Link:       link,
			CoverURL:   cover,
			Date:       published,
			Info:       core.FeedInfo{Title: feed.Title},
			Config:     cfg,
			OriginType: origin,
			Tier:       cfg.Tier,
		}
		article.FocusScore = f.scorer.Score(article)
		candidates = append(candidates, article)
	}

	selected := f.scorer.SelectTop(candidates, cfg.OutputLimit())
	logger.Info("feed fetched", "source", cfg.Title,
		"entries", len(feed.Items), "candidates", len(candidates), "selected", len(selected))
	return selected, nil
}

// itemContent resolves the summary and cover for one entry. Sources of
// kind "link"/"code" fetch the destination page instead of trusting the
// feed body.
func (f *Fetcher) itemContent(ctx context.Context, cfg *core.SourceConfig, item *gofeed.Item, link string) (string, string) {
	if f.content != nil && (cfg.Type == "link" || cfg.Type == "code") {
		summary, cover, err := f.content(ctx, link, cfg.Type)
		if err != nil {
			logger.Warn("item content fetch failed", "source", cfg.Title, "link", link, "error", err.Error())
			return "", ""
		}
		if cover == "" || !cfg.ImageEnabled() {
			cover = ""
		}
		return summary, cover
	}

	raw := item.Description
	if raw == "" {
		raw = item.Content
	}
	summary := media.HTMLToText(raw)

	cover := ""
	if cfg.ImageEnabled() {
		cover = media.FromFeedItem(item, link)
		if cover == "" && f.pageImg != nil {
			cover = f.pageImg(ctx, link)
		}
	}
	return summary, cover
}

// resolveDate prefers the entry's published time, then updated, then the
// feed-level timestamps, then "now".
func resolveDate(item *gofeed.Item, feed *gofeed.Feed, now time.Time) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	case feed.PublishedParsed != nil:
		return *feed.PublishedParsed
	case feed.UpdatedParsed != nil:
		return *feed.UpdatedParsed
	}
	return now
}

// resolveLink tries the entry link, then a URL-shaped GUID, then the
// first alternate link.
func resolveLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if len(item.GUID) > 4 && item.GUID[:4] == "http" {
		return item.GUID
	}
	if len(item.Links) > 0 {
		return item.Links[0]
	}
	return ""
}
