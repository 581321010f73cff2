package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dailynews/internal/core"
	"dailynews/internal/logger"
)

// Daily JSON sources point at repositories that publish one processed
// snapshot per day, via github-json://owner/repo[@YYYY-MM-DD] URLs.

// minConfidence filters low-confidence snapshot entries.
const minConfidence = 0.5

// DailyJSONRef is a parsed github-json:// URL.
type DailyJSONRef struct {
	Owner string
	Repo  string
	Date  string
}

// ParseDailyJSONURL parses github-json://owner/repo[@YYYY-MM-DD]. The
// date defaults to today in the given location.
func ParseDailyJSONURL(raw string, now time.Time) (*DailyJSONRef, error) {
	rest, ok := strings.CutPrefix(raw, "github-json://")
	if !ok {
		return nil, fmt.Errorf("github: not a github-json:// URL: %s", raw)
	}

	date := now.Format("2006-01-02")
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		date = rest[at+1:]
		rest = rest[:at]
	}

	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("github: malformed daily JSON URL: %s", raw)
	}
	return &DailyJSONRef{Owner: parts[0], Repo: parts[1], Date: date}, nil
}

type dailySnapshot struct {
	Articles []snapshotArticle `json:"articles"`
}

type snapshotArticle struct {
	Title      string  `json:"title"`
	Summary    string  `json:"summary"`
	URL        string  `json:"url"`
	ImageURL   string  `json:"image_url"`
	Category   string  `json:"category"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// FetchDailyJSON downloads a day's processed snapshot and converts its
// high-confidence entries into articles. A missing snapshot (404) is a
// soft miss returning an empty list.
func (c *Client) FetchDailyJSON(ctx context.Context, cfg *core.SourceConfig, now time.Time) ([]*core.Article, error) {
	ref, err := ParseDailyJSONURL(cfg.URL, now)
	if err != nil {
		return nil, err
	}

	rawURL := c.RawURL(ref.Owner, ref.Repo, "main", fmt.Sprintf("data/%s-processed.json", ref.Date))
	body, err := c.DownloadFileContent(ctx, rawURL)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Info("no daily snapshot yet", "source", cfg.Title, "date", ref.Date)
			return nil, nil
		}
		return nil, err
	}

	var snapshot dailySnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("github: malformed daily snapshot %s: %w", rawURL, err)
	}

	limit := cfg.InputLimit()
	var articles []*core.Article
	for _, entry := range snapshot.Articles {
		if len(articles) >= limit {
			break
		}
		if entry.Confidence < minConfidence {
			continue
		}
		if entry.Title == "" || entry.URL == "" {
			continue
		}

		summary := entry.Summary
		if entry.Category != "" {
			summary += "\n\nCategory: " + entry.Category
		}
		if entry.Source != "" {
			summary += "\nSource: " + entry.Source
		}
		summary += fmt.Sprintf("\nConfidence: %.2f", entry.Confidence)

		articles = append(articles, &core.Article{
			Title:      entry.Title,
			Summary:    summary,
			Link:       entry.URL,
			CoverURL:   entry.ImageURL,
			Date:       now,
			Info:       core.FeedInfo{Title: cfg.Title},
			Config:     cfg,
			OriginType: core.OriginCurated,
			Tier:       cfg.Tier,
			Confidence: entry.Confidence,
			Category:   entry.Category,
			Source:     entry.Source,
		})
	}

	logger.Info("daily snapshot parsed", "source", cfg.Title, "date", ref.Date,
		"total", len(snapshot.Articles), "kept", len(articles))
	return articles, nil
}
